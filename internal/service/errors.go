package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scheduler-assistant/internal/model"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports input the service refuses to store.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError carries the event that blocks a create or update.
type ConflictError struct {
	Event model.Event
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Time conflict with existing event: '%s' (%s - %s)",
		e.Event.Title, e.Event.StartDate.Format("15:04"), e.Event.EndDate.Format("15:04"))
}

// notFound maps gorm's sentinel onto ErrNotFound, keeping other errors intact.
func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}
