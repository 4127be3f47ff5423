package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scheduler-assistant/internal/model"
)

// SessionRepository stores per-day attendance records.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// ListByEvent returns the event's records, most recent date first.
func (r *SessionRepository) ListByEvent(ctx context.Context, eventID string) ([]model.SessionAttendance, error) {
	var sessions []model.SessionAttendance
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).
		Order("session_date DESC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) FindByDate(ctx context.Context, eventID, date string) (*model.SessionAttendance, error) {
	var session model.SessionAttendance
	if err := r.db.WithContext(ctx).Where("event_id = ? AND session_date = ?", eventID, date).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Upsert creates the record for (event, date) or overwrites its status. Notes are
// replaced when keepNotes is false, otherwise only a non-nil value replaces them.
func (r *SessionRepository) Upsert(ctx context.Context, eventID, date string, status model.SessionStatus, notes *string, keepNotes bool) (*model.SessionAttendance, error) {
	var session model.SessionAttendance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("event_id = ? AND session_date = ?", eventID, date).First(&session).Error
		switch {
		case err == nil:
			session.Status = status
			if !keepNotes || notes != nil {
				session.Notes = notes
			}
			return tx.Save(&session).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			session = model.SessionAttendance{
				EventID:     eventID,
				SessionDate: date,
				Status:      status,
				Notes:       notes,
			}
			return tx.Create(&session).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("upsert session: %w", err)
	}
	return &session, nil
}
