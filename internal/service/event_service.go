package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/repository"
	"scheduler-assistant/internal/schedule"
)

// Publisher receives change notifications for connected live clients.
type Publisher interface {
	Publish(kind, action string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, any) {}

// EventInput represents data required to create an event.
type EventInput struct {
	Title          string
	Description    *string
	StartDate      time.Time
	EndDate        time.Time
	Category       model.Category
	Priority       model.Priority
	IsRecurring    bool
	Subtasks       []model.Subtask
	TimingMode     model.TimingMode
	DailyStartTime *string
	DailyEndTime   *string
}

func (in EventInput) event() *model.Event {
	ev := &model.Event{
		Title:          in.Title,
		Description:    in.Description,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Category:       in.Category,
		Priority:       in.Priority,
		IsRecurring:    in.IsRecurring,
		Subtasks:       in.Subtasks,
		TimingMode:     in.TimingMode,
		DailyStartTime: in.DailyStartTime,
		DailyEndTime:   in.DailyEndTime,
	}
	ev.Normalize()
	return ev
}

// EventUpdate is a partial update; nil fields are left untouched.
type EventUpdate struct {
	Title          *string
	Description    *string
	StartDate      *time.Time
	EndDate        *time.Time
	Category       *model.Category
	Priority       *model.Priority
	IsRecurring    *bool
	IsCompleted    *bool
	Subtasks       *[]model.Subtask
	TimingMode     *model.TimingMode
	Resolution     *model.Resolution
	DailyStartTime *string
	DailyEndTime   *string
}

// EventService wraps event business rules: validation, conflict detection and
// change notifications.
type EventService struct {
	events    *repository.EventRepository
	detector  schedule.ConflictDetector
	publisher Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewEventService(events *repository.EventRepository, detector schedule.ConflictDetector, publisher Publisher, log *zap.Logger) *EventService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EventService{
		events:    events,
		detector:  detector,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the wall clock used for "past" and "started" checks.
func (s *EventService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *EventService) Create(ctx context.Context, input EventInput) (*model.Event, error) {
	ev := input.event()
	if err := validateEvent(ev); err != nil {
		return nil, err
	}

	now := model.Naive(s.now())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if ev.StartDate.Before(today) {
		return nil, invalid("Cannot schedule events in the past")
	}

	err := s.events.Transaction(ctx, func(repo *repository.EventRepository) error {
		if err := s.checkConflict(ctx, repo, ev, ""); err != nil {
			return err
		}
		return repo.Create(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("event created", zap.String("event_id", ev.ID), zap.String("title", ev.Title))
	s.publisher.Publish("event_update", "created", ev)
	return ev, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Event", err)
	}
	return ev, nil
}

func (s *EventService) List(ctx context.Context, filter repository.EventFilter) ([]model.Event, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, invalid("unknown category %q", filter.Category)
	}
	return s.events.List(ctx, filter)
}

// Update applies a partial update. Moving the start remembers the original start,
// and marking the event rescheduled bumps its reschedule counter.
func (s *EventService) Update(ctx context.Context, id string, upd EventUpdate) (*model.Event, error) {
	var ev *model.Event
	err := s.events.Transaction(ctx, func(repo *repository.EventRepository) error {
		var err error
		ev, err = repo.FindByID(ctx, id)
		if err != nil {
			return notFound("Event", err)
		}

		previousStart := ev.StartDate
		applyUpdate(ev, upd)
		ev.Normalize()
		if err := validateEvent(ev); err != nil {
			return err
		}

		if !ev.StartDate.Equal(previousStart) && ev.OriginalStartDate == nil {
			ev.OriginalStartDate = &previousStart
		}
		if upd.Resolution != nil && *upd.Resolution == model.ResolutionRescheduled {
			ev.RescheduleCount++
		}

		if err := s.checkConflict(ctx, repo, ev, ev.ID); err != nil {
			return err
		}
		return repo.Save(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("event updated", zap.String("event_id", ev.ID))
	s.publisher.Publish("event_update", "updated", ev)
	return ev, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return notFound("Event", err)
	}
	s.log.Info("event deleted", zap.String("event_id", id))
	s.publisher.Publish("event_update", "deleted", map[string]string{"id": id})
	return nil
}

// ToggleComplete flips completion. An event cannot be completed before it starts.
func (s *EventService) ToggleComplete(ctx context.Context, id string) (*model.Event, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Event", err)
	}

	if !ev.IsCompleted && ev.StartDate.After(model.Naive(s.now())) {
		return nil, invalid("Cannot mark as complete - event hasn't started yet")
	}

	ev.IsCompleted = !ev.IsCompleted
	switch {
	case ev.IsCompleted && ev.Resolution == model.ResolutionPending:
		ev.Resolution = model.ResolutionCompleted
	case !ev.IsCompleted && ev.Resolution == model.ResolutionCompleted:
		ev.Resolution = model.ResolutionPending
	}
	if err := s.events.Save(ctx, ev); err != nil {
		return nil, err
	}

	s.publisher.Publish("event_update", "updated", ev)
	return ev, nil
}

func (s *EventService) checkConflict(ctx context.Context, repo *repository.EventRepository, ev *model.Event, excludeID string) error {
	if ev.TimingMode == model.TimingAnytime || s.detector.Mode == schedule.ConflictDisabled {
		return nil
	}
	candidates, err := repo.FindOverlapping(ctx, ev.StartDate, ev.EndDate, excludeID)
	if err != nil {
		return err
	}
	candidate := schedule.Interval{Start: ev.StartDate, End: ev.EndDate}
	if conflict := s.detector.FindConflict(candidate, excludeID, candidates); conflict != nil {
		s.log.Info("event rejected by conflict detection",
			zap.String("title", ev.Title),
			zap.String("conflict_id", conflict.ID),
			zap.String("mode", string(s.detector.Mode)),
		)
		return &ConflictError{Event: *conflict}
	}
	return nil
}

func applyUpdate(ev *model.Event, upd EventUpdate) {
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Description != nil {
		ev.Description = upd.Description
	}
	if upd.StartDate != nil {
		ev.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		ev.EndDate = *upd.EndDate
	}
	if upd.Category != nil {
		ev.Category = *upd.Category
	}
	if upd.Priority != nil {
		ev.Priority = *upd.Priority
	}
	if upd.IsRecurring != nil {
		ev.IsRecurring = *upd.IsRecurring
	}
	if upd.IsCompleted != nil {
		ev.IsCompleted = *upd.IsCompleted
	}
	if upd.Subtasks != nil {
		ev.Subtasks = *upd.Subtasks
	}
	if upd.TimingMode != nil {
		ev.TimingMode = *upd.TimingMode
	}
	if upd.Resolution != nil {
		ev.Resolution = *upd.Resolution
	}
	if upd.DailyStartTime != nil {
		ev.DailyStartTime = upd.DailyStartTime
	}
	if upd.DailyEndTime != nil {
		ev.DailyEndTime = upd.DailyEndTime
	}
}

// validateEvent checks a normalized event.
func validateEvent(ev *model.Event) error {
	switch n := utf8.RuneCountInString(ev.Title); {
	case n == 0:
		return invalid("title is required")
	case n > 255:
		return invalid("title must be at most 255 characters")
	}
	if ev.Description != nil && utf8.RuneCountInString(*ev.Description) > 1000 {
		return invalid("description must be at most 1000 characters")
	}
	if !ev.Category.Valid() {
		return invalid("unknown category %q", ev.Category)
	}
	if !ev.Priority.Valid() {
		return invalid("unknown priority %q", ev.Priority)
	}
	if !ev.TimingMode.Valid() {
		return invalid("unknown timing mode %q", ev.TimingMode)
	}
	if !ev.Resolution.Valid() {
		return invalid("unknown resolution %q", ev.Resolution)
	}
	interval := schedule.Interval{Start: ev.StartDate, End: ev.EndDate}
	if err := interval.Validate(); err != nil {
		if errors.Is(err, schedule.ErrInvalidInterval) {
			return invalid("End time must be after start time")
		}
		return err
	}
	if err := schedule.ValidateDailyWindow(ev.DailyStartTime, ev.DailyEndTime); err != nil {
		return invalid("%v", err)
	}
	for _, st := range ev.Subtasks {
		if st.Title == "" {
			return invalid("subtask title is required")
		}
	}
	return nil
}
