package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/repository"
	"scheduler-assistant/internal/schedule"
)

// SessionInput marks one day of a daily-window event.
type SessionInput struct {
	SessionDate string
	Status      model.SessionStatus
	Notes       *string
}

// SessionService tracks per-day attendance for events with a daily window.
type SessionService struct {
	events    *repository.EventRepository
	sessions  *repository.SessionRepository
	publisher Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewSessionService(events *repository.EventRepository, sessions *repository.SessionRepository, publisher Publisher, log *zap.Logger) *SessionService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{events: events, sessions: sessions, publisher: publisher, log: log, now: time.Now}
}

func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// List returns the event's attendance records, most recent first.
func (s *SessionService) List(ctx context.Context, eventID string) ([]model.SessionAttendance, error) {
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	return s.sessions.ListByEvent(ctx, eventID)
}

func (s *SessionService) Stats(ctx context.Context, eventID string) (schedule.SessionStats, error) {
	ev, err := s.event(ctx, eventID)
	if err != nil {
		return schedule.SessionStats{}, err
	}
	records, err := s.sessions.ListByEvent(ctx, eventID)
	if err != nil {
		return schedule.SessionStats{}, err
	}
	return schedule.ComputeStats(*ev, records), nil
}

// Pending lists the dates whose window has closed without being marked.
func (s *SessionService) Pending(ctx context.Context, eventID string) ([]string, error) {
	ev, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.HasDailyWindow() {
		return []string{}, nil
	}
	records, err := s.sessions.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return schedule.PendingSessionDates(*ev, records, s.now()), nil
}

// Mark creates or overwrites the record for input.SessionDate.
func (s *SessionService) Mark(ctx context.Context, eventID string, input SessionInput) (*model.SessionAttendance, error) {
	if err := validateSession(input.SessionDate, input.Status); err != nil {
		return nil, err
	}
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	session, err := s.sessions.Upsert(ctx, eventID, input.SessionDate, input.Status, input.Notes, false)
	if err != nil {
		return nil, err
	}
	s.marked(session)
	return session, nil
}

// Update changes the status of one date, creating the record when missing.
// Notes are only replaced when provided.
func (s *SessionService) Update(ctx context.Context, eventID, date string, status model.SessionStatus, notes *string) (*model.SessionAttendance, error) {
	if err := validateSession(date, status); err != nil {
		return nil, err
	}
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	session, err := s.sessions.Upsert(ctx, eventID, date, status, notes, true)
	if err != nil {
		return nil, err
	}
	s.marked(session)
	return session, nil
}

func (s *SessionService) marked(session *model.SessionAttendance) {
	s.log.Info("session marked",
		zap.String("event_id", session.EventID),
		zap.String("date", session.SessionDate),
		zap.String("status", string(session.Status)),
	)
	s.publisher.Publish("session_update", "marked", session)
}

func (s *SessionService) event(ctx context.Context, id string) (*model.Event, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Event", err)
	}
	return ev, nil
}

func validateSession(date string, status model.SessionStatus) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return invalid("session_date must be YYYY-MM-DD, got %q", date)
	}
	if !status.Valid() {
		return invalid("unknown session status %q", status)
	}
	return nil
}
