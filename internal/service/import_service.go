package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/repository"
)

// ImportSubtask is a checklist item in an imported schedule. Missing ids are generated.
type ImportSubtask struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title" binding:"required,min=1,max=255"`
	Completed bool   `json:"completed"`
}

// ImportItem is one event of an imported schedule, using camelCase keys.
type ImportItem struct {
	Title          string           `json:"title" binding:"required,min=1,max=255"`
	Description    *string          `json:"description,omitempty" binding:"omitempty,max=1000"`
	StartDate      model.Timestamp  `json:"startDate"`
	EndDate        model.Timestamp  `json:"endDate"`
	Category       model.Category   `json:"category,omitempty"`
	Priority       model.Priority   `json:"priority,omitempty"`
	IsRecurring    bool             `json:"isRecurring"`
	Subtasks       []ImportSubtask  `json:"subtasks,omitempty" binding:"dive"`
	TimingMode     model.TimingMode `json:"timingMode,omitempty"`
	DailyStartTime *string          `json:"dailyStartTime,omitempty"`
	DailyEndTime   *string          `json:"dailyEndTime,omitempty"`
}

// ImportRequest is the body accepted by the schedule import endpoint.
type ImportRequest struct {
	Schedule []ImportItem `json:"schedule" binding:"required,min=1,dive"`
}

// ImportError describes why one item was not imported.
type ImportError struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported      []model.Event `json:"imported"`
	Errors        []ImportError `json:"errors"`
	TotalReceived int           `json:"total_received"`
	TotalImported int           `json:"total_imported"`
	TotalErrors   int           `json:"total_errors"`
}

// ImportService creates events in bulk from a schedule document.
type ImportService struct {
	events    *repository.EventRepository
	publisher Publisher
	log       *zap.Logger
}

func NewImportService(events *repository.EventRepository, publisher Publisher, log *zap.Logger) *ImportService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportService{events: events, publisher: publisher, log: log}
}

// Validate converts items into events, collecting per-item errors instead of stopping.
func (s *ImportService) Validate(items []ImportItem) ([]*model.Event, []ImportError) {
	events := make([]*model.Event, 0, len(items))
	problems := []ImportError{}
	for idx, item := range items {
		if err := item.requireDates(); err != nil {
			problems = append(problems, ImportError{Index: idx, Title: item.Title, Error: err.Error()})
			continue
		}
		ev := item.event()
		if err := validateEvent(ev); err != nil {
			problems = append(problems, ImportError{Index: idx, Title: item.Title, Error: err.Error()})
			continue
		}
		events = append(events, ev)
	}
	return events, problems
}

// Import stores every valid item in a single transaction. Invalid items are
// reported in the result; a storage failure aborts the whole import.
func (s *ImportService) Import(ctx context.Context, items []ImportItem) (*ImportResult, error) {
	events, problems := s.Validate(items)
	if err := s.events.CreateBatch(ctx, events); err != nil {
		return nil, fmt.Errorf("commit imported events: %w", err)
	}

	result := &ImportResult{
		Imported:      make([]model.Event, 0, len(events)),
		Errors:        problems,
		TotalReceived: len(items),
		TotalImported: len(events),
		TotalErrors:   len(problems),
	}
	for _, ev := range events {
		result.Imported = append(result.Imported, *ev)
		s.publisher.Publish("event_update", "created", ev)
	}

	s.log.Info("schedule imported",
		zap.Int("received", result.TotalReceived),
		zap.Int("imported", result.TotalImported),
		zap.Int("errors", result.TotalErrors),
	)
	return result, nil
}

func (item ImportItem) requireDates() error {
	switch {
	case item.StartDate.Time().IsZero():
		return invalid("startDate is required")
	case item.EndDate.Time().IsZero():
		return invalid("endDate is required")
	}
	return nil
}

func (item ImportItem) event() *model.Event {
	subtasks := make([]model.Subtask, 0, len(item.Subtasks))
	for _, st := range item.Subtasks {
		subtasks = append(subtasks, model.Subtask{ID: st.ID, Title: st.Title, Completed: st.Completed})
	}
	ev := &model.Event{
		Title:          item.Title,
		Description:    item.Description,
		StartDate:      item.StartDate.Time(),
		EndDate:        item.EndDate.Time(),
		Category:       item.Category,
		Priority:       item.Priority,
		IsRecurring:    item.IsRecurring,
		Subtasks:       subtasks,
		TimingMode:     item.TimingMode,
		DailyStartTime: item.DailyStartTime,
		DailyEndTime:   item.DailyEndTime,
	}
	ev.Normalize()
	return ev
}

// DecodeSchedule reads a schedule document in JSON or YAML. The document may be
// either {"schedule": [...]} or a bare list of items.
func DecodeSchedule(r io.Reader, format string) ([]ImportItem, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}

	switch strings.ToLower(format) {
	case "yaml", "yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml schedule: %w", err)
		}
		if raw, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("convert yaml schedule: %w", err)
		}
	case "json", "":
	default:
		return nil, fmt.Errorf("unsupported schedule format %q", format)
	}

	raw = bytes.TrimSpace(raw)
	if bytes.HasPrefix(raw, []byte("[")) {
		var items []ImportItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("parse schedule: %w", err)
		}
		return items, nil
	}

	var req ImportRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	if len(req.Schedule) == 0 {
		return nil, errors.New("schedule is empty")
	}
	return req.Schedule, nil
}
