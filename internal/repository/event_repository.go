package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"scheduler-assistant/internal/model"
)

// EventFilter narrows List results. Zero values are ignored.
type EventFilter struct {
	StartFrom *time.Time
	EndUntil  *time.Time
	Category  model.Category
	Completed *bool
	Skip      int
	Limit     int
}

// EventRepository handles CRUD for events.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction.
func (r *EventRepository) Transaction(ctx context.Context, fn func(repo *EventRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&EventRepository{db: tx})
	})
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// CreateBatch inserts all events in one transaction; either all or none are stored.
func (r *EventRepository) CreateBatch(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ev := range events {
			if err := tx.Create(ev).Error; err != nil {
				return fmt.Errorf("event %q: %w", ev.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create events: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	q := r.db.WithContext(ctx).Model(&model.Event{})
	if filter.StartFrom != nil {
		q = q.Where("start_date >= ?", model.Naive(*filter.StartFrom))
	}
	if filter.EndUntil != nil {
		q = q.Where("end_date <= ?", model.Naive(*filter.EndUntil))
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Completed != nil {
		q = q.Where("is_completed = ?", *filter.Completed)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var events []model.Event
	if err := q.Order("start_date ASC").Offset(filter.Skip).Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Save(ctx context.Context, event *model.Event) error {
	event.Normalize()
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

// Delete removes the event together with its attendance records.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&model.SessionAttendance{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Event{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// FindOverlapping returns active, non-anytime events intersecting [start, end),
// oldest first, optionally excluding one event.
func (r *EventRepository) FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) ([]model.Event, error) {
	q := r.db.WithContext(ctx).
		Where("start_date < ? AND end_date > ?", model.Naive(end), model.Naive(start)).
		Where("timing_mode <> ? AND is_completed = ?", model.TimingAnytime, false)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var events []model.Event
	if err := q.Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("find overlapping events: %w", err)
	}
	return events, nil
}

// ListWithDailyWindow returns incomplete events that track daily sessions and
// have started on or before the given moment.
func (r *EventRepository) ListWithDailyWindow(ctx context.Context, startedBy time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("daily_start_time IS NOT NULL AND daily_start_time <> ''").
		Where("daily_end_time IS NOT NULL AND daily_end_time <> ''").
		Where("is_completed = ? AND start_date <= ?", false, model.Naive(startedBy)).
		Order("start_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list daily events: %w", err)
	}
	return events, nil
}

// ListOnDay returns events intersecting the wall-clock day containing t.
func (r *EventRepository) ListOnDay(ctx context.Context, t time.Time) ([]model.Event, error) {
	n := model.Naive(t)
	dayStart := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("start_date < ? AND end_date > ?", dayEnd, dayStart).
		Order("start_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events on day: %w", err)
	}
	return events, nil
}
