package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups events by area of life.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryFinance  Category = "finance"
	CategorySocial   Category = "social"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategoryLearning, CategoryFinance, CategorySocial:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TimingMode describes how strictly an event is bound to its start/end.
type TimingMode string

const (
	// TimingSpecific events happen exactly between start and end.
	TimingSpecific TimingMode = "specific"
	// TimingAnytime events may happen whenever before the end and never conflict.
	TimingAnytime TimingMode = "anytime"
	// TimingDeadline events only care about the end date.
	TimingDeadline TimingMode = "deadline"
)

func (m TimingMode) Valid() bool {
	switch m {
	case TimingSpecific, TimingAnytime, TimingDeadline:
		return true
	}
	return false
}

type Resolution string

const (
	ResolutionPending     Resolution = "pending"
	ResolutionCompleted   Resolution = "completed"
	ResolutionMissed      Resolution = "missed"
	ResolutionRescheduled Resolution = "rescheduled"
)

func (r Resolution) Valid() bool {
	switch r {
	case ResolutionPending, ResolutionCompleted, ResolutionMissed, ResolutionRescheduled:
		return true
	}
	return false
}

// Subtask is a checklist item stored inline with its event.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Event is a calendar entry, optionally carrying a recurring daily window.
type Event struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	Title             string     `gorm:"size:255;not null" json:"title"`
	Description       *string    `gorm:"size:1000" json:"description"`
	StartDate         time.Time  `gorm:"index;not null" json:"start_date"`
	EndDate           time.Time  `gorm:"index;not null" json:"end_date"`
	Category          Category   `gorm:"size:20;index;default:work" json:"category"`
	Priority          Priority   `gorm:"size:20;default:medium" json:"priority"`
	IsRecurring       bool       `gorm:"default:false" json:"is_recurring"`
	IsCompleted       bool       `gorm:"default:false" json:"is_completed"`
	Subtasks          []Subtask  `gorm:"serializer:json" json:"subtasks"`
	TimingMode        TimingMode `gorm:"size:20;default:specific" json:"timing_mode"`
	Resolution        Resolution `gorm:"size:20;default:pending" json:"resolution"`
	RescheduleCount   int        `gorm:"default:0" json:"reschedule_count"`
	OriginalStartDate *time.Time `json:"original_start_date"`
	DailyStartTime    *string    `gorm:"size:5" json:"daily_start_time"`
	DailyEndTime      *string    `gorm:"size:5" json:"daily_end_time"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HasDailyWindow reports whether both daily window bounds are configured.
func (e *Event) HasDailyWindow() bool {
	return e.DailyStartTime != nil && *e.DailyStartTime != "" &&
		e.DailyEndTime != nil && *e.DailyEndTime != ""
}

// Normalize resolves defaults in one place so the rest of the code never has to
// guess what an empty enum means. Dates are reduced to their wall-clock value.
func (e *Event) Normalize() {
	if e.Category == "" {
		e.Category = CategoryWork
	}
	if e.Priority == "" {
		e.Priority = PriorityMedium
	}
	if e.TimingMode == "" {
		e.TimingMode = TimingSpecific
	}
	if e.Resolution == "" {
		e.Resolution = ResolutionPending
	}
	if e.Subtasks == nil {
		e.Subtasks = []Subtask{}
	}
	for i := range e.Subtasks {
		if e.Subtasks[i].ID == "" {
			e.Subtasks[i].ID = uuid.NewString()
		}
	}
	e.StartDate = Naive(e.StartDate)
	e.EndDate = Naive(e.EndDate)
	if e.OriginalStartDate != nil {
		t := Naive(*e.OriginalStartDate)
		e.OriginalStartDate = &t
	}
}

// BeforeCreate assigns a UUID when the caller did not.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Normalize()
	return nil
}

// Naive drops the zone offset and keeps the wall-clock reading, expressed in UTC.
func Naive(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
