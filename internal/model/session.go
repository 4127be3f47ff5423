package model

import "time"

// SessionStatus is the outcome recorded for one day of a daily-window event.
type SessionStatus string

const (
	SessionPending  SessionStatus = "pending"
	SessionAttended SessionStatus = "attended"
	SessionMissed   SessionStatus = "missed"
	SessionSkipped  SessionStatus = "skipped"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionPending, SessionAttended, SessionMissed, SessionSkipped:
		return true
	}
	return false
}

// DateLayout is the ISO calendar date format used for session dates.
const DateLayout = "2006-01-02"

// SessionAttendance records what happened on a single day of an event.
type SessionAttendance struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	EventID     string        `gorm:"size:36;not null;uniqueIndex:idx_event_session_date" json:"event_id"`
	SessionDate string        `gorm:"size:10;not null;uniqueIndex:idx_event_session_date" json:"session_date"`
	Status      SessionStatus `gorm:"size:20;not null;default:pending" json:"status"`
	Notes       *string       `gorm:"size:500" json:"notes"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName keeps the table name stable regardless of gorm's pluralizer.
func (SessionAttendance) TableName() string {
	return "session_attendance"
}
