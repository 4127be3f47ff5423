package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PomodoroMode is the kind of focus timer that ran.
type PomodoroMode string

const (
	PomodoroWork       PomodoroMode = "work"
	PomodoroShortBreak PomodoroMode = "shortBreak"
	PomodoroLongBreak  PomodoroMode = "longBreak"
)

func (m PomodoroMode) Valid() bool {
	switch m {
	case PomodoroWork, PomodoroShortBreak, PomodoroLongBreak:
		return true
	}
	return false
}

// PomodoroSession is one finished (or abandoned) focus timer.
type PomodoroSession struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	Mode      PomodoroMode `gorm:"size:20;not null;index" json:"mode"`
	Duration  int          `gorm:"not null" json:"duration"` // seconds
	Completed bool         `gorm:"default:false" json:"completed"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
}

func (p *PomodoroSession) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
