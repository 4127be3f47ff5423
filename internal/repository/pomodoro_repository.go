package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"scheduler-assistant/internal/model"
)

// PomodoroRepository stores focus sessions.
type PomodoroRepository struct {
	db *gorm.DB
}

func NewPomodoroRepository(db *gorm.DB) *PomodoroRepository {
	return &PomodoroRepository{db: db}
}

func (r *PomodoroRepository) Create(ctx context.Context, session *model.PomodoroSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create pomodoro session: %w", err)
	}
	return nil
}

func (r *PomodoroRepository) ListRecent(ctx context.Context, limit int) ([]model.PomodoroSession, error) {
	var sessions []model.PomodoroSession
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list pomodoro sessions: %w", err)
	}
	return sessions, nil
}

func (r *PomodoroRepository) ListByMode(ctx context.Context, mode model.PomodoroMode) ([]model.PomodoroSession, error) {
	var sessions []model.PomodoroSession
	if err := r.db.WithContext(ctx).Where("mode = ?", mode).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list pomodoro sessions by mode: %w", err)
	}
	return sessions, nil
}
