package service

import (
	"context"

	"github.com/shopspring/decimal"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/repository"
)

const (
	defaultPomodoroLimit = 50
	maxPomodoroLimit     = 1000
)

// PomodoroInput records one focus timer.
type PomodoroInput struct {
	Mode      model.PomodoroMode
	Duration  int
	Completed bool
}

// PomodoroStats covers work sessions only; breaks are ignored.
type PomodoroStats struct {
	TotalSessions        int     `json:"total_sessions"`
	TotalWorkTime        int     `json:"total_work_time"` // minutes
	CompletedSessions    int     `json:"completed_sessions"`
	AverageSessionLength float64 `json:"average_session_length"` // minutes
}

type PomodoroService struct {
	repo *repository.PomodoroRepository
}

func NewPomodoroService(repo *repository.PomodoroRepository) *PomodoroService {
	return &PomodoroService{repo: repo}
}

func (s *PomodoroService) Record(ctx context.Context, input PomodoroInput) (*model.PomodoroSession, error) {
	if !input.Mode.Valid() {
		return nil, invalid("mode must be one of work, shortBreak, longBreak")
	}
	if input.Duration <= 0 {
		return nil, invalid("duration must be positive")
	}
	session := &model.PomodoroSession{
		Mode:      input.Mode,
		Duration:  input.Duration,
		Completed: input.Completed,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Recent returns the latest sessions; limit <= 0 means the default page size.
func (s *PomodoroService) Recent(ctx context.Context, limit int) ([]model.PomodoroSession, error) {
	switch {
	case limit <= 0:
		limit = defaultPomodoroLimit
	case limit > maxPomodoroLimit:
		limit = maxPomodoroLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *PomodoroService) Stats(ctx context.Context) (PomodoroStats, error) {
	sessions, err := s.repo.ListByMode(ctx, model.PomodoroWork)
	if err != nil {
		return PomodoroStats{}, err
	}

	stats := PomodoroStats{TotalSessions: len(sessions)}
	seconds := 0
	for _, sess := range sessions {
		if !sess.Completed {
			continue
		}
		stats.CompletedSessions++
		seconds += sess.Duration
	}
	stats.TotalWorkTime = seconds / 60
	if stats.CompletedSessions > 0 {
		stats.AverageSessionLength, _ = decimal.NewFromInt(int64(stats.TotalWorkTime)).
			Div(decimal.NewFromInt(int64(stats.CompletedSessions))).
			RoundBank(1).
			Float64()
	}
	return stats, nil
}
