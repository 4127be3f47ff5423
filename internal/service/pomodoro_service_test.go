package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/repository"
)

func TestPomodoroService_Stats(t *testing.T) {
	svc := NewPomodoroService(repository.NewPomodoroRepository(newTestDB(t)))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, PomodoroInput{Mode: model.PomodoroWork, Duration: 1500, Completed: true})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, PomodoroInput{Mode: model.PomodoroShortBreak, Duration: 300, Completed: true})
	require.NoError(t, err)
	_, err = svc.Record(ctx, PomodoroInput{Mode: model.PomodoroWork, Duration: 700})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, PomodoroStats{
		TotalSessions:        4,
		TotalWorkTime:        75,
		CompletedSessions:    3,
		AverageSessionLength: 25.0,
	}, stats)
}

func TestPomodoroService_StatsEmpty(t *testing.T) {
	svc := NewPomodoroService(repository.NewPomodoroRepository(newTestDB(t)))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PomodoroStats{}, stats)
}

func TestPomodoroService_AverageRounding(t *testing.T) {
	tests := []struct {
		name      string
		durations []int
		total     int
		average   float64
	}{
		{"thirds", []int{1500, 1500, 1200}, 70, 23.3},
		{"tie rounds to even", []int{375, 375, 375, 375}, 25, 6.2},
		{"tie rounds up to even", []int{1125, 1125, 1125, 1125}, 75, 18.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPomodoroService(repository.NewPomodoroRepository(newTestDB(t)))
			ctx := context.Background()

			for _, d := range tt.durations {
				_, err := svc.Record(ctx, PomodoroInput{Mode: model.PomodoroWork, Duration: d, Completed: true})
				require.NoError(t, err)
			}

			stats, err := svc.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.total, stats.TotalWorkTime)
			assert.Equal(t, tt.average, stats.AverageSessionLength)
		})
	}
}

func TestPomodoroService_RecordValidation(t *testing.T) {
	svc := NewPomodoroService(repository.NewPomodoroRepository(newTestDB(t)))
	ctx := context.Background()

	tests := []struct {
		name  string
		input PomodoroInput
	}{
		{"unknown mode", PomodoroInput{Mode: "nap", Duration: 60}},
		{"zero duration", PomodoroInput{Mode: model.PomodoroWork}},
		{"negative duration", PomodoroInput{Mode: model.PomodoroLongBreak, Duration: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tt.input)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestPomodoroService_Recent(t *testing.T) {
	svc := NewPomodoroService(repository.NewPomodoroRepository(newTestDB(t)))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, PomodoroInput{Mode: model.PomodoroWork, Duration: 60})
		require.NoError(t, err)
	}

	all, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}
