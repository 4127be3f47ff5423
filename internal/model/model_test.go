package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	want := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	tests := []string{
		`"2024-05-02T10:00:00Z"`,
		`"2024-05-02T10:00:00"`,
		`"2024-05-02T10:00"`,
		`"2024-05-02 10:00:00"`,
		`"2024-05-02T10:00:00.000"`,
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(raw), &ts))
			assert.True(t, ts.Time().Equal(want))
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.Time().IsZero())
}

func TestTimestamp_OffsetKeepsWallClockAfterNaive(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-02T10:00:00+03:00"`), &ts))

	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), Naive(ts.Time()))
}

func TestEvent_Normalize(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	ev := Event{
		Title:     "Plan",
		StartDate: time.Date(2024, 5, 2, 9, 0, 0, 0, loc),
		EndDate:   time.Date(2024, 5, 2, 10, 0, 0, 0, loc),
		Subtasks:  []Subtask{{Title: "a"}, {ID: "fixed", Title: "b"}},
	}
	ev.Normalize()

	assert.Equal(t, CategoryWork, ev.Category)
	assert.Equal(t, PriorityMedium, ev.Priority)
	assert.Equal(t, TimingSpecific, ev.TimingMode)
	assert.Equal(t, ResolutionPending, ev.Resolution)
	assert.NotEmpty(t, ev.Subtasks[0].ID)
	assert.Equal(t, "fixed", ev.Subtasks[1].ID)
	assert.Equal(t, time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), ev.StartDate)
	assert.Equal(t, time.UTC, ev.EndDate.Location())
}

func TestEvent_HasDailyWindow(t *testing.T) {
	start, end, empty := "09:00", "10:00", ""
	assert.True(t, (&Event{DailyStartTime: &start, DailyEndTime: &end}).HasDailyWindow())
	assert.False(t, (&Event{DailyStartTime: &start}).HasDailyWindow())
	assert.False(t, (&Event{DailyStartTime: &start, DailyEndTime: &empty}).HasDailyWindow())
}

func TestEnums(t *testing.T) {
	assert.True(t, CategorySocial.Valid())
	assert.False(t, Category("chores").Valid())
	assert.True(t, PriorityLow.Valid())
	assert.False(t, Priority("").Valid())
	assert.True(t, TimingDeadline.Valid())
	assert.True(t, ResolutionRescheduled.Valid())
	assert.True(t, SessionSkipped.Valid())
	assert.False(t, SessionStatus("late").Valid())
	assert.True(t, PomodoroLongBreak.Valid())
	assert.False(t, PomodoroMode("nap").Valid())
}
