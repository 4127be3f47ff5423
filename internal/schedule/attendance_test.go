package schedule

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheduler-assistant/internal/model"
)

func dailyEvent(start, end string, window ...string) model.Event {
	s, err := time.Parse(model.DateLayout, start)
	if err != nil {
		panic(err)
	}
	e, err := time.Parse(model.DateLayout, end)
	if err != nil {
		panic(err)
	}
	ev := model.Event{ID: "ev", StartDate: s.Add(9 * time.Hour), EndDate: e.Add(10 * time.Hour)}
	if len(window) == 2 {
		ev.DailyStartTime = &window[0]
		ev.DailyEndTime = &window[1]
	}
	return ev
}

func record(date string, status model.SessionStatus) model.SessionAttendance {
	return model.SessionAttendance{EventID: "ev", SessionDate: date, Status: status}
}

func TestTotalSessions(t *testing.T) {
	assert.Equal(t, 1, TotalSessions(dailyEvent("2024-01-01", "2024-01-01", "09:00", "10:00")))
	assert.Equal(t, 5, TotalSessions(dailyEvent("2024-01-01", "2024-01-05", "09:00", "10:00")))
	assert.Equal(t, 0, TotalSessions(dailyEvent("2024-01-01", "2024-01-05")))
	assert.Equal(t, 60, TotalSessions(dailyEvent("2024-02-01", "2024-03-31", "09:00", "10:00")), "leap year February")
}

func TestTotalSessions_CenturiesLong(t *testing.T) {
	// 400 Gregorian years are exactly 146097 days.
	assert.Equal(t, 146098, TotalSessions(dailyEvent("1700-01-01", "2100-01-01", "09:00", "10:00")))
}

func TestTotalSessions_HalfConfiguredWindow(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-05")
	start := "09:00"
	ev.DailyStartTime = &start

	assert.Equal(t, 0, TotalSessions(ev))
}

func TestComputeStats_NoRecords(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-05", "09:00", "10:00")

	stats := ComputeStats(ev, nil)
	assert.Equal(t, SessionStats{TotalSessions: 5, Pending: 5}, stats)
}

func TestComputeStats_Counts(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-06", "09:00", "10:00")
	records := []model.SessionAttendance{
		record("2024-01-01", model.SessionAttended),
		record("2024-01-02", model.SessionMissed),
		record("2024-01-03", model.SessionAttended),
		record("2024-01-04", model.SessionAttended),
		record("2024-01-05", model.SessionSkipped),
	}

	stats := ComputeStats(ev, records)
	assert.Equal(t, 6, stats.TotalSessions)
	assert.Equal(t, 3, stats.Attended)
	assert.Equal(t, 1, stats.Missed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 75.0, stats.AttendanceRate)
	assert.Equal(t, 0, stats.CurrentStreak, "most recent record is skipped")
}

func TestComputeStats_RateRounding(t *testing.T) {
	tests := []struct {
		attended, missed int
		want             float64
	}{
		{1, 2, 33.3},
		{2, 1, 66.7},
		{1, 15, 6.2},
		{3, 13, 18.8},
		{5, 11, 31.2},
	}
	for _, tt := range tests {
		ev := dailyEvent("2024-01-01", "2024-01-31", "09:00", "10:00")
		day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		var records []model.SessionAttendance
		for i := 0; i < tt.attended+tt.missed; i++ {
			status := model.SessionMissed
			if i < tt.attended {
				status = model.SessionAttended
			}
			records = append(records, record(day.AddDate(0, 0, i).Format(model.DateLayout), status))
		}

		assert.Equal(t, tt.want, ComputeStats(ev, records).AttendanceRate, "%d attended, %d missed", tt.attended, tt.missed)
	}
}

func TestComputeStats_PendingNeverNegative(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-01", "09:00", "10:00")
	records := []model.SessionAttendance{
		record("2023-12-30", model.SessionAttended),
		record("2023-12-31", model.SessionAttended),
		record("2024-01-01", model.SessionAttended),
	}

	stats := ComputeStats(ev, records)
	assert.Equal(t, 0, stats.Pending)
	assert.Equal(t, 100.0, stats.AttendanceRate)
}

func TestComputeStats_NoDailyWindow(t *testing.T) {
	stats := ComputeStats(dailyEvent("2024-01-01", "2024-01-05"), nil)
	assert.Equal(t, SessionStats{}, stats)
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []model.SessionAttendance
		want    int
	}{
		{"empty", nil, 0},
		{"two most recent attended", []model.SessionAttendance{
			record("2024-01-01", model.SessionMissed),
			record("2024-01-03", model.SessionAttended),
			record("2024-01-02", model.SessionAttended),
		}, 2},
		{"most recent missed", []model.SessionAttendance{
			record("2024-01-01", model.SessionAttended),
			record("2024-01-02", model.SessionMissed),
		}, 0},
		{"pending breaks streak", []model.SessionAttendance{
			record("2024-01-01", model.SessionAttended),
			record("2024-01-02", model.SessionPending),
			record("2024-01-03", model.SessionAttended),
		}, 1},
		{"all attended", []model.SessionAttendance{
			record("2024-01-01", model.SessionAttended),
			record("2024-01-02", model.SessionAttended),
			record("2024-01-03", model.SessionAttended),
		}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.records))
		})
	}
}

func TestCurrentStreak_DoesNotReorderInput(t *testing.T) {
	records := []model.SessionAttendance{
		record("2024-01-01", model.SessionAttended),
		record("2024-01-02", model.SessionAttended),
	}
	CurrentStreak(records)
	assert.Equal(t, "2024-01-01", records[0].SessionDate)
}

func TestPendingSessionDates_TodayWindow(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-03", "16:00", "17:00")

	before := time.Date(2024, 1, 3, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, PendingSessionDates(ev, nil, before))

	atEnd := time.Date(2024, 1, 3, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, PendingSessionDates(ev, nil, atEnd))

	minuteBefore := time.Date(2024, 1, 3, 16, 59, 0, 0, time.UTC)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, PendingSessionDates(ev, nil, minuteBefore))
}

func TestPendingSessionDates_SkipsMarkedAndFutureDates(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-10", "09:00", "10:00")
	records := []model.SessionAttendance{
		record("2024-01-02", model.SessionAttended),
		record("2024-01-03", model.SessionPending),
	}
	now := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"2024-01-01", "2024-01-04"}, PendingSessionDates(ev, records, now))
}

func TestPendingSessionDates_EventOver(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-02", "09:00", "10:00")
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, PendingSessionDates(ev, nil, now))
}

func TestPendingSessionDates_NotStarted(t *testing.T) {
	ev := dailyEvent("2024-01-10", "2024-01-12", "09:00", "10:00")
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, PendingSessionDates(ev, nil, now))
}

func TestPendingSessionDates_NoDailyWindow(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-03")
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	dates := PendingSessionDates(ev, nil, now)
	require.NotNil(t, dates)
	assert.Empty(t, dates)
}

func TestPendingSessions_StopsEarly(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-31", "09:00", "10:00")
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	var first []string
	for d := range PendingSessions(ev, nil, now) {
		first = append(first, d)
		if len(first) == 3 {
			break
		}
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, first)

	// restartable: a second pass starts over
	assert.Len(t, slices.Collect(PendingSessions(ev, nil, now)), 31)
}

func TestStats_SkippingPendingDateKeepsRate(t *testing.T) {
	ev := dailyEvent("2024-01-01", "2024-01-05", "09:00", "10:00")
	records := []model.SessionAttendance{
		record("2024-01-01", model.SessionAttended),
		record("2024-01-02", model.SessionMissed),
	}
	before := ComputeStats(ev, records)

	after := ComputeStats(ev, append(records, record("2024-01-03", model.SessionSkipped)))

	assert.Equal(t, before.Pending-1, after.Pending)
	assert.Equal(t, before.AttendanceRate, after.AttendanceRate)
	assert.Equal(t, 50.0, after.AttendanceRate)
}
