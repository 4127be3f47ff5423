package schedule

import (
	"iter"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"scheduler-assistant/internal/model"
)

// SessionStats summarises attendance for one daily-window event.
type SessionStats struct {
	TotalSessions  int     `json:"total_sessions"`
	Attended       int     `json:"attended"`
	Missed         int     `json:"missed"`
	Skipped        int     `json:"skipped"`
	Pending        int     `json:"pending"`
	AttendanceRate float64 `json:"attendance_rate"`
	CurrentStreak  int     `json:"current_streak"`
}

const secondsPerDay = 24 * 60 * 60

// TotalSessions is the inclusive number of days the event spans, or 0 when it
// has no daily window.
func TotalSessions(ev model.Event) int {
	if !ev.HasDailyWindow() {
		return 0
	}
	start := dateOf(ev.StartDate)
	end := dateOf(ev.EndDate)
	if end.Before(start) {
		return 0
	}
	return int((end.Unix()-start.Unix())/secondsPerDay) + 1
}

// ComputeStats derives attendance counts, rate and streak from the given records.
func ComputeStats(ev model.Event, records []model.SessionAttendance) SessionStats {
	stats := SessionStats{TotalSessions: TotalSessions(ev)}
	for _, r := range records {
		switch r.Status {
		case model.SessionAttended:
			stats.Attended++
		case model.SessionMissed:
			stats.Missed++
		case model.SessionSkipped:
			stats.Skipped++
		}
	}
	stats.Pending = max(0, stats.TotalSessions-stats.Attended-stats.Missed-stats.Skipped)
	stats.AttendanceRate = attendanceRate(stats.Attended, stats.Missed)
	stats.CurrentStreak = CurrentStreak(records)
	return stats
}

// attendanceRate ignores skipped and pending sessions.
func attendanceRate(attended, missed int) float64 {
	marked := attended + missed
	if marked == 0 {
		return 0
	}
	rate, _ := decimal.NewFromInt(int64(attended)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(marked))).
		RoundBank(1).
		Float64()
	return rate
}

// CurrentStreak counts consecutive attended records starting from the most recent date.
func CurrentStreak(records []model.SessionAttendance) int {
	sorted := make([]model.SessionAttendance, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SessionDate > sorted[j].SessionDate
	})

	streak := 0
	for _, r := range sorted {
		if r.Status != model.SessionAttended {
			break
		}
		streak++
	}
	return streak
}

// PendingSessions yields, earliest first, the unmarked session dates whose daily
// window has already closed as of now. Dates after today are never produced.
func PendingSessions(ev model.Event, records []model.SessionAttendance, now time.Time) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !ev.HasDailyWindow() {
			return
		}
		endClock, err := ParseClock(*ev.DailyEndTime)
		if err != nil {
			return
		}

		marked := make(map[string]struct{}, len(records))
		for _, r := range records {
			marked[r.SessionDate] = struct{}{}
		}

		now = model.Naive(now)
		today := dateOf(now)
		todayClosed := !Clock{Hour: now.Hour(), Minute: now.Minute()}.Before(endClock)

		last := dateOf(ev.EndDate)
		if today.Before(last) {
			last = today
		}
		for d := dateOf(ev.StartDate); !d.After(last); d = d.AddDate(0, 0, 1) {
			key := d.Format(model.DateLayout)
			if _, ok := marked[key]; ok {
				continue
			}
			if d.Equal(today) && !todayClosed {
				continue
			}
			if !yield(key) {
				return
			}
		}
	}
}

// PendingSessionDates collects PendingSessions into ISO date strings.
func PendingSessionDates(ev model.Event, records []model.SessionAttendance, now time.Time) []string {
	dates := []string{}
	for d := range PendingSessions(ev, records, now) {
		dates = append(dates, d)
	}
	return dates
}

// dateOf truncates t to midnight of its wall-clock date.
func dateOf(t time.Time) time.Time {
	n := model.Naive(t)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
