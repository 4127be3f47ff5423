package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/repository"
	"scheduler-assistant/internal/schedule"
)

// PendingEvent pairs a daily-window event with the sessions still waiting to be marked.
type PendingEvent struct {
	Event model.Event           `json:"event"`
	Dates []string              `json:"dates"`
	Stats schedule.SessionStats `json:"stats"`
}

// DigestService builds human-readable summaries of what needs attention.
type DigestService struct {
	events   *repository.EventRepository
	sessions *repository.SessionRepository
}

func NewDigestService(events *repository.EventRepository, sessions *repository.SessionRepository) *DigestService {
	return &DigestService{events: events, sessions: sessions}
}

// PendingOverview returns every active daily-window event that has at least one
// unmarked session whose window already closed.
func (s *DigestService) PendingOverview(ctx context.Context, now time.Time) ([]PendingEvent, error) {
	events, err := s.events.ListWithDailyWindow(ctx, now)
	if err != nil {
		return nil, err
	}

	var overview []PendingEvent
	for _, ev := range events {
		records, err := s.sessions.ListByEvent(ctx, ev.ID)
		if err != nil {
			return nil, err
		}
		dates := schedule.PendingSessionDates(ev, records, now)
		if len(dates) == 0 {
			continue
		}
		overview = append(overview, PendingEvent{
			Event: ev,
			Dates: dates,
			Stats: schedule.ComputeStats(ev, records),
		})
	}
	return overview, nil
}

// DailySummary renders today's agenda and unmarked sessions as Telegram HTML.
func (s *DigestService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	today, err := s.events.ListOnDay(ctx, now)
	if err != nil {
		return "", err
	}
	pending, err := s.PendingOverview(ctx, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", model.Naive(now).Format("Mon, 02 Jan 2006")))

	builder.WriteString("🔥 <b>Today</b>\n")
	if len(today) == 0 {
		builder.WriteString("— nothing scheduled\n")
	} else {
		for _, ev := range today {
			builder.WriteString(formatAgendaItem(ev, now))
		}
	}

	builder.WriteString("\n⏳ <b>Sessions to mark</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— all caught up\n")
	} else {
		for _, p := range pending {
			builder.WriteString(formatPending(p))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatAgendaItem(ev model.Event, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case ev.IsCompleted:
		icon = "✅"
	case ev.EndDate.Before(model.Naive(now)):
		icon = "⚠️"
	case ev.TimingMode == model.TimingAnytime:
		icon = "🕊"
	}

	title := html.EscapeString(strings.TrimSpace(ev.Title))
	sb.WriteString(fmt.Sprintf("%s %s <i>(%s)</i>", icon, title, html.EscapeString(string(ev.Category))))

	switch {
	case ev.HasDailyWindow():
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s–%s daily", *ev.DailyStartTime, *ev.DailyEndTime))
	case ev.TimingMode == model.TimingDeadline:
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", ev.EndDate.Format("2006-01-02 15:04")))
	case ev.TimingMode != model.TimingAnytime:
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s–%s", ev.StartDate.Format("15:04"), ev.EndDate.Format("15:04")))
	}

	if done, total := subtaskProgress(ev); total > 0 {
		sb.WriteString(fmt.Sprintf("\n   📝 %d/%d subtasks", done, total))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func formatPending(p PendingEvent) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("♻️ %s", html.EscapeString(strings.TrimSpace(p.Event.Title))))
	sb.WriteString(fmt.Sprintf("\n   📆 %s", strings.Join(p.Dates, ", ")))
	sb.WriteString(fmt.Sprintf("\n   📈 %.1f%% attended", p.Stats.AttendanceRate))
	if p.Stats.CurrentStreak > 0 {
		sb.WriteString(fmt.Sprintf(" · streak %d", p.Stats.CurrentStreak))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func subtaskProgress(ev model.Event) (done, total int) {
	for _, st := range ev.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done, len(ev.Subtasks)
}
