package service

import (
	"context"
	"strings"

	ics "github.com/arran4/golang-ical"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/repository"
)

const calendarProductID = "-//scheduler-assistant//events//EN"

// CalendarService renders stored events as an iCalendar feed.
type CalendarService struct {
	events *repository.EventRepository
}

func NewCalendarService(events *repository.EventRepository) *CalendarService {
	return &CalendarService{events: events}
}

func (s *CalendarService) Export(ctx context.Context, filter repository.EventFilter) (string, error) {
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return "", err
	}
	return RenderCalendar(events), nil
}

// RenderCalendar builds a VCALENDAR with one VEVENT per event. Event times are
// wall-clock values, so they are written as-is in UTC form.
func RenderCalendar(events []model.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	for _, ev := range events {
		vev := cal.AddEvent(ev.ID + "@scheduler-assistant")
		vev.SetCreatedTime(ev.CreatedAt)
		vev.SetDtStampTime(ev.UpdatedAt)
		vev.SetModifiedAt(ev.UpdatedAt)
		vev.SetStartAt(ev.StartDate)
		vev.SetEndAt(ev.EndDate)
		vev.SetSummary(ev.Title)
		if desc := describe(ev); desc != "" {
			vev.SetDescription(desc)
		}
		vev.AddProperty(ics.ComponentPropertyCategories, strings.ToUpper(string(ev.Category)))
		vev.AddProperty(ics.ComponentPropertyPriority, icsPriority(ev.Priority))
	}
	return cal.Serialize()
}

func describe(ev model.Event) string {
	var sb strings.Builder
	if ev.Description != nil {
		sb.WriteString(strings.TrimSpace(*ev.Description))
	}
	if ev.HasDailyWindow() {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Daily " + *ev.DailyStartTime + "-" + *ev.DailyEndTime)
	}
	for _, st := range ev.Subtasks {
		mark := "[ ]"
		if st.Completed {
			mark = "[x]"
		}
		sb.WriteString("\n" + mark + " " + st.Title)
	}
	return strings.TrimSpace(sb.String())
}

// icsPriority maps onto RFC 5545 PRIORITY (1 highest, 9 lowest).
func icsPriority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "1"
	case model.PriorityLow:
		return "9"
	default:
		return "5"
	}
}
