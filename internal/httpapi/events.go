package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/repository"
	"scheduler-assistant/internal/service"
)

const maxPageSize = 1000

type createEventRequest struct {
	Title          string           `json:"title" binding:"required,min=1,max=255"`
	Description    *string          `json:"description" binding:"omitempty,max=1000"`
	StartDate      model.Timestamp  `json:"start_date"`
	EndDate        model.Timestamp  `json:"end_date"`
	Category       model.Category   `json:"category" binding:"omitempty,oneof=work personal health learning finance social"`
	Priority       model.Priority   `json:"priority" binding:"omitempty,oneof=high medium low"`
	IsRecurring    bool             `json:"is_recurring"`
	Subtasks       []model.Subtask  `json:"subtasks"`
	TimingMode     model.TimingMode `json:"timing_mode" binding:"omitempty,oneof=specific anytime deadline"`
	DailyStartTime *string          `json:"daily_start_time"`
	DailyEndTime   *string          `json:"daily_end_time"`
}

type updateEventRequest struct {
	Title          *string           `json:"title" binding:"omitempty,min=1,max=255"`
	Description    *string           `json:"description" binding:"omitempty,max=1000"`
	StartDate      *model.Timestamp  `json:"start_date"`
	EndDate        *model.Timestamp  `json:"end_date"`
	Category       *model.Category   `json:"category" binding:"omitempty,oneof=work personal health learning finance social"`
	Priority       *model.Priority   `json:"priority" binding:"omitempty,oneof=high medium low"`
	IsRecurring    *bool             `json:"is_recurring"`
	IsCompleted    *bool             `json:"is_completed"`
	Subtasks       *[]model.Subtask  `json:"subtasks"`
	TimingMode     *model.TimingMode `json:"timing_mode" binding:"omitempty,oneof=specific anytime deadline"`
	Resolution     *model.Resolution `json:"resolution" binding:"omitempty,oneof=pending completed missed rescheduled"`
	DailyStartTime *string           `json:"daily_start_time"`
	DailyEndTime   *string           `json:"daily_end_time"`
}

func (r createEventRequest) input() (service.EventInput, error) {
	if r.StartDate.Time().IsZero() {
		return service.EventInput{}, errors.New("start_date is required")
	}
	if r.EndDate.Time().IsZero() {
		return service.EventInput{}, errors.New("end_date is required")
	}
	return service.EventInput{
		Title:          r.Title,
		Description:    r.Description,
		StartDate:      r.StartDate.Time(),
		EndDate:        r.EndDate.Time(),
		Category:       r.Category,
		Priority:       r.Priority,
		IsRecurring:    r.IsRecurring,
		Subtasks:       r.Subtasks,
		TimingMode:     r.TimingMode,
		DailyStartTime: r.DailyStartTime,
		DailyEndTime:   r.DailyEndTime,
	}, nil
}

func (r updateEventRequest) update() service.EventUpdate {
	upd := service.EventUpdate{
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		Priority:       r.Priority,
		IsRecurring:    r.IsRecurring,
		IsCompleted:    r.IsCompleted,
		Subtasks:       r.Subtasks,
		TimingMode:     r.TimingMode,
		Resolution:     r.Resolution,
		DailyStartTime: r.DailyStartTime,
		DailyEndTime:   r.DailyEndTime,
	}
	if r.StartDate != nil {
		t := r.StartDate.Time()
		upd.StartDate = &t
	}
	if r.EndDate != nil {
		t := r.EndDate.Time()
		upd.EndDate = &t
	}
	return upd
}

func (s *Server) handleListEvents(c *gin.Context) {
	filter, err := eventFilter(c)
	if err != nil {
		unprocessable(c, err)
		return
	}
	events, err := s.svc.Events.List(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) handleCreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err)
		return
	}
	input, err := req.input()
	if err != nil {
		unprocessable(c, err)
		return
	}
	ev, err := s.svc.Events.Create(c.Request.Context(), input)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (s *Server) handleGetEvent(c *gin.Context) {
	ev, err := s.svc.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) handleUpdateEvent(c *gin.Context) {
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err)
		return
	}
	ev, err := s.svc.Events.Update(c.Request.Context(), c.Param("id"), req.update())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) handleDeleteEvent(c *gin.Context) {
	if err := s.svc.Events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleToggleComplete(c *gin.Context) {
	ev, err := s.svc.Events.ToggleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// eventFilter reads start_date, end_date, category, completed, skip and limit.
func eventFilter(c *gin.Context) (repository.EventFilter, error) {
	var filter repository.EventFilter

	if raw := c.Query("start_date"); raw != "" {
		t, err := model.ParseTimestamp(raw)
		if err != nil {
			return filter, fmt.Errorf("start_date: %w", err)
		}
		filter.StartFrom = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := model.ParseTimestamp(raw)
		if err != nil {
			return filter, fmt.Errorf("end_date: %w", err)
		}
		filter.EndUntil = &t
	}
	filter.Category = model.Category(c.Query("category"))
	if raw := c.Query("completed"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("completed must be a boolean")
		}
		filter.Completed = &done
	}

	skip, err := intQuery(c, "skip", 0)
	if err != nil || skip < 0 {
		return filter, fmt.Errorf("skip must be a non-negative integer")
	}
	limit, err := intQuery(c, "limit", 100)
	if err != nil || limit < 1 || limit > maxPageSize {
		return filter, fmt.Errorf("limit must be between 1 and %d", maxPageSize)
	}
	filter.Skip, filter.Limit = skip, limit
	return filter, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
