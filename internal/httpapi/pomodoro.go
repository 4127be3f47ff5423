package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/service"
)

type pomodoroRequest struct {
	Mode      model.PomodoroMode `json:"mode" binding:"required,oneof=work shortBreak longBreak"`
	Duration  int                `json:"duration" binding:"required,gt=0"`
	Completed bool               `json:"completed"`
}

func (s *Server) handleListPomodoro(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil || limit < 0 {
		unprocessable(c, fmt.Errorf("limit must be a positive integer"))
		return
	}
	sessions, err := s.svc.Pomodoro.Recent(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleRecordPomodoro(c *gin.Context) {
	var req pomodoroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err)
		return
	}
	session, err := s.svc.Pomodoro.Record(c.Request.Context(), service.PomodoroInput{
		Mode:      req.Mode,
		Duration:  req.Duration,
		Completed: req.Completed,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) handlePomodoroStats(c *gin.Context) {
	stats, err := s.svc.Pomodoro.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
