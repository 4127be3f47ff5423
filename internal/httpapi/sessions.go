package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/service"
)

type markSessionRequest struct {
	SessionDate string              `json:"session_date" binding:"required"`
	Status      model.SessionStatus `json:"status" binding:"required,oneof=pending attended missed skipped"`
	Notes       *string             `json:"notes"`
}

type updateSessionRequest struct {
	Status model.SessionStatus `json:"status" binding:"required,oneof=pending attended missed skipped"`
	Notes  *string             `json:"notes"`
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.svc.Sessions.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleMarkSession(c *gin.Context) {
	var req markSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err)
		return
	}
	session, err := s.svc.Sessions.Mark(c.Request.Context(), c.Param("id"), service.SessionInput{
		SessionDate: req.SessionDate,
		Status:      req.Status,
		Notes:       req.Notes,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) handleUpdateSession(c *gin.Context) {
	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err)
		return
	}
	session, err := s.svc.Sessions.Update(c.Request.Context(), c.Param("id"), c.Param("date"), req.Status, req.Notes)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleSessionStats(c *gin.Context) {
	stats, err := s.svc.Sessions.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handlePendingSessions(c *gin.Context) {
	dates, err := s.svc.Sessions.Pending(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dates)
}
