// Package httpapi exposes the scheduling services over a JSON HTTP API.
package httpapi

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scheduler-assistant/internal/service"
)

const apiVersion = "1.0.0"

// Services bundles everything the handlers call into. Hub may be nil.
type Services struct {
	Events   *service.EventService
	Sessions *service.SessionService
	Pomodoro *service.PomodoroService
	Import   *service.ImportService
	Calendar *service.CalendarService
	Hub      gin.HandlerFunc
}

type Server struct {
	svc     Services
	origins []string
	log     *zap.Logger
}

func NewServer(svc Services, origins []string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, origins: origins, log: log}
}

// Router builds the gin engine with middleware and every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.cors())
	s.setupHTTPRoutes(r)
	return r
}

func (s *Server) setupHTTPRoutes(r *gin.Engine) {
	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	if s.svc.Hub != nil {
		r.GET("/ws", s.svc.Hub)
	}

	api := r.Group("/api")

	events := api.Group("/events")
	events.GET("", s.handleListEvents)
	events.POST("", s.handleCreateEvent)
	events.GET("/:id", s.handleGetEvent)
	events.PUT("/:id", s.handleUpdateEvent)
	events.DELETE("/:id", s.handleDeleteEvent)
	events.PATCH("/:id/toggle-complete", s.handleToggleComplete)

	events.GET("/:id/sessions", s.handleListSessions)
	events.POST("/:id/sessions", s.handleMarkSession)
	events.GET("/:id/sessions/stats", s.handleSessionStats)
	events.GET("/:id/sessions/pending", s.handlePendingSessions)
	events.PATCH("/:id/sessions/:date", s.handleUpdateSession)

	pomodoro := api.Group("/pomodoro")
	pomodoro.GET("/sessions", s.handleListPomodoro)
	pomodoro.POST("/sessions", s.handleRecordPomodoro)
	pomodoro.GET("/stats", s.handlePomodoroStats)

	api.POST("/import/schedule", s.handleImportSchedule)
	api.GET("/calendar.ics", s.handleCalendar)
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Scheduler Assistant API", "version": apiVersion})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// fail maps service errors onto HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		validation *service.ValidationError
		conflict   *service.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": validation.Msg})
	case errors.As(err, &conflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"detail": conflict.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

// unprocessable reports a body or query that could not be parsed.
func unprocessable(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

func (s *Server) cors() gin.HandlerFunc {
	allowAny := slices.Contains(s.origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAny || slices.Contains(s.origins, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if strings.HasPrefix(c.Request.URL.Path, "/health") {
			return
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.log.Warn("http request", fields...)
			return
		}
		s.log.Info("http request", fields...)
	}
}
