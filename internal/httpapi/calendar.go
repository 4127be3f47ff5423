package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleCalendar(c *gin.Context) {
	filter, err := eventFilter(c)
	if err != nil {
		unprocessable(c, err)
		return
	}
	body, err := s.svc.Calendar.Export(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
