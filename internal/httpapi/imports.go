package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"scheduler-assistant/internal/service"
)

// handleImportSchedule accepts {"schedule": [...]} as JSON, or the same document
// as YAML when the request is sent with a YAML content type.
func (s *Server) handleImportSchedule(c *gin.Context) {
	var req service.ImportRequest
	if strings.Contains(c.ContentType(), "yaml") {
		items, err := service.DecodeSchedule(c.Request.Body, "yaml")
		if err != nil {
			unprocessable(c, err)
			return
		}
		req.Schedule = items
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			unprocessable(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		unprocessable(c, err)
		return
	}

	result, err := s.svc.Import.Import(c.Request.Context(), req.Schedule)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
