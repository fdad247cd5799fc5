package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
	"github.com/justsurfingit/hiring-pipeline/internal/services"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{Status: "success", Message: message, Data: data})
}

// fail maps the pipeline error taxonomy onto HTTP status codes.
func fail(c *gin.Context, err error) {
	code, message := http.StatusInternalServerError, "Server Error"
	var details any

	var verr *pipeline.ValidationError
	switch {
	case errors.As(err, &verr):
		code, message, details = http.StatusBadRequest, "ValidationError", verr.Fields
	case errors.Is(err, pipeline.ErrNotFound):
		code, message = http.StatusNotFound, "NotFound"
	case errors.Is(err, pipeline.ErrInvalidStage):
		code, message = http.StatusBadRequest, "InvalidStage"
	case errors.Is(err, pipeline.ErrNoChange):
		code, message = http.StatusBadRequest, "NoChange"
	case errors.Is(err, pipeline.ErrConflict):
		code, message = http.StatusConflict, "Conflict"
	case errors.Is(err, services.ErrLLMDisabled):
		code, message = http.StatusServiceUnavailable, "LLMDisabled"
	case errors.Is(err, pipeline.ErrPersistence):
		code, message = http.StatusInternalServerError, "PersistenceFailure"
	}
	if details == nil {
		details = []string{err.Error()}
	}
	if code >= http.StatusInternalServerError {
		log.Printf("[%s %s] ❌ %v", c.Request.Method, c.FullPath(), err)
		details = nil
	}
	c.JSON(code, Envelope{Status: "error", Message: message, Errors: details})
}

// badRequest reports a body or query that could not be bound.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Envelope{
		Status:  "error",
		Message: "ValidationError",
		Errors:  []string{"Invalid request: " + err.Error()},
	})
}

// pathID parses the :id route parameter; an unparsable id cannot exist.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, pipeline.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// actor identifies who made a change; there is no authentication yet.
func actor(c *gin.Context) string {
	return c.GetHeader("X-Actor")
}

func HealthCheck(c *gin.Context) {
	success(c, http.StatusOK, "API is healthy", nil)
}
