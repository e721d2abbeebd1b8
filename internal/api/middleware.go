package api

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

// requestLogger logs one line per request at a level matching the status.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
}

// abortWithError maps err to a status code and writes the error body.
func abortWithError(c *gin.Context, err error) {
	message, action := astroerrors.Actionable(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), errorResponse{Error: message, Action: action})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, astroerrors.ErrEmptyValue),
		stderrors.Is(err, astroerrors.ErrInvalidPlatform),
		stderrors.Is(err, astroerrors.ErrUnknownScenario):
		return http.StatusBadRequest
	case stderrors.Is(err, astroerrors.ErrRecordNotFound),
		stderrors.Is(err, astroerrors.ErrTaskNotFound),
		stderrors.Is(err, astroerrors.ErrAgentNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, astroerrors.ErrPublishFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
