package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/scheduling-api/pkg/httputil"
	"github.com/jwalitptl/scheduling-api/pkg/monitoring"
)

// ErrorHandler logs errors attached to the context and reports server
// errors to Sentry. Handlers that did not write a response get a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		status := c.Writer.Status()
		if !c.Writer.Written() {
			status = http.StatusInternalServerError
		}

		for _, e := range c.Errors {
			event := log.Warn()
			if status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Int("status", status).
				Msg("Request error")
		}

		if status >= http.StatusInternalServerError {
			monitoring.CaptureError(sentry.GetHubFromContext(c.Request.Context()), c.Errors.Last().Err, map[string]interface{}{
				"request_id": requestID,
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			})
		}

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, httputil.ErrorBody{Error: "internal server error"})
		}
	}
}
