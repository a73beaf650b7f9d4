package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Sentry gives each request its own hub and transaction. It does nothing
// when Sentry is not initialized.
func Sentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		current := sentry.CurrentHub()
		if current == nil || current.Client() == nil {
			c.Next()
			return
		}

		hub := current.Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetContext("Request", map[string]interface{}{
				"Method":  c.Request.Method,
				"URL":     c.Request.URL.String(),
				"Headers": safeHeaders(c.Request.Header),
			})
			scope.SetTag("http.method", c.Request.Method)
			scope.SetTag("request_id", c.GetString(ContextRequestID))
		})
		ctx := sentry.SetHubOnContext(c.Request.Context(), hub)

		transaction := sentry.StartTransaction(ctx,
			fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()),
			sentry.ContinueFromRequest(c.Request),
		)
		defer func() {
			transaction.Status = sentry.HTTPtoSpanStatus(c.Writer.Status())
			transaction.Finish()
		}()

		c.Request = c.Request.WithContext(transaction.Context())
		c.Next()
	}
}

func safeHeaders(h http.Header) map[string]interface{} {
	safe := make(map[string]interface{}, len(h))
	for k, v := range h {
		switch {
		case strings.EqualFold(k, "Authorization"), strings.EqualFold(k, "Cookie"), strings.EqualFold(k, HeaderAPIKey):
			safe[k] = "[FILTERED]"
		default:
			safe[k] = v
		}
	}
	return safe
}
