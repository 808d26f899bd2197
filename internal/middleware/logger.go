package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/metrics"
	"github.com/Maximillionair/eksamen-superhelter/internal/pkg/response"
)

const RequestIDHeader = "X-Request-ID"

// RequestID takes the caller's X-Request-ID or generates one, and puts it on
// the request context for logging.Ctx.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = logging.GenerateRequestID()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestLogger writes one structured line per request and records the HTTP
// metrics. Panics are recovered into a 500 envelope.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				logging.Ctx(c.Request.Context()).Error().
					Str("panic", fmt.Sprintf("%v", recovered)).
					Bytes("stack", debug.Stack()).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
			}
			logRequest(c, start)
		}()

		c.Next()
	}
}

func logRequest(c *gin.Context, start time.Time) {
	latency := time.Since(start)
	status := c.Writer.Status()
	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = "unmatched"
	}

	metrics.APIRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
	metrics.APIRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(latency.Seconds())

	log := logging.Ctx(c.Request.Context())
	event := log.Info()
	switch {
	case status >= http.StatusInternalServerError:
		event = log.Error()
	case status >= http.StatusBadRequest:
		event = log.Warn()
	}

	event = event.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Dur("latency", latency).
		Str("client_ip", c.ClientIP())
	if uid := c.GetInt64(ContextUserID); uid > 0 {
		event = event.Int64("user_id", uid)
	}
	if len(c.Errors) > 0 {
		event = event.Str("errors", c.Errors.String())
	}
	event.Msg("request")
}
