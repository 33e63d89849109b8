package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const RequestIDHeader = "X-Request-Id"

// GinMiddleware tags every request with a request id, attaches a request-scoped
// logger (with the trace id when a span is active) to the request context and
// writes one access log line per request.
func GinMiddleware(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		logCtx := base.With().Str("request_id", requestID)
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			logCtx = logCtx.Str("trace_id", sc.TraceID().String())
		}
		reqLogger := logCtx.Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()
		event := reqLogger.Info()
		switch {
		case status >= 500:
			event = reqLogger.Error()
		case status >= 400:
			event = reqLogger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
