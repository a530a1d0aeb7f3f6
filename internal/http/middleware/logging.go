// Package middleware contains the Gin middleware shared by the HTTP layer:
// correlation ids, redacted access logs, panic recovery, Prometheus metrics,
// rate limiting, security headers, admin authentication and the readiness
// gate.
//
// Recommended order:
//
//	RequestID -> Logger -> Recovery -> Metrics -> ... -> handlers
//
// so that panics and errors carry the correlation id.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
	adminKey        = "adminUser"

	maxRequestIDLength = 128
	maxQueryLogLength  = 2048
)

// RequestID reuses a sane incoming X-Request-ID or generates a UUIDv4, then
// stores it in the Gin context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// validRequestID accepts short printable ASCII ids only, so a client cannot
// inject control characters or huge values into logs and headers.
func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// RequestIDFrom returns the correlation id set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	return asString(v)
}

// Logger writes one access log line per request with query parameters and
// headers scrubbed by a Redactor built from opts.
//
// A request-scoped logger carrying the request id is attached both to the Gin
// context (see LoggerFrom) and to the request context, so code below the
// handler can use zerolog.Ctx(ctx).
//
// Level: error for 5xx or recorded Gin errors, warn for 4xx, info otherwise.
func Logger(opts RedactOptions) gin.HandlerFunc {
	red := NewRedactor(opts)
	return func(c *gin.Context) {
		start := time.Now()

		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", routeOf(c)).
			Str("remote_ip", c.ClientIP()).
			Logger()

		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		admin, _ := c.Get(adminKey)
		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", c.Errors.String())
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}

		ev.
			Str("query", truncate(red.Query(c.Request.URL.RawQuery), maxQueryLogLength)).
			Interface("headers", red.Headers(c.Request.Header)).
			Str("user_agent", red.Text(c.Request.UserAgent())).
			Str("admin", asString(admin)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http_request")
	}
}

// Recovery converts panics into a JSON 500 envelope and logs the stack.
// When the handler already wrote a response only the status is forced.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by Logger, or the
// global logger when none is attached. Never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// abortJSON writes the error envelope shared with the handlers package.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":     "error",
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}

// routeOf returns the matched route pattern. Unmatched requests share one
// label so raw URLs never reach logs or metric labels.
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes and appends an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
