// Package handlers implements the HTTP endpoints: the public lookup, the
// status report and the administrative surface. Handlers validate input, call
// services and translate results and sentinel errors into JSON.
//
// Every failure uses ErrorResponse:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "status": "error",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "Phone number not found in database",
//	  "response_time": "0.004s"
//	}
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atharvsharma432199/phone-api/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Always "error".
	Status string `json:"status" example:"error"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Human-readable message, safe to show to users
	Message string `json:"message" example:"Phone number not found in database"`
	// Set on lookups that reached the record store.
	ResponseTime string `json:"response_time,omitempty" example:"0.004s"`
}

// fail aborts with an ErrorResponse; 5xx are logged with the request logger.
func fail(c *gin.Context, status int, code, msg string) {
	writeError(c, status, ErrorResponse{Code: code, Message: msg})
}

func writeError(c *gin.Context, status int, resp ErrorResponse) {
	resp.Status = "error"
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// formatSeconds renders d like "0.012s".
func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}
