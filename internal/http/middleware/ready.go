package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireReady answers 503 with Retry-After until ready is closed. A nil
// channel means always ready.
func RequireReady(ready <-chan struct{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			select {
			case <-ready:
			default:
				c.Header("Retry-After", "5")
				abortJSON(c, http.StatusServiceUnavailable, "not_ready", "service is initializing")
				return
			}
		}
		c.Next()
	}
}
