// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which hardens every response of the
// JSON API. Lookup responses carry personal data and admin responses carry
// API keys, so the router turns on NoStore for all of them.
//
// Headers:
//   - always: X-Content-Type-Options, X-Frame-Options, Referrer-Policy
//   - EnablePolicy: Permissions-Policy and X-Permitted-Cross-Domain-Policies
//   - ContentSecurityPolicy: sent as given; the router leaves it empty while
//     Swagger UI is mounted, since the UI loads scripts and styles
//   - NoStore: Cache-Control no-store with the legacy Pragma and Expires
//   - EnableHSTS: Strict-Transport-Security, only on HTTPS requests
//
// When a request id has been set, it is also added to
// Access-Control-Expose-Headers so browser clients can read it.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
//
// HSTS is only ever sent on HTTPS requests (direct TLS or
// X-Forwarded-Proto: https); HSTSMaxAge defaults to 180 days. NoStore marks
// responses uncacheable, which the lookup and admin routes need since their
// bodies carry personal data or credentials. ContentSecurityPolicy is sent
// verbatim when set; leave it empty on routers that also serve Swagger UI.
type SecurityOptions struct {
	EnableHSTS            bool
	HSTSMaxAge            time.Duration
	NoStore               bool
	EnablePolicy          bool
	ContentSecurityPolicy string
}

// APIContentSecurityPolicy forbids every resource type; suitable for
// JSON-only groups.
const APIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders adds hardening headers to every response and exposes
// X-Request-ID to browser clients.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int64(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int64((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.FormatInt(maxAge, 10) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.ContentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", opt.ContentSecurityPolicy)
		}
		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if h.Get(requestIDHeader) != "" {
			const expose = "Access-Control-Expose-Headers"
			switch cur := h.Get(expose); {
			case cur == "":
				h.Set(expose, requestIDHeader)
			case !strings.Contains(strings.ToLower(cur), strings.ToLower(requestIDHeader)):
				h.Set(expose, cur+", "+requestIDHeader)
			}
		}

		c.Next()
	}
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
