// Package httpapi wires the Gin transport to the lookup, status and admin
// handlers together with the shared middleware stack. RegisterRoutes is the
// only entry point; every service it binds arrives through Deps, so tests
// build the same router over temp stores.
//
// Global middleware, in order:
//  1. OpenTelemetry spans (otelgin), so everything below is traced
//  2. RequestID, before any log line or error envelope needs it
//  3. Redacting access logger: apikey, password and Authorization values are
//     masked before they reach the log
//  4. Recovery, turning panics into the JSON error envelope
//  5. Body size limit
//  6. Prometheus metrics, served at /metrics
//  7. CORS and security headers
//  8. gzip, skipping /metrics
//
// Route-level:
//   - the readiness gate on every route that touches the key store, so
//     nothing queries a schema that startup has not migrated yet
//   - per-client-IP rate limiting on lookup and admin routes
//   - HTTP Basic admin auth on the key management group
//
// A rate-limited lookup still writes its usage log row. One refused by the
// readiness gate does not, since the usage table may not exist yet.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/atharvsharma432199/phone-api/internal/config"
	"github.com/atharvsharma432199/phone-api/internal/http/handlers"
	"github.com/atharvsharma432199/phone-api/internal/http/middleware"
)

const maxBodyBytes = 64 << 10

// Deps are the services the routes are bound to. Ready gates the lookup,
// status and admin routes until startup initialization has finished; nil
// means ready.
type Deps struct {
	Lookup handlers.Lookuper
	Keys   handlers.KeyManager
	Status handlers.StatusReporter
	Init   handlers.Reinitializer
	Admins handlers.CredentialValidator
	Ready  <-chan struct{}
}

// RegisterRoutes installs middleware and endpoints on r.
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(serviceName(cfg)))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	// Swagger UI needs scripts and styles, so the locked-down CSP is only
	// sent when it is not mounted.
	csp := middleware.APIContentSecurityPolicy
	if cfg.SwaggerEnabled {
		csp = ""
	}
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:            cfg.Security.EnableHSTS,
		HSTSMaxAge:            cfg.Security.HSTSMaxAge,
		NoStore:               true,
		EnablePolicy:          true,
		ContentSecurityPolicy: csp,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", handlers.Health)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Deps{
		Lookup:      d.Lookup,
		Keys:        d.Keys,
		Status:      d.Status,
		Init:        d.Init,
		Admins:      d.Admins,
		InitTimeout: cfg.InitTimeout,
	})

	ready := middleware.RequireReady(d.Ready)
	limiter := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	limit := limiter.Handler()

	r.GET("/", ready, limiter.Handler(h.LookupRejected), h.Lookup)

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.GET("/status", ready, h.Status)

	// Credentials travel in the query string here; kept for existing
	// operators, the key routes below use Basic auth instead.
	api.GET("/admin/initdb", ready, limit, h.InitDB)

	admin := api.Group("/admin", ready, limit, middleware.AdminBasicAuth(d.Admins, ""))
	{
		admin.GET("/stats", h.Stats)
		admin.POST("/keys", h.CreateKey)
		admin.GET("/keys", h.ListKeys)
		admin.GET("/keys/:key", h.GetKey)
		admin.DELETE("/keys/:key", h.DeleteKey)
		admin.POST("/keys/:key/activate", h.ActivateKey)
		admin.POST("/keys/:key/deactivate", h.DeactivateKey)
		admin.GET("/keys/:key/usage", h.KeyUsage)
	}
}

func serviceName(cfg config.Config) string {
	if cfg.OTEL.ServiceName != "" {
		return cfg.OTEL.ServiceName
	}
	return "phone-api"
}

// corsMiddleware allows any origin when no allowlist is configured, matching
// the public lookup API. Credentials are never allowed cross-origin.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO on every response, including requests without Origin.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	base.AllowOrigins = origins
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody caps request bodies at maxBytes; reads beyond fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
