// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, store paths, lookup tuning, key defaults,
// rate limiting, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "phone-api")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Stores
	APIDBPath   string // key store, usage ledger and admin credentials
	PhoneDBPath string // record store, written by the ingestion job

	// Lookup
	LookupCacheSize int  // LRU capacity
	LookupFuzzy     bool // substring match on phone numbers; false = exact

	// Keys
	DefaultMaxUsage  int64 // quota for keys created without one; -1 = unlimited
	DefaultValidDays int   // validity for keys created without one; 0 = never expires

	// Admin
	AdminUsername string
	AdminPassword string

	// Ingestion / background work
	IngestCommand    string        // external job that builds the record store
	IngestDir        string        // working directory for IngestCommand
	InitTimeout      time.Duration // bound on one ingestion run
	RefreshInterval  time.Duration // status gauge refresh period
	RecordStoreWatch bool          // purge the lookup cache when the record store changes

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if it is invalid.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults and
// normalizes values. Malformed values and failed checks are all reported in
// one joined error.
func Load() (Config, error) {
	e := &env{}
	cfg := Config{
		Port:              e.str("PORT", "5000"),
		ReadTimeout:       e.dur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: e.dur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      e.dur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       e.dur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    e.integer("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(e.str("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(e.str("LOG_LEVEL", "info")),
		LogPretty:      e.boolean("LOG_PRETTY", false),
		SwaggerEnabled: e.boolean("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(e.str("API_BASE_PATH", "/api")),

		APIDBPath:   e.str("API_DB_NAME", "api_keys.db"),
		PhoneDBPath: e.str("PHONE_DB_NAME", "phone_data.db"),

		LookupCacheSize: e.integer("LOOKUP_CACHE_SIZE", 1000),
		LookupFuzzy:     e.boolean("LOOKUP_FUZZY", true),

		DefaultMaxUsage:  int64(e.integer("DEFAULT_MAX_USAGE", 1000)),
		DefaultValidDays: e.integer("DEFAULT_VALID_DAYS", 30),

		AdminUsername: e.str("ADMIN_USERNAME", "admin"),
		AdminPassword: e.str("ADMIN_PASSWORD", "admin123"),

		IngestCommand:    e.str("INGEST_COMMAND", "python init_database.py"),
		IngestDir:        e.str("INGEST_DIR", ""),
		InitTimeout:      e.dur("INIT_TIMEOUT", 300*time.Second),
		RefreshInterval:  e.dur("REFRESH_INTERVAL", time.Hour),
		RecordStoreWatch: e.boolean("RECORD_STORE_WATCH", true),

		RateRPS:   e.number("RATE_RPS", 5.0),
		RateBurst: e.integer("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(e.str("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: e.boolean("ENABLE_HSTS", false),
			HSTSMaxAge: e.dur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     e.boolean("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.boolean("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "phone-api"),
			SampleRatio: e.number("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	errs := append(e.errs, cfg.validate()...)
	return cfg, errors.Join(errs...)
}

func (cfg Config) validate() []error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of: debug, info, warn, error, fatal, panic", cfg.LogLevel))
	}
	check(strings.TrimSpace(cfg.Port) != "", "PORT must not be empty")
	check(cfg.ReadTimeout > 0 && cfg.ReadHeaderTimeout > 0 && cfg.WriteTimeout > 0 && cfg.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(cfg.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	check(strings.TrimSpace(cfg.APIDBPath) != "", "API_DB_NAME must not be empty")
	check(strings.TrimSpace(cfg.PhoneDBPath) != "", "PHONE_DB_NAME must not be empty")
	check(cfg.APIDBPath != cfg.PhoneDBPath, "API_DB_NAME and PHONE_DB_NAME must differ")
	check(cfg.LookupCacheSize >= 1, "LOOKUP_CACHE_SIZE must be >= 1")

	check(cfg.DefaultMaxUsage >= -1, "DEFAULT_MAX_USAGE must be -1 or >= 0")
	check(cfg.DefaultValidDays >= 0, "DEFAULT_VALID_DAYS must be >= 0")
	check(strings.TrimSpace(cfg.AdminUsername) != "" && cfg.AdminPassword != "",
		"ADMIN_USERNAME and ADMIN_PASSWORD must not be empty")

	check(cfg.InitTimeout > 0, "INIT_TIMEOUT must be > 0")
	check(cfg.RefreshInterval >= time.Second, "REFRESH_INTERVAL must be >= 1s")

	check(cfg.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(cfg.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(cfg.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(cfg.OTEL.SampleRatio >= 0 && cfg.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	return errs
}

// env reads typed variables. Unset or empty variables yield the default; a
// value that does not parse is recorded and the default is used.
type env struct {
	errs []error
}

func (e *env) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) bad(k, v, want string) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: want %s", k, v, want))
}

func (e *env) str(k, def string) string {
	if v, ok := e.lookup(k); ok {
		return v
	}
	return def
}

func (e *env) integer(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.bad(k, v, "an integer")
		return def
	}
	return n
}

func (e *env) number(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.bad(k, v, "a number")
		return def
	}
	return f
}

func (e *env) boolean(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	e.bad(k, v, "a boolean")
	return def
}

// dur accepts Go duration syntax or a bare number of seconds.
func (e *env) dur(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(n) * time.Second
	}
	e.bad(k, v, "a duration like 30s or a number of seconds")
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing slash;
// empty means root.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
