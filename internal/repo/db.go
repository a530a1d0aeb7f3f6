// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations of the key store.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

// openOptions collects the knobs shared by the key store and record store.
type openOptions struct {
	tracing bool
	logger  gormlogger.Interface
}

// OpenOption customizes OpenSQLite and OpenRecordStore.
type OpenOption func(*openOptions)

// WithTracing installs the GORM OpenTelemetry plugin so queries become spans.
func WithTracing(enabled bool) OpenOption {
	return func(o *openOptions) { o.tracing = enabled }
}

// WithLogger replaces the default zerolog-backed GORM logger.
func WithLogger(l gormlogger.Interface) OpenOption {
	return func(o *openOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []OpenOption) openOptions {
	o := openOptions{logger: NewGormLogger(gormlogger.Warn)}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// OpenSQLite opens (or creates) the key store database. PRAGMAs are passed in
// the DSN so every pooled connection gets them, and the pool is capped at a
// single connection because SQLite serializes writers anyway.
func OpenSQLite(path string, opts ...OpenOption) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}
	o := buildOptions(opts)

	dsn := path + "?" + strings.Join([]string{
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
	}, "&")

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: o.logger})
	if err != nil {
		return nil, err
	}
	if o.tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics(), tracing.WithoutQueryVariables())); err != nil {
			return nil, fmt.Errorf("install gorm tracing: %w", err)
		}
	}

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the key store, usage ledger and admin
// credential tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.APIKey{},
		&domain.UsageLog{},
		&domain.AdminUser{},
	)
}

// Close releases the underlying connection pool; nil-safe.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
