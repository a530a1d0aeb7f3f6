package repo

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

func quiet() OpenOption { return WithLogger(NewGormLogger(gormlogger.Silent)) }

// newTestDB opens a migrated key store in a temp dir.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "api_keys.db"), quiet())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "api_keys.db")
	if db, err := OpenSQLite(bad, quiet()); err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}
}

func TestOpenSQLite_ConnectionSettings(t *testing.T) {
	db := newTestDB(t)

	pragmas := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	for _, p := range pragmas {
		var got string
		if err := db.Raw("PRAGMA " + p.name).Row().Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", p.name, err)
		}
		if strings.ToLower(got) != p.want {
			t.Errorf("PRAGMA %s = %q; want %q", p.name, got, p.want)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	if n := sqlDB.Stats().MaxOpenConnections; n != 1 {
		t.Fatalf("MaxOpenConnections = %d; want 1", n)
	}
}

func TestAutoMigrate_SchemaAndIdempotence(t *testing.T) {
	db := newTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("second AutoMigrate: %v", err)
	}

	m := db.Migrator()
	for _, tbl := range []any{&domain.APIKey{}, &domain.UsageLog{}, &domain.AdminUser{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("missing table for %T", tbl)
		}
	}
	if !m.HasIndex(&domain.APIKey{}, "ux_api_keys_key") {
		t.Fatal("missing unique index on api_keys.key")
	}

	k := domain.APIKey{Key: "k1", Owner: "o", MaxUsage: 5, CreatedAt: time.Now().UTC(), IsActive: true}
	if err := db.Create(&k).Error; err != nil {
		t.Fatalf("insert key: %v", err)
	}
	dup := k
	dup.ID = 0
	if err := db.Create(&dup).Error; err == nil {
		t.Fatal("duplicate key string accepted")
	}
}

func TestOpenSQLite_WithTracingEmitsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "traced.db"), quiet(), WithTracing(true))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	var n int
	if err := db.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rec.Ended()) == 0 {
		t.Fatal("no spans recorded for traced query")
	}
}

func TestClose_NilSafe(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v", err)
	}
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	base := NewGormLogger(gormlogger.Warn)
	silent := base.LogMode(gormlogger.Silent).(*GormLogger)
	if base.LogLevel != gormlogger.Warn || silent.LogLevel != gormlogger.Silent {
		t.Fatalf("LogMode must not mutate receiver: base=%v silent=%v", base.LogLevel, silent.LogLevel)
	}
	sql, params := base.ParamsFilter(context.Background(), "SELECT ?", "secret")
	if sql != "SELECT ?" || params != nil {
		t.Fatalf("ParamsFilter leaked params: %q %v", sql, params)
	}
}
