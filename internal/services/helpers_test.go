package services

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "api_keys.db"), repo.WithLogger(repo.NewGormLogger(gormlogger.Silent)))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close(db) })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func insertKey(t *testing.T, db *gorm.DB, k domain.APIKey) {
	t.Helper()
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	if err := repo.CreateAPIKey(context.Background(), db, &k); err != nil {
		t.Fatalf("CreateAPIKey(%s): %v", k.Key, err)
	}
}

func ledgerRows(t *testing.T, db *gorm.DB) []domain.UsageLog {
	t.Helper()
	var out []domain.UsageLog
	if err := db.Order("id asc").Find(&out).Error; err != nil {
		t.Fatalf("read usage_logs: %v", err)
	}
	return out
}

// fakeFinder is an in-memory record store that counts reads.
type fakeFinder struct {
	mu      sync.Mutex
	records map[string]domain.PersonRecord
	err     error
	calls   int64
}

func (f *fakeFinder) FindByNormalizedNumber(ctx context.Context, key string) (*domain.PersonRecord, error) {
	atomic.AddInt64(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeFinder) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.records)), nil
}

func (f *fakeFinder) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeFinder) reads() int64 { return atomic.LoadInt64(&f.calls) }

// gatedFinder blocks every read until release is closed or the read's
// context ends. entered is closed by the first read.
type gatedFinder struct {
	rec     domain.PersonRecord
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedFinder(rec domain.PersonRecord) *gatedFinder {
	return &gatedFinder{rec: rec, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedFinder) FindByNormalizedNumber(ctx context.Context, key string) (*domain.PersonRecord, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		rec := g.rec
		return &rec, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
