package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

// ErrStoreUnavailable means the record store file or its phone_data table is
// missing. It is distinct from a lookup that matched nothing.
var ErrStoreUnavailable = errors.New("record store unavailable")

// RecordStore is the read path into the externally populated phone record
// database. The connection is opened lazily and read-only; Reset drops it so
// the next call picks up a freshly ingested file.
type RecordStore struct {
	path  string
	fuzzy bool
	opts  openOptions

	mu sync.Mutex
	db *gorm.DB
}

// NewRecordStore prepares a store for path. With fuzzy set, numbers match on
// a substring basis against both phoneNumber and otherNumber; otherwise they
// must be equal.
func NewRecordStore(path string, fuzzy bool, opts ...OpenOption) *RecordStore {
	return &RecordStore{path: path, fuzzy: fuzzy, opts: buildOptions(opts)}
}

// Path returns the record store file path.
func (s *RecordStore) Path() string { return s.path }

// Exists reports whether the record store file is present on disk.
func (s *RecordStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *RecordStore) handle() (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	dsn := "file:" + s.path + "?mode=ro&_pragma=busy_timeout(5000)&_pragma=query_only(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: s.opts.logger})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if s.opts.tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics(), tracing.WithoutQueryVariables())); err != nil {
			_ = Close(db)
			return nil, fmt.Errorf("install gorm tracing: %w", err)
		}
	}
	if !db.Migrator().HasTable(domain.PersonRecordTable) {
		_ = Close(db)
		return nil, fmt.Errorf("%w: table %s missing", ErrStoreUnavailable, domain.PersonRecordTable)
	}
	s.db = db
	return db, nil
}

// FindByNormalizedNumber returns the first record, in store order, whose
// phoneNumber or otherNumber matches key. A nil record with a nil error means
// no match.
func (s *RecordStore) FindByNormalizedNumber(ctx context.Context, key string) (*domain.PersonRecord, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	q := db.WithContext(ctx)
	if s.fuzzy {
		pattern := "%" + key + "%"
		q = q.Where("phoneNumber LIKE ? OR otherNumber LIKE ?", pattern, pattern)
	} else {
		q = q.Where("phoneNumber = ? OR otherNumber = ?", key, key)
	}

	var rec domain.PersonRecord
	if err := q.Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, s.classify(err)
	}
	return &rec, nil
}

// Count returns the number of rows in the record store.
func (s *RecordStore) Count(ctx context.Context) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.WithContext(ctx).Model(&domain.PersonRecord{}).Count(&n).Error; err != nil {
		return 0, s.classify(err)
	}
	return n, nil
}

// Reset closes the cached connection so the next call reopens the file.
func (s *RecordStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		_ = Close(s.db)
		s.db = nil
	}
}

// Close releases the connection; the store stays usable and reopens lazily.
func (s *RecordStore) Close() error {
	s.Reset()
	return nil
}

// classify maps errors caused by the file or table disappearing underneath an
// open connection to ErrStoreUnavailable and drops the stale handle.
func (s *RecordStore) classify(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "unable to open database") ||
		strings.Contains(msg, "disk i/o error") {
		s.Reset()
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
