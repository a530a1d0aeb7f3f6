// Package bootstrap owns one-time startup of the service's stores and the
// administrative re-initialization path.
//
// Run migrates the key store, seeds the default admin credential and, when the
// record store file is absent, runs the external ingestion job. It executes at
// most once per process under a mutex-guarded flag; its completion closes the
// Ready channel, which the HTTP layer uses as a readiness gate.
//
// Reinitialize reruns the ingestion job on demand, bounded by a timeout, then
// drops the record store connection and purges the lookup cache.
//
// The ingestion job is not safe to run twice at once. Startup ingestion and
// every re-initialization share one lock: Run waits for it, Reinitialize
// refuses with ErrInitInProgress while any run holds it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/repo"
	"github.com/atharvsharma432199/phone-api/internal/services"
)

var (
	// ErrInitTimeout is returned when the ingestion job exceeds its deadline.
	ErrInitTimeout = errors.New("initialization timed out")

	// ErrInitFailed is returned when the ingestion job exits with an error.
	ErrInitFailed = errors.New("initialization failed")

	// ErrInitInProgress is returned when an ingestion run (startup or a
	// previous re-initialization) is already in flight.
	ErrInitInProgress = errors.New("initialization already in progress")
)

// DefaultTimeout bounds an ingestion run when no timeout is configured.
const DefaultTimeout = 300 * time.Second

// RecordStore is the part of the record store the initializer manages.
type RecordStore interface {
	Exists() bool
	Reset()
}

// Purger drops cached lookup results.
type Purger interface {
	Purge()
}

// Options configures an Initializer.
type Options struct {
	DB       *gorm.DB
	Records  RecordStore
	Cache    Purger
	Ingester Ingester

	AdminUsername string
	AdminPassword string

	// Timeout bounds each ingestion run.
	Timeout time.Duration
}

// Initializer runs startup once and serves re-initialization requests.
type Initializer struct {
	opts Options

	mu    sync.Mutex
	done  bool
	ready chan struct{}

	// ingestMu serializes ingestion runs.
	ingestMu sync.Mutex
}

// NewInitializer returns an Initializer that has not run yet.
func NewInitializer(opts Options) *Initializer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Initializer{opts: opts, ready: make(chan struct{})}
}

// Ready is closed once Run has completed successfully.
func (i *Initializer) Ready() <-chan struct{} { return i.ready }

// IsReady reports whether Run has completed.
func (i *Initializer) IsReady() bool {
	select {
	case <-i.ready:
		return true
	default:
		return false
	}
}

// Run performs one-time startup. Concurrent and repeated calls after the
// first success return nil without doing any work. A failed ingestion is
// logged and does not fail startup: lookups then report the record store as
// unavailable until an administrator re-initializes.
func (i *Initializer) Run(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.done {
		return nil
	}

	if err := repo.AutoMigrate(i.opts.DB); err != nil {
		return fmt.Errorf("migrate key store: %w", err)
	}
	if err := i.seedAdmin(ctx); err != nil {
		return err
	}

	if i.opts.Records != nil && i.opts.Ingester != nil {
		i.startupIngest(ctx)
	}

	i.done = true
	close(i.ready)
	return nil
}

// startupIngest runs the ingestion job when the record store is missing.
// Existence is checked under the lock, so a re-initialization that finished
// first is not repeated.
func (i *Initializer) startupIngest(ctx context.Context) {
	i.ingestMu.Lock()
	defer i.ingestMu.Unlock()

	if i.opts.Records.Exists() {
		return
	}
	log.Info().Msg("record store missing; running ingestion job")
	if err := i.ingest(ctx); err != nil {
		log.Error().Err(err).Msg("startup ingestion failed; lookups will report the store unavailable")
		return
	}
	i.refresh()
	log.Info().Msg("startup ingestion completed")
}

// Reinitialize reruns the ingestion job. Only one run may be in flight,
// including the startup run; others get ErrInitInProgress. On success the
// record store is reopened on next use and the lookup cache is purged.
func (i *Initializer) Reinitialize(ctx context.Context) error {
	if i.opts.Ingester == nil {
		return fmt.Errorf("%w: no ingestion job configured", ErrInitFailed)
	}
	if !i.ingestMu.TryLock() {
		return ErrInitInProgress
	}
	defer i.ingestMu.Unlock()

	started := time.Now()
	if err := i.ingest(ctx); err != nil {
		return err
	}
	i.refresh()
	log.Info().Dur("elapsed", time.Since(started)).Msg("re-initialization completed")
	return nil
}

func (i *Initializer) ingest(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, i.opts.Timeout)
	defer cancel()

	err := i.opts.Ingester.Ingest(ctx)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrInitTimeout, i.opts.Timeout)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	return nil
}

func (i *Initializer) refresh() {
	if i.opts.Records != nil {
		i.opts.Records.Reset()
	}
	if i.opts.Cache != nil {
		i.opts.Cache.Purge()
	}
}

func (i *Initializer) seedAdmin(ctx context.Context) error {
	if i.opts.AdminUsername == "" {
		return nil
	}
	hash, err := services.HashPassword(i.opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := repo.EnsureAdminUser(ctx, i.opts.DB, &domain.AdminUser{
		Username:     i.opts.AdminUsername,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if created {
		log.Info().Str("username", i.opts.AdminUsername).Msg("default admin user created")
	}
	return nil
}
