// Package jobs runs periodic background work. StatusRefresher publishes the
// service status snapshot as Prometheus gauges on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/atharvsharma432199/phone-api/internal/services"
)

// Snapshotter produces the status published by the refresher.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*services.Status, error)
}

// StatusRefresher refreshes status gauges every Interval.
type StatusRefresher struct {
	source   Snapshotter
	interval time.Duration
	cron     *cron.Cron
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewStatusRefresher returns a refresher for source. Intervals under one
// second are raised to one second.
func NewStatusRefresher(source Snapshotter, interval time.Duration) *StatusRefresher {
	if interval < time.Second {
		interval = time.Second
	}
	return &StatusRefresher{
		source:   source,
		interval: interval,
		cron:     cron.New(),
		logger:   log.With().Str("component", "jobs.status_refresher").Logger(),
	}
}

// Start publishes once immediately, then on schedule until ctx is cancelled
// or Stop is called.
func (r *StatusRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, func() { r.run(ctx) }); err != nil {
		return fmt.Errorf("schedule status refresh %q: %w", spec, err)
	}
	r.run(ctx)
	r.cron.Start()
	r.running = true
	r.logger.Info().Str("schedule", spec).Msg("status refresher started")

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *StatusRefresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	<-r.cron.Stop().Done()
	r.running = false
	r.logger.Info().Msg("status refresher stopped")
}

// IsRunning reports whether the schedule is active.
func (r *StatusRefresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *StatusRefresher) run(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		refreshFailures.Inc()
		r.logger.Error().Err(err).Msg("status refresh failed")
	}
}

// Refresh takes one snapshot and publishes it.
func (r *StatusRefresher) Refresh(ctx context.Context) error {
	st, err := r.source.Snapshot(ctx)
	if err != nil {
		return err
	}
	publish(st)
	lastRefresh.SetToCurrentTime()
	return nil
}
