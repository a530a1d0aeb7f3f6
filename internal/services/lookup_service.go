// Package services – LookupService
//
// LookupService resolves a phone query for an API key. Per call it runs
// admission, validates and normalizes the query, serves the record from the
// LRU cache or the record store, charges the key for a found record, and
// appends exactly one usage log row whatever the outcome.
//
// Concurrent misses for the same normalized number share one store read via
// singleflight. The shared read is detached from any one caller's
// cancellation and bounded by storeReadTimeout; each caller still stops
// waiting when its own context ends. Store errors are never cached.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/lookup"
)

// storeReadTimeout bounds a shared store read once it no longer follows the
// cancellation of the request that started it.
const storeReadTimeout = 10 * time.Second

// RecordFinder is the read path into the record store.
type RecordFinder interface {
	FindByNormalizedNumber(ctx context.Context, key string) (*domain.PersonRecord, error)
}

// LookupResult is a successful, billed lookup.
type LookupResult struct {
	Record domain.PersonRecord
	// Usage is the key's usage counter after this lookup was charged.
	Usage    int64
	MaxUsage int64
	Elapsed  time.Duration
}

// LookupService coordinates admission, caching, store reads and accounting.
type LookupService struct {
	Admission *Admission
	Ledger    *Ledger
	Records   RecordFinder
	Cache     *lookup.Cache

	group singleflight.Group
}

// Lookup resolves query for apiKey. The error is one of ErrKeyMissing,
// ErrKeyInvalid, ErrQueryMissing, ErrNotFound, ErrStoreUnavailable (all
// checkable with errors.Is) or a storage error.
func (s *LookupService) Lookup(ctx context.Context, apiKey, query string) (res *LookupResult, err error) {
	ctx, span := otel.Tracer("services/LookupService").Start(ctx, "Lookup")
	defer span.End()

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if res != nil {
			res.Elapsed = elapsed
		}
		s.record(ctx, apiKey, query, err == nil, elapsed)

		outcome := outcomeLabel(err)
		lookupOutcomes.WithLabelValues(outcome).Inc()
		lookupDuration.Observe(elapsed.Seconds())
		span.SetAttributes(attribute.String("lookup.outcome", outcome))
		if outcome == "error" || outcome == "store_unavailable" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrKeyMissing
	}

	d, err := s.Admission.Check(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if !d.Exists {
		return nil, ErrKeyMissing
	}
	if !d.Allowed {
		return nil, &KeyInvalidError{Reason: d.Reason}
	}

	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryMissing
	}
	key, ok := lookup.Normalize(query)
	if !ok {
		return nil, ErrNotFound
	}

	rec, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	usage, applied, err := s.Ledger.IncrementUsage(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Another request consumed the last unit between admission and now.
		return nil, &KeyInvalidError{Reason: ReasonQuotaExhausted}
	}
	return &LookupResult{Record: *rec, Usage: usage, MaxUsage: d.Key.MaxUsage}, nil
}

// RecordRateLimited logs an attempt the transport refused before it reached
// Lookup. The row is a failure with zero elapsed time.
func (s *LookupService) RecordRateLimited(ctx context.Context, apiKey, query string) {
	lookupOutcomes.WithLabelValues("rate_limited").Inc()
	s.record(ctx, apiKey, query, false, 0)
}

// find serves key from the cache, falling back to a single shared store read.
func (s *LookupService) find(ctx context.Context, key string) (*domain.PersonRecord, error) {
	if s.Cache != nil {
		if rec, hit := s.Cache.Get(key); hit {
			cacheResults.WithLabelValues("hit").Inc()
			return rec, nil
		}
		cacheResults.WithLabelValues("miss").Inc()
	}

	// The flight outlives whichever caller started it, so it reads under a
	// detached context and each caller selects on its own.
	flight := s.group.DoChan(key, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeReadTimeout)
		defer cancel()
		rec, err := s.Records.FindByNormalizedNumber(rctx, key)
		if err != nil {
			return nil, err
		}
		if s.Cache != nil {
			s.Cache.Put(key, rec)
		}
		return rec, nil
	})

	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	rec, _ := res.Val.(*domain.PersonRecord)
	if rec == nil {
		return nil, nil
	}
	// Callers sharing a flight must not share the pointer.
	cp := *rec
	return &cp, nil
}

// record appends the ledger row. A failed write is logged and counted; it
// does not change the outcome already decided for the caller.
func (s *LookupService) record(ctx context.Context, apiKey, query string, success bool, elapsed time.Duration) {
	if strings.TrimSpace(query) == "" {
		query = NoQuerySentinel
	}
	// Detach from request cancellation so the row is written even if the
	// client has gone away.
	wctx := context.WithoutCancel(ctx)
	if err := s.Ledger.RecordAttempt(wctx, apiKey, query, success, elapsed); err != nil {
		ledgerFailures.Inc()
		zerolog.Ctx(ctx).Error().Err(err).Bool("success", success).Msg("usage log write failed")
	}
}

// IsLookupError reports whether err is one of the expected lookup outcomes
// rather than an internal failure.
func IsLookupError(err error) bool {
	return errors.Is(err, ErrKeyMissing) ||
		errors.Is(err, ErrKeyInvalid) ||
		errors.Is(err, ErrQueryMissing) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStoreUnavailable)
}
