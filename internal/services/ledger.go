// Package services – Ledger
//
// Ledger owns usage accounting: one append-only log row per lookup attempt,
// the atomic quota-guarded usage increment, and the aggregate statistics
// derived from the log.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/repo"
)

// NoQuerySentinel is logged in place of an empty or whitespace-only query.
const NoQuerySentinel = "NO_QUERY"

// UsageStats summarizes the usage log.
type UsageStats struct {
	TotalCalls   int64   `json:"total_calls"`
	SuccessCalls int64   `json:"success_calls"`
	TodayCalls   int64   `json:"today_calls"`
	SuccessRate  float64 `json:"success_rate"`
}

// Ledger records lookup attempts and maintains usage counters.
type Ledger struct {
	DB  *gorm.DB
	Now func() time.Time
}

// RecordAttempt appends exactly one usage log row.
func (l *Ledger) RecordAttempt(ctx context.Context, key, query string, success bool, elapsed time.Duration) error {
	e := &domain.UsageLog{
		APIKey:       key,
		Query:        query,
		Timestamp:    l.now().UTC(),
		Success:      success,
		ResponseTime: elapsed.Seconds(),
	}
	return repo.AppendUsageLog(ctx, l.DB, e)
}

// IncrementUsage bumps the key's usage counter if it is still under quota at
// write time and returns the value this call wrote. applied=false means the
// quota was reached concurrently (or the key vanished); the counter is
// untouched in that case.
func (l *Ledger) IncrementUsage(ctx context.Context, key string) (usage int64, applied bool, err error) {
	ctx, span := otel.Tracer("services/Ledger").Start(ctx, "IncrementUsage")
	defer span.End()

	usage, applied, err = repo.IncrementUsage(ctx, l.DB, key)
	if err != nil {
		span.RecordError(err)
		return 0, false, err
	}
	span.SetAttributes(attribute.Bool("usage.applied", applied), attribute.Int64("usage.current", usage))
	return usage, applied, nil
}

// Stats aggregates the usage log. Today is the current UTC calendar day.
func (l *Ledger) Stats(ctx context.Context) (UsageStats, error) {
	ctx, span := otel.Tracer("services/Ledger").Start(ctx, "Stats", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	now := l.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	c, err := repo.CountUsage(ctx, l.DB, dayStart)
	if err != nil {
		span.RecordError(err)
		return UsageStats{}, err
	}
	out := UsageStats{TotalCalls: c.Total, SuccessCalls: c.Success, TodayCalls: c.Today}
	if c.Total > 0 {
		out.SuccessRate = float64(c.Success) / float64(c.Total) * 100
	}
	return out, nil
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
