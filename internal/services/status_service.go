// Package services – StatusService
//
// StatusService assembles the operational snapshot served by /api/status and
// published as gauges by the refresh job.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/atharvsharma432199/phone-api/internal/lookup"
	"github.com/atharvsharma432199/phone-api/internal/repo"
)

// RecordCounter counts rows in the record store.
type RecordCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Status is a point-in-time view of the service.
type Status struct {
	RecordStoreAvailable bool       `json:"record_store_available"`
	Records              int64      `json:"records"`
	TotalKeys            int64      `json:"total_keys"`
	ActiveKeys           int64      `json:"active_keys"`
	TotalKeyUsage        int64      `json:"total_key_usage"`
	CacheEntries         int        `json:"cache_entries"`
	Usage                UsageStats `json:"usage"`
}

// StatusService gathers a Status from the stores.
type StatusService struct {
	Keys    *KeyService
	Ledger  *Ledger
	Records RecordCounter
	Cache   *lookup.Cache
}

// Snapshot collects the status. An unavailable record store is reported in
// the snapshot, not as an error.
func (s *StatusService) Snapshot(ctx context.Context) (*Status, error) {
	ctx, span := otel.Tracer("services/StatusService").Start(ctx, "Snapshot")
	defer span.End()

	out := &Status{}

	n, err := s.Records.Count(ctx)
	switch {
	case err == nil:
		out.RecordStoreAvailable = true
		out.Records = n
	case errors.Is(err, repo.ErrStoreUnavailable):
	default:
		span.RecordError(err)
		return nil, err
	}

	totals, err := s.Keys.Totals(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out.TotalKeys, out.ActiveKeys, out.TotalKeyUsage = totals.Total, totals.Active, totals.TotalUsage

	usage, err := s.Ledger.Stats(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out.Usage = usage

	if s.Cache != nil {
		out.CacheEntries = s.Cache.Len()
	}
	return out, nil
}
