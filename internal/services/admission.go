// Package services – Admission
//
// Admission decides whether an API key may perform a lookup right now. The
// decision is evaluated fresh on every call and never cached. It reports
// whether the key exists separately from why it was refused, so callers can
// tell an unknown key (401) from one in an invalid state (403).
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/repo"
)

// DenyReason explains a refused admission.
type DenyReason string

const (
	ReasonNone           DenyReason = ""
	ReasonUnknown        DenyReason = "unknown"
	ReasonInactive       DenyReason = "inactive"
	ReasonExpired        DenyReason = "expired"
	ReasonQuotaExhausted DenyReason = "quota_exhausted"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Exists  bool
	Allowed bool
	Reason  DenyReason
	// Key is the row the decision was made on; nil when Exists is false.
	Key *domain.APIKey
}

// Admission evaluates keys against the key store.
type Admission struct {
	DB *gorm.DB
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Evaluate applies the admission predicate to k at time now: the key must be
// active, unexpired (expiry strictly in the future) and under its quota.
func Evaluate(k *domain.APIKey, now time.Time) Decision {
	if k == nil {
		return Decision{Reason: ReasonUnknown}
	}
	d := Decision{Exists: true, Key: k}
	switch {
	case !k.IsActive:
		d.Reason = ReasonInactive
	case k.ExpiresAt != nil && !now.Before(*k.ExpiresAt):
		d.Reason = ReasonExpired
	case !k.Unlimited() && k.CurrentUsage >= k.MaxUsage:
		d.Reason = ReasonQuotaExhausted
	default:
		d.Allowed = true
	}
	return d
}

// Check loads key and evaluates it. A missing key is a Decision with
// Exists=false, not an error; err is reserved for storage failures.
func (a *Admission) Check(ctx context.Context, key string) (Decision, error) {
	ctx, span := otel.Tracer("services/Admission").Start(ctx, "Check")
	defer span.End()

	k, err := repo.GetAPIKey(ctx, a.DB, key)
	if err != nil {
		if isNotFound(err) {
			return Decision{Reason: ReasonUnknown}, nil
		}
		span.RecordError(err)
		return Decision{}, err
	}
	return Evaluate(k, a.now()), nil
}

// CanUse reports whether key may perform a lookup now.
func (a *Admission) CanUse(ctx context.Context, key string) (bool, error) {
	d, err := a.Check(ctx, key)
	return d.Allowed, err
}

func (a *Admission) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
