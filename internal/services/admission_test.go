package services

import (
	"context"
	"testing"
	"time"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Second), now.Add(time.Second)

	cases := []struct {
		name   string
		key    *domain.APIKey
		allow  bool
		reason DenyReason
	}{
		{"missing", nil, false, ReasonUnknown},
		{"ok", &domain.APIKey{IsActive: true, MaxUsage: 2, CurrentUsage: 1}, true, ReasonNone},
		{"inactive", &domain.APIKey{IsActive: false, MaxUsage: 2}, false, ReasonInactive},
		{"expired", &domain.APIKey{IsActive: true, MaxUsage: 2, ExpiresAt: &past}, false, ReasonExpired},
		{"expires exactly now", &domain.APIKey{IsActive: true, MaxUsage: 2, ExpiresAt: &now}, false, ReasonExpired},
		{"expires later", &domain.APIKey{IsActive: true, MaxUsage: 2, ExpiresAt: &future}, true, ReasonNone},
		{"at quota", &domain.APIKey{IsActive: true, MaxUsage: 2, CurrentUsage: 2}, false, ReasonQuotaExhausted},
		{"zero quota", &domain.APIKey{IsActive: true, MaxUsage: 0}, false, ReasonQuotaExhausted},
		{"unlimited", &domain.APIKey{IsActive: true, MaxUsage: domain.UnlimitedUsage, CurrentUsage: 1 << 40}, true, ReasonNone},
	}
	for _, tc := range cases {
		d := Evaluate(tc.key, now)
		if d.Allowed != tc.allow || d.Reason != tc.reason || d.Exists != (tc.key != nil) {
			t.Errorf("%s: got %+v want allow=%v reason=%q", tc.name, d, tc.allow, tc.reason)
		}
	}
}

func TestAdmission_CheckDistinguishesMissingFromInvalid(t *testing.T) {
	db := newTestDB(t)
	insertKey(t, db, domain.APIKey{Key: "off", Owner: "o", MaxUsage: 5, IsActive: false})
	insertKey(t, db, domain.APIKey{Key: "on", Owner: "o", MaxUsage: 5, IsActive: true})
	a := &Admission{DB: db}
	ctx := context.Background()

	d, err := a.Check(ctx, "ghost")
	if err != nil || d.Exists || d.Allowed {
		t.Fatalf("ghost: %+v err=%v", d, err)
	}
	d, err = a.Check(ctx, "off")
	if err != nil || !d.Exists || d.Allowed || d.Reason != ReasonInactive {
		t.Fatalf("off: %+v err=%v", d, err)
	}
	ok, err := a.CanUse(ctx, "on")
	if err != nil || !ok {
		t.Fatalf("on: ok=%v err=%v", ok, err)
	}
}

func TestAdmission_UsesInjectedClock(t *testing.T) {
	db := newTestDB(t)
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	insertKey(t, db, domain.APIKey{Key: "k", Owner: "o", MaxUsage: 5, IsActive: true, ExpiresAt: &exp})

	a := &Admission{DB: db, Now: func() time.Time { return exp.Add(time.Minute) }}
	d, err := a.Check(context.Background(), "k")
	if err != nil || d.Reason != ReasonExpired {
		t.Fatalf("expected expired, got %+v err=%v", d, err)
	}
}
