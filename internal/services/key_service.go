// Package services – KeyService
//
// KeyService is the administrative interface over the key store: create with
// defaults, read one, list newest-first, delete, and activate/deactivate.
// Usage counters are never touched here; they only move through Ledger.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/repo"
)

// generatedKeyBytes is the entropy of generated keys (hex-encoded, 32 chars).
const generatedKeyBytes = 16

// CreateKeyInput describes a new key. Nil pointers take the service defaults.
type CreateKeyInput struct {
	// Key is the key string; generated when empty.
	Key   string
	Owner string
	// MaxUsage is the quota; domain.UnlimitedUsage (-1) for none.
	MaxUsage *int64
	// DaysValid sets ExpiresAt to now+DaysValid days; 0 means no expiry.
	DaysValid *int
}

// KeyService manages API keys on behalf of administrators.
type KeyService struct {
	DB *gorm.DB

	DefaultMaxUsage  int64
	DefaultValidDays int

	Now func() time.Time
}

// Create validates in, applies defaults and inserts the key, active and with
// zero usage. An existing key yields ErrDuplicateKey and is left untouched.
func (s *KeyService) Create(ctx context.Context, in CreateKeyInput) (*domain.APIKey, error) {
	ctx, span := otel.Tracer("services/KeyService").Start(ctx, "Create",
		trace.WithAttributes(attribute.String("key.owner", in.Owner)),
	)
	defer span.End()

	owner := strings.TrimSpace(in.Owner)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidKeyInput)
	}
	maxUsage := s.DefaultMaxUsage
	if in.MaxUsage != nil {
		maxUsage = *in.MaxUsage
	}
	if maxUsage < domain.UnlimitedUsage {
		return nil, fmt.Errorf("%w: max_usage must be -1 or >= 0", ErrInvalidKeyInput)
	}
	days := s.DefaultValidDays
	if in.DaysValid != nil {
		days = *in.DaysValid
	}
	if days < 0 {
		return nil, fmt.Errorf("%w: days_valid must be >= 0", ErrInvalidKeyInput)
	}

	key := strings.TrimSpace(in.Key)
	if key == "" {
		g, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		key = g
	}

	now := s.now().UTC()
	k := &domain.APIKey{
		Key:       key,
		Owner:     owner,
		MaxUsage:  maxUsage,
		CreatedAt: now,
		IsActive:  true,
	}
	if days > 0 {
		exp := now.AddDate(0, 0, days)
		k.ExpiresAt = &exp
	}

	if err := repo.CreateAPIKey(ctx, s.DB, k); err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateKey
		}
		span.RecordError(err)
		return nil, err
	}
	return k, nil
}

// Get returns one key, or ErrKeyNotFound.
func (s *KeyService) Get(ctx context.Context, key string) (*domain.APIKey, error) {
	k, err := repo.GetAPIKey(ctx, s.DB, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return k, nil
}

// List returns all keys, newest first.
func (s *KeyService) List(ctx context.Context) ([]domain.APIKey, error) {
	ctx, span := otel.Tracer("services/KeyService").Start(ctx, "List")
	defer span.End()
	return repo.ListAPIKeys(ctx, s.DB)
}

// Delete removes key and reports whether it existed. Its usage log rows stay.
func (s *KeyService) Delete(ctx context.Context, key string) (bool, error) {
	return repo.DeleteAPIKey(ctx, s.DB, key)
}

// SetActive activates or deactivates key. ErrKeyNotFound if it is missing.
func (s *KeyService) SetActive(ctx context.Context, key string, active bool) error {
	if err := repo.SetAPIKeyActive(ctx, s.DB, key, active); err != nil {
		if isNotFound(err) {
			return ErrKeyNotFound
		}
		return err
	}
	return nil
}

// RecentUsage returns up to limit usage log rows for key, newest first. It
// works for deleted keys too.
func (s *KeyService) RecentUsage(ctx context.Context, key string, limit int) ([]domain.UsageLog, error) {
	return repo.ListUsageLogs(ctx, s.DB, key, limit)
}

// Totals returns key counts and summed usage.
func (s *KeyService) Totals(ctx context.Context) (repo.KeyTotals, error) {
	return repo.CountAPIKeys(ctx, s.DB)
}

func (s *KeyService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateKey returns a random 32-character hex key.
func GenerateKey() (string, error) {
	b := make([]byte, generatedKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
