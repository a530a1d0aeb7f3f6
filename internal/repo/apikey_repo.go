// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for API keys.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules (admission, defaults, key
// generation) to the services package.
//
// Error semantics:
//   - Missing keys surface as ErrNotFound (gorm.ErrRecordNotFound).
//   - Duplicate keys are returned as the raw unique-constraint error; the
//     service layer translates it into services.ErrDuplicateKey.
//   - IncrementUsage never returns ErrNotFound; a key that is missing or at
//     its quota simply reports applied=false. When applied, usage is the
//     counter value written by that same statement.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateAPIKey inserts k. The key column is unique; inserting an existing key
// fails without touching the stored row.
func CreateAPIKey(ctx context.Context, db *gorm.DB, k *domain.APIKey) error {
	return db.WithContext(ctx).Create(k).Error
}

// GetAPIKey fetches a key by its string identity, or ErrNotFound.
func GetAPIKey(ctx context.Context, db *gorm.DB, key string) (*domain.APIKey, error) {
	var k domain.APIKey
	if err := db.WithContext(ctx).Where("key = ?", key).Take(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

// ListAPIKeys returns every key, newest first. Ties on created_at fall back
// to insertion order so the listing is stable.
func ListAPIKeys(ctx context.Context, db *gorm.DB) ([]domain.APIKey, error) {
	var out []domain.APIKey
	err := db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}

// DeleteAPIKey removes a key and reports whether a row existed. Usage log
// rows referencing the key string are left alone.
func DeleteAPIKey(ctx context.Context, db *gorm.DB, key string) (bool, error) {
	res := db.WithContext(ctx).Where("key = ?", key).Delete(&domain.APIKey{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetAPIKeyActive flips the is_active flag. ErrNotFound when no row matched.
func SetAPIKeyActive(ctx context.Context, db *gorm.DB, key string, active bool) error {
	res := db.WithContext(ctx).
		Model(&domain.APIKey{}).
		Where("key = ?", key).
		UpdateColumn("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementUsage bumps current_usage by one in a single conditional UPDATE.
// The quota guard is evaluated by the database at write time, so concurrent
// callers can never push current_usage past max_usage. applied is false when
// the key is missing or already at its quota. usage comes from RETURNING, so
// it is this caller's own increment even under concurrent writers.
func IncrementUsage(ctx context.Context, db *gorm.DB, key string) (usage int64, applied bool, err error) {
	var k domain.APIKey
	res := db.WithContext(ctx).
		Model(&k).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "current_usage"}}}).
		Where("key = ? AND (max_usage = ? OR current_usage < max_usage)", key, domain.UnlimitedUsage).
		UpdateColumn("current_usage", gorm.Expr("current_usage + ?", 1))
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return k.CurrentUsage, true, nil
}

// KeyTotals aggregates the key table for status reporting.
type KeyTotals struct {
	Total      int64
	Active     int64
	TotalUsage int64
}

// CountAPIKeys returns the number of keys, how many are active and the sum of
// their usage counters.
func CountAPIKeys(ctx context.Context, db *gorm.DB) (KeyTotals, error) {
	var out KeyTotals
	err := db.WithContext(ctx).
		Model(&domain.APIKey{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(current_usage), 0) AS total_usage`).
		Scan(&out).Error
	return out, err
}
