package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

// AppendUsageLog inserts one ledger row. Timestamp defaults to now (UTC).
func AppendUsageLog(ctx context.Context, db *gorm.DB, e *domain.UsageLog) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.ResponseTime < 0 {
		e.ResponseTime = 0
	}
	return db.WithContext(ctx).Create(e).Error
}

// UsageCounts are the raw ledger aggregates behind usage statistics.
type UsageCounts struct {
	Total   int64
	Success int64
	Today   int64
}

// CountUsage aggregates the ledger in one pass. Rows at or after dayStart
// count toward Today; dayStart should be a UTC midnight.
func CountUsage(ctx context.Context, db *gorm.DB, dayStart time.Time) (UsageCounts, error) {
	var out UsageCounts
	err := db.WithContext(ctx).
		Model(&domain.UsageLog{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS success,
			COALESCE(SUM(CASE WHEN timestamp >= ? THEN 1 ELSE 0 END), 0) AS today`, dayStart.UTC()).
		Scan(&out).Error
	return out, err
}

// ListUsageLogs returns the most recent ledger rows for key, newest first.
func ListUsageLogs(ctx context.Context, db *gorm.DB, key string, limit int) ([]domain.UsageLog, error) {
	var out []domain.UsageLog
	q := db.WithContext(ctx).
		Where("api_key = ?", key).
		Order("timestamp desc").
		Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
