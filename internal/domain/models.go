// Package domain defines the persistence models for API keys, the usage
// ledger, administrative credentials and the externally populated phone
// record store. These types are mapped with GORM and shared across the
// repository and service layers.
package domain

import "time"

// UnlimitedUsage is the MaxUsage sentinel for keys without a quota.
const UnlimitedUsage int64 = -1

// APIKey is a credential that admits callers to the lookup endpoint.
//
// Fields:
//   - Key: opaque unique identity supplied (or generated) at creation.
//   - Owner: free-form label of the key holder.
//   - MaxUsage: quota of billable lookups; UnlimitedUsage (-1) disables it.
//   - CurrentUsage: billable lookups so far. Only ever incremented, and only
//     through a conditional update that keeps it <= MaxUsage.
//   - ExpiresAt: optional expiry; nil means the key never expires.
//   - IsActive: administrative on/off switch.
//
// No column carries a GORM default so that explicit zero values (quota 0,
// inactive) are persisted as given.
type APIKey struct {
	ID           uint       `json:"-"             gorm:"primaryKey;autoIncrement"`
	Key          string     `json:"key"           gorm:"type:TEXT;not null;uniqueIndex:ux_api_keys_key"`
	Owner        string     `json:"owner"         gorm:"type:TEXT;not null"`
	MaxUsage     int64      `json:"max_usage"     gorm:"not null"`
	CurrentUsage int64      `json:"current_usage" gorm:"not null"`
	CreatedAt    time.Time  `json:"created_at"    gorm:"not null;index:idx_api_keys_created"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsActive     bool       `json:"is_active"     gorm:"not null"`
}

// TableName returns the database table name for APIKey.
func (APIKey) TableName() string { return "api_keys" }

// Unlimited reports whether the key has no usage quota.
func (k APIKey) Unlimited() bool { return k.MaxUsage == UnlimitedUsage }

// UsagePercent returns CurrentUsage as a percentage of MaxUsage, or 0 when
// the key is unlimited or has a zero quota.
func (k APIKey) UsagePercent() float64 {
	if k.MaxUsage <= 0 {
		return 0
	}
	return float64(k.CurrentUsage) / float64(k.MaxUsage) * 100
}

// UsageLog is one append-only ledger entry per lookup attempt.
//
// APIKey holds the key string by value, not as a foreign key: deleting a key
// leaves its history intact.
type UsageLog struct {
	ID           uint      `json:"id"            gorm:"primaryKey;autoIncrement"`
	APIKey       string    `json:"api_key"       gorm:"column:api_key;type:TEXT;not null;index:idx_usage_logs_key"`
	Query        string    `json:"query"         gorm:"column:phone_query;type:TEXT;not null"`
	Timestamp    time.Time `json:"timestamp"     gorm:"not null;index:idx_usage_logs_ts"`
	Success      bool      `json:"success"       gorm:"not null"`
	ResponseTime float64   `json:"response_time" gorm:"column:response_time;not null"`
}

// TableName returns the database table name for UsageLog.
func (UsageLog) TableName() string { return "usage_logs" }

// AdminUser is an administrative credential. PasswordHash is either a bcrypt
// hash or, for rows created by older deployments, a hex SHA-256 digest.
type AdminUser struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:TEXT;not null;uniqueIndex:ux_admin_users_username"`
	PasswordHash string    `gorm:"type:TEXT;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	IsActive     bool      `gorm:"not null"`
}

// TableName returns the database table name for AdminUser.
func (AdminUser) TableName() string { return "admin_users" }
