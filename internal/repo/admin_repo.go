package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

// GetAdminUser fetches an admin credential by username, or ErrNotFound.
func GetAdminUser(ctx context.Context, db *gorm.DB, username string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	if err := db.WithContext(ctx).Where("username = ?", username).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureAdminUser inserts u unless the username already exists, in which case
// the stored credential is kept. created reports whether a row was written.
func EnsureAdminUser(ctx context.Context, db *gorm.DB, u *domain.AdminUser) (created bool, err error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(u)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
