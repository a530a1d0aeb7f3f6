// Package services – AdminAuth
//
// AdminAuth validates administrator credentials. It is independent of API-key
// admission and shares no state with it. Every call costs one bcrypt
// comparison whether or not the username exists, so responses do not reveal
// which usernames are valid.
package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/atharvsharma432199/phone-api/internal/repo"
)

// AdminAuth checks admin credentials against the admin_users table.
type AdminAuth struct {
	DB *gorm.DB
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// dummy returns a bcrypt hash compared against when there is no real one.
func dummy() []byte {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("phoneapi-dummy-credential"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// HashPassword returns a bcrypt hash suitable for AdminUser.PasswordHash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Validate reports whether username/password match an active admin. Storage
// errors are returned; unknown users and wrong passwords are both (false, nil).
func (a *AdminAuth) Validate(ctx context.Context, username, password string) (bool, error) {
	u, err := repo.GetAdminUser(ctx, a.DB, username)
	if err != nil && !isNotFound(err) {
		return false, err
	}
	if u == nil || !u.IsActive {
		_ = bcrypt.CompareHashAndPassword(dummy(), []byte(password))
		return false, nil
	}

	if isLegacyDigest(u.PasswordHash) {
		// Keep the cost identical to the bcrypt path.
		_ = bcrypt.CompareHashAndPassword(dummy(), []byte(password))
		sum := sha256.Sum256([]byte(password))
		ok := subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(u.PasswordHash)) == 1
		if ok {
			zerolog.Ctx(ctx).Warn().Str("username", username).Msg("admin credential uses legacy sha256 digest")
		}
		return ok, nil
	}

	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil, nil
}

// isLegacyDigest reports whether h looks like a hex SHA-256 digest.
func isLegacyDigest(h string) bool {
	if len(h) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}
