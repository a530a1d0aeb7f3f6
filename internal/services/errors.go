// Package services defines the business logic for API-key admission, usage
// accounting, phone lookups and key administration. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/atharvsharma432199/phone-api/internal/repo"
)

// Lookup outcomes.
var (
	// ErrKeyMissing indicates that no API key was supplied or that the key is
	// unknown to the key store.
	ErrKeyMissing = errors.New("api key missing or unknown")

	// ErrKeyInvalid indicates a known key that is inactive, expired or out of
	// quota. The wrapped message carries the reason.
	ErrKeyInvalid = errors.New("api key invalid")

	// ErrQueryMissing is returned when the search input is empty.
	ErrQueryMissing = errors.New("query is empty")

	// ErrNotFound is returned when an admitted query matches no record.
	ErrNotFound = errors.New("no record found")

	// ErrStoreUnavailable aliases the record store sentinel so callers can
	// check it without importing repo.
	ErrStoreUnavailable = repo.ErrStoreUnavailable
)

// Key administration errors.
var (
	// ErrDuplicateKey is returned when creating a key that already exists.
	ErrDuplicateKey = errors.New("api key already exists")

	// ErrKeyNotFound is returned by administrative reads and updates on a key
	// that does not exist.
	ErrKeyNotFound = errors.New("api key not found")

	// ErrInvalidKeyInput is returned when key creation parameters are out of
	// range (empty owner, max_usage below -1, negative validity).
	ErrInvalidKeyInput = errors.New("invalid api key parameters")
)

// KeyInvalidError is the concrete ErrKeyInvalid returned by lookups; it
// carries the admission reason.
type KeyInvalidError struct {
	Reason DenyReason
}

func (e *KeyInvalidError) Error() string { return ErrKeyInvalid.Error() + ": " + string(e.Reason) }

func (e *KeyInvalidError) Unwrap() error { return ErrKeyInvalid }

// DenyReasonOf extracts the admission reason from a lookup error, or
// ReasonNone when err is not a KeyInvalidError.
func DenyReasonOf(err error) DenyReason {
	var kie *KeyInvalidError
	if errors.As(err, &kie) {
		return kie.Reason
	}
	return ReasonNone
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way.
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
