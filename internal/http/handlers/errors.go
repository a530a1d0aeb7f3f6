package handlers

// Stable, machine-readable error codes carried in ErrorResponse.Code.
// Clients branch on these, not on messages.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Lookup.
	ErrCodeKeyMissing       = "key_missing"
	ErrCodeKeyUnknown       = "key_unknown"
	ErrCodeKeyInvalid       = "key_invalid"
	ErrCodeQueryMissing     = "query_missing"
	ErrCodeStoreUnavailable = "store_unavailable"

	// Administration.
	ErrCodeInvalidInput   = "invalid_input"
	ErrCodeDuplicateKey   = "duplicate_key"
	ErrCodeInitTimeout    = "init_timeout"
	ErrCodeInitFailed     = "init_failed"
	ErrCodeInitInProgress = "init_in_progress"
)
