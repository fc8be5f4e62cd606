package core

// Error codes for domain errors surfaced to clients.
const (
	ErrCodeEmptyMessage    = "empty_message"
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeSessionClosed   = "session_closed"
	ErrCodeStorageFailure  = "storage_failure"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeRateLimited     = "rate_limited"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
