package scheduling

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the scheduling engine. Hosts map these to
// transport responses; no string parsing required.
const (
	CodeValidation             = "VALIDATION"
	CodeNotFound               = "NOT_FOUND"
	CodeSlotConflict           = "SLOT_CONFLICT"
	CodeDailyLimitReached      = "DAILY_LIMIT_REACHED"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeCancellationExpired    = "CANCELLATION_WINDOW_EXPIRED"
	CodeCancellationDisallowed = "CANCELLATION_DISALLOWED"
	CodePermissionDenied       = "PERMISSION_DENIED"
	CodeConcurrentUpdate       = "CONCURRENT_UPDATE"
)

// Error is a structured engine error: a stable code plus a human message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the engine error code from err, unwrapping as needed.
// It returns an empty string for non-engine errors.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
