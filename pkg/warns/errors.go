package warns

import (
	"errors"
	"fmt"
)

// Sentinels for the caller-facing failure kinds. The typed errors below wrap
// them, so both errors.Is and errors.As work.
var (
	ErrTargetCount  = errors.New("exactly one target user is required")
	ErrUserUnknown  = errors.New("user unknown")
	ErrWarnNotFound = errors.New("warning not found")
	ErrInvalidDate  = errors.New("invalid date")
)

// InputError reports a wrong number of resolved targets
type InputError struct {
	Targets int
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v (got %d)", ErrTargetCount, e.Targets)
}

func (e *InputError) Unwrap() error { return ErrTargetCount }

// NotFoundError reports an unknown user or a warning that could not be matched.
// Err is ErrUserUnknown or ErrWarnNotFound.
type NotFoundError struct {
	Subject string
	Err     error
}

func (e *NotFoundError) Error() string {
	if e.Subject == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Subject)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ValidationError reports a disambiguator that is not a valid date prefix
type ValidationError struct {
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidDate, e.Input)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDate }

// Code classifies err into a stable identifier for API and MQTT clients
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTargetCount):
		return "bad_target"
	case errors.Is(err, ErrUserUnknown):
		return "unknown_user"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrWarnNotFound):
		return "warn_not_found"
	default:
		return "internal"
	}
}
