package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers non-2xx responses, transport failures and
	// upstream-reported error bodies.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrNotConfigured means a required credential is absent.
	ErrNotConfigured = errors.New("upstream not configured")
)

// Error is returned by every adapter. StatusCode is the upstream HTTP status,
// or zero when no response was received.
type Error struct {
	Source     string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case errors.Is(e.Err, ErrNotConfigured):
		return fmt.Sprintf("%s: not configured", e.Source)
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: upstream returned status %d: %s", e.Source, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream returned status %d", e.Source, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotConfigured reports a missing credential for source.
func NotConfigured(source string) error {
	return &Error{Source: source, Err: ErrNotConfigured}
}

func statusError(source string, code int, message string) error {
	return &Error{Source: source, StatusCode: code, Message: message, Err: ErrUnavailable}
}

func transportError(source, message string, err error) error {
	return &Error{Source: source, Message: message, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
}

// StatusCode extracts the upstream status code from err, if any.
func StatusCode(err error) int {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}
