package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: missing or malformed input, rejected before any network call.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration: a required server-side secret is absent.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream: the gateway failed, timed out or returned a non-success status.
	ErrUpstream = errors.New("upstream error")
	// ErrVerification: signature mismatch or non-approved status. Terminal, never retried.
	ErrVerification = errors.New("verification error")
	// ErrPersistence: local write failed after the gateway verified the payment.
	ErrPersistence = errors.New("persistence error")
)

// UpstreamError keeps the raw gateway response for server-side logs.
// Its Error() text is safe to log but Body must never be sent to clients verbatim.
type UpstreamError struct {
	Gateway    string
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Gateway, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed: http=%d body=%s", e.Gateway, e.Op, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}

// kindError pairs a taxonomy sentinel with a message that is safe to show to clients.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func validationf(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func verificationf(format string, args ...any) error {
	return &kindError{kind: ErrVerification, msg: fmt.Sprintf(format, args...)}
}

func configurationf(format string, args ...any) error {
	return &kindError{kind: ErrConfiguration, msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing text of a validation or verification error,
// or "" when err carries none.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return ""
}

// NewValidationError lets callers outside the adapters reject input with the same taxonomy.
func NewValidationError(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}

func NewVerificationError(msg string) error {
	return &kindError{kind: ErrVerification, msg: msg}
}
