package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures. The first three kinds are always
// absorbed at a stage boundary and turned into a degraded-source marker; only
// an invariant violation may abort a request.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindMalformed   ErrorKind = "malformed_response"
	KindTimeout     ErrorKind = "timeout"
)

// ProviderError is the typed failure returned by provider clients after
// retries are exhausted.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s provider %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err with a provider name and kind.
func NewProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// KindOf extracts the error kind, defaulting to unavailable for untyped errors.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnavailable
}

// ErrInvariant marks programmer errors. It must never surface in normal
// operation; the orchestrator treats it as a defect and lets it propagate.
var ErrInvariant = errors.New("internal invariant violation")

// Invariantf builds an invariant violation with a formatted description.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
