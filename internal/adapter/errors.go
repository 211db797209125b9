// Package adapter holds the provider clients the planner depends on and the
// error taxonomy they share.
package adapter

import (
	"errors"
	"fmt"
)

// Sentinel errors checked with errors.Is by the planner's tier driver.
var (
	// ErrUnavailable means the provider is misconfigured or unreachable.
	// The planner treats it as a reason to fall back, not as a failure.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrCallFailed means a single request failed (quota, bad status, malformed body).
	ErrCallFailed = errors.New("provider call failed")
)

// Error wraps a provider failure with the provider name and the operation.
type Error struct {
	Provider string
	Op       string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Provider, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable builds an ErrUnavailable error for provider.
func Unavailable(provider, op string, err error) error {
	return &Error{Provider: provider, Op: op, Kind: ErrUnavailable, Err: err}
}

// CallFailed builds an ErrCallFailed error for provider.
func CallFailed(provider, op string, err error) error {
	return &Error{Provider: provider, Op: op, Kind: ErrCallFailed, Err: err}
}

// IsUnavailable reports whether err marks a provider as unavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
