/*
errors.go - Error types for the royalty engine

PURPOSE:
  All error types of the core package in one place. The allocator itself
  never fails at runtime - every error here is a construction-time or
  parse-time rejection.

ERROR CATEGORIES:
  1. Progression errors - the configured scale violates the ordering
     or terminal-limit invariant
  2. Scale errors - the textual scale encoding is structurally broken

USAGE:
  Callers match on the sentinels:

    if errors.Is(err, royalty.ErrInvalidProgression) { ... }

  and unwrap the structured types for detail:

    var pErr *royalty.InvalidProgressionError
    if errors.As(err, &pErr) { log.Println(pErr.Index, pErr.Reason) }
*/
package royalty

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidProgression is returned when a progression violates the
	// ordering or terminal-limit invariant. No allocator is produced.
	ErrInvalidProgression = errors.New("invalid progression")

	// ErrMalformedScale is returned when the textual scale encoding
	// cannot be parsed (wrong step shape, non-integer token).
	ErrMalformedScale = errors.New("malformed scale")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidProgressionError identifies which step broke the invariant and why.
type InvalidProgressionError struct {
	Index  int    // offending step, 0-based
	Step   Step   // the step as configured
	Reason string // e.g. "rate must increase", "final limit must be 0"
}

func (e *InvalidProgressionError) Error() string {
	return fmt.Sprintf("invalid progression: step %d (rate %d, limit %d): %s",
		e.Index, e.Step.Rate, e.Step.Limit, e.Reason)
}

func (e *InvalidProgressionError) Unwrap() error {
	return ErrInvalidProgression
}

// MalformedScaleError identifies the token that failed to parse.
type MalformedScaleError struct {
	Scale  string // full input
	Token  string // offending step token
	Reason string
}

func (e *MalformedScaleError) Error() string {
	return fmt.Sprintf("malformed scale %q: token %q: %s", e.Scale, e.Token, e.Reason)
}

func (e *MalformedScaleError) Unwrap() error {
	return ErrMalformedScale
}
