package rights

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownRight is returned when a statement or config names a
	// right kind the agreement does not grant (or, at the boundary, a
	// kind missing from the registry).
	ErrUnknownRight = errors.New("unknown right")

	// ErrAgreementNotFound is returned when a referenced agreement
	// does not exist in the store.
	ErrAgreementNotFound = errors.New("agreement not found")

	// ErrDuplicateAgreement is returned when saving an agreement whose
	// ID already exists.
	ErrDuplicateAgreement = errors.New("duplicate agreement")

	// ErrDuplicateStatement is returned when appending a statement
	// whose ID already exists. Statements are append-only; corrections
	// are recorded as new statements with negative copies.
	ErrDuplicateStatement = errors.New("duplicate statement")
)
