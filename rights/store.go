/*
store.go - Persistence interface for agreements and statements

PURPOSE:
  Defines the interface between the domain and the database. The store
  persists agreement configurations and the statements reported
  against them - never computed report figures. Reports are derived by
  replay (sort, reset, apply), so there is nothing stored that can go
  stale.

APPEND-ONLY STATEMENTS:
  Statements have no Update or Delete. A wrong statement is corrected
  by appending a new one with negative copies - which is exactly the
  returns mechanism the allocator already handles. Each statement
  carries a caller-chosen ID; re-appending an existing ID fails with
  ErrDuplicateStatement, which makes retries safe.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for testing/dev

SEE ALSO:
  - agreement.go: BuildAgreement turns records back into domain objects
  - store/sqlite/sqlite.go, store/memory/memory.go
*/
package rights

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORDS - Storage representation
// =============================================================================

// RightConfig is the stored configuration of one granted right: its
// kind and the scale encoding of its progression.
type RightConfig struct {
	Kind  Kind
	Scale string
}

// AgreementRecord is the stored form of a licensing agreement.
type AgreementRecord struct {
	ID        string
	Name      string
	Advance   decimal.Decimal
	Rights    []RightConfig
	CreatedAt time.Time
}

// StatementRecord is the stored form of one reported statement.
type StatementRecord struct {
	ID          string // caller-chosen, unique; duplicate appends are rejected
	AgreementID string
	Date        Date
	Kind        Kind
	Copies      int
	Price       decimal.Decimal
	CreatedAt   time.Time
}

// Statement converts the record to its domain form.
func (r StatementRecord) Statement() Statement {
	return Statement{Date: r.Date, Kind: r.Kind, Copies: r.Copies, Price: r.Price}
}

// =============================================================================
// STORE - Persistence interface
// =============================================================================

// Store persists agreements and their statements. Statement writes are
// APPEND-ONLY: no update, no delete. Corrections are appended as
// negative-copy statements.
type Store interface {
	// SaveAgreement persists an agreement configuration.
	SaveAgreement(ctx context.Context, rec AgreementRecord) error

	// GetAgreement returns an agreement by ID, or ErrAgreementNotFound.
	GetAgreement(ctx context.Context, id string) (*AgreementRecord, error)

	// ListAgreements returns all agreements, oldest first.
	ListAgreements(ctx context.Context) ([]AgreementRecord, error)

	// AppendStatement adds one statement. Fails with
	// ErrDuplicateStatement if the statement ID exists and
	// ErrAgreementNotFound if the agreement does not.
	AppendStatement(ctx context.Context, rec StatementRecord) error

	// AppendStatements adds multiple statements atomically: either all
	// are written or none.
	AppendStatements(ctx context.Context, recs []StatementRecord) error

	// Statements returns all statements for an agreement ordered by
	// date, same-date statements in append order.
	Statements(ctx context.Context, agreementID string) ([]StatementRecord, error)
}

// =============================================================================
// REHYDRATION - Records back to domain objects
// =============================================================================

// BuildAgreement reconstructs a computable Agreement from its stored
// record and statement history. Scales are re-parsed and re-validated;
// a record that fails here was corrupted or written around the factory.
func BuildAgreement(rec AgreementRecord, stmts []StatementRecord) (*Agreement, error) {
	agr := NewAgreement(rec.Advance)
	for _, rc := range rec.Rights {
		right, err := RightFromScale(rc.Kind, rc.Scale)
		if err != nil {
			return nil, fmt.Errorf("agreement %q: %w", rec.ID, err)
		}
		agr.AddRight(right)
	}
	for _, sr := range stmts {
		agr.AddStatements(sr.Statement())
	}
	return agr, nil
}
