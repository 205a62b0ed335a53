/*
Package sqlite provides a SQLite-backed implementation of rights.Store.

PURPOSE:
  Persists agreement configurations and the statements reported against
  them. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

WHAT IS STORED:
  agreements:        Advance and metadata per licensing agreement
  agreement_rights:  Granted rights (kind + scale encoding)
  statements:        Append-only log of reported statements

  Computed report figures are NEVER stored. Reports are derived by
  replaying statements through the allocators, so there is no cached
  figure that can drift from the statements it came from.

APPEND-ONLY ENFORCEMENT:
  The statements table has no UPDATE or DELETE path. Corrections are
  appended as negative-copy statements - the same mechanism the
  allocator uses for returns. Duplicate statement IDs are rejected, so
  retried writes are safe.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/royalties.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - rights/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/inkpress/royalty-engine/rights"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store implements rights.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ rights.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" gets its own database, so
	// keep the pool at one connection. Writes serialize through s.mu
	// anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agreements (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		advance TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agreement_rights (
		agreement_id TEXT NOT NULL REFERENCES agreements(id),
		kind TEXT NOT NULL,
		scale TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (agreement_id, kind)
	);

	-- Statements (append-only: no UPDATE, no DELETE)
	CREATE TABLE IF NOT EXISTS statements (
		id TEXT PRIMARY KEY,
		agreement_id TEXT NOT NULL REFERENCES agreements(id),
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		copies INTEGER NOT NULL,
		price TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Report computation replays statements in date order (hot path)
	CREATE INDEX IF NOT EXISTS idx_statements_agreement_date
		ON statements(agreement_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// AGREEMENTS
// =============================================================================

// SaveAgreement persists an agreement and its granted rights.
func (s *Store) SaveAgreement(ctx context.Context, rec rights.AgreementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM agreements WHERE id = ?)`, rec.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("agreement %q: %w", rec.ID, rights.ErrDuplicateAgreement)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO agreements (id, name, advance, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Advance.String(), createdAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	for i, rc := range rec.Rights {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO agreement_rights (agreement_id, kind, scale, position) VALUES (?, ?, ?, ?)`,
			rec.ID, string(rc.Kind), rc.Scale, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetAgreement returns an agreement by ID, or rights.ErrAgreementNotFound.
func (s *Store) GetAgreement(ctx context.Context, id string) (*rights.AgreementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, advance, created_at FROM agreements WHERE id = ?`, id)

	rec, err := scanAgreement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("agreement %q: %w", id, rights.ErrAgreementNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadRights(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListAgreements returns all agreements, oldest first.
func (s *Store) ListAgreements(ctx context.Context) ([]rights.AgreementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, advance, created_at FROM agreements ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []rights.AgreementRecord
	for rows.Next() {
		rec, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recs {
		if err := s.loadRights(ctx, &recs[i]); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (s *Store) loadRights(ctx context.Context, rec *rights.AgreementRecord) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, scale FROM agreement_rights WHERE agreement_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, scale string
		if err := rows.Scan(&kind, &scale); err != nil {
			return err
		}
		rec.Rights = append(rec.Rights, rights.RightConfig{Kind: rights.Kind(kind), Scale: scale})
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgreement(row rowScanner) (*rights.AgreementRecord, error) {
	var rec rights.AgreementRecord
	var advance, createdAt string
	if err := row.Scan(&rec.ID, &rec.Name, &advance, &createdAt); err != nil {
		return nil, err
	}

	adv, err := decimal.NewFromString(advance)
	if err != nil {
		return nil, fmt.Errorf("agreement %q: corrupt advance %q: %w", rec.ID, advance, err)
	}
	rec.Advance = adv

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("agreement %q: corrupt created_at %q: %w", rec.ID, createdAt, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}

// =============================================================================
// STATEMENTS
// =============================================================================

// AppendStatement adds one statement. Append-only.
func (s *Store) AppendStatement(ctx context.Context, rec rights.StatementRecord) error {
	return s.AppendStatements(ctx, []rights.StatementRecord{rec})
}

// AppendStatements adds multiple statements atomically: either all are
// written or none.
func (s *Store) AppendStatements(ctx context.Context, recs []rights.StatementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, rec := range recs {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM agreements WHERE id = ?)`, rec.AgreementID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("agreement %q: %w", rec.AgreementID, rights.ErrAgreementNotFound)
		}

		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM statements WHERE id = ?)`, rec.ID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("statement %q: %w", rec.ID, rights.ErrDuplicateStatement)
		}

		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO statements (id, agreement_id, date, kind, copies, price, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.AgreementID, rec.Date.String(), string(rec.Kind),
			rec.Copies, rec.Price.String(), createdAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Statements returns all statements for an agreement in date order,
// same-date statements in append order (rowid).
func (s *Store) Statements(ctx context.Context, agreementID string) ([]rights.StatementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agreement_id, date, kind, copies, price, created_at
		 FROM statements WHERE agreement_id = ? ORDER BY date, rowid`, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []rights.StatementRecord
	for rows.Next() {
		var rec rights.StatementRecord
		var date, kind, price, createdAt string
		if err := rows.Scan(&rec.ID, &rec.AgreementID, &date, &kind, &rec.Copies, &price, &createdAt); err != nil {
			return nil, err
		}

		rec.Date, err = rights.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("statement %q: corrupt date %q: %w", rec.ID, date, err)
		}
		rec.Kind = rights.Kind(kind)
		rec.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("statement %q: corrupt price %q: %w", rec.ID, price, err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("statement %q: corrupt created_at %q: %w", rec.ID, createdAt, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
