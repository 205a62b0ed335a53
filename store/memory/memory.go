// Package memory provides an in-memory rights.Store for testing/dev.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/inkpress/royalty-engine/rights"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu         sync.RWMutex
	agreements map[string]rights.AgreementRecord
	order      []string // agreement IDs in save order
	statements map[string][]rights.StatementRecord
	ids        map[string]bool // statement IDs, duplicate rejection
}

var _ rights.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		agreements: make(map[string]rights.AgreementRecord),
		statements: make(map[string][]rights.StatementRecord),
		ids:        make(map[string]bool),
	}
}

func (m *Store) SaveAgreement(_ context.Context, rec rights.AgreementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.agreements[rec.ID]; ok {
		return fmt.Errorf("agreement %q: %w", rec.ID, rights.ErrDuplicateAgreement)
	}
	m.agreements[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *Store) GetAgreement(_ context.Context, id string) (*rights.AgreementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.agreements[id]
	if !ok {
		return nil, fmt.Errorf("agreement %q: %w", id, rights.ErrAgreementNotFound)
	}
	return &rec, nil
}

func (m *Store) ListAgreements(_ context.Context) ([]rights.AgreementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]rights.AgreementRecord, len(m.order))
	for i, id := range m.order {
		recs[i] = m.agreements[id]
	}
	return recs, nil
}

func (m *Store) AppendStatement(ctx context.Context, rec rights.StatementRecord) error {
	return m.AppendStatements(ctx, []rights.StatementRecord{rec})
}

func (m *Store) AppendStatements(_ context.Context, recs []rights.StatementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check everything first so the batch is all-or-nothing.
	seen := make(map[string]bool)
	for _, rec := range recs {
		if _, ok := m.agreements[rec.AgreementID]; !ok {
			return fmt.Errorf("agreement %q: %w", rec.AgreementID, rights.ErrAgreementNotFound)
		}
		if m.ids[rec.ID] || seen[rec.ID] {
			return fmt.Errorf("statement %q: %w", rec.ID, rights.ErrDuplicateStatement)
		}
		seen[rec.ID] = true
	}

	for _, rec := range recs {
		m.appendLocked(rec)
	}
	return nil
}

func (m *Store) appendLocked(rec rights.StatementRecord) {
	stmts := m.statements[rec.AgreementID]

	// Insert in date order, after any statement sharing the date -
	// replay depends on same-date statements keeping append order.
	i := sort.Search(len(stmts), func(i int) bool {
		return stmts[i].Date.After(rec.Date)
	})

	stmts = append(stmts, rights.StatementRecord{})
	copy(stmts[i+1:], stmts[i:])
	stmts[i] = rec
	m.statements[rec.AgreementID] = stmts
	m.ids[rec.ID] = true
}

func (m *Store) Statements(_ context.Context, agreementID string) ([]rights.StatementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]rights.StatementRecord, len(m.statements[agreementID]))
	copy(result, m.statements[agreementID])
	return result, nil
}
