/*
agreement.go - Licensing agreement: advance + granted rights

PURPOSE:
  An Agreement holds the advance (a prepayment against future
  royalties), the rights granted under the license, and the statements
  reported so far. Applying the statements produces the royalty report:
  statements are sorted by date, every right's allocator is reset, and
  each statement is replayed in order while the advance balance is
  decremented by every amount due.

REPLAY, NOT INCREMENT:
  ApplyStatements always recomputes from scratch. Statements can arrive
  out of order (the publisher's half-year reports, late corrections),
  and the tier a copy bills at depends on everything sold before it -
  so the only safe order to account in is date order over the full
  stream. Sorting is stable: statements sharing a date keep the order
  they were added in.

SEE ALSO:
  - right.go: Per-right allocation and pricing
  - store.go: Persistent agreement/statement records
*/
package rights

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGREEMENT - Advance + rights + reported statements
// =============================================================================

// Agreement is a licensing agreement: an advance plus the rights
// granted in the license, keyed by kind. Not safe for concurrent use.
type Agreement struct {
	advance    decimal.Decimal
	rights     map[Kind]*Right
	statements []Statement
}

// NewAgreement creates an agreement with the given advance and rights.
func NewAgreement(advance decimal.Decimal, rights ...*Right) *Agreement {
	a := &Agreement{
		advance: advance,
		rights:  make(map[Kind]*Right),
	}
	for _, r := range rights {
		a.AddRight(r)
	}
	return a
}

// Advance returns the agreed advance.
func (a *Agreement) Advance() decimal.Decimal { return a.advance }

// AddRight grants a right under the agreement. A right of the same
// kind replaces the previous one.
func (a *Agreement) AddRight(r *Right) {
	a.rights[r.Kind()] = r
}

// Right returns the granted right of the given kind, or nil.
func (a *Agreement) Right(kind Kind) *Right {
	return a.rights[kind]
}

// Rights returns the granted rights in kind order.
func (a *Agreement) Rights() []*Right {
	kinds := make([]Kind, 0, len(a.rights))
	for k := range a.rights {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	rights := make([]*Right, len(kinds))
	for i, k := range kinds {
		rights[i] = a.rights[k]
	}
	return rights
}

// AddStatements records sales statements against the agreement. No
// computation happens here; statements take effect on the next
// ApplyStatements.
func (a *Agreement) AddStatements(stmts ...Statement) {
	a.statements = append(a.statements, stmts...)
}

// Statements returns the recorded statements in the order they are
// currently held (date order after an ApplyStatements call).
func (a *Agreement) Statements() []Statement {
	return a.statements
}

// ApplyStatements computes the royalty report: sorts statements by
// date (stable), resets every right, replays the statements in order,
// and decrements the running advance balance by each line item's due
// amount. Fails with ErrUnknownRight when a statement names a kind the
// agreement does not grant; no partial report is returned.
func (a *Agreement) ApplyStatements() ([]ReportItem, error) {
	a.sortStatements()
	a.resetRights()

	advanceLeft := a.advance
	var report []ReportItem
	for _, stmt := range a.statements {
		right, ok := a.rights[stmt.Kind]
		if !ok {
			return nil, fmt.Errorf("statement dated %s: %w: %q", stmt.Date, ErrUnknownRight, stmt.Kind)
		}
		for _, item := range right.ApplyStatement(stmt) {
			advanceLeft = advanceLeft.Sub(item.Due)
			item.AdvanceLeft = advanceLeft
			report = append(report, item)
		}
	}
	return report, nil
}

func (a *Agreement) resetRights() {
	for _, r := range a.rights {
		r.Reset()
	}
}

func (a *Agreement) sortStatements() {
	sort.SliceStable(a.statements, func(i, j int) bool {
		return a.statements[i].Date.Before(a.statements[j].Date)
	})
}
