/*
right.go - A licensed right and its royalty allocator

PURPOSE:
  A Right pairs one kind of license (print, ebook) with its own
  progressive royalty scale and its own allocator state. It turns a
  dated statement into monetary line items: the allocator splits the
  statement's copies across rate tiers, and each tier's slice is
  priced.

PRICING:
  due = copies x rate x price / 100

  computed in decimal arithmetic. The rate is whole percentage points,
  so the figure carries exactly the input price's precision plus two
  digits - no float rounding anywhere.

STATE:
  Each Right owns exactly one allocator. The allocator's cumulative
  position persists across statements until Reset; the Agreement layer
  resets every right before replaying a statement stream.

SEE ALSO:
  - royalty/allocator.go: The underlying engine
  - agreement.go: Sorts statements and tracks the advance
*/
package rights

import (
	"fmt"

	"github.com/inkpress/royalty-engine/royalty"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// =============================================================================
// RIGHT - Kind + scale + allocator
// =============================================================================

// Right is one right granted under a licensing agreement, with the
// progressive royalty scale negotiated for it. Not safe for concurrent
// use; rights share no state with each other.
type Right struct {
	kind        Kind
	progression royalty.Progression
	allocator   *royalty.Allocator
}

// NewRight builds a right on an already-assembled progression. The
// progression is validated once, here; an invalid scale produces no
// right (royalty.ErrInvalidProgression).
func NewRight(kind Kind, p royalty.Progression) (*Right, error) {
	allocator, err := royalty.NewAllocator(p)
	if err != nil {
		return nil, fmt.Errorf("right %q: %w", kind, err)
	}
	return &Right{kind: kind, progression: p, allocator: allocator}, nil
}

// RightFromScale builds a right from the textual scale encoding, e.g.
//
//	RightFromScale(KindTradeVolume, "7-5000,8-10000,9-0")
//
// Fails with royalty.ErrMalformedScale on a structural parse error and
// royalty.ErrInvalidProgression when the parsed scale breaks the
// ordering invariant.
func RightFromScale(kind Kind, scale string) (*Right, error) {
	p, err := royalty.ParseScale(scale)
	if err != nil {
		return nil, fmt.Errorf("right %q: %w", kind, err)
	}
	return NewRight(kind, p)
}

// Kind returns the right's kind.
func (r *Right) Kind() Kind { return r.kind }

// Progression returns the right's royalty scale.
func (r *Right) Progression() royalty.Progression { return r.progression }

// ApplyStatement feeds a statement's copies through the allocator and
// prices every resulting tier slice. Line items come back in tier
// order; their copies sum to the statement's copies exactly.
//
// AdvanceLeft is zero on the returned items - only the agreement
// layer, which sees the whole statement stream, can fill it in.
func (r *Right) ApplyStatement(stmt Statement) []ReportItem {
	allocations := r.allocator.Allocate(stmt.Copies)

	items := make([]ReportItem, len(allocations))
	for i, a := range allocations {
		items[i] = ReportItem{
			Date:   stmt.Date,
			Right:  r.kind,
			Copies: a.Copies,
			Rate:   fmt.Sprintf("%d%%", a.Rate),
			Price:  stmt.Price,
			Due:    due(a, stmt.Price),
		}
	}
	return items
}

// Reset returns the right's allocator to its initial state.
func (r *Right) Reset() {
	r.allocator.Reset()
}

// due computes copies x rate x price / 100 in exact decimal.
func due(a royalty.Allocation, price decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(a.Copies) * int64(a.Rate)).Mul(price).Div(oneHundred)
}
