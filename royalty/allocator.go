/*
allocator.go - The stateful tiered-allocation algorithm

PURPOSE:
  The Allocator answers the inverse of "what is the marginal rate at
  cumulative position N": given a signed change in copy count, it
  splits the change across the rate tiers the change passes through,
  so each copy is billed at the rate that is in effect for that
  specific incremental copy.

CRITICAL INVARIANTS:
  1. CONSERVATION: The copies of the yielded allocations sum to the
     input delta exactly.
  2. MONOTONIC CURSOR: Sales only move the active tier forward,
     returns only move it backward.
  3. SYMMETRY: Allocate(d) followed by Allocate(-d) restores the
     cursor and every tier attribution to the prior state.
  4. BOUNDED OUTPUT: One call yields at most len(progression)
     allocations - no unbounded iteration.

BOUNDARY RULE:
  A delta that lands exactly on a tier's cumulative limit stays in the
  tier being filled. The transition to the next tier happens on the
  first copy that would exceed the limit, never on the copy that
  reaches it.

NEGATIVE ATTRIBUTION:
  Returns that exceed everything ever attributed to the bottom tier do
  NOT fail - tier 0's attribution goes negative. This models returns
  arriving before the matching sales (out-of-order or cross-period
  statements). Intentional but unverified against any agreement that
  exercises it; do not add a floor here without checking downstream
  expectations.

CONCURRENCY:
  One allocator per licensed right, no sharing. Allocate and Reset are
  synchronous and non-blocking; callers wanting parallelism run one
  allocator per right.

SEE ALSO:
  - progression.go: Validation and width derivation
  - rights/right.go: Monetary wrapper around this engine
*/
package royalty

// =============================================================================
// ALLOCATOR - Stateful per-right tier engine
// =============================================================================

// Allocator splits signed copy deltas across the tiers of a
// progressive royalty scale, tracking how many copies have been
// attributed to each tier so far. Not safe for concurrent use; use
// one allocator per right.
type Allocator struct {
	progression Progression
	widths      []int // per-tier band width, UnboundedLimit = no bound
	counts      []int // copies attributed per tier; tier 0 may go negative
	tier        int   // index of the active tier
}

// NewAllocator builds an allocator for the given progression. The
// progression is validated here, once - a progression that fails
// Validate produces no allocator.
func NewAllocator(p Progression) (*Allocator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Allocator{
		progression: p,
		widths:      p.widths(),
		counts:      make([]int, len(p)),
	}, nil
}

// Progression returns the scale this allocator was built from.
func (a *Allocator) Progression() Progression {
	return a.progression
}

// Allocate applies a signed change in copy count and reports how the
// change splits across rate tiers, in the order the tiers were
// touched. Positive deltas fill tiers upward, negative deltas unwind
// them downward, zero yields nothing. Never fails; see the package
// notes on conservation and negative attribution.
func (a *Allocator) Allocate(delta int) []Allocation {
	switch {
	case delta > 0:
		return a.push(delta)
	case delta < 0:
		return a.pop(-delta)
	default:
		return nil
	}
}

// push consumes copies from the active tier upward. When the active
// tier has room (or no bound), everything lands there; otherwise the
// tier is filled to its width and the remainder spills to the next.
func (a *Allocator) push(copies int) []Allocation {
	var out []Allocation
	for copies > 0 {
		rate := a.progression[a.tier].Rate
		width := a.widths[a.tier]
		if width == UnboundedLimit || a.counts[a.tier]+copies <= width {
			out = append(out, Allocation{Copies: copies, Rate: rate})
			a.counts[a.tier] += copies
			copies = 0
		} else {
			room := width - a.counts[a.tier]
			out = append(out, Allocation{Copies: room, Rate: rate})
			a.counts[a.tier] = width
			a.tier++
			copies -= room
		}
	}
	return out
}

// pop removes copies from the active tier downward. The bottom tier
// has no lower bound: once the cursor is at tier 0 the whole
// remainder lands there, even if that drives the attribution negative.
func (a *Allocator) pop(copies int) []Allocation {
	var out []Allocation
	for copies > 0 {
		rate := a.progression[a.tier].Rate
		if a.tier == 0 || a.counts[a.tier]-copies >= 0 {
			out = append(out, Allocation{Copies: -copies, Rate: rate})
			a.counts[a.tier] -= copies
			copies = 0
		} else {
			attributed := a.counts[a.tier]
			out = append(out, Allocation{Copies: -attributed, Rate: rate})
			a.counts[a.tier] = 0
			a.tier--
			copies -= attributed
		}
	}
	return out
}

// Reset returns the allocator to its initial state: cursor at tier 0,
// every attribution zero. Idempotent.
func (a *Allocator) Reset() {
	a.tier = 0
	for i := range a.counts {
		a.counts[i] = 0
	}
}
