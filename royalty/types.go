/*
Package royalty provides the core tiered-allocation engine.

PURPOSE:
  This package contains the domain-agnostic algorithm at the heart of
  royalty computation: given a progressive rate scale and a running
  cumulative position, split a signed change in unit count across the
  rate tiers it touches. The package knows nothing about money, dates,
  rights, or agreements - only tiers and copy counts.

KEY CONCEPTS IN THIS FILE (types.go):
  - Step: One rate/limit pair in a progression
  - Progression: The ordered rate scale, immutable once validated
  - Allocation: A (copies, rate) pair describing one slice of a delta

DESIGN PRINCIPLES:
  1. Pure integers: The allocator deals in copy counts and percentage
     points. Monetary math (and its decimal precision concerns) lives
     in the rights package.
  2. Conservation: Every Allocate call yields allocations whose copies
     sum to the input delta exactly.
  3. Single ownership: Allocator state is private to one instance and
     never shared.

USAGE:
  p, err := royalty.ParseScale("7-5000,8-10000,9-0")
  alloc, err := royalty.NewAllocator(p)
  for _, a := range alloc.Allocate(5002) {
      // a.Copies copies billed at a.Rate percent
  }

SEE ALSO:
  - allocator.go: The allocation algorithm
  - progression.go: Validation and the textual scale encoding
  - errors.go: Error types
*/
package royalty

// =============================================================================
// STEP - One tier of a progressive rate scale
// =============================================================================

// Step is one step in a royalty progression. Rate is a percentage in
// whole points. Limit is the cumulative number of copies at which this
// step's band ends; the final step carries Limit == 0, meaning the
// band has no upper bound.
type Step struct {
	Rate  int
	Limit int
}

// UnboundedLimit is the sentinel Limit value marking a step with no
// upper bound. Only valid on the final step of a progression.
const UnboundedLimit = 0

// =============================================================================
// PROGRESSION - Ordered rate scale
// =============================================================================

// Progression is an ordered sequence of steps. Both rate and cumulative
// limit must strictly increase step to step; the final step's limit is
// the UnboundedLimit sentinel. Treat a validated progression as
// immutable - the allocator keeps a reference, not a copy.
type Progression []Step

// Rates returns the configured rates in tier order.
func (p Progression) Rates() []int {
	rates := make([]int, len(p))
	for i, step := range p {
		rates[i] = step.Rate
	}
	return rates
}

// =============================================================================
// ALLOCATION - One slice of an allocated delta
// =============================================================================

// Allocation records that Copies copies were billed at Rate percent.
// Copies is negative for returns.
type Allocation struct {
	Copies int
	Rate   int
}
