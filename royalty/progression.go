/*
progression.go - Scale validation and the textual scale encoding

PURPOSE:
  A progression is only usable once validated: rates strictly increase,
  cumulative limits strictly increase, and the final step carries the
  UnboundedLimit sentinel. Validation happens once, at the boundary -
  the allocator assumes a valid progression and never re-checks.

SCALE ENCODING:
  Licensing agreements configure scales as compact text, one rate-limit
  pair per step, comma separated:

    "7-5000,8-10000,9-0"

  reads as: 7% up to 5000 cumulative copies, 8% up to 10000, 9% above.
  Parsing is purely structural; the result must still pass Validate.

SEE ALSO:
  - allocator.go: Consumes validated progressions
  - errors.go: ErrInvalidProgression, ErrMalformedScale
*/
package royalty

import (
	"strconv"
	"strings"
)

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the progression invariant:
//   - the progression is non-empty
//   - the first step's rate and limit are each >= 0
//   - rates strictly increase step to step
//   - cumulative limits strictly increase step to step, except the
//     final step, whose limit must be exactly the UnboundedLimit sentinel
//
// Returns an *InvalidProgressionError (wrapping ErrInvalidProgression)
// naming the offending step.
func (p Progression) Validate() error {
	if len(p) == 0 {
		return &InvalidProgressionError{Index: 0, Reason: "progression is empty"}
	}

	if p[0].Rate < 0 {
		return &InvalidProgressionError{Index: 0, Step: p[0], Reason: "rate must not be negative"}
	}
	if p[0].Limit < 0 {
		return &InvalidProgressionError{Index: 0, Step: p[0], Reason: "limit must not be negative"}
	}

	for i := 1; i < len(p); i++ {
		if p[i].Rate <= p[i-1].Rate {
			return &InvalidProgressionError{Index: i, Step: p[i], Reason: "rate must increase"}
		}
		if i < len(p)-1 && p[i].Limit <= p[i-1].Limit {
			return &InvalidProgressionError{Index: i, Step: p[i], Reason: "limit must increase"}
		}
	}

	// The terminal step is always the unbounded one. This also covers
	// single-step progressions: a lone step with a finite limit would
	// leave the allocator nowhere to spill.
	last := len(p) - 1
	if p[last].Limit != UnboundedLimit {
		return &InvalidProgressionError{Index: last, Step: p[last], Reason: "final limit must be 0"}
	}

	return nil
}

// widths derives the per-step band width: how many copies fall inside
// each step before spilling to the next. The first step's width is its
// cumulative limit; step i>0 covers limit[i]-limit[i-1]. The final
// step keeps the UnboundedLimit sentinel as its width.
//
// Assumes a validated progression.
func (p Progression) widths() []int {
	w := make([]int, len(p))
	for i, step := range p {
		if i == 0 || step.Limit == UnboundedLimit {
			w[i] = step.Limit
		} else {
			w[i] = step.Limit - p[i-1].Limit
		}
	}
	return w
}

// =============================================================================
// SCALE ENCODING
// =============================================================================

// ParseScale parses the compact textual scale encoding into a
// progression: comma-separated "rate-limit" steps, e.g.
// "7-5000,8-10000,9-0". Structural failures (wrong step shape,
// non-integer token) return a *MalformedScaleError wrapping
// ErrMalformedScale.
//
// The returned progression is NOT validated; callers must still run
// Validate (NewAllocator does).
func ParseScale(scale string) (Progression, error) {
	var p Progression
	for _, token := range strings.Split(scale, ",") {
		rateStr, limitStr, ok := strings.Cut(token, "-")
		if !ok {
			return nil, &MalformedScaleError{Scale: scale, Token: token, Reason: "want rate-limit"}
		}
		rate, err := strconv.Atoi(rateStr)
		if err != nil {
			return nil, &MalformedScaleError{Scale: scale, Token: token, Reason: "rate is not an integer"}
		}
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, &MalformedScaleError{Scale: scale, Token: token, Reason: "limit is not an integer"}
		}
		p = append(p, Step{Rate: rate, Limit: limit})
	}
	return p, nil
}

// String renders the progression in the scale encoding. A validated
// progression round-trips through ParseScale unchanged.
func (p Progression) String() string {
	tokens := make([]string, len(p))
	for i, step := range p {
		tokens[i] = strconv.Itoa(step.Rate) + "-" + strconv.Itoa(step.Limit)
	}
	return strings.Join(tokens, ",")
}
