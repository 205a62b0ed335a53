/*
Package rights implements royalty bookkeeping for licensed rights.

PURPOSE:
  This package wraps the royalty allocation engine with the licensing
  domain: rights granted under an agreement (print edition, ebook),
  the sales statements publishers report per right, the monetary line
  items those statements produce, and the agreement-level advance
  balance running across them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Kind: A licensed right kind, drawn from a closed registry
  - Statement: A dated sales report (copies may be negative = returns)
  - Registry: Kind lookup for config/storage deserialization

DESIGN PRINCIPLES:
  1. Precision: Prices and due amounts use decimal.Decimal - never
     floats - so report figures match contract arithmetic exactly.
  2. Closed kinds: Rights are looked up by kind name, but only names
     in the registry are accepted at the boundary.
  3. Replay: Reports are always recomputed from sorted statements
     against freshly reset allocators; no computed figure is stored.

USAGE:
  right, err := rights.RightFromScale(rights.KindTradeVolume, "7-5000,8-10000,9-0")
  agr := rights.NewAgreement(decimal.NewFromInt(1500), right)
  agr.AddStatements(rights.Statement{
      Date:   rights.NewDate(2016, time.June, 30),
      Kind:   rights.KindTradeVolume,
      Copies: 143,
      Price:  decimal.RequireFromString("28.40"),
  })
  items, err := agr.ApplyStatements()

SEE ALSO:
  - right.go: Per-right allocator wrapper producing line items
  - agreement.go: Advance tracking across sorted statements
  - report.go: Grouped report rendering
*/
package rights

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND - Licensed right kind
// =============================================================================

// Kind names a licensed right: a distribution format or sales channel
// the agreement grants. Kinds double as the key matching statements to
// rights, so each kind appears at most once per agreement.
type Kind string

const (
	// KindTradeVolume is the right to sell the print edition through
	// traditional retail channels.
	KindTradeVolume Kind = "trade volume"

	// KindEbook is the right to sell the electronic edition.
	KindEbook Kind = "ebook"
)

func (k Kind) String() string { return string(k) }

// =============================================================================
// KIND REGISTRY
// =============================================================================

var (
	kindRegistry = make(map[Kind]bool)
	registryMu   sync.RWMutex
)

func init() {
	RegisterKind(KindTradeVolume)
	RegisterKind(KindEbook)
}

// RegisterKind adds a kind to the registry. The registry is the closed
// set of names the factory, store, and API accept; register new kinds
// from init() when extending the domain.
func RegisterKind(k Kind) {
	registryMu.Lock()
	defer registryMu.Unlock()
	kindRegistry[k] = true
}

// KnownKind reports whether a kind name is registered.
func KnownKind(k Kind) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return kindRegistry[k]
}

// Kinds returns all registered kinds, sorted by name.
func Kinds() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]Kind, 0, len(kindRegistry))
	for k := range kindRegistry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// =============================================================================
// STATEMENT - Dated sales report for one right
// =============================================================================

// Statement is a sales report sent to the rights owner by the
// publisher for one accounting period: how many copies sold at what
// price. Negative copies record returns.
type Statement struct {
	Date   Date
	Kind   Kind
	Copies int
	Price  decimal.Decimal
}
