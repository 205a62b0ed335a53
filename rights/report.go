/*
report.go - Royalty report line items and grouped rendering

PURPOSE:
  The royalty report is the stream of line items an agreement produces
  from its statements: one item per (statement, rate tier) pair, each
  carrying the amount due and the advance balance remaining after it.
  Rendering groups items by statement date - pure presentation over
  the item stream.

SEE ALSO:
  - right.go: Produces items (without the advance column)
  - agreement.go: Fills in the running advance balance
*/
package rights

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORT ITEM - One line of the royalty summary
// =============================================================================

// ReportItem is one entry in the royalty due summary. Copies is the
// slice billed at Rate ("N%"); Due is copies x rate x price / 100.
// AdvanceLeft is the advance remaining after this item and is
// populated only by Agreement.ApplyStatements - a right on its own
// does not know the agreement's advance.
type ReportItem struct {
	Date        Date
	Right       Kind
	Copies      int
	Rate        string
	Price       decimal.Decimal
	AdvanceLeft decimal.Decimal
	Due         decimal.Decimal
}

// =============================================================================
// GROUPED RENDERING
// =============================================================================

// GroupByDate splits a date-ordered item stream into consecutive
// same-date groups, preserving item order within each group.
func GroupByDate(items []ReportItem) [][]ReportItem {
	var groups [][]ReportItem
	for _, item := range items {
		if n := len(groups); n > 0 && groups[n-1][0].Date.Equal(item.Date) {
			groups[n-1] = append(groups[n-1], item)
			continue
		}
		groups = append(groups, []ReportItem{item})
	}
	return groups
}

// WriteReport renders the royalty summary grouped by date:
//
//	2016-06-30
//	  trade volume    143 @ 7%   price 28.40   due 284.284   advance left 1215.716
func WriteReport(w io.Writer, items []ReportItem) error {
	for _, group := range GroupByDate(items) {
		if _, err := fmt.Fprintln(w, group[0].Date); err != nil {
			return err
		}
		for _, item := range group {
			_, err := fmt.Fprintf(w, "  %-14s %6d @ %-4s price %s   due %s   advance left %s\n",
				item.Right, item.Copies, item.Rate, item.Price, item.Due, item.AdvanceLeft)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
