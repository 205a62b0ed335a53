/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AS STRINGS:
  Every monetary field (advance, price, due, advance_left) is a JSON
  string, never a number. The engine computes in exact decimal; pushing
  figures through float64 on the way out would undo that.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/agreement.go: AgreementJSON/StatementJSON request shapes
*/
package api

import (
	"time"

	"github.com/inkpress/royalty-engine/factory"
	"github.com/inkpress/royalty-engine/rights"
	"github.com/shopspring/decimal"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AgreementDTO represents an agreement in API responses.
type AgreementDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Advance   string     `json:"advance"`
	Rights    []RightDTO `json:"rights"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// RightDTO represents one granted right.
type RightDTO struct {
	Kind  string `json:"kind"`
	Scale string `json:"scale"`
}

// CreateAgreementRequest is the request to create an agreement; it is
// the factory's JSON schema verbatim.
type CreateAgreementRequest = factory.AgreementJSON

// AddStatementsRequest is the request to append statements to an
// existing agreement.
type AddStatementsRequest struct {
	Statements []factory.StatementJSON `json:"statements"`
}

// StatementDTO represents a stored statement.
type StatementDTO struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Kind   string `json:"kind"`
	Copies int    `json:"copies"`
	Price  string `json:"price"`
}

// ReportItemDTO is one line of the royalty report.
type ReportItemDTO struct {
	Right       string `json:"right"`
	Copies      int    `json:"copies"`
	Rate        string `json:"rate"`
	Price       string `json:"price"`
	Due         string `json:"due"`
	AdvanceLeft string `json:"advance_left"`
}

// ReportGroupDTO groups report items by statement date.
type ReportGroupDTO struct {
	Date  string          `json:"date"`
	Items []ReportItemDTO `json:"items"`
}

// ReportDTO is the full royalty report for an agreement.
type ReportDTO struct {
	AgreementID string           `json:"agreement_id"`
	Advance     string           `json:"advance"`
	Groups      []ReportGroupDTO `json:"groups"`
	TotalDue    string           `json:"total_due"`
	AdvanceLeft string           `json:"advance_left"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAgreementDTO(rec rights.AgreementRecord) AgreementDTO {
	dto := AgreementDTO{
		ID:      rec.ID,
		Name:    rec.Name,
		Advance: rec.Advance.String(),
		Rights:  make([]RightDTO, len(rec.Rights)),
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	for i, rc := range rec.Rights {
		dto.Rights[i] = RightDTO{Kind: string(rc.Kind), Scale: rc.Scale}
	}
	return dto
}

func toStatementDTOs(recs []rights.StatementRecord) []StatementDTO {
	dtos := make([]StatementDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = StatementDTO{
			ID:     rec.ID,
			Date:   rec.Date.String(),
			Kind:   string(rec.Kind),
			Copies: rec.Copies,
			Price:  rec.Price.String(),
		}
	}
	return dtos
}

func toReportDTO(rec rights.AgreementRecord, items []rights.ReportItem) ReportDTO {
	dto := ReportDTO{
		AgreementID: rec.ID,
		Advance:     rec.Advance.String(),
		Groups:      []ReportGroupDTO{},
		AdvanceLeft: rec.Advance.String(),
	}

	totalDue := decimal.Zero
	for _, group := range rights.GroupByDate(items) {
		g := ReportGroupDTO{Date: group[0].Date.String()}
		for _, item := range group {
			totalDue = totalDue.Add(item.Due)
			g.Items = append(g.Items, ReportItemDTO{
				Right:       string(item.Right),
				Copies:      item.Copies,
				Rate:        item.Rate,
				Price:       item.Price.String(),
				Due:         item.Due.String(),
				AdvanceLeft: item.AdvanceLeft.String(),
			})
		}
		dto.Groups = append(dto.Groups, g)
	}

	dto.TotalDue = totalDue.String()
	if len(items) > 0 {
		dto.AdvanceLeft = items[len(items)-1].AdvanceLeft.String()
	}
	return dto
}
