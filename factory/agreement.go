/*
Package factory provides JSON to Go agreement conversion.

PURPOSE:
  Converts JSON agreement definitions into rights.Agreement objects and
  storage records. This enables agreement configuration without code
  changes - a rights manager can define a deal in JSON, and the factory
  validates kinds, scales, and progressions before anything is stored.

JSON SCHEMA:
  {
    "id": "glasshouse-novel",
    "name": "The Glasshouse - standard trade deal",
    "advance": "1500",
    "rights": [
      {"kind": "trade volume", "scale": "7-5000,8-10000,9-0"},
      {"kind": "ebook", "scale": "25-1000,40-0"}
    ],
    "statements": [
      {"id": "s-2016-h1-tv", "date": "2016-06-30", "kind": "trade volume",
       "copies": 143, "price": "28.40"}
    ]
  }

  Monetary fields (advance, price) are JSON strings, not numbers -
  they parse straight into decimal.Decimal with no float detour.

VALIDATION:
  - every right kind must be in the rights registry
  - every scale must parse (royalty.ErrMalformedScale) and validate
    (royalty.ErrInvalidProgression)
  - statement kinds must name a right granted in the same definition
  - dates are ISO ("2006-01-02")

USAGE:
  f := factory.NewAgreementFactory()
  def, err := f.ParseAgreement(jsonStr)   // validated definition
  agr, err := def.Agreement()             // computable domain object
  rec := def.Record(time.Now())           // storage record

SEE ALSO:
  - rights/types.go: Kind registry
  - royalty/progression.go: Scale parsing and validation
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/inkpress/royalty-engine/rights"
	"github.com/inkpress/royalty-engine/royalty"
	"github.com/shopspring/decimal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// AgreementJSON is the JSON representation of a licensing agreement.
type AgreementJSON struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Advance    string          `json:"advance"`
	Rights     []RightJSON     `json:"rights"`
	Statements []StatementJSON `json:"statements,omitempty"`
}

// RightJSON is one granted right: its kind and scale encoding.
type RightJSON struct {
	Kind  string `json:"kind"`
	Scale string `json:"scale"`
}

// StatementJSON is one reported statement.
type StatementJSON struct {
	ID     string `json:"id"`
	Date   string `json:"date"` // ISO, "2006-01-02"
	Kind   string `json:"kind"`
	Copies int    `json:"copies"`
	Price  string `json:"price"`
}

// =============================================================================
// VALIDATED DEFINITION
// =============================================================================

// AgreementDefinition is a parsed and fully validated agreement. All
// scales have been checked, all kinds are registered, all decimals and
// dates parsed.
type AgreementDefinition struct {
	ID         string
	Name       string
	Advance    decimal.Decimal
	Rights     []rights.RightConfig
	Statements []rights.StatementRecord
}

// Agreement builds the computable domain object from the definition.
func (d *AgreementDefinition) Agreement() (*rights.Agreement, error) {
	return rights.BuildAgreement(d.Record(time.Time{}), d.Statements)
}

// Record converts the definition to its storage record.
func (d *AgreementDefinition) Record(createdAt time.Time) rights.AgreementRecord {
	return rights.AgreementRecord{
		ID:        d.ID,
		Name:      d.Name,
		Advance:   d.Advance,
		Rights:    d.Rights,
		CreatedAt: createdAt,
	}
}

// =============================================================================
// FACTORY
// =============================================================================

// AgreementFactory converts JSON definitions into validated agreements.
type AgreementFactory struct{}

func NewAgreementFactory() *AgreementFactory {
	return &AgreementFactory{}
}

// ParseAgreement parses and validates a JSON agreement definition.
// Nothing about the definition is trusted until every kind, scale, and
// decimal in it has been checked.
func (f *AgreementFactory) ParseAgreement(jsonStr string) (*AgreementDefinition, error) {
	var raw AgreementJSON
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("parse agreement: %w", err)
	}

	if raw.ID == "" {
		return nil, fmt.Errorf("parse agreement: missing id")
	}
	if len(raw.Rights) == 0 {
		return nil, fmt.Errorf("parse agreement %q: no rights granted", raw.ID)
	}

	advance, err := decimal.NewFromString(raw.Advance)
	if err != nil {
		return nil, fmt.Errorf("parse agreement %q: advance %q: %w", raw.ID, raw.Advance, err)
	}

	def := &AgreementDefinition{
		ID:      raw.ID,
		Name:    raw.Name,
		Advance: advance,
	}

	granted := make(map[rights.Kind]bool)
	for _, rj := range raw.Rights {
		kind := rights.Kind(rj.Kind)
		if !rights.KnownKind(kind) {
			return nil, fmt.Errorf("parse agreement %q: %w: %q", raw.ID, rights.ErrUnknownRight, rj.Kind)
		}
		if granted[kind] {
			return nil, fmt.Errorf("parse agreement %q: right %q granted twice", raw.ID, rj.Kind)
		}
		p, err := royalty.ParseScale(rj.Scale)
		if err != nil {
			return nil, fmt.Errorf("parse agreement %q: right %q: %w", raw.ID, rj.Kind, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("parse agreement %q: right %q: %w", raw.ID, rj.Kind, err)
		}
		granted[kind] = true
		def.Rights = append(def.Rights, rights.RightConfig{Kind: kind, Scale: rj.Scale})
	}

	for _, sj := range raw.Statements {
		rec, err := f.parseStatement(raw.ID, sj, granted)
		if err != nil {
			return nil, err
		}
		def.Statements = append(def.Statements, rec)
	}

	return def, nil
}

// ParseStatements parses statement definitions against an existing
// agreement record (used when statements arrive after the agreement
// was created). Kinds must name rights the agreement grants.
func (f *AgreementFactory) ParseStatements(rec rights.AgreementRecord, defs []StatementJSON) ([]rights.StatementRecord, error) {
	granted := make(map[rights.Kind]bool)
	for _, rc := range rec.Rights {
		granted[rc.Kind] = true
	}

	recs := make([]rights.StatementRecord, 0, len(defs))
	for _, sj := range defs {
		sr, err := f.parseStatement(rec.ID, sj, granted)
		if err != nil {
			return nil, err
		}
		recs = append(recs, sr)
	}
	return recs, nil
}

func (f *AgreementFactory) parseStatement(agreementID string, sj StatementJSON, granted map[rights.Kind]bool) (rights.StatementRecord, error) {
	if sj.ID == "" {
		return rights.StatementRecord{}, fmt.Errorf("agreement %q: statement missing id", agreementID)
	}
	kind := rights.Kind(sj.Kind)
	if !granted[kind] {
		return rights.StatementRecord{}, fmt.Errorf("agreement %q: statement %q: %w: %q",
			agreementID, sj.ID, rights.ErrUnknownRight, sj.Kind)
	}
	date, err := rights.ParseDate(sj.Date)
	if err != nil {
		return rights.StatementRecord{}, fmt.Errorf("agreement %q: statement %q: date %q: %w",
			agreementID, sj.ID, sj.Date, err)
	}
	price, err := decimal.NewFromString(sj.Price)
	if err != nil {
		return rights.StatementRecord{}, fmt.Errorf("agreement %q: statement %q: price %q: %w",
			agreementID, sj.ID, sj.Price, err)
	}
	return rights.StatementRecord{
		ID:          sj.ID,
		AgreementID: agreementID,
		Date:        date,
		Kind:        kind,
		Copies:      sj.Copies,
		Price:       price,
	}, nil
}
