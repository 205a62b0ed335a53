/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built agreements that populate the store with realistic
	data for testing and demos. Each scenario creates one agreement with
	its rights and a batch of statements demonstrating specific engine
	behavior (tier spills, returns recovery, multi-right reports).

AVAILABLE SCENARIOS:

	book-deal:        Trade volume + ebook rights, the classic fixture
	bestseller:       Large volumes that climb through every tier
	returns-storm:    Heavy returns unwinding earlier attributions

HOW SCENARIOS WORK:
 1. Parse a canned JSON definition via the factory
 2. Save the agreement record
 3. Append the bundled statements

USAGE VIA API:

	POST /api/scenarios/load
	{"id": "book-deal"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add the JSON definition to scenarioDefinitions

NOTE:

	Loading a scenario whose agreement already exists returns 409. The
	store is append-only; there is no reset endpoint.

SEE ALSO:
  - handlers.go: Shared handler plumbing
  - factory/agreement.go: Agreement JSON schema
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkpress/royalty-engine/rights"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "book-deal",
		Name:        "Book Deal",
		Description: "Trade volume + ebook rights with a modest advance and a return",
	},
	{
		ID:          "bestseller",
		Name:        "Bestseller",
		Description: "Sales volumes that spill through every royalty tier",
	},
	{
		ID:          "returns-storm",
		Name:        "Returns Storm",
		Description: "Heavy returns unwinding attributions across tiers",
	},
}

var scenarioDefinitions = map[string]string{
	"book-deal": `{
		"id": "glasshouse-novel",
		"name": "The Glasshouse - standard trade deal",
		"advance": "1500",
		"rights": [
			{"kind": "trade volume", "scale": "7-5000,8-10000,9-0"},
			{"kind": "ebook", "scale": "25-1000,40-0"}
		],
		"statements": [
			{"id": "gh-2016-h1-tv", "date": "2016-06-30", "kind": "trade volume", "copies": 143, "price": "28.40"},
			{"id": "gh-2016-h1-eb", "date": "2016-06-30", "kind": "ebook", "copies": 89, "price": "13.56"},
			{"id": "gh-2016-h2-tv", "date": "2016-12-31", "kind": "trade volume", "copies": 512, "price": "34.90"},
			{"id": "gh-2016-h2-eb", "date": "2016-12-31", "kind": "ebook", "copies": 124, "price": "14.23"},
			{"id": "gh-2017-h1-tv", "date": "2017-06-30", "kind": "trade volume", "copies": -45, "price": "33.20"}
		]
	}`,
	"bestseller": `{
		"id": "midnight-harbor",
		"name": "Midnight Harbor - lead title",
		"advance": "25000",
		"rights": [
			{"kind": "trade volume", "scale": "7-5000,8-10000,9-0"},
			{"kind": "ebook", "scale": "25-1000,40-0"}
		],
		"statements": [
			{"id": "mh-2016-h1-tv", "date": "2016-06-30", "kind": "trade volume", "copies": 4800, "price": "24.00"},
			{"id": "mh-2016-h1-eb", "date": "2016-06-30", "kind": "ebook", "copies": 950, "price": "11.99"},
			{"id": "mh-2016-h2-tv", "date": "2016-12-31", "kind": "trade volume", "copies": 9300, "price": "24.00"},
			{"id": "mh-2016-h2-eb", "date": "2016-12-31", "kind": "ebook", "copies": 2100, "price": "11.99"},
			{"id": "mh-2017-h1-tv", "date": "2017-06-30", "kind": "trade volume", "copies": 6500, "price": "19.00"}
		]
	}`,
	"returns-storm": `{
		"id": "paper-compass",
		"name": "The Paper Compass - heavy returns",
		"advance": "3000",
		"rights": [
			{"kind": "trade volume", "scale": "7-5000,8-10000,9-0"}
		],
		"statements": [
			{"id": "pc-2016-h1", "date": "2016-06-30", "kind": "trade volume", "copies": 7200, "price": "21.50"},
			{"id": "pc-2016-h2", "date": "2016-12-31", "kind": "trade volume", "copies": -3100, "price": "21.50"},
			{"id": "pc-2017-h1", "date": "2017-06-30", "kind": "trade volume", "copies": -2600, "price": "20.00"}
		]
	}`,
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario creates the agreement and statements for a scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	jsonDef, ok := scenarioDefinitions[req.ID]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario: "+req.ID, nil)
		return
	}

	def, err := h.Factory.ParseAgreement(jsonDef)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to parse scenario", err)
		return
	}

	ctx := r.Context()
	rec := def.Record(timeNow())
	if err := h.Store.SaveAgreement(ctx, rec); err != nil {
		if errors.Is(err, rights.ErrDuplicateAgreement) {
			writeError(w, http.StatusConflict, "Scenario agreement already loaded", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save agreement", err)
		return
	}

	if len(def.Statements) > 0 {
		if err := h.Store.AppendStatements(ctx, def.Statements); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save statements", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, toAgreementDTO(rec))
}
