/*
handlers_test.go - HTTP tests for the royalty API

Tests for:
- Agreement creation, retrieval and listing
- Statement appends, duplicate detection
- Report computation over the full statement history
- Right-kind registry and demo scenarios
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/royalty-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(NewRouter(NewHandler(store)))
	t.Cleanup(srv.Close)
	return srv
}

const bookDealJSON = `{
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
}`

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err, "POST %s failed", url)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out), "Failed to decode response")
	return out
}

func createBookDeal(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/agreements", bookDealJSON)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "Failed to create agreement")
}

// =============================================================================
// AGREEMENT TESTS
// =============================================================================

func TestCreateAgreement_Success(t *testing.T) {
	// GIVEN: A running server
	srv := newTestServer(t)

	// WHEN: Creating an agreement from a JSON definition
	resp := postJSON(t, srv.URL+"/api/agreements", bookDealJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dto := decodeBody[AgreementDTO](t, resp)

	// THEN: The response echoes the stored record
	assert.Equal(t, "glasshouse-novel", dto.ID)
	assert.Equal(t, "1500", dto.Advance)
	require.Len(t, dto.Rights, 2)
	assert.Equal(t, "trade volume", dto.Rights[0].Kind)
	assert.Equal(t, "7-5000,8-10000,9-0", dto.Rights[0].Scale)
	assert.NotEmpty(t, dto.CreatedAt)
}

func TestCreateAgreement_DuplicateID(t *testing.T) {
	// GIVEN: An agreement already on file
	srv := newTestServer(t)
	createBookDeal(t, srv)

	// WHEN: Creating it again
	resp := postJSON(t, srv.URL+"/api/agreements", bookDealJSON)
	defer resp.Body.Close()

	// THEN: Conflict
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateAgreement_InvalidInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "malformed scale",
			body: `{"id": "a1", "name": "A", "advance": "100",
				"rights": [{"kind": "ebook", "scale": "25;1000"}]}`,
		},
		{
			name: "invalid progression",
			body: `{"id": "a2", "name": "A", "advance": "100",
				"rights": [{"kind": "ebook", "scale": "40-1000,25-0"}]}`,
		},
		{
			name: "unknown kind",
			body: `{"id": "a3", "name": "A", "advance": "100",
				"rights": [{"kind": "audiobook", "scale": "25-0"}]}`,
		},
		{
			name: "bad advance",
			body: `{"id": "a4", "name": "A", "advance": "lots",
				"rights": [{"kind": "ebook", "scale": "25-0"}]}`,
		},
		{
			name: "not json",
			body: `advance: 1500`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/agreements", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetAgreement_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/agreements/no-such-deal")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAgreements(t *testing.T) {
	// GIVEN: One stored agreement
	srv := newTestServer(t)
	createBookDeal(t, srv)

	// WHEN: Listing
	resp, err := http.Get(srv.URL + "/api/agreements")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dtos := decodeBody[[]AgreementDTO](t, resp)

	// THEN: The agreement is there
	require.Len(t, dtos, 1)
	assert.Equal(t, "glasshouse-novel", dtos[0].ID)
}

// =============================================================================
// STATEMENT TESTS
// =============================================================================

func TestListStatements(t *testing.T) {
	// GIVEN: An agreement with five bundled statements
	srv := newTestServer(t)
	createBookDeal(t, srv)

	// WHEN: Listing statements
	resp, err := http.Get(srv.URL + "/api/agreements/glasshouse-novel/statements")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dtos := decodeBody[[]StatementDTO](t, resp)

	// THEN: All five, date-ordered
	require.Len(t, dtos, 5)
	assert.Equal(t, "2016-06-30", dtos[0].Date)
	assert.Equal(t, "2017-06-30", dtos[4].Date)
	assert.Equal(t, -45, dtos[4].Copies)
}

func TestAddStatements_Success(t *testing.T) {
	// GIVEN: A stored agreement
	srv := newTestServer(t)
	createBookDeal(t, srv)

	// WHEN: Appending a new statement
	resp := postJSON(t, srv.URL+"/api/agreements/glasshouse-novel/statements", `{
		"statements": [
			{"id": "gh-2017-h2-eb", "date": "2017-12-31", "kind": "ebook", "copies": 60, "price": "12.00"}
		]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dtos := decodeBody[[]StatementDTO](t, resp)
	require.Len(t, dtos, 1)
	assert.Equal(t, "gh-2017-h2-eb", dtos[0].ID)

	// THEN: The statement shows up in the listing
	listResp, err := http.Get(srv.URL + "/api/agreements/glasshouse-novel/statements")
	require.NoError(t, err)
	listed := decodeBody[[]StatementDTO](t, listResp)
	assert.Len(t, listed, 6)
}

func TestAddStatements_DuplicateID(t *testing.T) {
	// GIVEN: A stored agreement with statement gh-2016-h1-tv
	srv := newTestServer(t)
	createBookDeal(t, srv)

	// WHEN: Appending a statement reusing that ID
	resp := postJSON(t, srv.URL+"/api/agreements/glasshouse-novel/statements", `{
		"statements": [
			{"id": "gh-2016-h1-tv", "date": "2017-12-31", "kind": "ebook", "copies": 60, "price": "12.00"}
		]
	}`)
	defer resp.Body.Close()

	// THEN: Conflict
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAddStatements_UngrantedRight(t *testing.T) {
	srv := newTestServer(t)
	createBookDeal(t, srv)

	// "book-deal" grants no audiobook-like right and the kind is not
	// registered either way
	resp := postJSON(t, srv.URL+"/api/agreements/glasshouse-novel/statements", `{
		"statements": [
			{"id": "gh-x", "date": "2017-12-31", "kind": "audiobook", "copies": 60, "price": "12.00"}
		]
	}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddStatements_AgreementMissing(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/agreements/no-such-deal/statements", `{
		"statements": [
			{"id": "s1", "date": "2017-12-31", "kind": "ebook", "copies": 60, "price": "12.00"}
		]
	}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// REPORT TESTS
// =============================================================================

func TestGetReport(t *testing.T) {
	// GIVEN: The book deal with its full statement history
	srv := newTestServer(t)
	createBookDeal(t, srv)

	// WHEN: Requesting the report
	resp, err := http.Get(srv.URL + "/api/agreements/glasshouse-novel/report")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decodeBody[ReportDTO](t, resp)

	// THEN: Groups follow statement dates and the figures are exact
	assert.Equal(t, "glasshouse-novel", dto.AgreementID)
	assert.Equal(t, "1500", dto.Advance)
	require.Len(t, dto.Groups, 3)

	first := dto.Groups[0]
	assert.Equal(t, "2016-06-30", first.Date)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "trade volume", first.Items[0].Right)
	assert.Equal(t, 143, first.Items[0].Copies)
	assert.Equal(t, "7%", first.Items[0].Rate)
	assert.Equal(t, "284.284", first.Items[0].Due)
	assert.Equal(t, "1215.716", first.Items[0].AdvanceLeft)

	last := dto.Groups[2]
	assert.Equal(t, "2017-06-30", last.Date)
	require.Len(t, last.Items, 1)
	assert.Equal(t, -45, last.Items[0].Copies)
	assert.Equal(t, "-104.58", last.Items[0].Due)
	assert.Equal(t, "-673.36", last.Items[0].AdvanceLeft)
	assert.Equal(t, "-673.36", dto.AdvanceLeft)
}

func TestGetReport_EmptyHistory(t *testing.T) {
	// GIVEN: An agreement without statements
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/agreements", `{
		"id": "quiet-deal", "name": "Quiet", "advance": "500",
		"rights": [{"kind": "ebook", "scale": "25-0"}]
	}`)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// WHEN: Requesting the report
	repResp, err := http.Get(srv.URL + "/api/agreements/quiet-deal/report")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, repResp.StatusCode)
	dto := decodeBody[ReportDTO](t, repResp)

	// THEN: No groups, advance untouched
	assert.Empty(t, dto.Groups)
	assert.Equal(t, "0", dto.TotalDue)
	assert.Equal(t, "500", dto.AdvanceLeft)
}

func TestGetReport_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/agreements/no-such-deal/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// REGISTRY AND SCENARIO TESTS
// =============================================================================

func TestListKinds(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/rights/kinds")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	kinds := decodeBody[[]string](t, resp)

	assert.Equal(t, []string{"ebook", "trade volume"}, kinds)
}

func TestListScenarios(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/scenarios")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dtos := decodeBody[[]ScenarioDTO](t, resp)

	require.NotEmpty(t, dtos)
	ids := make([]string, len(dtos))
	for i, s := range dtos {
		ids[i] = s.ID
	}
	assert.Contains(t, ids, "book-deal")
	assert.Contains(t, ids, "bestseller")
}

func TestLoadScenario(t *testing.T) {
	// GIVEN: A running server
	srv := newTestServer(t)

	// WHEN: Loading the book-deal scenario
	resp := postJSON(t, srv.URL+"/api/scenarios/load", `{"id": "book-deal"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dto := decodeBody[AgreementDTO](t, resp)
	assert.Equal(t, "glasshouse-novel", dto.ID)

	// THEN: Its report is computable
	repResp, err := http.Get(srv.URL + "/api/agreements/glasshouse-novel/report")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, repResp.StatusCode)
	report := decodeBody[ReportDTO](t, repResp)
	assert.Equal(t, "-673.36", report.AdvanceLeft)

	// AND: Loading it again conflicts
	again := postJSON(t, srv.URL+"/api/scenarios/load", `{"id": "book-deal"}`)
	defer again.Body.Close()
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestLoadScenario_Unknown(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/scenarios/load", `{"id": "space-opera"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
