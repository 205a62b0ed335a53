/*
handlers.go - HTTP API handlers for the royalty engine

PURPOSE:
  Exposes royalty bookkeeping via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Agreements:
    GET    /api/agreements                    List agreements
    POST   /api/agreements                    Create agreement from JSON
    GET    /api/agreements/{id}               Get agreement
    GET    /api/agreements/{id}/statements    List reported statements
    POST   /api/agreements/{id}/statements    Append statements
    GET    /api/agreements/{id}/report        Compute the royalty report

  Rights:
    GET    /api/rights/kinds                  The closed right-kind registry

  Scenarios:
    GET    /api/scenarios                     List demo scenarios
    POST   /api/scenarios/load                Load a demo scenario

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (factory does scale/kind/decimal validation)
  3. Call domain logic (store, replay, report)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed scale, invalid progression, unknown kind, bad input
  - 404: Agreement not found
  - 409: Duplicate agreement or statement ID
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario definitions
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/inkpress/royalty-engine/factory"
	"github.com/inkpress/royalty-engine/rights"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   rights.Store
	Factory *factory.AgreementFactory
}

// NewHandler creates a new handler with the given store.
func NewHandler(store rights.Store) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.NewAgreementFactory(),
	}
}

// =============================================================================
// AGREEMENT HANDLERS
// =============================================================================

// ListAgreements returns all agreements.
func (h *Handler) ListAgreements(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListAgreements(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list agreements", err)
		return
	}

	dtos := make([]AgreementDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toAgreementDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAgreement returns a single agreement.
func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetAgreement(r.Context(), id)
	if errors.Is(err, rights.ErrAgreementNotFound) {
		writeError(w, http.StatusNotFound, "Agreement not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get agreement", err)
		return
	}

	writeJSON(w, http.StatusOK, toAgreementDTO(*rec))
}

// CreateAgreement creates an agreement from a factory JSON definition.
func (h *Handler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	def, err := h.Factory.ParseAgreement(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid agreement definition", err)
		return
	}

	ctx := r.Context()
	rec := def.Record(timeNow())
	if err := h.Store.SaveAgreement(ctx, rec); err != nil {
		if errors.Is(err, rights.ErrDuplicateAgreement) {
			writeError(w, http.StatusConflict, "Agreement already exists", err)
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

// =============================================================================
// STATEMENT HANDLERS
// =============================================================================

// ListStatements returns the statements reported against an agreement.
func (h *Handler) ListStatements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	if _, err := h.Store.GetAgreement(ctx, id); err != nil {
		if errors.Is(err, rights.ErrAgreementNotFound) {
			writeError(w, http.StatusNotFound, "Agreement not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get agreement", err)
		return
	}

	recs, err := h.Store.Statements(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list statements", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementDTOs(recs))
}

// AddStatements appends statements to an agreement.
func (h *Handler) AddStatements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	var req AddStatementsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Statements) == 0 {
		writeError(w, http.StatusBadRequest, "No statements in request", nil)
		return
	}

	rec, err := h.Store.GetAgreement(ctx, id)
	if errors.Is(err, rights.ErrAgreementNotFound) {
		writeError(w, http.StatusNotFound, "Agreement not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get agreement", err)
		return
	}

	recs, err := h.Factory.ParseStatements(*rec, req.Statements)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid statement", err)
		return
	}

	if err := h.Store.AppendStatements(ctx, recs); err != nil {
		if errors.Is(err, rights.ErrDuplicateStatement) {
			writeError(w, http.StatusConflict, "Duplicate statement ID", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save statements", err)
		return
	}

	writeJSON(w, http.StatusCreated, toStatementDTOs(recs))
}

// =============================================================================
// REPORT HANDLER
// =============================================================================

// GetReport recomputes the royalty report for an agreement by
// replaying its statements: sort by date, reset allocators, apply in
// order. Nothing is cached - the report always reflects the statements
// on file.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	rec, err := h.Store.GetAgreement(ctx, id)
	if errors.Is(err, rights.ErrAgreementNotFound) {
		writeError(w, http.StatusNotFound, "Agreement not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get agreement", err)
		return
	}

	stmts, err := h.Store.Statements(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load statements", err)
		return
	}

	agr, err := rights.BuildAgreement(*rec, stmts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to rebuild agreement", err)
		return
	}

	items, err := agr.ApplyStatements()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute report", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTO(*rec, items))
}

// =============================================================================
// RIGHTS HANDLERS
// =============================================================================

// ListKinds returns the closed registry of right kinds.
func (h *Handler) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := rights.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	writeJSON(w, http.StatusOK, names)
}

// =============================================================================
// HELPERS
// =============================================================================

// timeNow is swappable in tests.
var timeNow = time.Now

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
