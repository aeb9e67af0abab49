package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/kostumi/internal/store"
)

// MovementsHandler handles endpoints addressing a single ledger entry.
type MovementsHandler struct {
	DB *sql.DB
}

type checksRequest struct {
	Checks map[string]bool `json:"checks"`
}

// Get handles GET /api/movements/{id}.
func (h *MovementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	m, err := store.GetMovement(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting movement")
		return
	}
	if m == nil {
		jsonError(w, http.StatusNotFound, "movement not found")
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// SetChecks handles PUT /api/movements/{id}/checks.
func (h *MovementsHandler) SetChecks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	var req checksRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := store.SetMovementChecks(r.Context(), h.DB, id, req.Checks)
	if err != nil {
		storeError(w, r, err, "updating checks")
		return
	}

	slog.Info("checks updated", "user", username(r), "movement", id, "tag", m.ItemTag)
	jsonResponse(w, http.StatusOK, m)
}

// Reconcile handles POST /api/movements/{id}/reconcile.
func (h *MovementsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	if err := store.ReconcileMovement(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "reconciling checklist")
		return
	}

	m, err := store.GetMovement(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting movement")
		return
	}
	jsonResponse(w, http.StatusOK, m)
}
