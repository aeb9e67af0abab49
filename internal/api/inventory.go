package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
	"github.com/erazemk/kostumi/internal/store"
)

// InventoryHandler handles inventory item and movement endpoints.
type InventoryHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Tag        int        `json:"tag"`
	CostumeID  int64      `json:"costume_id"`
	Size       string     `json:"size"`
	Note       string     `json:"note"`
	ReceivedAt *time.Time `json:"received_at"`
}

type movementRequest struct {
	Kind     string          `json:"kind"`
	MovedAt  *time.Time      `json:"moved_at"`
	Note     string          `json:"note"`
	PersonID *int64          `json:"person_id"`
	Checks   map[string]bool `json:"checks"`
}

type loanRequest struct {
	PersonID int64           `json:"person_id"`
	Note     string          `json:"note"`
	Checks   map[string]bool `json:"checks"`
}

type situationResponse struct {
	Tag       int          `json:"tag"`
	Status    model.Status `json:"status"`
	Situation string       `json:"situation"`
}

// List handles GET /api/inventory. An optional ?status= filters the list.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	items, err := store.ListInventoryItems(r.Context(), h.DB, status)
	if err != nil {
		storeError(w, r, err, "listing inventory")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// Available handles GET /api/inventory/available?vehicle_id=&gender=&size=.
func (h *InventoryHandler) Available(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vehicleID, err := strconv.ParseInt(q.Get("vehicle_id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "vehicle_id required")
		return
	}
	gender, size := model.Gender(q.Get("gender")), model.Size(q.Get("size"))
	if !gender.Valid() || !size.Valid() {
		jsonError(w, http.StatusBadRequest, "valid gender and size required")
		return
	}

	items, err := store.ListAvailableItems(r.Context(), h.DB, vehicleID, gender, size)
	if err != nil {
		storeError(w, r, err, "listing available items")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// Create handles POST /api/inventory. The item is received with an intake
// movement attributed to the requesting user.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p := store.ItemParams{
		Tag:       req.Tag,
		CostumeID: req.CostumeID,
		Size:      model.Size(req.Size),
		Note:      req.Note,
	}
	if req.ReceivedAt != nil {
		p.ReceivedAt = *req.ReceivedAt
	}

	item, err := store.CreateInventoryItem(r.Context(), h.DB, p, GetClaims(r.Context()).UserID)
	if err != nil {
		storeError(w, r, err, "creating inventory item")
		return
	}

	slog.Info("inventory item received", "user", username(r), "tag", item.Tag, "costume", item.CostumeName)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/inventory/{tag}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.item(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Situation handles GET /api/inventory/{tag}/situation.
func (h *InventoryHandler) Situation(w http.ResponseWriter, r *http.Request) {
	item, ok := h.item(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, situationResponse{Tag: item.Tag, Status: item.Status, Situation: item.Situation()})
}

// History handles GET /api/inventory/{tag}/movements.
func (h *InventoryHandler) History(w http.ResponseWriter, r *http.Request) {
	item, ok := h.item(w, r)
	if !ok {
		return
	}

	movements, err := store.ListMovements(r.Context(), h.DB, item.Tag)
	if err != nil {
		storeError(w, r, err, "listing movements")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(movements))
}

// AppendMovement handles POST /api/inventory/{tag}/movements. Loans are only
// recorded through Loan so that the borrower's eligibility is checked.
func (h *InventoryHandler) AppendMovement(w http.ResponseWriter, r *http.Request) {
	tag, ok := pathTag(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid inventory tag")
		return
	}

	var req movementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if model.MovementKind(req.Kind) == model.KindLoan {
		storeError(w, r, lifecycle.Reject(lifecycle.CodeInvalid,
			"loans are recorded through POST /api/inventory/%d/loan", tag), "append movement")
		return
	}

	mr := store.MovementRequest{
		Tag:      tag,
		Kind:     model.MovementKind(req.Kind),
		Note:     req.Note,
		PersonID: req.PersonID,
		Checks:   req.Checks,
	}
	if req.MovedAt != nil {
		mr.MovedAt = *req.MovedAt
	}
	h.append(w, r, mr)
}

// Return handles POST /api/inventory/{tag}/return. The movement records the
// person who had the item.
func (h *InventoryHandler) Return(w http.ResponseWriter, r *http.Request) {
	tag, ok := pathTag(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid inventory tag")
		return
	}

	var req loanRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	h.append(w, r, store.MovementRequest{
		Tag:    tag,
		Kind:   model.KindReturn,
		Note:   req.Note,
		Checks: req.Checks,
	})
}

// Loan handles POST /api/inventory/{tag}/loan: the person's eligibility is
// checked and the loan recorded in one step.
func (h *InventoryHandler) Loan(w http.ResponseWriter, r *http.Request) {
	tag, ok := pathTag(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid inventory tag")
		return
	}

	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PersonID <= 0 {
		jsonError(w, http.StatusBadRequest, "person_id required")
		return
	}

	m, e, err := store.LoanItem(r.Context(), h.DB, store.LoanRequest{
		PersonID:      req.PersonID,
		Tag:           tag,
		Note:          req.Note,
		ResponsibleID: GetClaims(r.Context()).UserID,
		Checks:        req.Checks,
		Today:         time.Now(),
	})
	if err != nil {
		storeError(w, r, err, "loan")
		return
	}

	slog.Info("costume loaned", "user", username(r), "tag", tag, "person", e.Person.Name,
		"event", e.Registration.EventName)
	jsonResponse(w, http.StatusCreated, m)
}

func (h *InventoryHandler) append(w http.ResponseWriter, r *http.Request, mr store.MovementRequest) {
	mr.ResponsibleID = GetClaims(r.Context()).UserID

	m, err := store.AppendMovement(r.Context(), h.DB, mr)
	if err != nil {
		storeError(w, r, err, string(mr.Kind)+" movement")
		return
	}

	slog.Info("movement recorded", "user", username(r), "tag", m.ItemTag, "kind", m.Kind, "moved_at", m.MovedAt)
	jsonResponse(w, http.StatusCreated, m)
}

// item loads the item named by the {tag} path parameter, writing the error
// response itself when it cannot.
func (h *InventoryHandler) item(w http.ResponseWriter, r *http.Request) (*model.InventoryItem, bool) {
	tag, ok := pathTag(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid inventory tag")
		return nil, false
	}

	item, err := store.GetInventoryItem(r.Context(), h.DB, tag)
	if err != nil {
		storeError(w, r, err, "getting inventory item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "inventory item not found")
		return nil, false
	}
	return item, true
}
