package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/kostumi/internal/model"
	"github.com/erazemk/kostumi/internal/store"
)

// PeopleHandler handles people, vehicles, events and registrations: the
// registration data loans are checked against.
type PeopleHandler struct {
	DB *sql.DB
}

type personRequest struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	GarmentSize string `json:"garment_size"`
}

type vehicleRequest struct {
	Name string `json:"name"`
}

type eventRequest struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

type eventStatusRequest struct {
	Status string `json:"status"`
}

type registrationRequest struct {
	EventID   int64  `json:"event_id"`
	PersonID  int64  `json:"person_id"`
	VehicleID *int64 `json:"vehicle_id"`
}

type approvalRequest struct {
	Approval string `json:"approval"`
}

// ListPeople handles GET /api/people.
func (h *PeopleHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := store.ListPeople(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "listing people")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(people))
}

// CreatePerson handles POST /api/people.
func (h *PeopleHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := store.CreatePerson(r.Context(), h.DB, req.Name, model.Gender(req.Gender), model.Size(req.GarmentSize))
	if err != nil {
		storeError(w, r, err, "creating person")
		return
	}

	slog.Info("person created", "user", username(r), "person", p.Name)
	jsonResponse(w, http.StatusCreated, p)
}

// GetPerson handles GET /api/people/{id}.
func (h *PeopleHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	p, err := store.GetPerson(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting person")
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "person not found")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// HeldItem handles GET /api/people/{id}/item: the costume the person has on loan.
func (h *PeopleHandler) HeldItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	item, err := store.GetItemHeldBy(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting held item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "person holds no costume")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ListVehicles handles GET /api/vehicles.
func (h *PeopleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := store.ListVehicles(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "listing vehicles")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(vehicles))
}

// CreateVehicle handles POST /api/vehicles.
func (h *PeopleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	v, err := store.CreateVehicle(r.Context(), h.DB, req.Name)
	if err != nil {
		storeError(w, r, err, "creating vehicle")
		return
	}

	slog.Info("vehicle created", "user", username(r), "vehicle", v.Name)
	jsonResponse(w, http.StatusCreated, v)
}

// ListEvents handles GET /api/events.
func (h *PeopleHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := store.ListEvents(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "listing events")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(events))
}

// CreateEvent handles POST /api/events. The date is a calendar day (YYYY-MM-DD).
func (h *PeopleHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	status := model.EventStatus(req.Status)
	if status == "" {
		status = model.EventPending
	}

	e, err := store.CreateEvent(r.Context(), h.DB, req.Name, date, status)
	if err != nil {
		storeError(w, r, err, "creating event")
		return
	}

	slog.Info("event created", "user", username(r), "event", e.Name, "date", req.Date)
	jsonResponse(w, http.StatusCreated, e)
}

// SetEventStatus handles PUT /api/events/{id}/status.
func (h *PeopleHandler) SetEventStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req eventStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetEventStatus(r.Context(), h.DB, id, model.EventStatus(req.Status)); err != nil {
		storeError(w, r, err, "updating event")
		return
	}

	e, err := store.GetEvent(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting event")
		return
	}
	slog.Info("event status updated", "user", username(r), "event", e.Name, "status", e.Status)
	jsonResponse(w, http.StatusOK, e)
}

// ListRegistrations handles GET /api/registrations. An optional ?person_id=
// filters the list.
func (h *PeopleHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	var personID int64
	if v := r.URL.Query().Get("person_id"); v != "" {
		var err error
		if personID, err = strconv.ParseInt(v, 10, 64); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid person_id")
			return
		}
	}

	regs, err := store.ListRegistrations(r.Context(), h.DB, personID)
	if err != nil {
		storeError(w, r, err, "listing registrations")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(regs))
}

// CreateRegistration handles POST /api/registrations.
func (h *PeopleHandler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reg, err := store.CreateRegistration(r.Context(), h.DB, req.EventID, req.PersonID, req.VehicleID)
	if err != nil {
		storeError(w, r, err, "creating registration")
		return
	}

	slog.Info("registration created", "user", username(r), "registration", reg.ID, "event", reg.EventName)
	jsonResponse(w, http.StatusCreated, reg)
}

// SetApproval handles PUT /api/registrations/{id}/approval.
func (h *PeopleHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid registration id")
		return
	}

	var req approvalRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetRegistrationApproval(r.Context(), h.DB, id, model.Approval(req.Approval)); err != nil {
		storeError(w, r, err, "updating registration")
		return
	}

	reg, err := store.GetRegistration(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting registration")
		return
	}
	slog.Info("registration approval updated", "user", username(r), "registration", id, "approval", reg.Approval)
	jsonResponse(w, http.StatusOK, reg)
}
