package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/kostumi/internal/imaging"
	"github.com/erazemk/kostumi/internal/model"
	"github.com/erazemk/kostumi/internal/store"
)

// CostumesHandler handles costume definition endpoints.
type CostumesHandler struct {
	DB *sql.DB
}

type costumeRequest struct {
	Name      string `json:"name"`
	VehicleID *int64 `json:"vehicle_id"`
	Gender    string `json:"gender"`
	Checklist string `json:"checklist"`
}

func (req costumeRequest) params() store.CostumeParams {
	return store.CostumeParams{
		Name:      req.Name,
		VehicleID: req.VehicleID,
		Gender:    model.Gender(req.Gender),
		Checklist: req.Checklist,
	}
}

// List handles GET /api/costumes.
func (h *CostumesHandler) List(w http.ResponseWriter, r *http.Request) {
	costumes, err := store.ListCostumes(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "listing costumes")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(costumes))
}

// Create handles POST /api/costumes.
func (h *CostumesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req costumeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	costume, err := store.CreateCostume(r.Context(), h.DB, req.params())
	if err != nil {
		storeError(w, r, err, "creating costume")
		return
	}

	slog.Info("costume created", "user", username(r), "costume", costume.Name, "checklist_items", len(costume.Items()))
	jsonResponse(w, http.StatusCreated, costume)
}

// Get handles GET /api/costumes/{id}.
func (h *CostumesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	costume, err := store.GetCostume(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting costume")
		return
	}
	if costume == nil {
		jsonError(w, http.StatusNotFound, "costume not found")
		return
	}
	jsonResponse(w, http.StatusOK, costume)
}

// Update handles PUT /api/costumes/{id}. Existing movements keep their
// checks until they are reconciled.
func (h *CostumesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	var req costumeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateCostume(r.Context(), h.DB, id, req.params()); err != nil {
		storeError(w, r, err, "updating costume")
		return
	}

	costume, err := store.GetCostume(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting costume")
		return
	}
	slog.Info("costume updated", "user", username(r), "costume", costume.Name)
	jsonResponse(w, http.StatusOK, costume)
}

// UploadImage handles PUT /api/costumes/{id}/image.
func (h *CostumesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	costume, err := store.GetCostume(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting costume")
		return
	}
	if costume == nil {
		jsonError(w, http.StatusNotFound, "costume not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.PreparePhoto(file)
	if errors.Is(err, imaging.ErrUnsupported) {
		jsonError(w, http.StatusBadRequest, "image must be JPEG or PNG")
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetCostumeImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		storeError(w, r, err, "saving costume image")
		return
	}

	slog.Info("costume image uploaded", "user", username(r), "costume", costume.Name, "width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/costumes/{id}/image.
func (h *CostumesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid costume id")
		return
	}

	data, mime, err := store.GetCostumeImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "getting costume image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
