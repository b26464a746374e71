package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// FertilizationHandler provides HTTP handlers for fertilization records.
type FertilizationHandler struct {
	service *services.FertilizationService
}

func NewFertilizationHandler(service *services.FertilizationService) *FertilizationHandler {
	return &FertilizationHandler{service: service}
}

// FertilizationRouter registers fertilization routes on the given router.
func FertilizationRouter(r chi.Router, service *services.FertilizationService) {
	handler := NewFertilizationHandler(service)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

// FertilizationRequest carries fertilization fields for create and partial update.
type FertilizationRequest struct {
	CropID     *types.ID `json:"crop_id"`
	Date       *string   `json:"date"`
	Type       *string   `json:"type"`
	QuantityKg *float64  `json:"quantity_kg"`
}

func (h *FertilizationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, search, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.service.List(r.Context(), search, offset, limit)
	if err != nil {
		writeStoreError(w, err, "fertilization record")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[types.Fertilization]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

func (h *FertilizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fertilization id")
		return
	}

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "fertilization record")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *FertilizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FertilizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CropID == nil || *req.CropID < 1 {
		writeError(w, http.StatusBadRequest, "required field (crop_id) is missing")
		return
	}
	if req.QuantityKg != nil && *req.QuantityKg < 0 {
		writeError(w, http.StatusBadRequest, "quantity_kg must not be negative")
		return
	}

	date, err := parseDatePtr(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record := types.Fertilization{
		CropID:     *req.CropID,
		Date:       date,
		Type:       nullablePtr(req.Type),
		QuantityKg: req.QuantityKg,
	}

	created, err := h.service.Create(r.Context(), record)
	if err != nil {
		writeStoreError(w, err, "fertilization record")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *FertilizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fertilization id")
		return
	}

	var req FertilizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuantityKg != nil && *req.QuantityKg < 0 {
		writeError(w, http.StatusBadRequest, "quantity_kg must not be negative")
		return
	}

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "fertilization record")
		return
	}

	if req.CropID != nil {
		record.CropID = *req.CropID
	}
	if req.Date != nil {
		date, err := parseOptionalDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		record.Date = date
	}
	if req.Type != nil {
		record.Type = nullablePtr(req.Type)
	}
	if req.QuantityKg != nil {
		record.QuantityKg = req.QuantityKg
	}

	updated, err := h.service.Update(r.Context(), record)
	if err != nil {
		writeStoreError(w, err, "fertilization record")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *FertilizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fertilization id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "fertilization record")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
