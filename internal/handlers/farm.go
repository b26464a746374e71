package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// FarmHandler provides HTTP handlers for farms.
type FarmHandler struct {
	service *services.FarmService
}

func NewFarmHandler(service *services.FarmService) *FarmHandler {
	return &FarmHandler{service: service}
}

// FarmRouter registers farm routes on the given router.
func FarmRouter(r chi.Router, service *services.FarmService) {
	handler := NewFarmHandler(service)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

// FarmRequest carries farm fields for create and partial update.
type FarmRequest struct {
	FarmerID       *types.ID `json:"farmer_id"`
	Name           *string   `json:"name"`
	Location       *string   `json:"location"`
	SizeAcres      *float64  `json:"size_acres"`
	Irrigation     *bool     `json:"irrigation"`
	GPSCoordinates *string   `json:"gps_coordinates"`
}

func (h *FarmHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, search, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.service.List(r.Context(), search, offset, limit)
	if err != nil {
		writeStoreError(w, err, "farm")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[types.Farm]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

func (h *FarmHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid farm id")
		return
	}

	farm, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "farm")
		return
	}

	writeJSON(w, http.StatusOK, farm)
}

func (h *FarmHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FarmerID == nil || *req.FarmerID < 1 || isBlank(req.Name) {
		writeError(w, http.StatusBadRequest, "required fields (farmer_id, name) are missing")
		return
	}
	if req.SizeAcres != nil && *req.SizeAcres < 0 {
		writeError(w, http.StatusBadRequest, "size_acres must not be negative")
		return
	}

	farm := types.Farm{
		FarmerID:       *req.FarmerID,
		Name:           strings.TrimSpace(*req.Name),
		GPSCoordinates: nullablePtr(req.GPSCoordinates),
	}
	if req.Location != nil {
		farm.Location = strings.TrimSpace(*req.Location)
	}
	if req.SizeAcres != nil {
		farm.SizeAcres = *req.SizeAcres
	}
	if req.Irrigation != nil {
		farm.Irrigation = *req.Irrigation
	}

	created, err := h.service.Create(r.Context(), farm)
	if err != nil {
		writeStoreError(w, err, "farm")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *FarmHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid farm id")
		return
	}

	var req FarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SizeAcres != nil && *req.SizeAcres < 0 {
		writeError(w, http.StatusBadRequest, "size_acres must not be negative")
		return
	}

	farm, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "farm")
		return
	}

	if req.FarmerID != nil {
		farm.FarmerID = *req.FarmerID
	}
	if !isBlank(req.Name) {
		farm.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		farm.Location = strings.TrimSpace(*req.Location)
	}
	if req.SizeAcres != nil {
		farm.SizeAcres = *req.SizeAcres
	}
	if req.Irrigation != nil {
		farm.Irrigation = *req.Irrigation
	}
	if req.GPSCoordinates != nil {
		farm.GPSCoordinates = nullablePtr(req.GPSCoordinates)
	}
	// The joined farmer from the read may no longer match after an owner
	// change; updates respond with the bare farm row.
	farm.Farmer = nil

	updated, err := h.service.Update(r.Context(), farm)
	if err != nil {
		writeStoreError(w, err, "farm")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *FarmHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid farm id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "farm")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "farm deleted successfully"})
}
