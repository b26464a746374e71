package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// CropHandler provides HTTP handlers for crops.
type CropHandler struct {
	service *services.CropService
}

func NewCropHandler(service *services.CropService) *CropHandler {
	return &CropHandler{service: service}
}

// CropRouter registers crop routes on the given router.
func CropRouter(r chi.Router, service *services.CropService) {
	handler := NewCropHandler(service)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

// CropRequest carries crop fields for create and partial update. Dates are
// wire strings, accepted as a calendar date or an RFC 3339 timestamp.
type CropRequest struct {
	FarmID              *types.ID `json:"farm_id"`
	Name                *string   `json:"name"`
	Variety             *string   `json:"variety"`
	PlantingDate        *string   `json:"planting_date"`
	ExpectedHarvestDate *string   `json:"expected_harvest_date"`
	Status              *string   `json:"status"`
}

func (h *CropHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, search, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.service.List(r.Context(), search, offset, limit)
	if err != nil {
		writeStoreError(w, err, "crop")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[types.Crop]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

func (h *CropHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid crop id")
		return
	}

	crop, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "crop")
		return
	}

	writeJSON(w, http.StatusOK, crop)
}

func (h *CropHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FarmID == nil || *req.FarmID < 1 || isBlank(req.Name) || isBlank(req.Status) {
		writeError(w, http.StatusBadRequest, "required fields (farm_id, name, status) are missing")
		return
	}

	status := strings.TrimSpace(*req.Status)
	if !types.ValidCropStatus(status) {
		writeError(w, http.StatusBadRequest, "status must be one of planted, growing, harvested")
		return
	}

	plantingDate, err := parseDatePtr(req.PlantingDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	harvestDate, err := parseDatePtr(req.ExpectedHarvestDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	crop := types.Crop{
		FarmID:              *req.FarmID,
		Name:                strings.TrimSpace(*req.Name),
		Variety:             nullablePtr(req.Variety),
		PlantingDate:        plantingDate,
		ExpectedHarvestDate: harvestDate,
		Status:              status,
	}

	created, err := h.service.Create(r.Context(), crop)
	if err != nil {
		writeStoreError(w, err, "crop")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *CropHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid crop id")
		return
	}

	var req CropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	crop, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "crop")
		return
	}

	if req.FarmID != nil {
		crop.FarmID = *req.FarmID
	}
	if !isBlank(req.Name) {
		crop.Name = strings.TrimSpace(*req.Name)
	}
	if req.Variety != nil {
		crop.Variety = nullablePtr(req.Variety)
	}
	if req.PlantingDate != nil {
		date, err := parseOptionalDate(*req.PlantingDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		crop.PlantingDate = date
	}
	if req.ExpectedHarvestDate != nil {
		date, err := parseOptionalDate(*req.ExpectedHarvestDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		crop.ExpectedHarvestDate = date
	}
	if !isBlank(req.Status) {
		status := strings.TrimSpace(*req.Status)
		if !types.ValidCropStatus(status) {
			writeError(w, http.StatusBadRequest, "status must be one of planted, growing, harvested")
			return
		}
		crop.Status = status
	}

	updated, err := h.service.Update(r.Context(), crop)
	if err != nil {
		writeStoreError(w, err, "crop")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *CropHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid crop id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "crop")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "crop deleted successfully"})
}
