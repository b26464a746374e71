package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// EquipmentHandler provides HTTP handlers for equipment.
type EquipmentHandler struct {
	service *services.EquipmentService
}

func NewEquipmentHandler(service *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: service}
}

// EquipmentRouter registers equipment routes on the given router.
func EquipmentRouter(r chi.Router, service *services.EquipmentService) {
	handler := NewEquipmentHandler(service)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

// EquipmentRequest carries equipment fields for create and partial update.
type EquipmentRequest struct {
	FarmID        *types.ID `json:"farm_id"`
	Name          *string   `json:"name"`
	PurchaseDate  *string   `json:"purchase_date"`
	Condition     *string   `json:"condition"`
	IsOperational *bool     `json:"is_operational"`
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, search, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.service.List(r.Context(), search, offset, limit)
	if err != nil {
		writeStoreError(w, err, "equipment")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[types.Equipment]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	equipment, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "equipment")
		return
	}

	writeJSON(w, http.StatusOK, equipment)
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FarmID == nil || *req.FarmID < 1 || isBlank(req.Name) {
		writeError(w, http.StatusBadRequest, "required fields (farm_id, name) are missing")
		return
	}

	condition := nullablePtr(req.Condition)
	if condition != nil && !types.ValidEquipmentCondition(*condition) {
		writeError(w, http.StatusBadRequest, "condition must be one of new, good, fair, poor")
		return
	}

	purchaseDate, err := parseDatePtr(req.PurchaseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	equipment := types.Equipment{
		FarmID:        *req.FarmID,
		Name:          strings.TrimSpace(*req.Name),
		PurchaseDate:  purchaseDate,
		Condition:     condition,
		IsOperational: true,
	}
	if req.IsOperational != nil {
		equipment.IsOperational = *req.IsOperational
	}

	created, err := h.service.Create(r.Context(), equipment)
	if err != nil {
		writeStoreError(w, err, "equipment")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	var req EquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	equipment, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "equipment")
		return
	}

	if req.FarmID != nil {
		equipment.FarmID = *req.FarmID
	}
	if !isBlank(req.Name) {
		equipment.Name = strings.TrimSpace(*req.Name)
	}
	if req.PurchaseDate != nil {
		date, err := parseOptionalDate(*req.PurchaseDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		equipment.PurchaseDate = date
	}
	if req.Condition != nil {
		condition := nullablePtr(req.Condition)
		if condition != nil && !types.ValidEquipmentCondition(*condition) {
			writeError(w, http.StatusBadRequest, "condition must be one of new, good, fair, poor")
			return
		}
		equipment.Condition = condition
	}
	if req.IsOperational != nil {
		equipment.IsOperational = *req.IsOperational
	}

	updated, err := h.service.Update(r.Context(), equipment)
	if err != nil {
		writeStoreError(w, err, "equipment")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "equipment")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "equipment deleted successfully"})
}
