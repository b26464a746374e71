package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// FarmerHandler provides HTTP handlers for farmers.
type FarmerHandler struct {
	service *services.FarmerService
}

func NewFarmerHandler(service *services.FarmerService) *FarmerHandler {
	return &FarmerHandler{service: service}
}

// FarmerRouter registers farmer routes on the given router.
func FarmerRouter(r chi.Router, service *services.FarmerService) {
	handler := NewFarmerHandler(service)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

// FarmerRequest carries farmer fields for create and partial update.
type FarmerRequest struct {
	UserID   *types.ID `json:"user_id"`
	FullName *string   `json:"full_name"`
	Gender   *string   `json:"gender"`
	Phone    *string   `json:"phone"`
	Email    *string   `json:"email"`
	Address  *string   `json:"address"`
}

func (h *FarmerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, search, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.service.List(r.Context(), search, offset, limit)
	if err != nil {
		writeStoreError(w, err, "farmer")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[types.Farmer]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

func (h *FarmerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid farmer id")
		return
	}

	farmer, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "farmer")
		return
	}

	writeJSON(w, http.StatusOK, farmer)
}

func (h *FarmerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FarmerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == nil || *req.UserID < 1 || isBlank(req.FullName) || isBlank(req.Gender) {
		writeError(w, http.StatusBadRequest, "required fields (user_id, full_name, gender) are missing")
		return
	}

	farmer := types.Farmer{
		UserID:   *req.UserID,
		FullName: strings.TrimSpace(*req.FullName),
		Gender:   strings.TrimSpace(*req.Gender),
		Phone:    nullablePtr(req.Phone),
		Email:    nullablePtr(req.Email),
		Address:  nullablePtr(req.Address),
	}

	created, err := h.service.Create(r.Context(), farmer)
	if err != nil {
		writeStoreError(w, err, "farmer")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *FarmerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid farmer id")
		return
	}

	var req FarmerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	farmer, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "farmer")
		return
	}

	if req.UserID != nil {
		farmer.UserID = *req.UserID
	}
	if !isBlank(req.FullName) {
		farmer.FullName = strings.TrimSpace(*req.FullName)
	}
	if !isBlank(req.Gender) {
		farmer.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Phone != nil {
		farmer.Phone = nullablePtr(req.Phone)
	}
	if req.Email != nil {
		farmer.Email = nullablePtr(req.Email)
	}
	if req.Address != nil {
		farmer.Address = nullablePtr(req.Address)
	}

	updated, err := h.service.Update(r.Context(), farmer)
	if err != nil {
		writeStoreError(w, err, "farmer")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *FarmerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid farmer id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "farmer")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "farmer deleted successfully"})
}
