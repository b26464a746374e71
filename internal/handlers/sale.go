package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agritrack/apiserver/internal/services"
	"github.com/agritrack/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// SaleHandler provides HTTP handlers for sales.
type SaleHandler struct {
	service *services.SaleService
}

func NewSaleHandler(service *services.SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

// SaleRouter registers sale routes on the given router.
func SaleRouter(r chi.Router, service *services.SaleService) {
	handler := NewSaleHandler(service)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

// SaleRequest carries sale fields for create and partial update.
type SaleRequest struct {
	FarmID       *types.ID `json:"farm_id"`
	ProductType  *string   `json:"product_type"`
	ProductName  *string   `json:"product_name"`
	Quantity     *float64  `json:"quantity"`
	Unit         *string   `json:"unit"`
	PricePerUnit *float64  `json:"price_per_unit"`
	SaleDate     *string   `json:"sale_date"`
	BuyerName    *string   `json:"buyer_name"`
}

func (req *SaleRequest) validateAmounts() string {
	if req.Quantity != nil && *req.Quantity < 0 {
		return "quantity must not be negative"
	}
	if req.PricePerUnit != nil && *req.PricePerUnit < 0 {
		return "price_per_unit must not be negative"
	}
	return ""
}

func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, search, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.service.List(r.Context(), search, offset, limit)
	if err != nil {
		writeStoreError(w, err, "sale")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[types.Sale]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "sale")
		return
	}

	writeJSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FarmID == nil || *req.FarmID < 1 || isBlank(req.ProductType) {
		writeError(w, http.StatusBadRequest, "required fields (farm_id, product_type) are missing")
		return
	}
	if msg := req.validateAmounts(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	saleDate, err := parseDatePtr(req.SaleDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sale := types.Sale{
		FarmID:       *req.FarmID,
		ProductType:  strings.TrimSpace(*req.ProductType),
		ProductName:  nullablePtr(req.ProductName),
		Quantity:     req.Quantity,
		Unit:         nullablePtr(req.Unit),
		PricePerUnit: req.PricePerUnit,
		SaleDate:     saleDate,
		BuyerName:    nullablePtr(req.BuyerName),
	}

	created, err := h.service.Create(r.Context(), sale)
	if err != nil {
		writeStoreError(w, err, "sale")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	var req SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validateAmounts(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "sale")
		return
	}

	if req.FarmID != nil {
		sale.FarmID = *req.FarmID
	}
	if !isBlank(req.ProductType) {
		sale.ProductType = strings.TrimSpace(*req.ProductType)
	}
	if req.ProductName != nil {
		sale.ProductName = nullablePtr(req.ProductName)
	}
	if req.Quantity != nil {
		sale.Quantity = req.Quantity
	}
	if req.Unit != nil {
		sale.Unit = nullablePtr(req.Unit)
	}
	if req.PricePerUnit != nil {
		sale.PricePerUnit = req.PricePerUnit
	}
	if req.SaleDate != nil {
		date, err := parseOptionalDate(*req.SaleDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sale.SaleDate = date
	}
	if req.BuyerName != nil {
		sale.BuyerName = nullablePtr(req.BuyerName)
	}

	updated, err := h.service.Update(r.Context(), sale)
	if err != nil {
		writeStoreError(w, err, "sale")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "sale")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "sale deleted successfully"})
}
