package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hardware-catalog-service/internal/auth"
	"hardware-catalog-service/internal/domain"
	"hardware-catalog-service/internal/store"
)

// OrderCreateInput defines the expected input for creating an order.
type OrderCreateInput struct {
	ClientID   int64   `json:"client_id" validate:"required,gt=0"`
	ProductIDs []int64 `json:"product_ids" validate:"required,min=1,dive,gt=0"`
	Status     string  `json:"status" validate:"omitempty,oneof=new paid shipped cancelled"`
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input OrderCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	status := input.Status
	if status == "" {
		status = domain.OrderStatusNew
	}

	order := &domain.Order{
		ClientID:   input.ClientID,
		Status:     status,
		ProductIDs: input.ProductIDs,
		CreatedBy:  auth.CallerID(r.Context()),
	}

	created, err := h.orderStore.CreateOrder(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: CreateOrder store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()

	limit, err := strconv.Atoi(qParams.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10 // Default limit
	}
	if limit > 100 { // Max limit
		limit = 100
	}
	page, err := strconv.Atoi(qParams.Get("page"))
	if err != nil || page <= 0 {
		page = 1 // Default page
	}

	params := store.ListOrdersParams{Limit: limit, Offset: (page - 1) * limit}

	if idStr := qParams.Get("client_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid client_id format")
			return
		}
		params.ClientID = &id
	}
	if status := qParams.Get("status"); status != "" {
		params.Status = &status
	}

	orders, totalCount, err := h.orderStore.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: ListOrders store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}

	response := struct {
		Data       []domain.Order `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"total_items"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}{Data: orders}
	response.Pagination.Page = page
	response.Pagination.Limit = limit
	response.Pagination.TotalItems = totalCount
	response.Pagination.TotalPages = totalPages

	respondWithJSON(w, http.StatusOK, response)
}

func (h *HTTPHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || orderID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.orderStore.GetOrderByID(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: GetOrderByID store operation for ID %d failed: %v", orderID, err)
		if errors.Is(err, store.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrOrderNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve order")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || orderID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	err = h.orderStore.DeleteOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: DeleteOrder store operation for ID %d failed: %v", orderID, err)
		if errors.Is(err, store.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrOrderNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete order")
		}
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}
