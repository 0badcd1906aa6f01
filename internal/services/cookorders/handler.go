package cookorders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carbsfoods/penny-carbs-7/internal/httpx"
	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/models"
)

// Handler handles HTTP requests for cook orders
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new cook orders handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the cook orders endpoints on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/cooks/{cook_id}/orders", h.GetCookOrders)
	r.Patch("/cooks/{cook_id}/orders/{order_id}/status", h.UpdateAssignmentStatus)
}

// GetCookOrders handles GET /cooks/{cook_id}/orders
func (h *Handler) GetCookOrders(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	cookID := chi.URLParam(r, "cook_id")

	views, err := h.service.FetchCookOrders(r.Context(), cookID, requestID)
	if err != nil {
		h.logger.Error("fetch_cook_orders_failed", "Failed to fetch cook orders", requestID, err, map[string]interface{}{
			"cook_id": cookID,
		})
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch cook orders", requestID)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, views)
}

// updateStatusRequest is the PATCH body for a status change
type updateStatusRequest struct {
	Status models.AssignmentStatus `json:"status"`
}

// UpdateAssignmentStatus handles PATCH /cooks/{cook_id}/orders/{order_id}/status
func (h *Handler) UpdateAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	cookID := chi.URLParam(r, "cook_id")
	orderID := chi.URLParam(r, "order_id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestID)
		return
	}
	if req.Status == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "status is required", requestID)
		return
	}

	err := h.service.UpdateAssignmentStatus(r.Context(), orderID, cookID, req.Status, requestID)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidTransition):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_status", err.Error(), requestID)
		return
	case errors.Is(err, ErrAssignmentNotFound):
		httpx.WriteError(w, http.StatusNotFound, "assignment_not_found", "No assignment for this cook and order", requestID)
		return
	case errors.Is(err, ErrStatusConflict):
		httpx.WriteError(w, http.StatusConflict, "status_conflict", err.Error(), requestID)
		return
	default:
		h.logger.Error("update_status_failed", "Failed to update assignment status", requestID, err, map[string]interface{}{
			"order_id": orderID,
			"cook_id":  cookID,
		})
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to update assignment status", requestID)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"order_id": orderID,
		"cook_id":  cookID,
		"status":   req.Status,
	})
}
