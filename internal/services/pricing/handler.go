package pricing

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carbsfoods/penny-carbs-7/internal/httpx"
	"github.com/carbsfoods/penny-carbs-7/internal/logger"
)

// Handler handles HTTP requests for dish pricing
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new pricing handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the pricing endpoint on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dishes/{food_item_id}/cheapest-offer", h.GetCheapestOffer)
}

// GetCheapestOffer handles GET /dishes/{food_item_id}/cheapest-offer
func (h *Handler) GetCheapestOffer(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	foodItemID := chi.URLParam(r, "food_item_id")

	offer, err := h.service.GetCheapestOffer(r.Context(), foodItemID, requestID)
	if errors.Is(err, ErrNoOffers) {
		httpx.WriteError(w, http.StatusNotFound, "no_offers", "No available offers for this dish", requestID)
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch offers", requestID)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, offer)
}
