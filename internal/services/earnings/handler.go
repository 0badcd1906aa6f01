package earnings

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carbsfoods/penny-carbs-7/internal/httpx"
	"github.com/carbsfoods/penny-carbs-7/internal/logger"
)

// Handler handles HTTP requests for cook earnings
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new earnings handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the earnings endpoint on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/cooks/{cook_id}/earnings", h.GetCookEarnings)
}

// GetCookEarnings handles GET /cooks/{cook_id}/earnings
func (h *Handler) GetCookEarnings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	cookID := chi.URLParam(r, "cook_id")

	earnings, err := h.service.GetCookEarnings(r.Context(), cookID, requestID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch earnings", requestID)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, earnings)
}
