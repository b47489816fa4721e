package positions

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/api"
	"github.com/fincept/autotrade-bridge/internal/clients/trader"
)

// Handler handles live-position HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new positions handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "positions").Logger(),
	}
}

// RegisterRoutes mounts the position endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/positions", h.HandleGetPositions)
	r.Post("/positions/refresh", h.HandleRefresh)
	r.Post("/orders", h.HandlePlaceOrder)
}

// HandleRefresh re-runs the poll immediately and returns the fresh positions
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Manual position refresh failed")
	}
	h.HandleGetPositions(w, r)
}

// HandleGetPositions returns the last fetched live positions
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	positions, lastUpdated := h.service.Current()
	api.WriteSuccess(w, map[string]interface{}{
		"positions":    positions,
		"last_updated": lastUpdated,
	})
}

// HandlePlaceOrder relays a manual order and returns immediately
func (h *Handler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req trader.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "", "invalid order body: "+err.Error())
		return
	}
	if req.Symbol == "" || req.Quantity <= 0 {
		api.WriteError(w, http.StatusBadRequest, "", "order requires a symbol and a positive quantity")
		return
	}
	if req.Side != "BUY" && req.Side != "SELL" {
		api.WriteError(w, http.StatusBadRequest, "", "order side must be BUY or SELL")
		return
	}

	h.service.PlaceOrder(r.Context(), req)
	api.WriteSuccess(w, map[string]string{"status": "accepted"})
}
