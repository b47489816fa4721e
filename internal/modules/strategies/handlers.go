package strategies

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/api"
)

// Handler handles strategy HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new strategies handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "strategies").Logger(),
	}
}

// RegisterRoutes mounts the strategy endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/strategies", h.HandleGetStrategies)
	r.Post("/strategies/refresh", h.HandleRefresh)
	r.Post("/strategies/{id}/{action}", h.HandleControl)
}

// HandleRefresh re-runs the poll immediately and returns the fresh list
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Manual strategy refresh failed")
	}
	h.HandleGetStrategies(w, r)
}

// HandleGetStrategies returns the last fetched strategy list
func (h *Handler) HandleGetStrategies(w http.ResponseWriter, r *http.Request) {
	strategies, lastUpdated := h.service.Active()
	api.WriteSuccess(w, map[string]interface{}{
		"strategies":   strategies,
		"last_updated": lastUpdated,
	})
}

// HandleControl relays a control action and returns immediately. The action
// is accepted, not confirmed: the next poll shows the backend's real state.
func (h *Handler) HandleControl(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := chi.URLParam(r, "action")

	switch action {
	case "start", "pause", "stop":
	default:
		api.WriteError(w, http.StatusBadRequest, "", "unknown strategy action: "+action)
		return
	}

	h.service.Control(r.Context(), id, action)
	api.WriteSuccess(w, map[string]string{"id": id, "action": action, "status": "accepted"})
}
