package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/api"
)

// Handler handles status HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new status handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "status").Logger(),
	}
}

// RegisterRoutes mounts the status endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.HandleGetStatus)
	r.Post("/status/refresh", h.HandleRefresh)
}

// HandleGetStatus returns the last status snapshot
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, h.service.Current())
}

// HandleRefresh re-runs the poll immediately and returns the fresh snapshot
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Manual status refresh failed")
	}
	api.WriteSuccess(w, h.service.Current())
}
