package portfolio

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/api"
	"github.com/fincept/autotrade-bridge/internal/domain"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *Service
	session domain.Session
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler scoped to one account session
func NewHandler(service *Service, session domain.Session, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		session: session,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// RegisterRoutes mounts the portfolio endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolio", h.HandleGetSummary)
	r.Get("/portfolio/summary", h.HandleGetSummary)
	r.Get("/portfolio/holdings", h.HandleGetHoldings)
}

// HandleGetSummary returns the synthesized account summary
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, holdings, err := h.service.GetSummary(r.Context(), h.session)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build portfolio summary")
		api.WriteError(w, http.StatusBadGateway, domain.ErrorCode(err), err.Error())
		return
	}

	api.WriteSuccess(w, summaryFromDomain(*summary, holdings))
}

// HandleGetHoldings returns only the display rows
func (h *Handler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	summary, holdings, err := h.service.GetSummary(r.Context(), h.session)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build holdings")
		api.WriteError(w, http.StatusBadGateway, domain.ErrorCode(err), err.Error())
		return
	}

	api.WriteSuccess(w, summaryFromDomain(*summary, holdings).Positions)
}
