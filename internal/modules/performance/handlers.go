package performance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/api"
	"github.com/fincept/autotrade-bridge/internal/domain"
)

// Handler handles performance HTTP requests
type Handler struct {
	service *Service
	session domain.Session
	log     zerolog.Logger
}

// NewHandler creates a new performance handler scoped to one account session
func NewHandler(service *Service, session domain.Session, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		session: session,
		log:     log.With().Str("handler", "performance").Logger(),
	}
}

// RegisterRoutes mounts the performance endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/performance", h.HandleGetReport)
}

// HandleGetReport returns the derived performance report for a period
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "30d"
	}

	report, err := h.service.GetReport(r.Context(), h.session, period)
	if err != nil {
		code := domain.ErrorCode(err)
		status := http.StatusBadGateway
		if code == domain.ErrCodeNotApplicable {
			status = http.StatusBadRequest
		}
		h.log.Warn().Err(err).Str("period", period).Msg("Failed to build performance report")
		api.WriteError(w, status, code, err.Error())
		return
	}

	api.WriteSuccess(w, report)
}
