package screener

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/api"
)

// Handler handles screener HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new screener handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "screener").Logger(),
	}
}

// RegisterRoutes mounts the screener endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/screener/configs", h.HandleGetConfigs)
	r.Get("/screener/latest", h.HandleGetLatest)
	r.Post("/screener/run", h.HandleRun)
}

// HandleGetConfigs returns the available screener configurations
func (h *Handler) HandleGetConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.service.Configs(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to fetch screener configs")
		api.WriteError(w, http.StatusBadGateway, "", err.Error())
		return
	}
	api.WriteSuccess(w, configs)
}

// HandleGetLatest returns the latest results for a configuration
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	configName := r.URL.Query().Get("config_name")
	if configName == "" {
		api.WriteError(w, http.StatusBadRequest, "", "config_name is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	results, err := h.service.Latest(r.Context(), configName, limit)
	if err != nil {
		h.log.Warn().Err(err).Str("config", configName).Msg("Failed to fetch screener results")
		api.WriteError(w, http.StatusBadGateway, "", err.Error())
		return
	}
	api.WriteSuccess(w, results)
}

type runRequest struct {
	ConfigName  string `json:"config_name"`
	FetchQuotes bool   `json:"fetch_quotes"`
}

// HandleRun triggers a new scan and returns the run record immediately
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "", "invalid run body: "+err.Error())
		return
	}
	if req.ConfigName == "" {
		api.WriteError(w, http.StatusBadRequest, "", "config_name is required")
		return
	}

	run, err := h.service.TriggerRun(r.Context(), req.ConfigName, req.FetchQuotes)
	if err != nil {
		h.log.Warn().Err(err).Str("config", req.ConfigName).Msg("Failed to trigger screener run")
		api.WriteError(w, http.StatusBadGateway, "", err.Error())
		return
	}
	api.WriteSuccess(w, run)
}
