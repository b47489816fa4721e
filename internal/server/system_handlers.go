package server

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/fincept/autotrade-bridge/internal/api"
	"github.com/fincept/autotrade-bridge/internal/snapshots"
)

// SystemHandlers serves process-level health and local history endpoints
type SystemHandlers struct {
	snapshotRepo *snapshots.Repository
	accountID    string
	startedAt    time.Time
	log          zerolog.Logger
}

// NewSystemHandlers creates the system handlers
func NewSystemHandlers(snapshotRepo *snapshots.Repository, accountID string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		snapshotRepo: snapshotRepo,
		accountID:    accountID,
		startedAt:    time.Now(),
		log:          log.With().Str("handler", "system").Logger(),
	}
}

// RegisterRoutes mounts the system endpoints under /api
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/system/info", h.HandleSystemInfo)
	r.Get("/system/snapshots", h.HandleSnapshotHistory)
}

// HandleHealth is the bare liveness probe mounted at /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// HandleSystemInfo returns process and host metrics
func (h *SystemHandlers) HandleSystemInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
		"go_version": runtime.Version(),
	}

	if percents, err := cpu.PercentWithContext(r.Context(), 0, false); err == nil && len(percents) > 0 {
		info["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(r.Context()); err == nil {
		info["memory_percent"] = vm.UsedPercent
		info["memory_used_mb"] = vm.Used / 1024 / 1024
	}

	api.WriteSuccess(w, info)
}

// HandleSnapshotHistory returns locally persisted portfolio snapshots
func (h *SystemHandlers) HandleSnapshotHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	history, err := h.snapshotRepo.History(h.accountID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load snapshot history")
		api.WriteError(w, http.StatusInternalServerError, "", err.Error())
		return
	}

	api.WriteSuccess(w, history)
}
