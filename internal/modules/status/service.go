// Package status monitors backend reachability and local system metrics.
package status

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/fincept/autotrade-bridge/internal/clients/trader"
	"github.com/fincept/autotrade-bridge/internal/events"
)

// HealthReader is the slice of the backend client this module needs
type HealthReader interface {
	GetHealth(ctx context.Context) (*trader.Health, error)
}

// Snapshot is the current system status served to the panel
type Snapshot struct {
	BackendReachable bool    `json:"backend_reachable"`
	BackendStatus    string  `json:"backend_status"`
	BackendVersion   string  `json:"backend_version"`
	BackendUptime    string  `json:"backend_uptime"`
	CPUPercent       float64 `json:"cpu_percent"`
	MemoryPercent    float64 `json:"memory_percent"`
	CheckedAt        string  `json:"checked_at"`
}

// Service polls backend health and local system metrics
type Service struct {
	backend  HealthReader
	eventMgr *events.Manager
	log      zerolog.Logger

	mu   sync.RWMutex
	last Snapshot
}

// NewService creates a status service
func NewService(backend HealthReader, eventMgr *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		backend:  backend,
		eventMgr: eventMgr,
		log:      log.With().Str("component", "status_service").Logger(),
	}
}

// Refresh checks backend health and system metrics, emitting an event when
// reachability flips.
func (s *Service) Refresh(ctx context.Context) error {
	snapshot := Snapshot{CheckedAt: time.Now().UTC().Format(time.RFC3339)}

	health, err := s.backend.GetHealth(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Backend health check failed")
	} else {
		snapshot.BackendReachable = true
		snapshot.BackendStatus = health.Status
		snapshot.BackendVersion = health.Version
		snapshot.BackendUptime = health.Uptime
	}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		snapshot.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snapshot.MemoryPercent = vm.UsedPercent
	}

	s.mu.Lock()
	changed := s.last.BackendReachable != snapshot.BackendReachable
	s.last = snapshot
	s.mu.Unlock()

	if changed && s.eventMgr != nil {
		s.eventMgr.Emit(events.BackendStatusChanged, "status", map[string]interface{}{
			"reachable": snapshot.BackendReachable,
		})
	}

	return nil
}

// Current returns the last snapshot
func (s *Service) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// RefreshJob adapts the service to the scheduler
type RefreshJob struct {
	service *Service
}

// NewRefreshJob creates the scheduled health refresh job
func NewRefreshJob(service *Service) *RefreshJob {
	return &RefreshJob{service: service}
}

func (j *RefreshJob) Run(ctx context.Context) error { return j.service.Refresh(ctx) }
func (j *RefreshJob) Name() string                  { return "status_refresh" }
