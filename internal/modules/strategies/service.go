// Package strategies mirrors the backend's active strategy list and relays
// control actions. The backend owns the strategy lifecycle entirely; control
// actions here are fire-and-forget.
package strategies

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/clients/trader"
	"github.com/fincept/autotrade-bridge/internal/events"
)

// BackendClient is the slice of the trader client this module needs
type BackendClient interface {
	GetActiveStrategies(ctx context.Context) ([]trader.Strategy, error)
	ControlStrategy(ctx context.Context, strategyID, action string) error
}

// Service polls active strategies and relays control actions
type Service struct {
	backend  BackendClient
	eventMgr *events.Manager
	log      zerolog.Logger

	mu          sync.RWMutex
	strategies  []trader.Strategy
	lastUpdated string
}

// NewService creates a strategies service
func NewService(backend BackendClient, eventMgr *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		backend:  backend,
		eventMgr: eventMgr,
		log:      log.With().Str("component", "strategies_service").Logger(),
	}
}

// Refresh re-fetches the active strategy list. A failed fetch keeps the
// previous list so the panel never flashes empty on a transient error.
func (s *Service) Refresh(ctx context.Context) error {
	strategies, err := s.backend.GetActiveStrategies(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to fetch active strategies")
		return nil
	}

	s.mu.Lock()
	s.strategies = strategies
	s.lastUpdated = time.Now().UTC().Format(time.RFC3339)
	s.mu.Unlock()

	if s.eventMgr != nil {
		s.eventMgr.Emit(events.StrategiesUpdated, "strategies", map[string]interface{}{
			"count": len(strategies),
		})
	}
	return nil
}

// Active returns the last fetched strategy list and its timestamp
func (s *Service) Active() ([]trader.Strategy, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strategies, s.lastUpdated
}

// Control relays a start/pause/stop action. Failures are logged and
// swallowed: the panel shows the real state on the next poll tick.
func (s *Service) Control(ctx context.Context, strategyID, action string) {
	if err := s.backend.ControlStrategy(ctx, strategyID, action); err != nil {
		s.log.Warn().
			Err(err).
			Str("strategy_id", strategyID).
			Str("action", action).
			Msg("Strategy control action failed")
	}
}

// RefreshJob adapts the service to the scheduler
type RefreshJob struct {
	service *Service
}

// NewRefreshJob creates the scheduled strategy refresh job
func NewRefreshJob(service *Service) *RefreshJob {
	return &RefreshJob{service: service}
}

func (j *RefreshJob) Run(ctx context.Context) error { return j.service.Refresh(ctx) }
func (j *RefreshJob) Name() string                  { return "strategies_refresh" }
