// Package positions mirrors the backend's live position list and relays
// manual order placement.
package positions

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
	GetPositions(ctx context.Context) ([]trader.LivePosition, error)
	PlaceOrder(ctx context.Context, req trader.OrderRequest) error
}

// Service polls live positions and relays order placement
type Service struct {
	backend  BackendClient
	eventMgr *events.Manager
	log      zerolog.Logger

	mu          sync.RWMutex
	positions   []trader.LivePosition
	lastUpdated string
}

// NewService creates a positions service
func NewService(backend BackendClient, eventMgr *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		backend:  backend,
		eventMgr: eventMgr,
		log:      log.With().Str("component", "positions_service").Logger(),
	}
}

// Refresh re-fetches live positions. A failed fetch keeps the previous list.
func (s *Service) Refresh(ctx context.Context) error {
	positions, err := s.backend.GetPositions(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to fetch live positions")
		return nil
	}

	s.mu.Lock()
	s.positions = positions
	s.lastUpdated = time.Now().UTC().Format(time.RFC3339)
	s.mu.Unlock()

	if s.eventMgr != nil {
		s.eventMgr.Emit(events.PositionsUpdated, "positions", map[string]interface{}{
			"count": len(positions),
		})
	}
	return nil
}

// Current returns the last fetched positions and their timestamp
func (s *Service) Current() ([]trader.LivePosition, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions, s.lastUpdated
}

// PlaceOrder relays a manual order to the backend. Failures are logged and
// swallowed; the panel reflects reality on the next poll.
func (s *Service) PlaceOrder(ctx context.Context, req trader.OrderRequest) {
	if err := s.backend.PlaceOrder(ctx, req); err != nil {
		s.log.Warn().
			Err(err).
			Str("symbol", req.Symbol).
			Str("side", req.Side).
			Msg("Order placement failed")
	}
}

// RefreshJob adapts the service to the scheduler
type RefreshJob struct {
	service *Service
}

// NewRefreshJob creates the scheduled positions refresh job
func NewRefreshJob(service *Service) *RefreshJob {
	return &RefreshJob{service: service}
}

func (j *RefreshJob) Run(ctx context.Context) error { return j.service.Refresh(ctx) }
func (j *RefreshJob) Name() string                  { return "positions_refresh" }
