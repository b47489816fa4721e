// Package screener fronts the backend's instrument screener: configurations,
// latest result sets and scan triggers.
package screener

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/clients/trader"
	"github.com/fincept/autotrade-bridge/internal/events"
)

// refetchDelay is how long after triggering a scan the results are re-read.
// The backend publishes no completion notification, so this is a blind delay;
// results may still be in progress and will settle on a later fetch.
const refetchDelay = 5 * time.Second

const defaultResultLimit = 50

// BackendClient is the slice of the trader client this module needs
type BackendClient interface {
	GetScreenerConfigs(ctx context.Context) ([]trader.ScreenerConfig, error)
	GetLatestScreenerResults(ctx context.Context, configName string, limit int) ([]trader.ScreenerResult, error)
	RunScreener(ctx context.Context, req trader.ScreenerRunRequest) error
}

// Run records one triggered scan
type Run struct {
	ID          string `json:"id"`
	ConfigName  string `json:"config_name"`
	TriggeredAt string `json:"triggered_at"`
}

// Service fronts the backend screener
type Service struct {
	backend  BackendClient
	eventMgr *events.Manager
	log      zerolog.Logger

	// lifetime bounds the delayed refetch goroutines, so they die with the
	// process instead of firing against a shut-down service.
	lifetime context.Context

	mu      sync.RWMutex
	results map[string][]trader.ScreenerResult // keyed by config name
	lastRun *Run
}

// NewService creates a screener service. lifetime should be the scheduler's
// context so deferred refetches are cancelled on shutdown.
func NewService(backend BackendClient, eventMgr *events.Manager, lifetime context.Context, log zerolog.Logger) *Service {
	if lifetime == nil {
		lifetime = context.Background()
	}
	return &Service{
		backend:  backend,
		eventMgr: eventMgr,
		lifetime: lifetime,
		log:      log.With().Str("component", "screener_service").Logger(),
		results:  make(map[string][]trader.ScreenerResult),
	}
}

// Configs fetches the available screener configurations
func (s *Service) Configs(ctx context.Context) ([]trader.ScreenerConfig, error) {
	return s.backend.GetScreenerConfigs(ctx)
}

// Latest returns cached results for a config, fetching when none are cached
func (s *Service) Latest(ctx context.Context, configName string, limit int) ([]trader.ScreenerResult, error) {
	if limit <= 0 {
		limit = defaultResultLimit
	}

	s.mu.RLock()
	cached, ok := s.results[configName]
	s.mu.RUnlock()
	if ok {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	return s.fetch(ctx, configName, limit)
}

// TriggerRun starts a new scan and schedules a delayed result refetch.
// Returns the run record immediately; completion is never awaited.
func (s *Service) TriggerRun(ctx context.Context, configName string, fetchQuotes bool) (*Run, error) {
	err := s.backend.RunScreener(ctx, trader.ScreenerRunRequest{
		ConfigName:  configName,
		FetchQuotes: fetchQuotes,
	})
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:          uuid.New().String(),
		ConfigName:  configName,
		TriggeredAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()

	if s.eventMgr != nil {
		s.eventMgr.Emit(events.ScreenerRunStarted, "screener", map[string]interface{}{
			"run_id": run.ID,
			"config": configName,
		})
	}

	go s.refetchAfterDelay(run)

	return run, nil
}

// LastRun returns the most recently triggered run, or nil
func (s *Service) LastRun() *Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// refetchAfterDelay waits out the blind delay and refreshes the result cache.
// Cancelled cleanly when the service lifetime ends.
func (s *Service) refetchAfterDelay(run *Run) {
	select {
	case <-s.lifetime.Done():
		return
	case <-time.After(refetchDelay):
	}

	results, err := s.fetch(s.lifetime, run.ConfigName, defaultResultLimit)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("run_id", run.ID).
			Str("config", run.ConfigName).
			Msg("Delayed screener refetch failed")
		return
	}

	if s.eventMgr != nil {
		s.eventMgr.Emit(events.ScreenerRunCompleted, "screener", map[string]interface{}{
			"run_id": run.ID,
			"config": run.ConfigName,
			"count":  len(results),
		})
	}
}

// fetch reads results from the backend and refreshes the cache
func (s *Service) fetch(ctx context.Context, configName string, limit int) ([]trader.ScreenerResult, error) {
	results, err := s.backend.GetLatestScreenerResults(ctx, configName, limit)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.results[configName] = results
	s.mu.Unlock()

	return results, nil
}
