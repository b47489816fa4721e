package snapshots

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/domain"
	"github.com/fincept/autotrade-bridge/internal/events"
	"github.com/fincept/autotrade-bridge/internal/modules/portfolio"
)

// Job periodically synthesizes and persists a portfolio snapshot
type Job struct {
	service  *portfolio.Service
	repo     *Repository
	session  domain.Session
	eventMgr *events.Manager
	log      zerolog.Logger
}

// NewJob creates the scheduled snapshot job
func NewJob(service *portfolio.Service, repo *Repository, session domain.Session, eventMgr *events.Manager, log zerolog.Logger) *Job {
	return &Job{
		service:  service,
		repo:     repo,
		session:  session,
		eventMgr: eventMgr,
		log:      log.With().Str("component", "snapshot_job").Logger(),
	}
}

// Run synthesizes the current summary and saves it. A failed read is skipped
// silently: a gap in the history beats recording zeros for a down backend.
func (j *Job) Run(ctx context.Context) error {
	summary, _, err := j.service.GetSummary(ctx, j.session)
	if err != nil {
		j.log.Warn().Err(err).Msg("Skipping snapshot, summary unavailable")
		return nil
	}

	if err := j.repo.Save(*summary); err != nil {
		return err
	}

	if j.eventMgr != nil {
		j.eventMgr.Emit(events.SnapshotSaved, "snapshots", map[string]interface{}{
			"account_id": summary.AccountID,
			"nlv":        summary.NetLiquidationValue,
		})
	}
	return nil
}

// Name identifies the job in scheduler logs
func (j *Job) Name() string { return "portfolio_snapshot" }
