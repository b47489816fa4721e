package clientdata

import (
	"context"

	"github.com/rs/zerolog"
)

// CleanupJob periodically removes expired payload records
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates the scheduled cache cleanup job
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("component", "clientdata_cleanup").Logger(),
	}
}

// Run deletes expired records from all payload tables
func (j *CleanupJob) Run(ctx context.Context) error {
	deleted, err := j.repo.DeleteAllExpired()
	if err != nil {
		return err
	}

	var total int64
	for _, n := range deleted {
		total += n
	}
	if total > 0 {
		j.log.Info().Int64("deleted", total).Msg("Removed expired payloads")
	}
	return nil
}

// Name identifies the job in scheduler logs
func (j *CleanupJob) Name() string { return "clientdata_cleanup" }
