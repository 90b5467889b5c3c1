package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// GradingPruner removes old grading records.
type GradingPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob purges grading records older than the retention window on a cron schedule.
type RetentionJob struct {
	store     GradingPruner
	retention time.Duration
	schedule  string
	log       zerolog.Logger
	now       func() time.Time
}

func NewRetentionJob(store GradingPruner, days int, schedule string, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		store:     store,
		retention: time.Duration(days) * 24 * time.Hour,
		schedule:  schedule,
		log:       log.With().Str("component", "retention_job").Logger(),
		now:       time.Now,
	}
}

// Start registers the purge on a new scheduler and starts it. The returned scheduler must be
// stopped on shutdown.
func (j *RetentionJob) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(j.schedule, func() { j.Run(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	j.log.Info().Str("schedule", j.schedule).Dur("retention", j.retention).Msg("Retention job scheduled")
	return c, nil
}

// Run deletes every record created before the retention window. A non-positive window
// keeps records forever.
func (j *RetentionJob) Run(ctx context.Context) {
	if j.retention <= 0 {
		return
	}
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.log.Error().Err(err).Time("cutoff", cutoff).Msg("Retention purge failed")
		return
	}
	j.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Retention purge finished")
}
