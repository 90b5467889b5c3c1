package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/model"
	"github.com/stemsi/exstem-quizzes/internal/service"
)

// GradingUpdateWorker consumes grading_updates_queue and POSTs reviewed results to
// their grading_update_url.
type GradingUpdateWorker struct {
	rdb         *redis.Client
	queue       service.Queue
	client      *resty.Client
	maxAttempts int
	retryDelay  time.Duration
	log         zerolog.Logger
}

// NewGradingUpdateWorker creates a new GradingUpdateWorker.
func NewGradingUpdateWorker(rdb *redis.Client, queue service.Queue, cfg *config.Config, log zerolog.Logger) *GradingUpdateWorker {
	client := resty.New().
		SetTimeout(cfg.GradingUpdateTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "exstem-quizzes")

	return &GradingUpdateWorker{
		rdb:         rdb,
		queue:       queue,
		client:      client,
		maxAttempts: cfg.GradingUpdateMaxAttempts,
		retryDelay:  cfg.GradingUpdateRetryDelay,
		log:         log.With().Str("component", "grading_update_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *GradingUpdateWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.GradingUpdatesQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			w.process(ctx, []byte(result[1]))
		}
	}
}

func (w *GradingUpdateWorker) process(ctx context.Context, raw []byte) {
	var update model.GradingUpdate
	if err := json.Unmarshal(raw, &update); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	err := w.deliver(ctx, &update)
	if err == nil {
		w.log.Info().Str("grading_id", update.GradingID.String()).Msg("Grading update delivered")
		return
	}

	update.Attempts++
	logEvent := w.log.Warn().Err(err).
		Str("grading_id", update.GradingID.String()).
		Int("attempts", update.Attempts)
	if update.Attempts >= w.maxAttempts {
		logEvent.Msg("Grading update abandoned")
		return
	}
	logEvent.Dur("retry_in", w.retryDelay).Msg("Grading update failed, requeueing")

	if err := service.PushJSON(ctx, w.queue, config.WorkerKey.GradingUpdatesQueue, &update); err != nil {
		w.log.Error().Err(err).Str("grading_id", update.GradingID.String()).Msg("Requeue failed")
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(w.retryDelay):
	}
}

// deliver POSTs the final result. Any non-2xx response is a failure.
func (w *GradingUpdateWorker) deliver(ctx context.Context, update *model.GradingUpdate) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("X-Grading-ID", update.GradingID.String()).
		SetBody(update.Result).
		Post(update.URL)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("grading update rejected: %s", resp.Status())
	}
	return nil
}
