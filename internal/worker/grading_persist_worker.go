package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/model"
	"github.com/stemsi/exstem-quizzes/internal/service"
)

const (
	PersistBatchSize    = 50
	PersistBatchTimeout = 2 * time.Second
	PersistPollTimeout  = 1 * time.Second
)

// GradingWriter stores grading records.
type GradingWriter interface {
	BulkInsert(ctx context.Context, records []*model.GradingRecord) error
	Insert(ctx context.Context, rec *model.GradingRecord) error
}

// GradingPersistWorker drains persist_gradings_queue into PostgreSQL in batches.
type GradingPersistWorker struct {
	store GradingWriter
	rdb   *redis.Client
	queue service.Queue
	log   zerolog.Logger
}

func NewGradingPersistWorker(store GradingWriter, rdb *redis.Client, queue service.Queue, log zerolog.Logger) *GradingPersistWorker {
	return &GradingPersistWorker{
		store: store,
		rdb:   rdb,
		queue: queue,
		log:   log.With().Str("component", "grading_persist_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *GradingPersistWorker) Start(ctx context.Context) {
	w.log.Info().Msg("GradingPersistWorker started")

	batch := make([]*model.GradingRecord, 0, PersistBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= PersistBatchSize || time.Since(lastFlush) >= PersistBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, PersistPollTimeout, config.WorkerKey.PersistGradingsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var rec model.GradingRecord
			if err := json.Unmarshal([]byte(item[1]), &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *GradingPersistWorker) flushSafe(ctx context.Context, batch []*model.GradingRecord) {
	if len(batch) == 0 {
		return
	}

	err := w.store.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Persisted grading batch")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk grading insert failed, using fallback")

	for _, rec := range batch {
		if err := w.store.Insert(ctx, rec); err != nil {
			w.log.Error().Err(err).Str("grading_id", rec.ID.String()).Msg("Insert failed, requeueing")
			if err := service.PushJSON(ctx, w.queue, config.WorkerKey.PersistGradingsQueue, rec); err != nil {
				w.log.Error().Err(err).Str("grading_id", rec.ID.String()).Msg("Requeue failed, grading dropped")
			}
		}
	}
}
