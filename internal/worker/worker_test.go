package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/model"
)

type fakeQueue struct {
	pushed map[string][][]byte
}

func (q *fakeQueue) Push(_ context.Context, queue string, payload []byte) error {
	if q.pushed == nil {
		q.pushed = map[string][][]byte{}
	}
	q.pushed[queue] = append(q.pushed[queue], payload)
	return nil
}

type fakeWriter struct {
	bulkErr   error
	failIDs   map[uuid.UUID]bool
	bulk      [][]*model.GradingRecord
	inserted  []uuid.UUID
	cutoff    time.Time
	deleteErr error
}

func (f *fakeWriter) BulkInsert(_ context.Context, records []*model.GradingRecord) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.bulk = append(f.bulk, records)
	return nil
}

func (f *fakeWriter) Insert(_ context.Context, rec *model.GradingRecord) error {
	if f.failIDs[rec.ID] {
		return errors.New("insert failed")
	}
	f.inserted = append(f.inserted, rec.ID)
	return nil
}

func (f *fakeWriter) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.deleteErr
}

func records(n int) []*model.GradingRecord {
	out := make([]*model.GradingRecord, n)
	for i := range out {
		out[i] = &model.GradingRecord{
			ID:       uuid.New(),
			Progress: model.GradingProgressFullyGraded,
			Result:   json.RawMessage(`{}`),
		}
	}
	return out
}

func TestGradingPersistWorker_FlushBatch(t *testing.T) {
	store := &fakeWriter{}
	queue := &fakeQueue{}
	w := NewGradingPersistWorker(store, nil, queue, zerolog.Nop())

	batch := records(3)
	w.flushSafe(context.Background(), batch)

	require.Len(t, store.bulk, 1)
	assert.Len(t, store.bulk[0], 3)
	assert.Empty(t, store.inserted)
	assert.Empty(t, queue.pushed)

	w.flushSafe(context.Background(), nil)
	assert.Len(t, store.bulk, 1)
}

func TestGradingPersistWorker_FallbackRequeuesFailures(t *testing.T) {
	batch := records(3)
	store := &fakeWriter{
		bulkErr: errors.New("batch failed"),
		failIDs: map[uuid.UUID]bool{batch[1].ID: true},
	}
	queue := &fakeQueue{}
	w := NewGradingPersistWorker(store, nil, queue, zerolog.Nop())

	w.flushSafe(context.Background(), batch)

	assert.Equal(t, []uuid.UUID{batch[0].ID, batch[2].ID}, store.inserted)
	requeued := queue.pushed[config.WorkerKey.PersistGradingsQueue]
	require.Len(t, requeued, 1)

	var rec model.GradingRecord
	require.NoError(t, json.Unmarshal(requeued[0], &rec))
	assert.Equal(t, batch[1].ID, rec.ID)
}

func TestGradingPersistWorker_UnencodableRecordIsNotRequeued(t *testing.T) {
	batch := records(2)
	batch[0].Result = json.RawMessage(`{broken`)
	store := &fakeWriter{
		bulkErr: errors.New("batch failed"),
		failIDs: map[uuid.UUID]bool{batch[0].ID: true},
	}
	queue := &fakeQueue{}
	w := NewGradingPersistWorker(store, nil, queue, zerolog.Nop())

	w.flushSafe(context.Background(), batch)

	assert.Equal(t, []uuid.UUID{batch[1].ID}, store.inserted)
	assert.Empty(t, queue.pushed[config.WorkerKey.PersistGradingsQueue])
}

func newUpdateWorker(t *testing.T, queue *fakeQueue) *GradingUpdateWorker {
	t.Helper()
	cfg := &config.Config{
		GradingUpdateTimeout:     2 * time.Second,
		GradingUpdateMaxAttempts: 3,
	}
	w := NewGradingUpdateWorker(nil, queue, cfg, zerolog.Nop())
	w.client.SetRetryCount(0)
	return w
}

func updatePayload(t *testing.T, url string, attempts int) (uuid.UUID, []byte) {
	t.Helper()
	id := uuid.New()
	raw, err := json.Marshal(model.GradingUpdate{
		GradingID: id,
		URL:       url,
		Attempts:  attempts,
		Result: &model.GradingResult{
			GradingProgress: model.GradingProgressFullyGraded,
			ScoreGiven:      1.5,
			ScoreMaximum:    2,
		},
	})
	require.NoError(t, err)
	return id, raw
}

func TestGradingUpdateWorker_Delivers(t *testing.T) {
	var gotHeader string
	var got model.GradingResult
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Grading-ID")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	queue := &fakeQueue{}
	w := newUpdateWorker(t, queue)
	id, raw := updatePayload(t, srv.URL, 0)

	w.process(context.Background(), raw)

	assert.Equal(t, id.String(), gotHeader)
	assert.Equal(t, 1.5, got.ScoreGiven)
	assert.Equal(t, model.GradingProgressFullyGraded, got.GradingProgress)
	assert.Empty(t, queue.pushed)
}

func TestGradingUpdateWorker_RequeuesOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	queue := &fakeQueue{}
	w := newUpdateWorker(t, queue)
	id, raw := updatePayload(t, srv.URL, 0)

	w.process(context.Background(), raw)

	requeued := queue.pushed[config.WorkerKey.GradingUpdatesQueue]
	require.Len(t, requeued, 1)
	var update model.GradingUpdate
	require.NoError(t, json.Unmarshal(requeued[0], &update))
	assert.Equal(t, id, update.GradingID)
	assert.Equal(t, 1, update.Attempts)
}

func TestGradingUpdateWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	queue := &fakeQueue{}
	w := newUpdateWorker(t, queue)
	_, raw := updatePayload(t, srv.URL, 2)

	w.process(context.Background(), raw)
	assert.Empty(t, queue.pushed)

	w.process(context.Background(), []byte(`not json`))
	assert.Empty(t, queue.pushed)
}

func TestRetentionJob_Run(t *testing.T) {
	store := &fakeWriter{}
	job := NewRetentionJob(store, 30, "0 3 * * *", zerolog.Nop())
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	job.Run(context.Background())
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), store.cutoff)

	disabled := &fakeWriter{}
	NewRetentionJob(disabled, 0, "0 3 * * *", zerolog.Nop()).Run(context.Background())
	assert.True(t, disabled.cutoff.IsZero())
}

func TestRetentionJob_StartRejectsBadSchedule(t *testing.T) {
	job := NewRetentionJob(&fakeWriter{}, 30, "not a schedule", zerolog.Nop())
	_, err := job.Start(context.Background())
	assert.Error(t, err)

	job = NewRetentionJob(&fakeWriter{}, 30, "@every 1h", zerolog.Nop())
	c, err := job.Start(context.Background())
	require.NoError(t, err)
	<-c.Stop().Done()
}
