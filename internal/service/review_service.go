package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/events"
	"github.com/stemsi/exstem-quizzes/internal/grading"
	"github.com/stemsi/exstem-quizzes/internal/migration"
	"github.com/stemsi/exstem-quizzes/internal/model"
	"github.com/stemsi/exstem-quizzes/internal/repository"
	"github.com/xuri/excelize/v2"
)

// Review errors.
var (
	ErrGradingNotFound   = errors.New("grading not found")
	ErrGradingNotPending = errors.New("grading is not pending manual review")
)

// GradingStore is the persistence the review flow needs.
type GradingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.GradingRecord, error)
	List(ctx context.Context, filter model.GradingRecordFilter) ([]model.GradingRecordSummary, int64, error)
	ListForExport(ctx context.Context, filter model.GradingRecordFilter) ([]model.GradingRecordSummary, error)
	CompleteReview(ctx context.Context, id uuid.UUID, result *model.GradingResult) error
}

// ReviewService lets reviewers inspect stored gradings and score pending essays.
type ReviewService struct {
	store       GradingStore
	queue       Queue
	broadcaster Broadcaster
	publisher   events.Publisher
	log         zerolog.Logger
	now         func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store GradingStore, queue Queue, broadcaster Broadcaster, publisher events.Publisher, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		store:       store,
		queue:       queue,
		broadcaster: broadcaster,
		publisher:   publisher,
		log:         log.With().Str("component", "review_service").Logger(),
		now:         time.Now,
	}
}

// List returns a page of grading summaries.
func (s *ReviewService) List(ctx context.Context, filter model.GradingRecordFilter) ([]model.GradingRecordSummary, int64, error) {
	return s.store.List(ctx, filter)
}

// Get returns one stored grading.
func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*model.GradingRecord, error) {
	rec, err := s.store.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGradingNotFound
	}
	return rec, err
}

// Review applies the reviewer's essay scores to a pending grading. The final result is
// stored, queued for delivery to the grading update URL, and announced.
func (s *ReviewService) Review(ctx context.Context, id uuid.UUID, itemScores map[string]float64) (*model.GradingResult, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Progress != model.GradingProgressPendingManual {
		return nil, ErrGradingNotPending
	}

	quiz, err := migration.MigratePrivateSpec(rec.ExerciseSpec)
	if err != nil {
		return nil, fmt.Errorf("decode stored spec: %w", err)
	}
	var pending model.GradingResult
	if err := json.Unmarshal(rec.Result, &pending); err != nil {
		return nil, fmt.Errorf("decode stored result: %w", err)
	}

	final, err := grading.Finalize(quiz, &pending, itemScores)
	if err != nil {
		if errors.Is(err, grading.ErrNotPendingManual) {
			return nil, ErrGradingNotPending
		}
		return nil, err
	}

	if err := s.store.CompleteReview(ctx, id, final); err != nil {
		if errors.Is(err, repository.ErrGradingNotPending) {
			return nil, ErrGradingNotPending
		}
		return nil, err
	}

	if rec.GradingUpdateURL != nil && *rec.GradingUpdateURL != "" && s.queue != nil {
		update := model.GradingUpdate{GradingID: id, URL: *rec.GradingUpdateURL, Result: final}
		if err := PushJSON(ctx, s.queue, config.WorkerKey.GradingUpdatesQueue, update); err != nil {
			s.log.Error().Err(err).Str("grading_id", id.String()).Msg("Failed to enqueue grading update")
		}
	}

	notify(ctx, s.publisher, s.broadcaster, s.log,
		gradingEvent(model.GradingEventCompleted, id, rec.QuizID, final, s.now()))

	s.log.Info().
		Str("grading_id", id.String()).
		Float64("score_given", final.ScoreGiven).
		Int("score_maximum", final.ScoreMaximum).
		Msg("Manual review completed")
	return final, nil
}

var exportHeaders = []string{
	"Grading ID", "Quiz ID", "Progress", "Score Given", "Score Maximum", "Created At", "Reviewed At",
}

// Export renders the gradings matching filter as an XLSX workbook.
func (s *ReviewService) Export(ctx context.Context, filter model.GradingRecordFilter) (*bytes.Buffer, error) {
	rows, err := s.store.ListForExport(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Gradings"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for r, row := range rows {
		values := []any{
			row.ID.String(),
			deref(row.QuizID),
			string(row.Progress),
			row.ScoreGiven,
			row.ScoreMaximum,
			row.CreatedAt.UTC().Format(time.RFC3339),
			"",
		}
		if row.ReviewedAt != nil {
			values[6] = row.ReviewedAt.UTC().Format(time.RFC3339)
		}
		for c, value := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
