package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quizzes/internal/model"
)

// ErrGradingNotPending is returned when a review targets a grading that is not
// waiting for manual review (or does not exist).
var ErrGradingNotPending = errors.New("grading is not pending manual review")

// ExportLimit caps the rows returned for a spreadsheet export.
const ExportLimit = 10000

// GradingRepository handles grading record data access.
type GradingRepository struct {
	pool *pgxpool.Pool
}

// NewGradingRepository creates a new GradingRepository.
func NewGradingRepository(pool *pgxpool.Pool) *GradingRepository {
	return &GradingRepository{pool: pool}
}

// BulkInsert stores a batch of gradings in one round trip. Records already stored are skipped.
func (r *GradingRepository) BulkInsert(ctx context.Context, records []*model.GradingRecord) error {
	n := len(records)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	quizIDs := make([]*string, 0, n)
	urls := make([]*string, 0, n)
	progress := make([]string, 0, n)
	given := make([]float64, 0, n)
	maximum := make([]int, 0, n)
	specs := make([]string, 0, n)
	submissions := make([]string, 0, n)
	results := make([]string, 0, n)
	createdAts := make([]time.Time, 0, n)

	for _, rec := range records {
		ids = append(ids, rec.ID)
		quizIDs = append(quizIDs, rec.QuizID)
		urls = append(urls, rec.GradingUpdateURL)
		progress = append(progress, string(rec.Progress))
		given = append(given, rec.ScoreGiven)
		maximum = append(maximum, rec.ScoreMaximum)
		specs = append(specs, jsonText(rec.ExerciseSpec))
		submissions = append(submissions, jsonText(rec.Submission))
		results = append(results, jsonText(rec.Result))
		createdAts = append(createdAts, rec.CreatedAt)
	}

	query := `
		INSERT INTO grading_records (
			id, quiz_id, grading_update_url, grading_progress, score_given, score_maximum,
			exercise_spec, submission_data, result, created_at
		)
		SELECT
			u.id, u.quiz_id, u.url, u.progress, u.given, u.maximum,
			u.spec::jsonb, u.submission::jsonb, u.result::jsonb, u.created_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::float8[],
			$6::int[],
			$7::text[],
			$8::text[],
			$9::text[],
			$10::timestamptz[]
		) AS u (id, quiz_id, url, progress, given, maximum, spec, submission, result, created_at)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		ids, quizIDs, urls, progress, given, maximum, specs, submissions, results, createdAts)
	return err
}

// Insert stores a single grading. Used as the fallback when a batch fails.
func (r *GradingRepository) Insert(ctx context.Context, rec *model.GradingRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO grading_records (
			id, quiz_id, grading_update_url, grading_progress, score_given, score_maximum,
			exercise_spec, submission_data, result, created_at
		 )
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9::jsonb, $10)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.QuizID, rec.GradingUpdateURL, rec.Progress, rec.ScoreGiven, rec.ScoreMaximum,
		jsonText(rec.ExerciseSpec), jsonText(rec.Submission), jsonText(rec.Result), rec.CreatedAt,
	)
	return err
}

// GetByID retrieves a grading with its stored documents.
func (r *GradingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.GradingRecord, error) {
	rec := &model.GradingRecord{}
	var spec, submission, result []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, grading_update_url, grading_progress, score_given, score_maximum,
		        exercise_spec, submission_data, result, created_at, reviewed_at
		 FROM grading_records WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.QuizID, &rec.GradingUpdateURL, &rec.Progress, &rec.ScoreGiven, &rec.ScoreMaximum,
		&spec, &submission, &result, &rec.CreatedAt, &rec.ReviewedAt)
	if err != nil {
		return nil, err
	}
	rec.ExerciseSpec = spec
	rec.Submission = submission
	rec.Result = result
	return rec, nil
}

// List retrieves grading summaries matching the filter, newest first, with pagination.
func (r *GradingRepository) List(ctx context.Context, filter model.GradingRecordFilter) ([]model.GradingRecordSummary, int64, error) {
	where, args := filterClause(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM grading_records"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	query := summaryColumns + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.PerPage, offset)

	summaries, err := r.querySummaries(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// ListForExport retrieves every grading summary matching the filter, up to ExportLimit rows.
func (r *GradingRepository) ListForExport(ctx context.Context, filter model.GradingRecordFilter) ([]model.GradingRecordSummary, error) {
	where, args := filterClause(filter)
	query := summaryColumns + where + fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d", len(args)+1)
	args = append(args, ExportLimit)
	return r.querySummaries(ctx, query, args...)
}

// CompleteReview stores the reviewed result of a pending grading.
// It returns ErrGradingNotPending if the grading was already reviewed.
func (r *GradingRepository) CompleteReview(ctx context.Context, id uuid.UUID, result *model.GradingResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE grading_records
		 SET grading_progress = $1, score_given = $2, score_maximum = $3, result = $4::jsonb, reviewed_at = NOW()
		 WHERE id = $5 AND grading_progress = $6`,
		result.GradingProgress, result.ScoreGiven, result.ScoreMaximum, string(raw),
		id, model.GradingProgressPendingManual,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGradingNotPending
	}
	return nil
}

// DeleteOlderThan removes gradings created before cutoff and reports how many were removed.
func (r *GradingRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM grading_records WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const summaryColumns = `SELECT id, quiz_id, grading_progress, score_given, score_maximum, created_at, reviewed_at
	FROM grading_records`

func filterClause(filter model.GradingRecordFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.QuizID != nil && *filter.QuizID != "" {
		args = append(args, *filter.QuizID)
		where += fmt.Sprintf(" AND quiz_id = $%d", len(args))
	}
	if filter.Progress != nil {
		args = append(args, string(*filter.Progress))
		where += fmt.Sprintf(" AND grading_progress = $%d", len(args))
	}
	return where, args
}

func (r *GradingRepository) querySummaries(ctx context.Context, query string, args ...any) ([]model.GradingRecordSummary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.GradingRecordSummary
	for rows.Next() {
		var s model.GradingRecordSummary
		if err := rows.Scan(&s.ID, &s.QuizID, &s.Progress, &s.ScoreGiven, &s.ScoreMaximum, &s.CreatedAt, &s.ReviewedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// jsonText returns raw as text for a jsonb parameter. Empty documents are stored as null.
func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
