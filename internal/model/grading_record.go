package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GradingRecord is one stored grading, kept for manual review, export and
// update delivery.
type GradingRecord struct {
	ID               uuid.UUID       `json:"id"`
	QuizID           *string         `json:"quiz_id,omitempty"`
	GradingUpdateURL *string         `json:"grading_update_url,omitempty"`
	Progress         GradingProgress `json:"grading_progress"`
	ScoreGiven       float64         `json:"score_given"`
	ScoreMaximum     int             `json:"score_maximum"`
	ExerciseSpec     json.RawMessage `json:"exercise_spec,omitempty"`
	Submission       json.RawMessage `json:"submission_data,omitempty"`
	Result           json.RawMessage `json:"result"`
	CreatedAt        time.Time       `json:"created_at"`
	ReviewedAt       *time.Time      `json:"reviewed_at,omitempty"`
}

// GradingRecordSummary is a list row without the stored documents.
type GradingRecordSummary struct {
	ID           uuid.UUID       `json:"id"`
	QuizID       *string         `json:"quiz_id,omitempty"`
	Progress     GradingProgress `json:"grading_progress"`
	ScoreGiven   float64         `json:"score_given"`
	ScoreMaximum int             `json:"score_maximum"`
	CreatedAt    time.Time       `json:"created_at"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
}

// GradingRecordFilter narrows list and export queries.
type GradingRecordFilter struct {
	QuizID   *string
	Progress *GradingProgress
	Page     int
	PerPage  int
}

// ReviewRequest is the payload for scoring the essays of a pending grading.
type ReviewRequest struct {
	ItemScores map[string]float64 `json:"item_scores" binding:"required,min=1,dive,unitinterval"`
}

// GradingUpdate is delivered to a grading_update_url once a manual review completes.
type GradingUpdate struct {
	GradingID uuid.UUID      `json:"grading_id"`
	URL       string         `json:"url"`
	Result    *GradingResult `json:"result"`
	Attempts  int            `json:"attempts"`
}

// GradingEvent is broadcast to reviewer dashboards and the event stream.
type GradingEvent struct {
	Type            string          `json:"type"`
	GradingID       uuid.UUID       `json:"grading_id"`
	QuizID          *string         `json:"quiz_id,omitempty"`
	GradingProgress GradingProgress `json:"grading_progress"`
	ScoreGiven      float64         `json:"score_given"`
	ScoreMaximum    int             `json:"score_maximum"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// Grading event types.
const (
	GradingEventCompleted      = "grading.completed"
	GradingEventManualRequired = "grading.manual_required"
)
