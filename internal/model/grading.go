package model

import "encoding/json"

// GradingProgress reports whether a result is final.
type GradingProgress string

const (
	GradingProgressFullyGraded   GradingProgress = "FullyGraded"
	GradingProgressPendingManual GradingProgress = "PendingManual"
)

// GradingRequest is the body of POST /api/grade. Both documents stay raw until
// the migrator has decided which shape they are in.
type GradingRequest struct {
	ExerciseSpec     json.RawMessage `json:"exercise_spec"`
	SubmissionData   json.RawMessage `json:"submission_data"`
	GradingUpdateURL *string         `json:"grading_update_url"`
}

// SpecRequest is the body of POST /api/public-spec and POST /api/model-solution.
type SpecRequest struct {
	RequestID   string          `json:"request_id"`
	PrivateSpec json.RawMessage `json:"private_spec"`
	UploadURL   *string         `json:"upload_url"`
}

// GradingResult is returned to the course platform.
type GradingResult struct {
	GradingProgress GradingProgress      `json:"grading_progress"`
	ScoreGiven      float64              `json:"score_given"`
	ScoreMaximum    int                  `json:"score_maximum"`
	FeedbackText    *string              `json:"feedback_text"`
	FeedbackJSON    []ItemAnswerFeedback `json:"feedback_json"`
}

// ItemAnswerFeedback is the per-item breakdown of a result.
// QuizItemCorrect is nil while the item awaits manual review.
type ItemAnswerFeedback struct {
	QuizItemID              string                 `json:"quiz_item_id"`
	QuizItemFeedback        *string                `json:"quiz_item_feedback"`
	QuizItemCorrect         *bool                  `json:"quiz_item_correct"`
	CorrectnessCoefficient  *float64               `json:"correctness_coefficient"`
	QuizItemOptionFeedbacks []OptionAnswerFeedback `json:"quiz_item_option_feedbacks"`
}

// OptionAnswerFeedback is shown next to an option the student selected.
type OptionAnswerFeedback struct {
	OptionID             string  `json:"option_id"`
	OptionFeedback       *string `json:"option_feedback"`
	ThisOptionWasCorrect *bool   `json:"this_option_was_correct"`
}

// PendingItemIDs returns the items still waiting for a manual score.
func (r *GradingResult) PendingItemIDs() []string {
	var ids []string
	for _, f := range r.FeedbackJSON {
		if f.CorrectnessCoefficient == nil {
			ids = append(ids, f.QuizItemID)
		}
	}
	return ids
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }
