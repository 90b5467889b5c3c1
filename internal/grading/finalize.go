package grading

import (
	"fmt"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

// Finalize completes a PendingManual result with reviewer scores for its essays.
//
// itemScores must hold a score in [0,1] for every essay that was answered, and nothing else. Once reviewed,
// every essay counts toward the maximum and unanswered essays score 0. The returned result
// is a new value; pending is left untouched.
func Finalize(quiz *model.PrivateSpecQuiz, pending *model.GradingResult, itemScores map[string]float64) (*model.GradingResult, error) {
	if quiz == nil {
		return nil, ErrNilSpec
	}
	if pending == nil || pending.GradingProgress != model.GradingProgressPendingManual {
		return nil, ErrNotPendingManual
	}
	pendingIDs := make(map[string]struct{})
	for _, id := range pending.PendingItemIDs() {
		pendingIDs[id] = struct{}{}
	}
	for id, score := range itemScores {
		if _, ok := pendingIDs[id]; !ok {
			return nil, invalid(id, ErrUnexpectedScore)
		}
		if score < 0 || score > 1 {
			return nil, invalid(id, fmt.Errorf("%w: %v", ErrInvalidManualScore, score))
		}
	}

	final := &model.GradingResult{
		GradingProgress: model.GradingProgressFullyGraded,
		FeedbackText:    model.CloneString(pending.FeedbackText),
		FeedbackJSON:    make([]model.ItemAnswerFeedback, 0, len(pending.FeedbackJSON)),
	}

	var given float64
	for _, f := range pending.FeedbackJSON {
		if f.CorrectnessCoefficient != nil {
			given += *f.CorrectnessCoefficient
			final.FeedbackJSON = append(final.FeedbackJSON, f)
			continue
		}

		score, ok := itemScores[f.QuizItemID]
		if !ok {
			return nil, invalid(f.QuizItemID, ErrMissingManualScore)
		}
		item := quiz.FindItem(f.QuizItemID)
		if item == nil {
			return nil, invalid(f.QuizItemID, ErrItemMissing)
		}
		given += score
		final.FeedbackJSON = append(final.FeedbackJSON, itemFeedback(item, itemGrade{score: score}))
	}

	// Essays were left out of the automatic maximum.
	final.ScoreMaximum = len(quiz.Items)
	final.ScoreGiven = settle(quiz, given, final.ScoreMaximum)
	return final, nil
}
