// Package grading scores a student's answers against a private quiz spec.
//
// Every item is worth one point. Item scores are normalized to [0,1] and summed. Essays
// have no automatic score: they leave the result PendingManual until Finalize is called
// with the reviewer's scores.
package grading

import (
	"fmt"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

// Grade scores answer against quiz. Any invalid answer fails the whole request.
func Grade(quiz *model.PrivateSpecQuiz, answer *model.UserAnswer) (*model.GradingResult, error) {
	if quiz == nil {
		return nil, ErrNilSpec
	}
	if answer == nil {
		return nil, ErrNilAnswer
	}
	if err := quiz.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz: %w", err)
	}

	answers, err := pairAnswers(quiz, answer)
	if err != nil {
		return nil, err
	}

	result := &model.GradingResult{
		GradingProgress: model.GradingProgressFullyGraded,
		FeedbackText:    model.CloneString(quiz.SubmitMessage),
		FeedbackJSON:    make([]model.ItemAnswerFeedback, 0, len(answers)),
	}

	var given float64
	for _, item := range quiz.Items {
		isEssay := item.ItemType() == model.QuizItemTypeEssay
		if !isEssay {
			result.ScoreMaximum++
		}

		ia, answered := answers[item.ItemID()]
		if !answered {
			continue
		}
		grade, err := gradeItem(item, ia)
		if err != nil {
			return nil, invalid(item.ItemID(), err)
		}
		if grade.pending {
			result.GradingProgress = model.GradingProgressPendingManual
		} else {
			given += grade.score
		}
		result.FeedbackJSON = append(result.FeedbackJSON, itemFeedback(item, grade))
	}

	result.ScoreGiven = settle(quiz, given, result.ScoreMaximum)
	return result, nil
}

// pairAnswers indexes the answers by item id and rejects answers that match no item.
func pairAnswers(quiz *model.PrivateSpecQuiz, answer *model.UserAnswer) (map[string]model.UserItemAnswer, error) {
	byItem := make(map[string]model.UserItemAnswer, len(answer.ItemAnswers))
	for _, ia := range answer.ItemAnswers {
		if ia == nil {
			continue
		}
		id := ia.AnsweredItemID()
		item := quiz.FindItem(id)
		if item == nil {
			return nil, invalid(id, ErrItemMissing)
		}
		if item.ItemType() != ia.ItemType() {
			return nil, invalid(id, ErrUnexpectedAnswerType)
		}
		if _, dup := byItem[id]; dup {
			return nil, invalid(id, ErrDuplicateAnswer)
		}
		byItem[id] = ia
	}
	return byItem, nil
}

func itemFeedback(item model.PrivateSpecQuizItem, grade itemGrade) model.ItemAnswerFeedback {
	feedback := model.ItemAnswerFeedback{
		QuizItemID:              item.ItemID(),
		QuizItemOptionFeedbacks: grade.optionFeedbacks,
	}
	if feedback.QuizItemOptionFeedbacks == nil {
		feedback.QuizItemOptionFeedbacks = []model.OptionAnswerFeedback{}
	}
	if grade.pending {
		return feedback
	}

	correct := grade.score == 1
	feedback.QuizItemCorrect = model.BoolPtr(correct)
	feedback.CorrectnessCoefficient = model.Float64Ptr(grade.score)

	messages := itemMessages(item)
	if correct {
		feedback.QuizItemFeedback = model.CloneString(messages.SuccessMessage)
	} else {
		feedback.QuizItemFeedback = model.CloneString(messages.FailureMessage)
	}
	return feedback
}

type messenger interface {
	Messages() model.ItemMessages
}

func itemMessages(item model.PrivateSpecQuizItem) model.ItemMessages {
	if m, ok := item.(messenger); ok {
		return m.Messages()
	}
	return model.ItemMessages{}
}

// settle applies the quiz-level point rules and keeps the score within [0, maximum].
func settle(quiz *model.PrivateSpecQuiz, given float64, maximum int) float64 {
	if quiz.AwardPointsEvenIfWrong {
		return float64(maximum)
	}
	if given < 0 {
		return 0
	}
	if given > float64(maximum) {
		return float64(maximum)
	}
	return given
}
