package migration

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

// ErrQuizRequired is returned when a legacy answer has no quiz to resolve item types against.
var ErrQuizRequired = errors.New("a migrated quiz is required to migrate a legacy answer")

// MigrateUserAnswer returns raw as a current user answer. Legacy item answers carry no
// type, so each takes the type of the quiz item with the same id.
func MigrateUserAnswer(raw json.RawMessage, quiz *model.PrivateSpecQuiz) (*model.UserAnswer, error) {
	if isNull(raw) {
		return nil, nil
	}
	legacy, err := IsLegacyAnswer(raw)
	if err != nil {
		return nil, err
	}
	if !legacy {
		var answer model.UserAnswer
		if err := json.Unmarshal(raw, &answer); err != nil {
			return nil, fmt.Errorf("decode user answer: %w", err)
		}
		answer.Version = model.QuizVersion
		return &answer, nil
	}
	if quiz == nil {
		return nil, ErrQuizRequired
	}

	var old model.OldQuizAnswer
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decode legacy user answer: %w", err)
	}

	answer := &model.UserAnswer{
		Version:     model.QuizVersion,
		ItemAnswers: make([]model.UserItemAnswer, 0, len(old.ItemAnswers)),
	}
	for _, oldItemAnswer := range old.ItemAnswers {
		item := quiz.FindItem(oldItemAnswer.QuizItemID)
		if item == nil {
			return nil, fmt.Errorf("%w: %s", model.ErrItemMissing, oldItemAnswer.QuizItemID)
		}
		migrated, err := itemAnswerFromOld(oldItemAnswer, item.ItemType())
		if err != nil {
			return nil, err
		}
		answer.ItemAnswers = append(answer.ItemAnswers, migrated)
	}
	return answer, nil
}

func itemAnswerFromOld(old model.OldQuizItemAnswer, t model.QuizItemType) (model.UserItemAnswer, error) {
	base := model.ItemAnswerBase{Type: t, QuizItemID: old.QuizItemID, Valid: old.Valid}

	switch t {
	case model.QuizItemTypeMultipleChoice:
		return &model.UserItemAnswerMultipleChoice{
			ItemAnswerBase:    base,
			SelectedOptionIDs: model.CloneStrings(old.OptionAnswers),
		}, nil
	case model.QuizItemTypeCheckbox:
		return &model.UserItemAnswerCheckbox{
			ItemAnswerBase: base,
			Checked:        old.IntData != nil && *old.IntData == 1,
		}, nil
	case model.QuizItemTypeEssay:
		return &model.UserItemAnswerEssay{ItemAnswerBase: base, TextData: model.CloneString(old.TextData)}, nil
	case model.QuizItemTypeScale:
		return &model.UserItemAnswerScale{ItemAnswerBase: base, IntData: model.CloneInt(old.IntData)}, nil
	case model.QuizItemTypeMatrix:
		return &model.UserItemAnswerMatrix{ItemAnswerBase: base, Matrix: model.CloneCells(old.OptionCells)}, nil
	case model.QuizItemTypeTimeline:
		return &model.UserItemAnswerTimeline{
			ItemAnswerBase:  base,
			TimelineChoices: model.CloneTimelineChoices(old.TimelineChoices),
		}, nil
	case model.QuizItemTypeChooseN:
		return &model.UserItemAnswerChooseN{
			ItemAnswerBase:    base,
			SelectedOptionIDs: model.CloneStrings(old.OptionAnswers),
		}, nil
	case model.QuizItemTypeClosedEndedQuestion:
		return &model.UserItemAnswerClosedEndedQuestion{
			ItemAnswerBase: base,
			TextData:       model.CloneString(old.TextData),
		}, nil
	case model.QuizItemTypeMultipleChoiceDropdown:
		return &model.UserItemAnswerMultipleChoiceDropdown{
			ItemAnswerBase:    base,
			SelectedOptionIDs: model.CloneStrings(old.OptionAnswers),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnexpectedAnswerType, t)
	}
}
