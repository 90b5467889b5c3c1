package migration

import (
	"encoding/json"
	"fmt"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

// MigrateModelSolutionSpec returns raw as a current model solution. A null document
// stays nil. Legacy items carried validityRegex regardless of type; the result has
// no field to hold it.
func MigrateModelSolutionSpec(raw json.RawMessage) (*model.ModelSolutionSpecQuiz, error) {
	if isNull(raw) {
		return nil, nil
	}
	legacy, err := IsLegacySpec(raw)
	if err != nil {
		return nil, err
	}
	if !legacy {
		var quiz model.ModelSolutionSpecQuiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("decode model solution spec: %w", err)
		}
		quiz.Version = model.QuizVersion
		return &quiz, nil
	}

	var old model.OldModelSolutionQuiz
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decode legacy model solution spec: %w", err)
	}

	quiz := &model.ModelSolutionSpecQuiz{
		Version:                  model.QuizVersion,
		ID:                       model.CloneString(old.ID),
		Title:                    model.CloneString(old.Title),
		Body:                     model.CloneString(old.Body),
		AwardPointsEvenIfWrong:   old.AwardPointsEvenIfWrong,
		GrantPointsPolicy:        old.GrantPointsPolicy,
		QuizItemDisplayDirection: displayDirection(old.Direction),
		SubmitMessage:            model.CloneString(old.SubmitMessage),
		Items:                    make([]model.ModelSolutionQuizItem, 0, len(old.Items)),
	}
	for i, item := range old.Items {
		migrated, err := modelSolutionItemFromOld(item, i)
		if err != nil {
			return nil, err
		}
		quiz.Items = append(quiz.Items, migrated)
	}
	return quiz, nil
}

func modelSolutionItemFromOld(old model.OldQuizItem, index int) (model.ModelSolutionQuizItem, error) {
	id, err := requireItemID(old.ID, index)
	if err != nil {
		return nil, err
	}
	text := model.ItemText{Title: model.CloneString(old.Title), Body: model.CloneString(old.Body)}
	messages := model.ItemMessages{
		SuccessMessage: model.CloneString(old.SuccessMessage),
		FailureMessage: model.CloneString(old.FailureMessage),
	}

	switch old.Type {
	case string(model.QuizItemTypeMultipleChoice):
		return &model.ModelSolutionQuizItemMultipleChoice{
			QuizItemBase:                  model.NewItemBase(model.QuizItemTypeMultipleChoice, id, old.Order),
			ItemText:                      text,
			ItemMessages:                  messages,
			ShuffleOptions:                old.ShuffleOptions,
			AllowSelectingMultipleOptions: old.Multi,
			Options:                       migrateOptions(old.Options),
			SharedOptionFeedbackMessage:   model.CloneString(old.SharedOptionFeedbackMessage),
			Direction:                     rawDirection(old.Direction),
			OptionDisplayDirection:        displayDirection(old.Direction),
			MultipleChoiceMultipleOptionsGradingPolicy: gradingPolicy(old.MultipleChoiceMultipleOptionsGradingPolicy),
		}, nil
	case string(model.QuizItemTypeCheckbox):
		return &model.ModelSolutionQuizItemCheckbox{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeCheckbox, id, old.Order),
			ItemText:     text,
			ItemMessages: messages,
		}, nil
	case string(model.QuizItemTypeEssay):
		return &model.ModelSolutionQuizItemEssay{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeEssay, id, old.Order),
			ItemText:     text,
			ItemMessages: messages,
			MinWords:     model.CloneInt(old.MinWords),
			MaxWords:     model.CloneInt(old.MaxWords),
		}, nil
	case string(model.QuizItemTypeScale):
		return &model.ModelSolutionQuizItemScale{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeScale, id, old.Order),
			ItemText:     text,
			ItemMessages: messages,
			MinValue:     model.CloneInt(old.MinValue),
			MaxValue:     model.CloneInt(old.MaxValue),
			MinLabel:     model.CloneString(old.MinLabel),
			MaxLabel:     model.CloneString(old.MaxLabel),
		}, nil
	case string(model.QuizItemTypeMatrix):
		return &model.ModelSolutionQuizItemMatrix{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeMatrix, id, old.Order),
			ItemMessages: messages,
			OptionCells:  model.CloneCells(old.OptionCells),
		}, nil
	case string(model.QuizItemTypeTimeline):
		return &model.ModelSolutionQuizItemTimeline{
			QuizItemBase:  model.NewItemBase(model.QuizItemTypeTimeline, id, old.Order),
			ItemMessages:  messages,
			TimelineItems: model.CloneTimelineItems(old.TimelineItems),
		}, nil
	case string(model.QuizItemTypeChooseN), model.OldQuizItemTypeClickableMultipleChoice:
		return &model.ModelSolutionQuizItemChooseN{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeChooseN, id, old.Order),
			ItemText:     text,
			ItemMessages: messages,
			N:            ChooseNDefaultValue,
			Options:      migrateOptions(old.Options),
		}, nil
	case string(model.QuizItemTypeClosedEndedQuestion), model.OldQuizItemTypeOpen:
		return &model.ModelSolutionQuizItemClosedEndedQuestion{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeClosedEndedQuestion, id, old.Order),
			ItemText:     text,
			ItemMessages: messages,
			FormatRegex:  model.CloneString(old.FormatRegex),
		}, nil
	case string(model.QuizItemTypeMultipleChoiceDropdown):
		return &model.ModelSolutionQuizItemMultipleChoiceDropdown{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeMultipleChoiceDropdown, id, old.Order),
			ItemText:     text,
			ItemMessages: messages,
			Options:      migrateOptions(old.Options),
		}, nil
	default:
		return nil, fmt.Errorf("items[%d]: %w: %q", index, ErrUnknownItemType, old.Type)
	}
}
