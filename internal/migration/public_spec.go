package migration

import (
	"encoding/json"
	"fmt"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

// MigratePublicSpec returns raw as a current public spec. A null document stays nil.
func MigratePublicSpec(raw json.RawMessage) (*model.PublicSpecQuiz, error) {
	if isNull(raw) {
		return nil, nil
	}
	legacy, err := IsLegacySpec(raw)
	if err != nil {
		return nil, err
	}
	if !legacy {
		var quiz model.PublicSpecQuiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("decode public spec: %w", err)
		}
		quiz.Version = model.QuizVersion
		return &quiz, nil
	}

	var old model.OldPublicQuiz
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decode legacy public spec: %w", err)
	}

	quiz := &model.PublicSpecQuiz{
		Version:                  model.QuizVersion,
		ID:                       model.CloneString(old.ID),
		Title:                    model.CloneString(old.Title),
		Body:                     model.CloneString(old.Body),
		QuizItemDisplayDirection: displayDirection(old.Direction),
		Items:                    make([]model.PublicSpecQuizItem, 0, len(old.Items)),
	}
	for i, item := range old.Items {
		migrated, err := publicItemFromOld(item, i)
		if err != nil {
			return nil, err
		}
		quiz.Items = append(quiz.Items, migrated)
	}
	return quiz, nil
}

func publicItemFromOld(old model.OldPublicQuizItem, index int) (model.PublicSpecQuizItem, error) {
	id, err := requireItemID(old.ID, index)
	if err != nil {
		return nil, err
	}
	text := model.ItemText{Title: model.CloneString(old.Title), Body: model.CloneString(old.Body)}

	switch old.Type {
	case string(model.QuizItemTypeMultipleChoice):
		return &model.PublicSpecQuizItemMultipleChoice{
			QuizItemBase:                  model.NewItemBase(model.QuizItemTypeMultipleChoice, id, old.Order),
			ItemText:                      text,
			ShuffleOptions:                old.ShuffleOptions,
			AllowSelectingMultipleOptions: old.Multi,
			Options:                       clonePublicOptions(old.Options),
			Direction:                     rawDirection(old.Direction),
			OptionDisplayDirection:        displayDirection(old.Direction),
			MultipleChoiceMultipleOptionsGradingPolicy: gradingPolicy(old.MultipleChoiceMultipleOptionsGradingPolicy),
		}, nil
	case string(model.QuizItemTypeCheckbox):
		return &model.PublicSpecQuizItemCheckbox{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeCheckbox, id, old.Order),
			ItemText:     text,
		}, nil
	case string(model.QuizItemTypeEssay):
		return &model.PublicSpecQuizItemEssay{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeEssay, id, old.Order),
			ItemText:     text,
			MinWords:     model.CloneInt(old.MinWords),
			MaxWords:     model.CloneInt(old.MaxWords),
		}, nil
	case string(model.QuizItemTypeScale):
		return &model.PublicSpecQuizItemScale{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeScale, id, old.Order),
			ItemText:     text,
			MinValue:     model.CloneInt(old.MinValue),
			MaxValue:     model.CloneInt(old.MaxValue),
			MinLabel:     model.CloneString(old.MinLabel),
			MaxLabel:     model.CloneString(old.MaxLabel),
		}, nil
	case string(model.QuizItemTypeMatrix):
		return &model.PublicSpecQuizItemMatrix{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeMatrix, id, old.Order),
		}, nil
	case string(model.QuizItemTypeTimeline):
		item := &model.PublicSpecQuizItemTimeline{
			QuizItemBase:       model.NewItemBase(model.QuizItemTypeTimeline, id, old.Order),
			TimelineItems:      make([]model.PublicTimelineItem, len(old.TimelineItems)),
			TimelineItemEvents: make([]model.PublicTimelineEvent, len(old.TimelineItemEvents)),
		}
		copy(item.TimelineItems, old.TimelineItems)
		copy(item.TimelineItemEvents, old.TimelineItemEvents)
		return item, nil
	case string(model.QuizItemTypeChooseN), model.OldQuizItemTypeClickableMultipleChoice:
		return &model.PublicSpecQuizItemChooseN{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeChooseN, id, old.Order),
			ItemText:     text,
			N:            ChooseNDefaultValue,
			Options:      clonePublicOptions(old.Options),
		}, nil
	case string(model.QuizItemTypeClosedEndedQuestion), model.OldQuizItemTypeOpen:
		return &model.PublicSpecQuizItemClosedEndedQuestion{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeClosedEndedQuestion, id, old.Order),
			ItemText:     text,
			FormatRegex:  model.CloneString(old.FormatRegex),
		}, nil
	case string(model.QuizItemTypeMultipleChoiceDropdown):
		return &model.PublicSpecQuizItemMultipleChoiceDropdown{
			QuizItemBase: model.NewItemBase(model.QuizItemTypeMultipleChoiceDropdown, id, old.Order),
			ItemText:     text,
			Options:      clonePublicOptions(old.Options),
		}, nil
	default:
		return nil, fmt.Errorf("items[%d]: %w: %q", index, ErrUnknownItemType, old.Type)
	}
}

func clonePublicOptions(options []model.PublicQuizItemOption) []model.PublicQuizItemOption {
	out := make([]model.PublicQuizItemOption, 0, len(options))
	for _, o := range options {
		out = append(out, model.PublicQuizItemOption{
			ID:    o.ID,
			Order: o.Order,
			Title: model.CloneString(o.Title),
			Body:  model.CloneString(o.Body),
		})
	}
	return out
}
