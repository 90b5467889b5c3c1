// Package projection derives the student-facing views of a private quiz spec.
//
// Every item is rebuilt field by field from an allow-list. A field added to a private
// item type stays private until it is copied here explicitly.
package projection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

// ErrUnhandledItemType means a private item variant has no projection rule.
var ErrUnhandledItemType = errors.New("no projection for quiz item type")

// ErrNilSpec is returned when there is no private spec to project.
var ErrNilSpec = errors.New("Private spec cannot be null")

// ToPublicSpec returns the view shown before submission.
func ToPublicSpec(quiz *model.PrivateSpecQuiz) (*model.PublicSpecQuiz, error) {
	if quiz == nil {
		return nil, ErrNilSpec
	}
	public := &model.PublicSpecQuiz{
		Version:                  model.QuizVersion,
		ID:                       model.CloneString(quiz.ID),
		Title:                    model.CloneString(quiz.Title),
		Body:                     model.CloneString(quiz.Body),
		QuizItemDisplayDirection: quiz.QuizItemDisplayDirection,
		Items:                    make([]model.PublicSpecQuizItem, 0, len(quiz.Items)),
	}
	for _, item := range quiz.Items {
		projected, err := publicItem(item)
		if err != nil {
			return nil, err
		}
		public.Items = append(public.Items, projected)
	}
	return public, nil
}

func publicItem(item model.PrivateSpecQuizItem) (model.PublicSpecQuizItem, error) {
	switch it := item.(type) {
	case *model.PrivateSpecQuizItemMultipleChoice:
		return &model.PublicSpecQuizItemMultipleChoice{
			QuizItemBase:                  it.QuizItemBase,
			ItemText:                      model.CloneText(it.ItemText),
			ShuffleOptions:                it.ShuffleOptions,
			AllowSelectingMultipleOptions: it.AllowSelectingMultipleOptions,
			Options:                       publicOptions(it.Options),
			Direction:                     it.Direction,
			OptionDisplayDirection:        it.OptionDisplayDirection,
			FogOfWar:                      it.FogOfWar,
			MultipleChoiceMultipleOptionsGradingPolicy: it.MultipleChoiceMultipleOptionsGradingPolicy,
		}, nil
	case *model.PrivateSpecQuizItemCheckbox:
		return &model.PublicSpecQuizItemCheckbox{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
		}, nil
	case *model.PrivateSpecQuizItemEssay:
		return &model.PublicSpecQuizItemEssay{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			MinWords:     model.CloneInt(it.MinWords),
			MaxWords:     model.CloneInt(it.MaxWords),
		}, nil
	case *model.PrivateSpecQuizItemScale:
		return &model.PublicSpecQuizItemScale{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			MinValue:     model.CloneInt(it.MinValue),
			MaxValue:     model.CloneInt(it.MaxValue),
			MinLabel:     model.CloneString(it.MinLabel),
			MaxLabel:     model.CloneString(it.MaxLabel),
		}, nil
	case *model.PrivateSpecQuizItemMatrix:
		return &model.PublicSpecQuizItemMatrix{QuizItemBase: it.QuizItemBase}, nil
	case *model.PrivateSpecQuizItemTimeline:
		items, events := publicTimeline(it.TimelineItems)
		return &model.PublicSpecQuizItemTimeline{
			QuizItemBase:       it.QuizItemBase,
			TimelineItems:      items,
			TimelineItemEvents: events,
		}, nil
	case *model.PrivateSpecQuizItemChooseN:
		return &model.PublicSpecQuizItemChooseN{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			N:            it.N,
			Options:      publicOptions(it.Options),
		}, nil
	case *model.PrivateSpecQuizItemClosedEndedQuestion:
		return &model.PublicSpecQuizItemClosedEndedQuestion{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			FormatRegex:  model.CloneString(it.FormatRegex),
		}, nil
	case *model.PrivateSpecQuizItemMultipleChoiceDropdown:
		return &model.PublicSpecQuizItemMultipleChoiceDropdown{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			Options:      publicOptions(it.Options),
		}, nil
	default:
		return nil, unhandled(item)
	}
}

func publicOptions(options []model.QuizItemOption) []model.PublicQuizItemOption {
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

// publicTimeline hides which event belongs to which year. The selectable events are
// deduplicated by id and sorted by name so their order gives nothing away.
func publicTimeline(items []model.TimelineItem) ([]model.PublicTimelineItem, []model.PublicTimelineEvent) {
	publicItems := make([]model.PublicTimelineItem, 0, len(items))
	events := make([]model.PublicTimelineEvent, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, ti := range items {
		publicItems = append(publicItems, model.PublicTimelineItem{ID: ti.ID, Year: ti.Year})
		if _, dup := seen[ti.CorrectEventID]; dup {
			continue
		}
		seen[ti.CorrectEventID] = struct{}{}
		events = append(events, model.PublicTimelineEvent{ID: ti.CorrectEventID, Name: ti.CorrectEventName})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Name != events[j].Name {
			return events[i].Name < events[j].Name
		}
		return events[i].ID < events[j].ID
	})
	return publicItems, events
}

// ToModelSolutionSpec returns the view shown after submission.
func ToModelSolutionSpec(quiz *model.PrivateSpecQuiz) (*model.ModelSolutionSpecQuiz, error) {
	if quiz == nil {
		return nil, ErrNilSpec
	}
	solution := &model.ModelSolutionSpecQuiz{
		Version:                  model.QuizVersion,
		ID:                       model.CloneString(quiz.ID),
		Title:                    model.CloneString(quiz.Title),
		Body:                     model.CloneString(quiz.Body),
		AwardPointsEvenIfWrong:   quiz.AwardPointsEvenIfWrong,
		GrantPointsPolicy:        quiz.GrantPointsPolicy,
		QuizItemDisplayDirection: quiz.QuizItemDisplayDirection,
		SubmitMessage:            model.CloneString(quiz.SubmitMessage),
		Items:                    make([]model.ModelSolutionQuizItem, 0, len(quiz.Items)),
	}
	for _, item := range quiz.Items {
		projected, err := modelSolutionItem(item)
		if err != nil {
			return nil, err
		}
		solution.Items = append(solution.Items, projected)
	}
	return solution, nil
}

func modelSolutionItem(item model.PrivateSpecQuizItem) (model.ModelSolutionQuizItem, error) {
	switch it := item.(type) {
	case *model.PrivateSpecQuizItemMultipleChoice:
		return &model.ModelSolutionQuizItemMultipleChoice{
			QuizItemBase:                  it.QuizItemBase,
			ItemText:                      model.CloneText(it.ItemText),
			ItemMessages:                  model.CloneMessages(it.ItemMessages),
			ShuffleOptions:                it.ShuffleOptions,
			AllowSelectingMultipleOptions: it.AllowSelectingMultipleOptions,
			Options:                       model.CloneOptions(it.Options),
			SharedOptionFeedbackMessage:   model.CloneString(it.SharedOptionFeedbackMessage),
			Direction:                     it.Direction,
			OptionDisplayDirection:        it.OptionDisplayDirection,
			FogOfWar:                      it.FogOfWar,
			MultipleChoiceMultipleOptionsGradingPolicy: it.MultipleChoiceMultipleOptionsGradingPolicy,
		}, nil
	case *model.PrivateSpecQuizItemCheckbox:
		return &model.ModelSolutionQuizItemCheckbox{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			ItemMessages: model.CloneMessages(it.ItemMessages),
		}, nil
	case *model.PrivateSpecQuizItemEssay:
		return &model.ModelSolutionQuizItemEssay{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			ItemMessages: model.CloneMessages(it.ItemMessages),
			MinWords:     model.CloneInt(it.MinWords),
			MaxWords:     model.CloneInt(it.MaxWords),
		}, nil
	case *model.PrivateSpecQuizItemScale:
		return &model.ModelSolutionQuizItemScale{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			ItemMessages: model.CloneMessages(it.ItemMessages),
			MinValue:     model.CloneInt(it.MinValue),
			MaxValue:     model.CloneInt(it.MaxValue),
			MinLabel:     model.CloneString(it.MinLabel),
			MaxLabel:     model.CloneString(it.MaxLabel),
		}, nil
	case *model.PrivateSpecQuizItemMatrix:
		return &model.ModelSolutionQuizItemMatrix{
			QuizItemBase: it.QuizItemBase,
			ItemMessages: model.CloneMessages(it.ItemMessages),
			OptionCells:  model.CloneCells(it.OptionCells),
		}, nil
	case *model.PrivateSpecQuizItemTimeline:
		return &model.ModelSolutionQuizItemTimeline{
			QuizItemBase:  it.QuizItemBase,
			ItemMessages:  model.CloneMessages(it.ItemMessages),
			TimelineItems: model.CloneTimelineItems(it.TimelineItems),
		}, nil
	case *model.PrivateSpecQuizItemChooseN:
		return &model.ModelSolutionQuizItemChooseN{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			ItemMessages: model.CloneMessages(it.ItemMessages),
			N:            it.N,
			Options:      model.CloneOptions(it.Options),
		}, nil
	case *model.PrivateSpecQuizItemClosedEndedQuestion:
		return &model.ModelSolutionQuizItemClosedEndedQuestion{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			ItemMessages: model.CloneMessages(it.ItemMessages),
			FormatRegex:  model.CloneString(it.FormatRegex),
		}, nil
	case *model.PrivateSpecQuizItemMultipleChoiceDropdown:
		return &model.ModelSolutionQuizItemMultipleChoiceDropdown{
			QuizItemBase: it.QuizItemBase,
			ItemText:     model.CloneText(it.ItemText),
			ItemMessages: model.CloneMessages(it.ItemMessages),
			Options:      model.CloneOptions(it.Options),
		}, nil
	default:
		return nil, unhandled(item)
	}
}

func unhandled(item model.PrivateSpecQuizItem) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrUnhandledItemType)
	}
	return fmt.Errorf("%w: %q (%T)", ErrUnhandledItemType, item.ItemType(), item)
}
