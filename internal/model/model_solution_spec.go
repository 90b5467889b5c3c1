package model

import (
	"encoding/json"
	"fmt"
)

// ModelSolutionSpecQuiz is shown once the student has submitted. It reveals
// correctness and explanations but never the patterns used to match answers.
type ModelSolutionSpecQuiz struct {
	Version                  string                  `json:"version"`
	ID                       *string                 `json:"id,omitempty"`
	Title                    *string                 `json:"title"`
	Body                     *string                 `json:"body"`
	AwardPointsEvenIfWrong   bool                    `json:"awardPointsEvenIfWrong"`
	GrantPointsPolicy        GrantPointsPolicy       `json:"grantPointsPolicy"`
	QuizItemDisplayDirection DisplayDirection        `json:"quizItemDisplayDirection"`
	SubmitMessage            *string                 `json:"submitMessage"`
	Items                    []ModelSolutionQuizItem `json:"items"`
}

// ModelSolutionQuizItem is the closed union of model-solution item variants.
type ModelSolutionQuizItem interface {
	ItemType() QuizItemType
	ItemID() string
	ItemOrder() int
	modelSolutionQuizItem()
}

type ModelSolutionQuizItemMultipleChoice struct {
	QuizItemBase
	ItemText
	ItemMessages
	ShuffleOptions                             bool             `json:"shuffleOptions"`
	AllowSelectingMultipleOptions              bool             `json:"allowSelectingMultipleOptions"`
	Options                                    []QuizItemOption `json:"options"`
	SharedOptionFeedbackMessage                *string          `json:"sharedOptionFeedbackMessage"`
	Direction                                  string           `json:"direction,omitempty"`
	OptionDisplayDirection                     DisplayDirection `json:"optionDisplayDirection"`
	MultipleChoiceMultipleOptionsGradingPolicy GradingPolicy    `json:"multipleChoiceMultipleOptionsGradingPolicy"`
	FogOfWar                                   bool             `json:"fogOfWar"`
}

type ModelSolutionQuizItemCheckbox struct {
	QuizItemBase
	ItemText
	ItemMessages
}

type ModelSolutionQuizItemEssay struct {
	QuizItemBase
	ItemText
	ItemMessages
	MinWords *int `json:"minWords"`
	MaxWords *int `json:"maxWords"`
}

type ModelSolutionQuizItemScale struct {
	QuizItemBase
	ItemText
	ItemMessages
	MinValue *int    `json:"minValue"`
	MaxValue *int    `json:"maxValue"`
	MinLabel *string `json:"minLabel"`
	MaxLabel *string `json:"maxLabel"`
}

type ModelSolutionQuizItemMatrix struct {
	QuizItemBase
	ItemMessages
	OptionCells [][]string `json:"optionCells"`
}

type ModelSolutionQuizItemTimeline struct {
	QuizItemBase
	ItemMessages
	TimelineItems []TimelineItem `json:"timelineItems"`
}

type ModelSolutionQuizItemChooseN struct {
	QuizItemBase
	ItemText
	ItemMessages
	N       int              `json:"n"`
	Options []QuizItemOption `json:"options"`
}

// ModelSolutionQuizItemClosedEndedQuestion has no validityRegex field at all.
type ModelSolutionQuizItemClosedEndedQuestion struct {
	QuizItemBase
	ItemText
	ItemMessages
	FormatRegex *string `json:"formatRegex"`
}

type ModelSolutionQuizItemMultipleChoiceDropdown struct {
	QuizItemBase
	ItemText
	ItemMessages
	Options []QuizItemOption `json:"options"`
}

func (ModelSolutionQuizItemMultipleChoice) modelSolutionQuizItem()         {}
func (ModelSolutionQuizItemCheckbox) modelSolutionQuizItem()               {}
func (ModelSolutionQuizItemEssay) modelSolutionQuizItem()                  {}
func (ModelSolutionQuizItemScale) modelSolutionQuizItem()                  {}
func (ModelSolutionQuizItemMatrix) modelSolutionQuizItem()                 {}
func (ModelSolutionQuizItemTimeline) modelSolutionQuizItem()               {}
func (ModelSolutionQuizItemChooseN) modelSolutionQuizItem()                {}
func (ModelSolutionQuizItemClosedEndedQuestion) modelSolutionQuizItem()    {}
func (ModelSolutionQuizItemMultipleChoiceDropdown) modelSolutionQuizItem() {}

func (q *ModelSolutionSpecQuiz) UnmarshalJSON(data []byte) error {
	type plain ModelSolutionSpecQuiz
	aux := struct {
		*plain
		Items []json.RawMessage `json:"items"`
	}{plain: (*plain)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	q.Items = make([]ModelSolutionQuizItem, 0, len(aux.Items))
	for i, raw := range aux.Items {
		item, err := decodeModelSolutionQuizItem(raw)
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		q.Items = append(q.Items, item)
	}
	return nil
}

func decodeModelSolutionQuizItem(raw json.RawMessage) (ModelSolutionQuizItem, error) {
	t, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch t {
	case QuizItemTypeMultipleChoice:
		return decodeAs[ModelSolutionQuizItemMultipleChoice](raw)
	case QuizItemTypeCheckbox:
		return decodeAs[ModelSolutionQuizItemCheckbox](raw)
	case QuizItemTypeEssay:
		return decodeAs[ModelSolutionQuizItemEssay](raw)
	case QuizItemTypeScale:
		return decodeAs[ModelSolutionQuizItemScale](raw)
	case QuizItemTypeMatrix:
		return decodeAs[ModelSolutionQuizItemMatrix](raw)
	case QuizItemTypeTimeline:
		return decodeAs[ModelSolutionQuizItemTimeline](raw)
	case QuizItemTypeChooseN:
		return decodeAs[ModelSolutionQuizItemChooseN](raw)
	case QuizItemTypeClosedEndedQuestion:
		return decodeAs[ModelSolutionQuizItemClosedEndedQuestion](raw)
	case QuizItemTypeMultipleChoiceDropdown:
		return decodeAs[ModelSolutionQuizItemMultipleChoiceDropdown](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, t)
	}
}
