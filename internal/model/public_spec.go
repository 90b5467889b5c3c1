package model

import (
	"encoding/json"
	"fmt"
)

// PublicSpecQuiz is shown to students before they submit. It carries nothing
// that reveals a correct answer.
type PublicSpecQuiz struct {
	Version                  string               `json:"version"`
	ID                       *string              `json:"id,omitempty"`
	Title                    *string              `json:"title"`
	Body                     *string              `json:"body"`
	QuizItemDisplayDirection DisplayDirection     `json:"quizItemDisplayDirection"`
	Items                    []PublicSpecQuizItem `json:"items"`
}

// PublicSpecQuizItem is the closed union of public item variants.
type PublicSpecQuizItem interface {
	ItemType() QuizItemType
	ItemID() string
	ItemOrder() int
	publicSpecQuizItem()
}

type PublicSpecQuizItemMultipleChoice struct {
	QuizItemBase
	ItemText
	ShuffleOptions                             bool                   `json:"shuffleOptions"`
	AllowSelectingMultipleOptions              bool                   `json:"allowSelectingMultipleOptions"`
	Options                                    []PublicQuizItemOption `json:"options"`
	Direction                                  string                 `json:"direction,omitempty"`
	OptionDisplayDirection                     DisplayDirection       `json:"optionDisplayDirection"`
	MultipleChoiceMultipleOptionsGradingPolicy GradingPolicy          `json:"multipleChoiceMultipleOptionsGradingPolicy"`
	FogOfWar                                   bool                   `json:"fogOfWar"`
}

type PublicSpecQuizItemCheckbox struct {
	QuizItemBase
	ItemText
}

type PublicSpecQuizItemEssay struct {
	QuizItemBase
	ItemText
	MinWords *int `json:"minWords"`
	MaxWords *int `json:"maxWords"`
}

type PublicSpecQuizItemScale struct {
	QuizItemBase
	ItemText
	MinValue *int    `json:"minValue"`
	MaxValue *int    `json:"maxValue"`
	MinLabel *string `json:"minLabel"`
	MaxLabel *string `json:"maxLabel"`
}

type PublicSpecQuizItemMatrix struct {
	QuizItemBase
}

type PublicSpecQuizItemTimeline struct {
	QuizItemBase
	TimelineItems      []PublicTimelineItem  `json:"timelineItems"`
	TimelineItemEvents []PublicTimelineEvent `json:"timelineItemEvents"`
}

type PublicSpecQuizItemChooseN struct {
	QuizItemBase
	ItemText
	N       int                    `json:"n"`
	Options []PublicQuizItemOption `json:"options"`
}

type PublicSpecQuizItemClosedEndedQuestion struct {
	QuizItemBase
	ItemText
	FormatRegex *string `json:"formatRegex"`
}

type PublicSpecQuizItemMultipleChoiceDropdown struct {
	QuizItemBase
	ItemText
	Options []PublicQuizItemOption `json:"options"`
}

func (PublicSpecQuizItemMultipleChoice) publicSpecQuizItem()         {}
func (PublicSpecQuizItemCheckbox) publicSpecQuizItem()               {}
func (PublicSpecQuizItemEssay) publicSpecQuizItem()                  {}
func (PublicSpecQuizItemScale) publicSpecQuizItem()                  {}
func (PublicSpecQuizItemMatrix) publicSpecQuizItem()                 {}
func (PublicSpecQuizItemTimeline) publicSpecQuizItem()               {}
func (PublicSpecQuizItemChooseN) publicSpecQuizItem()                {}
func (PublicSpecQuizItemClosedEndedQuestion) publicSpecQuizItem()    {}
func (PublicSpecQuizItemMultipleChoiceDropdown) publicSpecQuizItem() {}

func (q *PublicSpecQuiz) UnmarshalJSON(data []byte) error {
	type plain PublicSpecQuiz
	aux := struct {
		*plain
		Items []json.RawMessage `json:"items"`
	}{plain: (*plain)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	q.Items = make([]PublicSpecQuizItem, 0, len(aux.Items))
	for i, raw := range aux.Items {
		item, err := decodePublicSpecQuizItem(raw)
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		q.Items = append(q.Items, item)
	}
	return nil
}

func decodePublicSpecQuizItem(raw json.RawMessage) (PublicSpecQuizItem, error) {
	t, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch t {
	case QuizItemTypeMultipleChoice:
		return decodeAs[PublicSpecQuizItemMultipleChoice](raw)
	case QuizItemTypeCheckbox:
		return decodeAs[PublicSpecQuizItemCheckbox](raw)
	case QuizItemTypeEssay:
		return decodeAs[PublicSpecQuizItemEssay](raw)
	case QuizItemTypeScale:
		return decodeAs[PublicSpecQuizItemScale](raw)
	case QuizItemTypeMatrix:
		return decodeAs[PublicSpecQuizItemMatrix](raw)
	case QuizItemTypeTimeline:
		return decodeAs[PublicSpecQuizItemTimeline](raw)
	case QuizItemTypeChooseN:
		return decodeAs[PublicSpecQuizItemChooseN](raw)
	case QuizItemTypeClosedEndedQuestion:
		return decodeAs[PublicSpecQuizItemClosedEndedQuestion](raw)
	case QuizItemTypeMultipleChoiceDropdown:
		return decodeAs[PublicSpecQuizItemMultipleChoiceDropdown](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, t)
	}
}
