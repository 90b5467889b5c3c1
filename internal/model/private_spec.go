package model

import (
	"encoding/json"
	"fmt"
)

// PrivateSpecQuiz is the authoritative quiz definition, including correct answers.
// It never leaves the service unprojected.
type PrivateSpecQuiz struct {
	Version                  string                `json:"version"`
	ID                       *string               `json:"id,omitempty"`
	Title                    *string               `json:"title"`
	Body                     *string               `json:"body"`
	AwardPointsEvenIfWrong   bool                  `json:"awardPointsEvenIfWrong"`
	GrantPointsPolicy        GrantPointsPolicy     `json:"grantPointsPolicy"`
	QuizItemDisplayDirection DisplayDirection      `json:"quizItemDisplayDirection"`
	SubmitMessage            *string               `json:"submitMessage"`
	Items                    []PrivateSpecQuizItem `json:"items"`
}

// PrivateSpecQuizItem is the closed union of private item variants.
type PrivateSpecQuizItem interface {
	ItemType() QuizItemType
	ItemID() string
	ItemOrder() int
	privateSpecQuizItem()
}

type PrivateSpecQuizItemMultipleChoice struct {
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

type PrivateSpecQuizItemCheckbox struct {
	QuizItemBase
	ItemText
	ItemMessages
}

type PrivateSpecQuizItemEssay struct {
	QuizItemBase
	ItemText
	ItemMessages
	MinWords *int `json:"minWords"`
	MaxWords *int `json:"maxWords"`
}

type PrivateSpecQuizItemScale struct {
	QuizItemBase
	ItemText
	ItemMessages
	MinValue *int    `json:"minValue"`
	MaxValue *int    `json:"maxValue"`
	MinLabel *string `json:"minLabel"`
	MaxLabel *string `json:"maxLabel"`
}

type PrivateSpecQuizItemMatrix struct {
	QuizItemBase
	ItemMessages
	OptionCells [][]string `json:"optionCells"`
}

type PrivateSpecQuizItemTimeline struct {
	QuizItemBase
	ItemMessages
	TimelineItems []TimelineItem `json:"timelineItems"`
}

type PrivateSpecQuizItemChooseN struct {
	QuizItemBase
	ItemText
	ItemMessages
	N       int              `json:"n"`
	Options []QuizItemOption `json:"options"`
}

type PrivateSpecQuizItemClosedEndedQuestion struct {
	QuizItemBase
	ItemText
	ItemMessages
	ValidityRegex *string `json:"validityRegex"`
	FormatRegex   *string `json:"formatRegex"`
}

type PrivateSpecQuizItemMultipleChoiceDropdown struct {
	QuizItemBase
	ItemText
	ItemMessages
	Options []QuizItemOption `json:"options"`
}

func (PrivateSpecQuizItemMultipleChoice) privateSpecQuizItem()         {}
func (PrivateSpecQuizItemCheckbox) privateSpecQuizItem()               {}
func (PrivateSpecQuizItemEssay) privateSpecQuizItem()                  {}
func (PrivateSpecQuizItemScale) privateSpecQuizItem()                  {}
func (PrivateSpecQuizItemMatrix) privateSpecQuizItem()                 {}
func (PrivateSpecQuizItemTimeline) privateSpecQuizItem()               {}
func (PrivateSpecQuizItemChooseN) privateSpecQuizItem()                {}
func (PrivateSpecQuizItemClosedEndedQuestion) privateSpecQuizItem()    {}
func (PrivateSpecQuizItemMultipleChoiceDropdown) privateSpecQuizItem() {}

// UnmarshalJSON dispatches every item on its "type" tag.
func (q *PrivateSpecQuiz) UnmarshalJSON(data []byte) error {
	type plain PrivateSpecQuiz
	aux := struct {
		*plain
		Items []json.RawMessage `json:"items"`
	}{plain: (*plain)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	q.Items = make([]PrivateSpecQuizItem, 0, len(aux.Items))
	for i, raw := range aux.Items {
		item, err := DecodePrivateSpecQuizItem(raw)
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		q.Items = append(q.Items, item)
	}
	return nil
}

// DecodePrivateSpecQuizItem decodes one raw item into its concrete variant.
func DecodePrivateSpecQuizItem(raw json.RawMessage) (PrivateSpecQuizItem, error) {
	t, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch t {
	case QuizItemTypeMultipleChoice:
		return decodeAs[PrivateSpecQuizItemMultipleChoice](raw)
	case QuizItemTypeCheckbox:
		return decodeAs[PrivateSpecQuizItemCheckbox](raw)
	case QuizItemTypeEssay:
		return decodeAs[PrivateSpecQuizItemEssay](raw)
	case QuizItemTypeScale:
		return decodeAs[PrivateSpecQuizItemScale](raw)
	case QuizItemTypeMatrix:
		return decodeAs[PrivateSpecQuizItemMatrix](raw)
	case QuizItemTypeTimeline:
		return decodeAs[PrivateSpecQuizItemTimeline](raw)
	case QuizItemTypeChooseN:
		return decodeAs[PrivateSpecQuizItemChooseN](raw)
	case QuizItemTypeClosedEndedQuestion:
		return decodeAs[PrivateSpecQuizItemClosedEndedQuestion](raw)
	case QuizItemTypeMultipleChoiceDropdown:
		return decodeAs[PrivateSpecQuizItemMultipleChoiceDropdown](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, t)
	}
}

// FindItem returns the item with the given id, or nil.
func (q *PrivateSpecQuiz) FindItem(id string) PrivateSpecQuizItem {
	for _, item := range q.Items {
		if item.ItemID() == id {
			return item
		}
	}
	return nil
}

// Validate checks the structural invariants every grading and projection relies on:
// item ids are present and unique, option ids are unique within an item, and
// multiple-choice grading policies are known.
func (q *PrivateSpecQuiz) Validate() error {
	seen := make(map[string]struct{}, len(q.Items))
	for i, item := range q.Items {
		if item == nil {
			return fmt.Errorf("items[%d]: missing item", i)
		}
		id := item.ItemID()
		if id == "" {
			return fmt.Errorf("items[%d]: missing id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("items[%d]: duplicate item id %q", i, id)
		}
		seen[id] = struct{}{}

		if mc, ok := item.(*PrivateSpecQuizItemMultipleChoice); ok && !mc.MultipleChoiceMultipleOptionsGradingPolicy.Known() {
			return fmt.Errorf("item %s: %w: %q", id, ErrUnknownGradingPolicy, mc.MultipleChoiceMultipleOptionsGradingPolicy)
		}
		if err := validateOptionIDs(id, privateItemOptions(item)); err != nil {
			return err
		}
	}
	return nil
}

func privateItemOptions(item PrivateSpecQuizItem) []QuizItemOption {
	switch it := item.(type) {
	case *PrivateSpecQuizItemMultipleChoice:
		return it.Options
	case *PrivateSpecQuizItemChooseN:
		return it.Options
	case *PrivateSpecQuizItemMultipleChoiceDropdown:
		return it.Options
	}
	return nil
}

func validateOptionIDs(itemID string, options []QuizItemOption) error {
	if len(options) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("item %s: duplicate option id %q", itemID, o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	return nil
}
