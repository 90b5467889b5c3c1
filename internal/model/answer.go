package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnexpectedAnswerType is returned for an answer whose tag is not a known item type,
// or whose tag does not match the item it answers.
var ErrUnexpectedAnswerType = errors.New("Unexpected item answer type")

// UserAnswer is a student's submission for one quiz.
type UserAnswer struct {
	Version     string           `json:"version"`
	ItemAnswers []UserItemAnswer `json:"itemAnswers"`
}

// UserItemAnswer is the closed union of per-item answers.
type UserItemAnswer interface {
	ItemType() QuizItemType
	AnsweredItemID() string
	userItemAnswer()
}

// ItemAnswerBase is shared by every answer variant. Valid is reported by the
// client and is informational only.
type ItemAnswerBase struct {
	Type       QuizItemType `json:"type"`
	QuizItemID string       `json:"quizItemId"`
	Valid      bool         `json:"valid"`
}

func (b ItemAnswerBase) ItemType() QuizItemType { return b.Type }
func (b ItemAnswerBase) AnsweredItemID() string { return b.QuizItemID }

type UserItemAnswerMultipleChoice struct {
	ItemAnswerBase
	SelectedOptionIDs []string `json:"selectedOptionIds"`
}

type UserItemAnswerCheckbox struct {
	ItemAnswerBase
	Checked bool `json:"checked"`
}

type UserItemAnswerEssay struct {
	ItemAnswerBase
	TextData *string `json:"textData"`
}

type UserItemAnswerScale struct {
	ItemAnswerBase
	IntData *int `json:"intData"`
}

type UserItemAnswerMatrix struct {
	ItemAnswerBase
	Matrix [][]string `json:"matrix"`
}

// TimelineChoice pairs a timeline item with the event the student picked.
type TimelineChoice struct {
	TimelineItemID string `json:"timelineItemId"`
	ChosenEventID  string `json:"chosenEventId"`
}

type UserItemAnswerTimeline struct {
	ItemAnswerBase
	TimelineChoices []TimelineChoice `json:"timelineChoices"`
}

type UserItemAnswerChooseN struct {
	ItemAnswerBase
	SelectedOptionIDs []string `json:"selectedOptionIds"`
}

type UserItemAnswerClosedEndedQuestion struct {
	ItemAnswerBase
	TextData *string `json:"textData"`
}

type UserItemAnswerMultipleChoiceDropdown struct {
	ItemAnswerBase
	SelectedOptionIDs []string `json:"selectedOptionIds"`
}

func (UserItemAnswerMultipleChoice) userItemAnswer()         {}
func (UserItemAnswerCheckbox) userItemAnswer()               {}
func (UserItemAnswerEssay) userItemAnswer()                  {}
func (UserItemAnswerScale) userItemAnswer()                  {}
func (UserItemAnswerMatrix) userItemAnswer()                 {}
func (UserItemAnswerTimeline) userItemAnswer()               {}
func (UserItemAnswerChooseN) userItemAnswer()                {}
func (UserItemAnswerClosedEndedQuestion) userItemAnswer()    {}
func (UserItemAnswerMultipleChoiceDropdown) userItemAnswer() {}

func (a *UserAnswer) UnmarshalJSON(data []byte) error {
	type plain UserAnswer
	aux := struct {
		*plain
		ItemAnswers []json.RawMessage `json:"itemAnswers"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	a.ItemAnswers = make([]UserItemAnswer, 0, len(aux.ItemAnswers))
	for i, raw := range aux.ItemAnswers {
		answer, err := DecodeUserItemAnswer(raw)
		if err != nil {
			return fmt.Errorf("itemAnswers[%d]: %w", i, err)
		}
		a.ItemAnswers = append(a.ItemAnswers, answer)
	}
	return nil
}

// DecodeUserItemAnswer decodes one raw answer. An unknown tag yields ErrUnexpectedAnswerType.
func DecodeUserItemAnswer(raw json.RawMessage) (UserItemAnswer, error) {
	t, err := peekType(raw)
	if err != nil {
		return nil, err
	}
	switch t {
	case QuizItemTypeMultipleChoice:
		return decodeAs[UserItemAnswerMultipleChoice](raw)
	case QuizItemTypeCheckbox:
		return decodeAs[UserItemAnswerCheckbox](raw)
	case QuizItemTypeEssay:
		return decodeAs[UserItemAnswerEssay](raw)
	case QuizItemTypeScale:
		return decodeAs[UserItemAnswerScale](raw)
	case QuizItemTypeMatrix:
		return decodeAs[UserItemAnswerMatrix](raw)
	case QuizItemTypeTimeline:
		return decodeAs[UserItemAnswerTimeline](raw)
	case QuizItemTypeChooseN:
		return decodeAs[UserItemAnswerChooseN](raw)
	case QuizItemTypeClosedEndedQuestion:
		return decodeAs[UserItemAnswerClosedEndedQuestion](raw)
	case QuizItemTypeMultipleChoiceDropdown:
		return decodeAs[UserItemAnswerMultipleChoiceDropdown](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedAnswerType, t)
	}
}

// ErrItemMissing is returned for an answer that refers to no item of the quiz.
var ErrItemMissing = errors.New("Item missing")
