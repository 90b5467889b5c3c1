package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// QuizVersion is the version tag carried by every current-shape document.
const QuizVersion = "2"

// QuizItemType is the discriminant of every quiz item union.
type QuizItemType string

const (
	QuizItemTypeMultipleChoice         QuizItemType = "multiple-choice"
	QuizItemTypeCheckbox               QuizItemType = "checkbox"
	QuizItemTypeEssay                  QuizItemType = "essay"
	QuizItemTypeScale                  QuizItemType = "scale"
	QuizItemTypeMatrix                 QuizItemType = "matrix"
	QuizItemTypeTimeline               QuizItemType = "timeline"
	QuizItemTypeChooseN                QuizItemType = "choose-n"
	QuizItemTypeClosedEndedQuestion    QuizItemType = "closed-ended-question"
	QuizItemTypeMultipleChoiceDropdown QuizItemType = "multiple-choice-dropdown"
)

// QuizItemTypes lists every item type in declaration order.
var QuizItemTypes = []QuizItemType{
	QuizItemTypeMultipleChoice,
	QuizItemTypeCheckbox,
	QuizItemTypeEssay,
	QuizItemTypeScale,
	QuizItemTypeMatrix,
	QuizItemTypeTimeline,
	QuizItemTypeChooseN,
	QuizItemTypeClosedEndedQuestion,
	QuizItemTypeMultipleChoiceDropdown,
}

// Valid reports whether t is one of the known item types.
func (t QuizItemType) Valid() bool {
	for _, known := range QuizItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ErrUnknownItemType is returned when a document carries an item tag outside QuizItemTypes.
var ErrUnknownItemType = errors.New("unknown quiz item type")

// GradingPolicy controls partial credit on multiple-choice items.
type GradingPolicy string

const (
	GradingPolicyDefault                    GradingPolicy = "default"
	GradingPolicyPointsOffIncorrectOptions  GradingPolicy = "points-off-incorrect-options"
	GradingPolicyPointsOffUnselectedOptions GradingPolicy = "points-off-unselected-options"
	GradingPolicySomeCorrectNoneIncorrect   GradingPolicy = "some-correct-none-incorrect"
)

// ErrUnknownGradingPolicy is returned for a policy outside the four named ones.
var ErrUnknownGradingPolicy = errors.New("unknown grading policy")

// Known reports whether p is a named policy. The empty policy reads as default.
func (p GradingPolicy) Known() bool {
	switch p {
	case "", GradingPolicyDefault, GradingPolicyPointsOffIncorrectOptions,
		GradingPolicyPointsOffUnselectedOptions, GradingPolicySomeCorrectNoneIncorrect:
		return true
	}
	return false
}

// DisplayDirection is the layout hint for quiz items and options.
type DisplayDirection string

const (
	DisplayDirectionVertical   DisplayDirection = "vertical"
	DisplayDirectionHorizontal DisplayDirection = "horizontal"
)

// GrantPointsPolicy mirrors the quiz-level policy the course platform applies to scores.
type GrantPointsPolicy string

const (
	GrantPointsWheneverPossible           GrantPointsPolicy = "grant_whenever_possible"
	GrantPointsOnlyWhenAnswerFullyCorrect GrantPointsPolicy = "grant_only_when_answer_fully_correct"
)

// QuizItemBase holds the identity shared by every item variant.
type QuizItemBase struct {
	Type  QuizItemType `json:"type"`
	ID    string       `json:"id"`
	Order int          `json:"order"`
}

func (b QuizItemBase) ItemType() QuizItemType { return b.Type }
func (b QuizItemBase) ItemID() string         { return b.ID }
func (b QuizItemBase) ItemOrder() int         { return b.Order }

// NewItemBase builds the identity block of an item.
func NewItemBase(t QuizItemType, id string, order int) QuizItemBase {
	return QuizItemBase{Type: t, ID: id, Order: order}
}

// ItemText is the answer-neutral prompt of an item.
type ItemText struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// ItemMessages are shown after submission or on the model solution.
type ItemMessages struct {
	SuccessMessage         *string `json:"successMessage"`
	FailureMessage         *string `json:"failureMessage"`
	MessageOnModelSolution *string `json:"messageOnModelSolution"`
}

// Messages returns the item's feedback messages. It is promoted to every item that embeds
// ItemMessages.
func (m ItemMessages) Messages() ItemMessages { return m }

// QuizItemOption is an option of a multiple-choice, choose-n or dropdown item.
type QuizItemOption struct {
	ID                                              string  `json:"id"`
	Order                                           int     `json:"order"`
	Correct                                         bool    `json:"correct"`
	Title                                           *string `json:"title"`
	Body                                            *string `json:"body"`
	MessageAfterSubmissionWhenSelected              *string `json:"messageAfterSubmissionWhenSelected"`
	AdditionalCorrectnessExplanationOnModelSolution *string `json:"additionalCorrectnessExplanationOnModelSolution"`
}

// PublicQuizItemOption is the only part of an option a student sees before submitting.
type PublicQuizItemOption struct {
	ID    string  `json:"id"`
	Order int     `json:"order"`
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// TimelineItem is a year the student matches to an event. Matching uses CorrectEventID only.
type TimelineItem struct {
	ID               string `json:"id"`
	Year             string `json:"year"`
	CorrectEventName string `json:"correctEventName"`
	CorrectEventID   string `json:"correctEventId"`
}

// PublicTimelineItem omits the correct event.
type PublicTimelineItem struct {
	ID   string `json:"id"`
	Year string `json:"year"`
}

// PublicTimelineEvent is one selectable event of a timeline item.
type PublicTimelineEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// peekType reads the "type" discriminant of a raw union member.
func peekType(raw json.RawMessage) (QuizItemType, error) {
	var probe struct {
		Type QuizItemType `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("decode item type: %w", err)
	}
	return probe.Type, nil
}

// decodeAs unmarshals raw into a fresh *T.
func decodeAs[T any](raw json.RawMessage) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// CloneString copies the pointee so projections never alias caller input.
func CloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// CloneInt copies the pointee.
func CloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
