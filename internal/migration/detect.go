// Package migration upgrades legacy quiz documents into the tagged item shape.
// Current documents pass through unchanged, so every function here is idempotent.
package migration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

// ChooseNDefaultValue is the selection count given to legacy clickable-multiple-choice items,
// which had no equivalent field.
const ChooseNDefaultValue = 2

var (
	ErrUnsupportedVersion = errors.New("unsupported quiz version")
	ErrMalformedField     = errors.New("malformed field")
	ErrUnknownItemType    = model.ErrUnknownItemType
)

// Keys only the legacy shape ever carried on an item.
var legacyItemKeys = []string{
	"multi",
	"quizId",
	"usesSharedOptionFeedbackMessage",
	"feedbackDisplayPolicy",
	"allAnswersCorrect",
}

// Keys only the current shape carries.
var currentItemKeys = []string{
	"allowSelectingMultipleOptions",
	"optionDisplayDirection",
	"messageOnModelSolution",
	"selectedOptionIds",
}

var legacyItemTypes = map[string]bool{
	model.OldQuizItemTypeOpen:                    true,
	model.OldQuizItemTypeClickableMultipleChoice: true,
}

var currentOnlyItemTypes = map[string]bool{
	string(model.QuizItemTypeChooseN):             true,
	string(model.QuizItemTypeClosedEndedQuestion): true,
}

// Keys that mark a legacy item answer, which carries no type tag.
var legacyAnswerKeys = []string{"optionAnswers", "quizAnswerId", "optionCells"}

type probe map[string]json.RawMessage

func (p probe) has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p probe) str(key string) (string, bool) {
	raw, ok := p[key]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeProbe(raw json.RawMessage) (probe, []probe, error) {
	var top probe
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, nil, fmt.Errorf("decode quiz: %w", err)
	}
	var items []probe
	for _, key := range []string{"items", "itemAnswers"} {
		if list, ok := top[key]; ok && !isNull(list) {
			if err := json.Unmarshal(list, &items); err != nil {
				return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedField, key, err)
			}
			break
		}
	}
	return top, items, nil
}

// checkVersion reports whether raw declares the current version. Any other declared
// version is rejected.
func checkVersion(top probe) (bool, error) {
	v, ok := top.str("version")
	if !ok {
		return false, nil
	}
	if v != model.QuizVersion {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}
	return true, nil
}

// IsLegacySpec decides structurally whether a private, public or model-solution
// document needs migrating.
func IsLegacySpec(raw json.RawMessage) (bool, error) {
	top, items, err := decodeProbe(raw)
	if err != nil {
		return false, err
	}
	current, err := checkVersion(top)
	if err != nil {
		return false, err
	}
	if current {
		return false, nil
	}

	if top.has("direction") {
		return true, nil
	}
	for _, item := range items {
		if t, ok := item.str("type"); ok && legacyItemTypes[t] {
			return true, nil
		}
		for _, key := range legacyItemKeys {
			if item.has(key) {
				return true, nil
			}
		}
	}

	if top.has("quizItemDisplayDirection") {
		return false, nil
	}
	for _, item := range items {
		if t, ok := item.str("type"); ok && currentOnlyItemTypes[t] {
			return false, nil
		}
		for _, key := range currentItemKeys {
			if item.has(key) {
				return false, nil
			}
		}
	}
	return true, nil
}

// IsLegacyAnswer decides whether a submission is a legacy quiz answer.
func IsLegacyAnswer(raw json.RawMessage) (bool, error) {
	top, answers, err := decodeProbe(raw)
	if err != nil {
		return false, err
	}
	current, err := checkVersion(top)
	if err != nil {
		return false, err
	}
	if current {
		return false, nil
	}

	for _, a := range answers {
		for _, key := range legacyAnswerKeys {
			if a.has(key) {
				return true, nil
			}
		}
	}
	for _, a := range answers {
		if a.has("type") {
			return false, nil
		}
	}
	return true, nil
}

func displayDirection(direction *string) model.DisplayDirection {
	if direction != nil && *direction == "row" {
		return model.DisplayDirectionHorizontal
	}
	return model.DisplayDirectionVertical
}

func gradingPolicy(p *model.GradingPolicy) model.GradingPolicy {
	if p == nil || *p == "" {
		return model.GradingPolicyDefault
	}
	return *p
}

func requireItemID(id *string, index int) (string, error) {
	if id == nil || *id == "" {
		return "", fmt.Errorf("%w: items[%d].id is missing", ErrMalformedField, index)
	}
	return *id, nil
}

func rawDirection(direction *string) string {
	if direction == nil {
		return ""
	}
	return *direction
}

// migrateOption picks the feedback a legacy option shows when selected. Older options
// keep separate success and failure messages, chosen by the option's correctness.
func migrateOption(o model.OldQuizItemOption) model.QuizItemOption {
	message := o.MessageAfterSubmissionWhenSelected
	if message == nil {
		if o.Correct {
			message = o.SuccessMessage
		} else {
			message = o.FailureMessage
		}
	}
	option := model.QuizItemOption{
		ID:      o.ID,
		Order:   o.Order,
		Correct: o.Correct,
		Title:   model.CloneString(o.Title),
		Body:    model.CloneString(o.Body),
	}
	option.MessageAfterSubmissionWhenSelected = model.CloneString(message)
	option.AdditionalCorrectnessExplanationOnModelSolution = model.CloneString(o.AdditionalCorrectnessExplanationOnModelSolution)
	return option
}

func migrateOptions(options []model.OldQuizItemOption) []model.QuizItemOption {
	out := make([]model.QuizItemOption, 0, len(options))
	for _, o := range options {
		out = append(out, migrateOption(o))
	}
	return out
}
