package grading

import (
	"errors"
	"fmt"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

var (
	ErrNilSpec              = errors.New("Private spec cannot be null")
	ErrNilAnswer            = errors.New("Submission cannot be null")
	ErrItemMissing          = model.ErrItemMissing
	ErrUnexpectedAnswerType = model.ErrUnexpectedAnswerType
	ErrUnknownGradingPolicy = model.ErrUnknownGradingPolicy
	ErrDuplicateAnswer      = errors.New("More than one answer for the same quiz item")
	ErrNoOptionAnswers      = errors.New("No option answers")
	ErrMultipleSelections   = errors.New("Cannot select multiple answer options on this quiz item")
	ErrTooManySelections    = errors.New("Too many options selected")
	ErrNoAnswerProvided     = errors.New("no answer provided")
	ErrValueOutOfRange      = errors.New("value outside the scale")
	ErrInvalidPattern       = errors.New("invalid validity pattern")
	ErrNoStudentAnswers     = errors.New("No student answers")
	ErrNoCorrectAnswers     = errors.New("No correct answers")

	ErrNotPendingManual   = errors.New("grading is not waiting for manual review")
	ErrMissingManualScore = errors.New("missing manual score")
	ErrInvalidManualScore = errors.New("manual score must be between 0 and 1")
	ErrUnexpectedScore    = errors.New("score given for an item that is not awaiting review")
)

// ValidationError ties a grading failure to the quiz item that caused it.
type ValidationError struct {
	ItemID string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("quiz item %s: %v", e.ItemID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(itemID string, err error) error {
	return &ValidationError{ItemID: itemID, Err: err}
}
