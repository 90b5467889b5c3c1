package grading

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

// itemGrade is the outcome for one answered item. Pending items have no score yet.
type itemGrade struct {
	score           float64
	pending         bool
	optionFeedbacks []model.OptionAnswerFeedback
}

func gradeItem(item model.PrivateSpecQuizItem, answer model.UserItemAnswer) (itemGrade, error) {
	switch it := item.(type) {
	case *model.PrivateSpecQuizItemMultipleChoice:
		a, ok := answer.(*model.UserItemAnswerMultipleChoice)
		if !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return gradeOptionSet(it.Options, a.SelectedOptionIDs, it.AllowSelectingMultipleOptions,
			it.MultipleChoiceMultipleOptionsGradingPolicy, it.SharedOptionFeedbackMessage)
	case *model.PrivateSpecQuizItemMultipleChoiceDropdown:
		a, ok := answer.(*model.UserItemAnswerMultipleChoiceDropdown)
		if !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return gradeOptionSet(it.Options, a.SelectedOptionIDs, false, model.GradingPolicyDefault, nil)
	case *model.PrivateSpecQuizItemChooseN:
		a, ok := answer.(*model.UserItemAnswerChooseN)
		if !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return gradeChooseN(it, a.SelectedOptionIDs)
	case *model.PrivateSpecQuizItemCheckbox:
		if _, ok := answer.(*model.UserItemAnswerCheckbox); !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return itemGrade{score: 1}, nil
	case *model.PrivateSpecQuizItemEssay:
		if _, ok := answer.(*model.UserItemAnswerEssay); !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return itemGrade{pending: true}, nil
	case *model.PrivateSpecQuizItemScale:
		a, ok := answer.(*model.UserItemAnswerScale)
		if !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return gradeScale(it, a.IntData)
	case *model.PrivateSpecQuizItemClosedEndedQuestion:
		a, ok := answer.(*model.UserItemAnswerClosedEndedQuestion)
		if !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return gradeClosedEnded(it, a.TextData)
	case *model.PrivateSpecQuizItemMatrix:
		a, ok := answer.(*model.UserItemAnswerMatrix)
		if !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return gradeMatrix(it, a.Matrix)
	case *model.PrivateSpecQuizItemTimeline:
		a, ok := answer.(*model.UserItemAnswerTimeline)
		if !ok {
			return itemGrade{}, ErrUnexpectedAnswerType
		}
		return gradeTimeline(it, a.TimelineChoices), nil
	default:
		return itemGrade{}, fmt.Errorf("%w: %q", model.ErrUnknownItemType, item.ItemType())
	}
}

// optionSelection is a deduplicated selection checked against an item's options.
type optionSelection struct {
	selected []string
	correct  int
	hits     int
	wrong    int
}

func selectOptions(options []model.QuizItemOption, selectedIDs []string) optionSelection {
	byID := make(map[string]model.QuizItemOption, len(options))
	var s optionSelection
	for _, o := range options {
		byID[o.ID] = o
		if o.Correct {
			s.correct++
		}
	}

	seen := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s.selected = append(s.selected, id)
		if o, ok := byID[id]; ok && o.Correct {
			s.hits++
		} else {
			s.wrong++
		}
	}
	return s
}

func gradeOptionSet(options []model.QuizItemOption, selectedIDs []string, allowMultiple bool,
	policy model.GradingPolicy, sharedFeedback *string) (itemGrade, error) {
	s := selectOptions(options, selectedIDs)
	if len(s.selected) == 0 {
		return itemGrade{}, ErrNoOptionAnswers
	}
	if len(s.selected) > 1 && !allowMultiple {
		return itemGrade{}, ErrMultipleSelections
	}

	grade := itemGrade{optionFeedbacks: optionFeedbacks(options, s.selected, sharedFeedback)}
	if s.correct == 0 {
		// Nothing can be answered correctly, whatever the policy.
		return grade, nil
	}

	c := float64(s.correct)
	hits := float64(s.hits)
	wrong := float64(s.wrong)
	missing := c - hits

	switch policy {
	case model.GradingPolicyPointsOffIncorrectOptions:
		grade.score = (hits - wrong) / c
	case model.GradingPolicyPointsOffUnselectedOptions:
		grade.score = 1 - missing/c - 2*wrong/c
	case model.GradingPolicySomeCorrectNoneIncorrect:
		if s.wrong == 0 && s.hits > 0 {
			grade.score = 1
		}
	case "", model.GradingPolicyDefault:
		if s.wrong == 0 && s.hits == s.correct {
			grade.score = 1
		}
	default:
		return itemGrade{}, fmt.Errorf("%w: %q", ErrUnknownGradingPolicy, policy)
	}
	grade.score = clamp(grade.score)
	return grade, nil
}

func gradeChooseN(item *model.PrivateSpecQuizItemChooseN, selectedIDs []string) (itemGrade, error) {
	s := selectOptions(item.Options, selectedIDs)
	if len(s.selected) == 0 {
		return itemGrade{}, ErrNoOptionAnswers
	}
	if item.N > 0 && len(s.selected) > item.N {
		return itemGrade{}, fmt.Errorf("%w: at most %d", ErrTooManySelections, item.N)
	}

	grade := itemGrade{optionFeedbacks: optionFeedbacks(item.Options, s.selected, nil)}
	if item.N <= 0 || s.correct == 0 {
		return grade, nil
	}
	grade.score = clamp(float64(min(s.hits, item.N)) / float64(min(item.N, s.correct)))
	return grade, nil
}

func gradeScale(item *model.PrivateSpecQuizItemScale, value *int) (itemGrade, error) {
	if value == nil {
		return itemGrade{}, ErrNoAnswerProvided
	}
	if item.MinValue != nil && item.MaxValue != nil {
		lo, hi := min(*item.MinValue, *item.MaxValue), max(*item.MinValue, *item.MaxValue)
		if *value < lo || *value > hi {
			return itemGrade{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrValueOutOfRange, *value, lo, hi)
		}
	}
	return itemGrade{score: 1}, nil
}

// printable drops control and other non-printing runes, then trims.
func printable(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s))
}

func gradeClosedEnded(item *model.PrivateSpecQuizItemClosedEndedQuestion, text *string) (itemGrade, error) {
	if text == nil {
		return itemGrade{}, ErrNoAnswerProvided
	}
	answer := printable(*text)
	if answer == "" {
		return itemGrade{}, ErrNoAnswerProvided
	}

	pattern := ""
	if item.ValidityRegex != nil {
		pattern = strings.TrimSpace(*item.ValidityRegex)
	}
	re, err := regexp.Compile(`(?i)^(?:` + pattern + `)$`)
	if err != nil {
		return itemGrade{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if re.MatchString(answer) {
		return itemGrade{score: 1}, nil
	}
	return itemGrade{}, nil
}

func gradeMatrix(item *model.PrivateSpecQuizItemMatrix, cells [][]string) (itemGrade, error) {
	if cells == nil {
		return itemGrade{}, ErrNoStudentAnswers
	}
	if item.OptionCells == nil {
		return itemGrade{}, ErrNoCorrectAnswers
	}
	// Cells outside either grid read as empty, so extra submitted text is wrong too.
	for i := range max(len(item.OptionCells), len(cells)) {
		for j := range max(rowLen(item.OptionCells, i), rowLen(cells, i)) {
			if cell(cells, i, j) != cell(item.OptionCells, i, j) {
				return itemGrade{}, nil
			}
		}
	}
	return itemGrade{score: 1}, nil
}

func rowLen(cells [][]string, i int) int {
	if i >= len(cells) {
		return 0
	}
	return len(cells[i])
}

func cell(cells [][]string, i, j int) string {
	if i >= len(cells) || j >= len(cells[i]) {
		return ""
	}
	return cells[i][j]
}

func gradeTimeline(item *model.PrivateSpecQuizItemTimeline, choices []model.TimelineChoice) itemGrade {
	if len(item.TimelineItems) == 0 {
		return itemGrade{}
	}
	chosen := make(map[string]string, len(choices))
	for _, c := range choices {
		if _, dup := chosen[c.TimelineItemID]; !dup {
			chosen[c.TimelineItemID] = c.ChosenEventID
		}
	}
	matches := 0
	for _, ti := range item.TimelineItems {
		if event, ok := chosen[ti.ID]; ok && event == ti.CorrectEventID {
			matches++
		}
	}
	return itemGrade{score: clamp(float64(matches) / float64(len(item.TimelineItems)))}
}

func optionFeedbacks(options []model.QuizItemOption, selected []string, shared *string) []model.OptionAnswerFeedback {
	byID := make(map[string]model.QuizItemOption, len(options))
	for _, o := range options {
		byID[o.ID] = o
	}
	feedbacks := make([]model.OptionAnswerFeedback, 0, len(selected))
	for _, id := range selected {
		o, ok := byID[id]
		if !ok {
			feedbacks = append(feedbacks, model.OptionAnswerFeedback{OptionID: id})
			continue
		}
		message := o.MessageAfterSubmissionWhenSelected
		if message == nil {
			message = shared
		}
		feedbacks = append(feedbacks, model.OptionAnswerFeedback{
			OptionID:             o.ID,
			OptionFeedback:       model.CloneString(message),
			ThisOptionWasCorrect: model.BoolPtr(o.Correct),
		})
	}
	return feedbacks
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
