package grading

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

func option(id string, correct bool) model.QuizItemOption {
	return model.QuizItemOption{ID: id, Correct: correct}
}

func makeOptions(total int, correct ...string) []model.QuizItemOption {
	isCorrect := make(map[string]bool, len(correct))
	for _, id := range correct {
		isCorrect[id] = true
	}
	options := make([]model.QuizItemOption, 0, total)
	for i := 1; i <= total; i++ {
		id := fmt.Sprintf("option-%d", i)
		options = append(options, option(id, isCorrect[id]))
	}
	return options
}

func multipleChoice(policy model.GradingPolicy, options []model.QuizItemOption) *model.PrivateSpecQuizItemMultipleChoice {
	item := &model.PrivateSpecQuizItemMultipleChoice{
		QuizItemBase:                  model.NewItemBase(model.QuizItemTypeMultipleChoice, "mc", 0),
		AllowSelectingMultipleOptions: true,
		Options:                       options,
	}
	item.MultipleChoiceMultipleOptionsGradingPolicy = policy
	return item
}

func quizOf(items ...model.PrivateSpecQuizItem) *model.PrivateSpecQuiz {
	return &model.PrivateSpecQuiz{Version: model.QuizVersion, Items: items}
}

func selectAnswer(itemID string, selected ...string) *model.UserItemAnswerMultipleChoice {
	return &model.UserItemAnswerMultipleChoice{
		ItemAnswerBase:    model.ItemAnswerBase{Type: model.QuizItemTypeMultipleChoice, QuizItemID: itemID, Valid: true},
		SelectedOptionIDs: selected,
	}
}

func answerOf(answers ...model.UserItemAnswer) *model.UserAnswer {
	return &model.UserAnswer{Version: model.QuizVersion, ItemAnswers: answers}
}

func TestGrade_DefaultPolicyRequiresExactMatch(t *testing.T) {
	quiz := quizOf(multipleChoice(model.GradingPolicyDefault, makeOptions(4, "option-1", "option-2")))

	tests := []struct {
		name     string
		selected []string
		want     float64
	}{
		{"exact match", []string{"option-1", "option-2"}, 1},
		{"one right one wrong", []string{"option-1", "option-3"}, 0},
		{"subset", []string{"option-1"}, 0},
		{"duplicates are ignored", []string{"option-2", "option-1", "option-2"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(quiz, answerOf(selectAnswer("mc", tt.selected...)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ScoreGiven)
			assert.Equal(t, 1, result.ScoreMaximum)
			assert.Equal(t, model.GradingProgressFullyGraded, result.GradingProgress)
		})
	}
}

func TestGrade_PointsOffIncorrectOptions(t *testing.T) {
	quiz := quizOf(multipleChoice(model.GradingPolicyPointsOffIncorrectOptions, makeOptions(4, "option-1", "option-2")))

	result, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1", "option-2", "option-3")))
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.ScoreGiven)

	result, err = Grade(quiz, answerOf(selectAnswer("mc", "option-3", "option-4")))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.ScoreGiven)
}

func TestGrade_PointsOffUnselectedOptions(t *testing.T) {
	quiz := quizOf(multipleChoice(model.GradingPolicyPointsOffUnselectedOptions,
		makeOptions(8, "option-1", "option-2", "option-3", "option-4")))

	result, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1", "option-2", "option-3")))
	require.NoError(t, err)
	assert.Equal(t, 0.75, result.ScoreGiven)

	result, err = Grade(quiz, answerOf(selectAnswer("mc", "option-1", "option-2", "option-3", "option-8")))
	require.NoError(t, err)
	assert.Equal(t, 0.25, result.ScoreGiven)
}

func TestGrade_SomeCorrectNoneIncorrect(t *testing.T) {
	quiz := quizOf(multipleChoice(model.GradingPolicySomeCorrectNoneIncorrect, makeOptions(4, "option-1", "option-2")))

	result, err := Grade(quiz, answerOf(selectAnswer("mc", "option-2")))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ScoreGiven)

	result, err = Grade(quiz, answerOf(selectAnswer("mc", "option-2", "option-4")))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.ScoreGiven)
}

func TestGrade_NoCorrectOptionsScoresZeroUnderEveryPolicy(t *testing.T) {
	policies := []model.GradingPolicy{
		model.GradingPolicyDefault,
		model.GradingPolicyPointsOffIncorrectOptions,
		model.GradingPolicyPointsOffUnselectedOptions,
		model.GradingPolicySomeCorrectNoneIncorrect,
	}
	selections := [][]string{
		{"option-1"},
		{"option-1", "option-2", "option-3", "option-4"},
	}
	for _, policy := range policies {
		for _, selected := range selections {
			quiz := quizOf(multipleChoice(policy, makeOptions(4)))
			result, err := Grade(quiz, answerOf(selectAnswer("mc", selected...)))
			require.NoError(t, err)
			assert.Equal(t, 0.0, result.ScoreGiven, "policy %s, selection %v", policy, selected)
		}
	}
}

func TestGrade_EmptySelectionFails(t *testing.T) {
	quiz := quizOf(multipleChoice(model.GradingPolicyDefault, makeOptions(4, "option-1")))

	_, err := Grade(quiz, answerOf(selectAnswer("mc")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoOptionAnswers)
	assert.Contains(t, err.Error(), "No option answers")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "mc", verr.ItemID)
}

func TestGrade_SingleSelectRejectsMultipleOptions(t *testing.T) {
	item := multipleChoice(model.GradingPolicyDefault, makeOptions(4, "option-1"))
	item.AllowSelectingMultipleOptions = false

	_, err := Grade(quizOf(item), answerOf(selectAnswer("mc", "option-1", "option-2")))
	assert.ErrorIs(t, err, ErrMultipleSelections)
}

func TestGrade_AnswerPairingErrors(t *testing.T) {
	quiz := quizOf(multipleChoice(model.GradingPolicyDefault, makeOptions(4, "option-1")))

	t.Run("unknown item", func(t *testing.T) {
		_, err := Grade(quiz, answerOf(selectAnswer("nope", "option-1")))
		assert.ErrorIs(t, err, ErrItemMissing)
	})

	t.Run("wrong answer type", func(t *testing.T) {
		checkbox := &model.UserItemAnswerCheckbox{
			ItemAnswerBase: model.ItemAnswerBase{Type: model.QuizItemTypeCheckbox, QuizItemID: "mc"},
			Checked:        true,
		}
		_, err := Grade(quiz, answerOf(checkbox))
		assert.ErrorIs(t, err, ErrUnexpectedAnswerType)
		assert.Contains(t, err.Error(), "Unexpected item answer type")
	})

	t.Run("two answers for one item", func(t *testing.T) {
		_, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1"), selectAnswer("mc", "option-2")))
		assert.ErrorIs(t, err, ErrDuplicateAnswer)
	})

	t.Run("nil inputs", func(t *testing.T) {
		_, err := Grade(nil, answerOf())
		assert.ErrorIs(t, err, ErrNilSpec)
		_, err = Grade(quiz, nil)
		assert.ErrorIs(t, err, ErrNilAnswer)
	})
}

func TestGrade_UnansweredItemsScoreZero(t *testing.T) {
	other := multipleChoice(model.GradingPolicyDefault, makeOptions(4, "option-2"))
	other.ID = "mc-2"
	quiz := quizOf(multipleChoice(model.GradingPolicyDefault, makeOptions(4, "option-1")), other)

	result, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1")))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ScoreGiven)
	assert.Equal(t, 2, result.ScoreMaximum)
	require.Len(t, result.FeedbackJSON, 1)
	assert.Equal(t, "mc", result.FeedbackJSON[0].QuizItemID)
}

func chooseN(n int, correct ...string) *model.PrivateSpecQuizItemChooseN {
	return &model.PrivateSpecQuizItemChooseN{
		QuizItemBase: model.NewItemBase(model.QuizItemTypeChooseN, "cn", 0),
		N:            n,
		Options:      makeOptions(6, correct...),
	}
}

func chooseAnswer(selected ...string) *model.UserItemAnswerChooseN {
	return &model.UserItemAnswerChooseN{
		ItemAnswerBase:    model.ItemAnswerBase{Type: model.QuizItemTypeChooseN, QuizItemID: "cn"},
		SelectedOptionIDs: selected,
	}
}

func TestGrade_ChooseN(t *testing.T) {
	tests := []struct {
		name     string
		item     *model.PrivateSpecQuizItemChooseN
		selected []string
		want     float64
	}{
		{"both correct", chooseN(2, "option-1", "option-2", "option-3", "option-4"), []string{"option-1", "option-3"}, 1},
		{"one of two", chooseN(2, "option-1", "option-2", "option-3", "option-4"), []string{"option-1", "option-6"}, 0.5},
		{"n is zero", chooseN(0, "option-1"), []string{"option-1"}, 0},
		{"fewer correct than n", chooseN(3, "option-1"), []string{"option-1"}, 1},
		{"no correct options", chooseN(2), []string{"option-1"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(quizOf(tt.item), answerOf(chooseAnswer(tt.selected...)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ScoreGiven)
		})
	}
}

func TestGrade_ChooseNRejectsBadSelections(t *testing.T) {
	_, err := Grade(quizOf(chooseN(1, "option-1")), answerOf(chooseAnswer("option-1", "option-2")))
	assert.ErrorIs(t, err, ErrTooManySelections)

	_, err = Grade(quizOf(chooseN(1, "option-1")), answerOf(chooseAnswer()))
	assert.ErrorIs(t, err, ErrNoOptionAnswers)
}

func timeline(items ...model.TimelineItem) *model.PrivateSpecQuizItemTimeline {
	return &model.PrivateSpecQuizItemTimeline{
		QuizItemBase:  model.NewItemBase(model.QuizItemTypeTimeline, "tl", 0),
		TimelineItems: items,
	}
}

func timelineAnswer(choices ...model.TimelineChoice) *model.UserItemAnswerTimeline {
	return &model.UserItemAnswerTimeline{
		ItemAnswerBase:  model.ItemAnswerBase{Type: model.QuizItemTypeTimeline, QuizItemID: "tl"},
		TimelineChoices: choices,
	}
}

func TestGrade_Timeline(t *testing.T) {
	item := timeline(
		model.TimelineItem{ID: "t-1", Year: "1917", CorrectEventID: "e-1"},
		model.TimelineItem{ID: "t-2", Year: "1918", CorrectEventID: "e-2"},
	)

	result, err := Grade(quizOf(item), answerOf(timelineAnswer(
		model.TimelineChoice{TimelineItemID: "t-1", ChosenEventID: "e-1"},
		model.TimelineChoice{TimelineItemID: "t-2", ChosenEventID: "e-2"},
	)))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ScoreGiven)

	four := timeline(
		model.TimelineItem{ID: "t-1", Year: "1917", CorrectEventID: "e-1"},
		model.TimelineItem{ID: "t-2", Year: "1918", CorrectEventID: "e-2"},
		model.TimelineItem{ID: "t-3", Year: "1939", CorrectEventID: "e-3"},
		model.TimelineItem{ID: "t-4", Year: "1945", CorrectEventID: "e-4"},
	)
	result, err = Grade(quizOf(four), answerOf(timelineAnswer(
		model.TimelineChoice{TimelineItemID: "t-1", ChosenEventID: "e-1"},
		model.TimelineChoice{TimelineItemID: "t-2", ChosenEventID: "e-3"},
		model.TimelineChoice{TimelineItemID: "t-4", ChosenEventID: "e-4"},
	)))
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.ScoreGiven)

	result, err = Grade(quizOf(timeline()), answerOf(timelineAnswer()))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.ScoreGiven)
}

func TestGrade_Scale(t *testing.T) {
	item := &model.PrivateSpecQuizItemScale{
		QuizItemBase: model.NewItemBase(model.QuizItemTypeScale, "sc", 0),
		MinValue:     model.IntPtr(5),
		MaxValue:     model.IntPtr(1),
	}
	scale := func(v *int) *model.UserItemAnswerScale {
		return &model.UserItemAnswerScale{
			ItemAnswerBase: model.ItemAnswerBase{Type: model.QuizItemTypeScale, QuizItemID: "sc"},
			IntData:        v,
		}
	}

	result, err := Grade(quizOf(item), answerOf(scale(model.IntPtr(3))))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ScoreGiven)

	_, err = Grade(quizOf(item), answerOf(scale(model.IntPtr(6))))
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = Grade(quizOf(item), answerOf(scale(nil)))
	assert.ErrorIs(t, err, ErrNoAnswerProvided)
}

func TestGrade_ClosedEndedQuestion(t *testing.T) {
	item := &model.PrivateSpecQuizItemClosedEndedQuestion{
		QuizItemBase:  model.NewItemBase(model.QuizItemTypeClosedEndedQuestion, "ce", 0),
		ValidityRegex: model.StringPtr(" helsinki|espoo "),
	}
	text := func(s string) *model.UserItemAnswerClosedEndedQuestion {
		return &model.UserItemAnswerClosedEndedQuestion{
			ItemAnswerBase: model.ItemAnswerBase{Type: model.QuizItemTypeClosedEndedQuestion, QuizItemID: "ce"},
			TextData:       model.StringPtr(s),
		}
	}

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"case insensitive", "HELSINKI", 1},
		{"control characters stripped", "\x00 Espoo​\n", 1},
		{"whole answer must match", "helsinki city", 0},
		{"wrong", "tampere", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(quizOf(item), answerOf(text(tt.text)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ScoreGiven)
		})
	}

	_, err := Grade(quizOf(item), answerOf(text(" \t\x01 ")))
	assert.ErrorIs(t, err, ErrNoAnswerProvided)
	assert.Contains(t, err.Error(), "no answer provided")

	broken := &model.PrivateSpecQuizItemClosedEndedQuestion{
		QuizItemBase:  item.QuizItemBase,
		ValidityRegex: model.StringPtr("(unclosed"),
	}
	_, err = Grade(quizOf(broken), answerOf(text("x")))
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestGrade_Matrix(t *testing.T) {
	item := &model.PrivateSpecQuizItemMatrix{
		QuizItemBase: model.NewItemBase(model.QuizItemTypeMatrix, "mx", 0),
		OptionCells:  [][]string{{"1", "0"}, {"0", ""}},
	}
	cells := func(c [][]string) *model.UserItemAnswerMatrix {
		return &model.UserItemAnswerMatrix{
			ItemAnswerBase: model.ItemAnswerBase{Type: model.QuizItemTypeMatrix, QuizItemID: "mx"},
			Matrix:         c,
		}
	}

	result, err := Grade(quizOf(item), answerOf(cells([][]string{{"1", "0"}, {"0"}})))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ScoreGiven)

	result, err = Grade(quizOf(item), answerOf(cells([][]string{{"1", "1"}, {"0", ""}})))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.ScoreGiven)

	// Submitted cells beyond the expected grid must be empty.
	result, err = Grade(quizOf(item), answerOf(cells([][]string{{"1", "0", "junk"}, {"0", ""}})))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.ScoreGiven)

	result, err = Grade(quizOf(item), answerOf(cells([][]string{{"1", "0"}, {"0", ""}, {"x"}})))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.ScoreGiven)

	result, err = Grade(quizOf(item), answerOf(cells([][]string{{"1", "0", ""}, {"0", ""}, {"", ""}})))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ScoreGiven)

	_, err = Grade(quizOf(item), answerOf(cells(nil)))
	assert.ErrorIs(t, err, ErrNoStudentAnswers)
}

func TestGrade_CheckboxAndDropdown(t *testing.T) {
	checkbox := &model.PrivateSpecQuizItemCheckbox{QuizItemBase: model.NewItemBase(model.QuizItemTypeCheckbox, "cb", 0)}
	dropdown := &model.PrivateSpecQuizItemMultipleChoiceDropdown{
		QuizItemBase: model.NewItemBase(model.QuizItemTypeMultipleChoiceDropdown, "dd", 1),
		Options:      makeOptions(4, "option-3"),
	}
	quiz := quizOf(checkbox, dropdown)

	result, err := Grade(quiz, answerOf(
		&model.UserItemAnswerCheckbox{
			ItemAnswerBase: model.ItemAnswerBase{Type: model.QuizItemTypeCheckbox, QuizItemID: "cb"},
			Checked:        true,
		},
		&model.UserItemAnswerMultipleChoiceDropdown{
			ItemAnswerBase:    model.ItemAnswerBase{Type: model.QuizItemTypeMultipleChoiceDropdown, QuizItemID: "dd"},
			SelectedOptionIDs: []string{"option-3"},
		},
	))
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.ScoreGiven)
	assert.Equal(t, 2, result.ScoreMaximum)

	_, err = Grade(quiz, answerOf(&model.UserItemAnswerMultipleChoiceDropdown{
		ItemAnswerBase:    model.ItemAnswerBase{Type: model.QuizItemTypeMultipleChoiceDropdown, QuizItemID: "dd"},
		SelectedOptionIDs: []string{"option-3", "option-1"},
	}))
	assert.ErrorIs(t, err, ErrMultipleSelections)
}

func TestGrade_Feedback(t *testing.T) {
	options := makeOptions(4, "option-1")
	options[0].MessageAfterSubmissionWhenSelected = model.StringPtr("well picked")
	item := multipleChoice(model.GradingPolicyDefault, options)
	item.AllowSelectingMultipleOptions = false
	item.SuccessMessage = model.StringPtr("correct!")
	item.FailureMessage = model.StringPtr("try again")
	item.SharedOptionFeedbackMessage = model.StringPtr("shared")
	quiz := quizOf(item)
	quiz.SubmitMessage = model.StringPtr("thanks")

	result, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1")))
	require.NoError(t, err)
	assert.Equal(t, "thanks", *result.FeedbackText)
	require.Len(t, result.FeedbackJSON, 1)
	feedback := result.FeedbackJSON[0]
	assert.Equal(t, "correct!", *feedback.QuizItemFeedback)
	assert.True(t, *feedback.QuizItemCorrect)
	assert.Equal(t, 1.0, *feedback.CorrectnessCoefficient)
	require.Len(t, feedback.QuizItemOptionFeedbacks, 1)
	assert.Equal(t, "well picked", *feedback.QuizItemOptionFeedbacks[0].OptionFeedback)
	assert.True(t, *feedback.QuizItemOptionFeedbacks[0].ThisOptionWasCorrect)

	result, err = Grade(quiz, answerOf(selectAnswer("mc", "option-2")))
	require.NoError(t, err)
	feedback = result.FeedbackJSON[0]
	assert.Equal(t, "try again", *feedback.QuizItemFeedback)
	assert.False(t, *feedback.QuizItemCorrect)
	assert.Equal(t, "shared", *feedback.QuizItemOptionFeedbacks[0].OptionFeedback)
	assert.False(t, *feedback.QuizItemOptionFeedbacks[0].ThisOptionWasCorrect)
}

func TestGrade_UnknownOptionCountsAsWrong(t *testing.T) {
	quiz := quizOf(multipleChoice(model.GradingPolicyPointsOffIncorrectOptions, makeOptions(4, "option-1", "option-2")))

	result, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1", "option-2", "ghost")))
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.ScoreGiven)

	optionFeedbacks := result.FeedbackJSON[0].QuizItemOptionFeedbacks
	require.Len(t, optionFeedbacks, 3)
	assert.Equal(t, "ghost", optionFeedbacks[2].OptionID)
	assert.Nil(t, optionFeedbacks[2].ThisOptionWasCorrect)
}

func TestGrade_AwardPointsEvenIfWrong(t *testing.T) {
	quiz := quizOf(multipleChoice(model.GradingPolicyDefault, makeOptions(4, "option-1")))
	quiz.AwardPointsEvenIfWrong = true

	result, err := Grade(quiz, answerOf(selectAnswer("mc", "option-2")))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ScoreGiven)
	assert.False(t, *result.FeedbackJSON[0].QuizItemCorrect)
}

func essayQuiz() *model.PrivateSpecQuiz {
	return quizOf(
		multipleChoice(model.GradingPolicyDefault, makeOptions(4, "option-1")),
		&model.PrivateSpecQuizItemEssay{QuizItemBase: model.NewItemBase(model.QuizItemTypeEssay, "es", 1)},
		&model.PrivateSpecQuizItemEssay{QuizItemBase: model.NewItemBase(model.QuizItemTypeEssay, "es-2", 2)},
	)
}

func essayAnswer(id string) *model.UserItemAnswerEssay {
	return &model.UserItemAnswerEssay{
		ItemAnswerBase: model.ItemAnswerBase{Type: model.QuizItemTypeEssay, QuizItemID: id},
		TextData:       model.StringPtr("My thoughts"),
	}
}

func TestGrade_EssayLeavesResultPending(t *testing.T) {
	result, err := Grade(essayQuiz(), answerOf(selectAnswer("mc", "option-1"), essayAnswer("es")))
	require.NoError(t, err)

	assert.Equal(t, model.GradingProgressPendingManual, result.GradingProgress)
	assert.Equal(t, 1.0, result.ScoreGiven)
	assert.Equal(t, 1, result.ScoreMaximum)
	assert.Equal(t, []string{"es"}, result.PendingItemIDs())

	essay := result.FeedbackJSON[1]
	assert.Nil(t, essay.QuizItemCorrect)
	assert.Nil(t, essay.CorrectnessCoefficient)
}

func TestGrade_UnansweredEssayIsNotPending(t *testing.T) {
	result, err := Grade(essayQuiz(), answerOf(selectAnswer("mc", "option-1")))
	require.NoError(t, err)
	assert.Equal(t, model.GradingProgressFullyGraded, result.GradingProgress)
}

func TestFinalize(t *testing.T) {
	quiz := essayQuiz()
	pending, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1"), essayAnswer("es")))
	require.NoError(t, err)

	final, err := Finalize(quiz, pending, map[string]float64{"es": 0.5})
	require.NoError(t, err)
	assert.Equal(t, model.GradingProgressFullyGraded, final.GradingProgress)
	assert.Equal(t, 1.5, final.ScoreGiven)
	assert.Equal(t, 3, final.ScoreMaximum)
	assert.Equal(t, 0.5, *final.FeedbackJSON[1].CorrectnessCoefficient)
	assert.False(t, *final.FeedbackJSON[1].QuizItemCorrect)

	assert.Equal(t, model.GradingProgressPendingManual, pending.GradingProgress)
}

func TestGrade_UnknownGradingPolicy(t *testing.T) {
	quiz := quizOf(multipleChoice("points-off-typo", makeOptions(3, "option-1", "option-2")))

	_, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1")))
	assert.ErrorIs(t, err, ErrUnknownGradingPolicy)

	unset := quizOf(multipleChoice("", makeOptions(3, "option-1", "option-2")))
	result, err := Grade(unset, answerOf(selectAnswer("mc", "option-1", "option-2")))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ScoreGiven)
}

func TestGradeOptionSet_RejectsUnknownPolicy(t *testing.T) {
	_, err := gradeOptionSet(makeOptions(2, "option-1"), []string{"option-1"}, false, "bogus", nil)
	assert.ErrorIs(t, err, ErrUnknownGradingPolicy)
}

func TestFinalize_RejectsScoresForOtherItems(t *testing.T) {
	quiz := essayQuiz()
	pending, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1"), essayAnswer("es")))
	require.NoError(t, err)

	for _, id := range []string{"mc", "typo"} {
		_, err = Finalize(quiz, pending, map[string]float64{"es": 1, id: 1})
		require.ErrorIs(t, err, ErrUnexpectedScore)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, id, ve.ItemID)
	}
}

func TestFinalize_Errors(t *testing.T) {
	quiz := essayQuiz()
	pending, err := Grade(quiz, answerOf(essayAnswer("es")))
	require.NoError(t, err)

	_, err = Finalize(quiz, pending, map[string]float64{})
	assert.ErrorIs(t, err, ErrMissingManualScore)

	_, err = Finalize(quiz, pending, map[string]float64{"es": 1.5})
	assert.ErrorIs(t, err, ErrInvalidManualScore)

	graded, err := Grade(quiz, answerOf(selectAnswer("mc", "option-1")))
	require.NoError(t, err)
	_, err = Finalize(quiz, graded, map[string]float64{"es": 1})
	assert.ErrorIs(t, err, ErrNotPendingManual)
}
