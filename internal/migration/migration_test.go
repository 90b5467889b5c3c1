package migration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-quizzes/internal/model"
)

const legacyQuiz = `{
	"id": "quiz-1",
	"title": "Legacy quiz",
	"body": "Answer everything",
	"direction": "row",
	"awardPointsEvenIfWrong": false,
	"grantPointsPolicy": "grant_whenever_possible",
	"submitMessage": "Thanks!",
	"items": [
		{
			"id": "mc-1",
			"quizId": "quiz-1",
			"type": "multiple-choice",
			"order": 1,
			"validityRegex": null,
			"multi": true,
			"shuffleOptions": true,
			"direction": "row",
			"title": "Pick",
			"body": null,
			"successMessage": "yes",
			"failureMessage": "no",
			"sharedOptionFeedbackMessage": "shared",
			"options": [
				{"id": "o-1", "order": 1, "correct": true, "title": "A", "body": null, "successMessage": "right", "failureMessage": "wrong-1"},
				{"id": "o-2", "order": 2, "correct": false, "title": "B", "body": null, "successMessage": "right-2", "failureMessage": "wrong"}
			]
		},
		{
			"id": "open-1",
			"quizId": "quiz-1",
			"type": "open",
			"order": 2,
			"validityRegex": "secret-[0-9]+",
			"formatRegex": "[a-z0-9-]+",
			"multi": false,
			"title": "Type it",
			"body": null
		},
		{
			"id": "cmc-1",
			"quizId": "quiz-1",
			"type": "clickable-multiple-choice",
			"order": 3,
			"validityRegex": null,
			"multi": false,
			"options": [
				{"id": "c-1", "order": 1, "correct": true, "title": "C"}
			]
		},
		{
			"id": "checkbox-1",
			"quizId": "quiz-1",
			"type": "checkbox",
			"order": 4,
			"validityRegex": null,
			"multi": false,
			"title": "I agree"
		},
		{
			"id": "matrix-1",
			"quizId": "quiz-1",
			"type": "matrix",
			"order": 5,
			"validityRegex": null,
			"multi": false,
			"optionCells": [["1", "0"], ["0", "1"]]
		},
		{
			"id": "timeline-1",
			"quizId": "quiz-1",
			"type": "timeline",
			"order": 6,
			"validityRegex": null,
			"multi": false,
			"timelineItems": [
				{"id": "t-1", "year": "1917", "correctEventName": "Independence", "correctEventId": "e-1"}
			]
		}
	]
}`

func TestMigratePrivateSpec_Null(t *testing.T) {
	for _, raw := range []string{"", "null", "  null "} {
		quiz, err := MigratePrivateSpec(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Nil(t, quiz)
	}
}

func TestMigratePrivateSpec_Legacy(t *testing.T) {
	quiz, err := MigratePrivateSpec(json.RawMessage(legacyQuiz))
	require.NoError(t, err)
	require.NotNil(t, quiz)

	assert.Equal(t, model.QuizVersion, quiz.Version)
	assert.Equal(t, "quiz-1", *quiz.ID)
	assert.Equal(t, model.DisplayDirectionHorizontal, quiz.QuizItemDisplayDirection)
	assert.Equal(t, "Thanks!", *quiz.SubmitMessage)
	require.Len(t, quiz.Items, 6)

	mc, ok := quiz.Items[0].(*model.PrivateSpecQuizItemMultipleChoice)
	require.True(t, ok)
	assert.True(t, mc.AllowSelectingMultipleOptions)
	assert.Equal(t, "row", mc.Direction)
	assert.Equal(t, model.DisplayDirectionHorizontal, mc.OptionDisplayDirection)
	assert.Equal(t, model.GradingPolicyDefault, mc.MultipleChoiceMultipleOptionsGradingPolicy)
	assert.Equal(t, "shared", *mc.SharedOptionFeedbackMessage)
	require.Len(t, mc.Options, 2)
	assert.Equal(t, "right", *mc.Options[0].MessageAfterSubmissionWhenSelected)
	assert.Equal(t, "wrong", *mc.Options[1].MessageAfterSubmissionWhenSelected)

	closed, ok := quiz.Items[1].(*model.PrivateSpecQuizItemClosedEndedQuestion)
	require.True(t, ok)
	assert.Equal(t, model.QuizItemTypeClosedEndedQuestion, closed.Type)
	assert.Equal(t, "secret-[0-9]+", *closed.ValidityRegex)

	chooseN, ok := quiz.Items[2].(*model.PrivateSpecQuizItemChooseN)
	require.True(t, ok)
	assert.Equal(t, model.QuizItemTypeChooseN, chooseN.Type)
	assert.Equal(t, ChooseNDefaultValue, chooseN.N)

	_, ok = quiz.Items[3].(*model.PrivateSpecQuizItemCheckbox)
	assert.True(t, ok)

	matrix, ok := quiz.Items[4].(*model.PrivateSpecQuizItemMatrix)
	require.True(t, ok)
	assert.Equal(t, [][]string{{"1", "0"}, {"0", "1"}}, matrix.OptionCells)

	timeline, ok := quiz.Items[5].(*model.PrivateSpecQuizItemTimeline)
	require.True(t, ok)
	assert.Equal(t, "e-1", timeline.TimelineItems[0].CorrectEventID)
}

func TestMigratePrivateSpec_ColumnDirectionIsVertical(t *testing.T) {
	raw := `{"direction": "column", "items": [{"id": "i", "type": "essay", "quizId": "q", "order": 0}]}`
	quiz, err := MigratePrivateSpec(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, model.DisplayDirectionVertical, quiz.QuizItemDisplayDirection)
}

func TestMigratePrivateSpec_Idempotent(t *testing.T) {
	once, err := MigratePrivateSpec(json.RawMessage(legacyQuiz))
	require.NoError(t, err)

	encoded, err := json.Marshal(once)
	require.NoError(t, err)

	twice, err := MigratePrivateSpec(encoded)
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	again, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.JSONEq(t, string(encoded), string(again))
}

func TestMigratePrivateSpec_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name:    "unknown legacy item type",
			raw:     `{"direction": null, "items": [{"id": "x", "type": "custom-frontend-accept-data", "quizId": "q"}]}`,
			wantErr: ErrUnknownItemType,
		},
		{
			name:    "missing item id",
			raw:     `{"direction": "row", "items": [{"type": "essay", "quizId": "q"}]}`,
			wantErr: ErrMalformedField,
		},
		{
			name:    "unsupported version",
			raw:     `{"version": "3", "items": []}`,
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "unknown current item type",
			raw:     `{"version": "2", "items": [{"id": "x", "type": "drag-and-drop"}]}`,
			wantErr: ErrUnknownItemType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz, err := MigratePrivateSpec(json.RawMessage(tt.raw))
			assert.Nil(t, quiz)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIsLegacySpec(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		legacy bool
	}{
		{"versioned", `{"version": "2", "direction": "row", "items": []}`, false},
		{"no markers", `{"items": []}`, true},
		{"top level direction", `{"direction": "row", "quizItemDisplayDirection": "vertical", "items": []}`, true},
		{"legacy item key", `{"items": [{"type": "essay", "multi": false}]}`, true},
		{"legacy tag", `{"items": [{"type": "open"}]}`, true},
		{"current item key", `{"items": [{"type": "multiple-choice", "allowSelectingMultipleOptions": true}]}`, false},
		{"current tag", `{"items": [{"type": "closed-ended-question"}]}`, false},
		{"current quiz key", `{"quizItemDisplayDirection": "vertical", "items": []}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legacy, err := IsLegacySpec(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.legacy, legacy)
		})
	}
}

func TestMigrateModelSolutionSpec_NeverCarriesValidityRegex(t *testing.T) {
	quiz, err := MigrateModelSolutionSpec(json.RawMessage(legacyQuiz))
	require.NoError(t, err)
	require.NotNil(t, quiz)

	closed, ok := quiz.Items[1].(*model.ModelSolutionQuizItemClosedEndedQuestion)
	require.True(t, ok)
	assert.Equal(t, "[a-z0-9-]+", *closed.FormatRegex)

	encoded, err := json.Marshal(quiz)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "validityRegex")
	assert.NotContains(t, string(encoded), "secret-")
}

func TestMigrateModelSolutionSpec_CurrentShapeDropsValidityRegex(t *testing.T) {
	raw := `{"version": "2", "items": [{"id": "c", "type": "closed-ended-question", "validityRegex": "secret", "formatRegex": null}]}`
	quiz, err := MigrateModelSolutionSpec(json.RawMessage(raw))
	require.NoError(t, err)

	encoded, err := json.Marshal(quiz)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "validityRegex")
	assert.NotContains(t, string(encoded), "secret")
}

func TestMigrateModelSolutionSpec_Idempotent(t *testing.T) {
	once, err := MigrateModelSolutionSpec(json.RawMessage(legacyQuiz))
	require.NoError(t, err)
	encoded, err := json.Marshal(once)
	require.NoError(t, err)

	twice, err := MigrateModelSolutionSpec(encoded)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestMigratePublicSpec_Legacy(t *testing.T) {
	raw := `{
		"id": "quiz-1",
		"title": "Legacy quiz",
		"body": null,
		"direction": "column",
		"items": [
			{"id": "mc-1", "quizId": "quiz-1", "type": "multiple-choice", "order": 1, "multi": false,
			 "options": [{"id": "o-1", "order": 1, "title": "A", "body": null}]},
			{"id": "t-1", "quizId": "quiz-1", "type": "timeline", "order": 2, "multi": false,
			 "timelineItems": [{"id": "ti-1", "year": "1900"}],
			 "timelineItemEvents": [{"id": "e-1", "name": "Event"}]},
			{"id": "cmc-1", "quizId": "quiz-1", "type": "clickable-multiple-choice", "order": 3, "multi": false, "options": []}
		]
	}`

	quiz, err := MigratePublicSpec(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, quiz.Items, 3)
	assert.Equal(t, model.DisplayDirectionVertical, quiz.QuizItemDisplayDirection)

	mc, ok := quiz.Items[0].(*model.PublicSpecQuizItemMultipleChoice)
	require.True(t, ok)
	assert.Equal(t, "o-1", mc.Options[0].ID)
	assert.Equal(t, model.GradingPolicyDefault, mc.MultipleChoiceMultipleOptionsGradingPolicy)

	timeline, ok := quiz.Items[1].(*model.PublicSpecQuizItemTimeline)
	require.True(t, ok)
	assert.Equal(t, []model.PublicTimelineEvent{{ID: "e-1", Name: "Event"}}, timeline.TimelineItemEvents)

	chooseN, ok := quiz.Items[2].(*model.PublicSpecQuizItemChooseN)
	require.True(t, ok)
	assert.Equal(t, ChooseNDefaultValue, chooseN.N)
}

func TestMigrateUserAnswer_Legacy(t *testing.T) {
	quiz, err := MigratePrivateSpec(json.RawMessage(legacyQuiz))
	require.NoError(t, err)

	raw := `{
		"id": "answer-1",
		"quizId": "quiz-1",
		"status": "open",
		"itemAnswers": [
			{"quizItemId": "mc-1", "quizAnswerId": "answer-1", "optionAnswers": ["o-1"], "valid": true},
			{"quizItemId": "checkbox-1", "quizAnswerId": "answer-1", "intData": 1, "valid": true},
			{"quizItemId": "open-1", "quizAnswerId": "answer-1", "textData": "secret-1", "valid": true},
			{"quizItemId": "matrix-1", "quizAnswerId": "answer-1", "optionCells": [["1", "0"], ["0", "1"]], "valid": true},
			{"quizItemId": "timeline-1", "quizAnswerId": "answer-1", "timelineChoices": [{"timelineItemId": "t-1", "chosenEventId": "e-1"}], "valid": true},
			{"quizItemId": "cmc-1", "quizAnswerId": "answer-1", "optionAnswers": ["c-1"], "valid": true}
		]
	}`

	answer, err := MigrateUserAnswer(json.RawMessage(raw), quiz)
	require.NoError(t, err)
	require.Len(t, answer.ItemAnswers, 6)
	assert.Equal(t, model.QuizVersion, answer.Version)

	mc, ok := answer.ItemAnswers[0].(*model.UserItemAnswerMultipleChoice)
	require.True(t, ok)
	assert.Equal(t, []string{"o-1"}, mc.SelectedOptionIDs)
	assert.True(t, mc.Valid)

	checkbox, ok := answer.ItemAnswers[1].(*model.UserItemAnswerCheckbox)
	require.True(t, ok)
	assert.True(t, checkbox.Checked)

	closed, ok := answer.ItemAnswers[2].(*model.UserItemAnswerClosedEndedQuestion)
	require.True(t, ok)
	assert.Equal(t, "secret-1", *closed.TextData)

	matrix, ok := answer.ItemAnswers[3].(*model.UserItemAnswerMatrix)
	require.True(t, ok)
	assert.Equal(t, [][]string{{"1", "0"}, {"0", "1"}}, matrix.Matrix)

	timeline, ok := answer.ItemAnswers[4].(*model.UserItemAnswerTimeline)
	require.True(t, ok)
	assert.Equal(t, "e-1", timeline.TimelineChoices[0].ChosenEventID)

	chooseN, ok := answer.ItemAnswers[5].(*model.UserItemAnswerChooseN)
	require.True(t, ok)
	assert.Equal(t, model.QuizItemTypeChooseN, chooseN.Type)
}

func TestMigrateUserAnswer_UncheckedCheckbox(t *testing.T) {
	quiz, err := MigratePrivateSpec(json.RawMessage(legacyQuiz))
	require.NoError(t, err)

	raw := `{"itemAnswers": [{"quizItemId": "checkbox-1", "quizAnswerId": "a", "intData": 0}]}`
	answer, err := MigrateUserAnswer(json.RawMessage(raw), quiz)
	require.NoError(t, err)

	checkbox, ok := answer.ItemAnswers[0].(*model.UserItemAnswerCheckbox)
	require.True(t, ok)
	assert.False(t, checkbox.Checked)
}

func TestMigrateUserAnswer_UnknownItem(t *testing.T) {
	quiz, err := MigratePrivateSpec(json.RawMessage(legacyQuiz))
	require.NoError(t, err)

	raw := `{"itemAnswers": [{"quizItemId": "nope", "quizAnswerId": "a", "optionAnswers": []}]}`
	_, err = MigrateUserAnswer(json.RawMessage(raw), quiz)
	assert.ErrorIs(t, err, model.ErrItemMissing)
}

func TestMigrateUserAnswer_CurrentPassesThrough(t *testing.T) {
	raw := `{"version": "2", "itemAnswers": [{"type": "multiple-choice", "quizItemId": "mc-1", "valid": true, "selectedOptionIds": ["o-1"]}]}`
	answer, err := MigrateUserAnswer(json.RawMessage(raw), nil)
	require.NoError(t, err)

	encoded, err := json.Marshal(answer)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
}

func TestMigrateUserAnswer_UnknownAnswerType(t *testing.T) {
	raw := `{"version": "2", "itemAnswers": [{"type": "hologram", "quizItemId": "x"}]}`
	_, err := MigrateUserAnswer(json.RawMessage(raw), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected item answer type")
}
