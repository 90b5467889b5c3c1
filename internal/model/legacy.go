package model

// Legacy documents predate the tagged item shape. Every item carries the fields
// of every type, and only the type string tells which of them matter.

// OldQuiz is a legacy private spec.
type OldQuiz struct {
	ID                     *string           `json:"id"`
	Title                  *string           `json:"title"`
	Body                   *string           `json:"body"`
	Direction              *string           `json:"direction"`
	AwardPointsEvenIfWrong bool              `json:"awardPointsEvenIfWrong"`
	GrantPointsPolicy      GrantPointsPolicy `json:"grantPointsPolicy"`
	SubmitMessage          *string           `json:"submitMessage"`
	Items                  []OldQuizItem     `json:"items"`
}

// OldModelSolutionQuiz is a legacy model solution. Its items may still carry validityRegex.
type OldModelSolutionQuiz struct {
	ID                     *string           `json:"id"`
	Title                  *string           `json:"title"`
	Body                   *string           `json:"body"`
	Direction              *string           `json:"direction"`
	AwardPointsEvenIfWrong bool              `json:"awardPointsEvenIfWrong"`
	GrantPointsPolicy      GrantPointsPolicy `json:"grantPointsPolicy"`
	SubmitMessage          *string           `json:"submitMessage"`
	Items                  []OldQuizItem     `json:"items"`
}

// OldPublicQuiz is a legacy public spec.
type OldPublicQuiz struct {
	ID        *string             `json:"id"`
	Title     *string             `json:"title"`
	Body      *string             `json:"body"`
	Direction *string             `json:"direction"`
	Items     []OldPublicQuizItem `json:"items"`
}

type OldQuizItem struct {
	ID                                         *string             `json:"id"`
	QuizID                                     *string             `json:"quizId"`
	Type                                       string              `json:"type"`
	Order                                      int                 `json:"order"`
	ValidityRegex                              *string             `json:"validityRegex"`
	FormatRegex                                *string             `json:"formatRegex"`
	Multi                                      bool                `json:"multi"`
	ShuffleOptions                             bool                `json:"shuffleOptions"`
	MinWords                                   *int                `json:"minWords"`
	MaxWords                                   *int                `json:"maxWords"`
	MinValue                                   *int                `json:"minValue"`
	MaxValue                                   *int                `json:"maxValue"`
	MinLabel                                   *string             `json:"minLabel"`
	MaxLabel                                   *string             `json:"maxLabel"`
	UsesSharedOptionFeedbackMessage            bool                `json:"usesSharedOptionFeedbackMessage"`
	Options                                    []OldQuizItemOption `json:"options"`
	OptionCells                                [][]string          `json:"optionCells"`
	Title                                      *string             `json:"title"`
	Body                                       *string             `json:"body"`
	SuccessMessage                             *string             `json:"successMessage"`
	FailureMessage                             *string             `json:"failureMessage"`
	SharedOptionFeedbackMessage                *string             `json:"sharedOptionFeedbackMessage"`
	AllAnswersCorrect                          bool                `json:"allAnswersCorrect"`
	Direction                                  *string             `json:"direction"`
	TimelineItems                              []TimelineItem      `json:"timelineItems"`
	MultipleChoiceMultipleOptionsGradingPolicy *GradingPolicy      `json:"multipleChoiceMultipleOptionsGradingPolicy"`
}

type OldPublicQuizItem struct {
	ID                                         *string                `json:"id"`
	QuizID                                     *string                `json:"quizId"`
	Type                                       string                 `json:"type"`
	Order                                      int                    `json:"order"`
	FormatRegex                                *string                `json:"formatRegex"`
	Multi                                      bool                   `json:"multi"`
	ShuffleOptions                             bool                   `json:"shuffleOptions"`
	MultipleChoiceMultipleOptionsGradingPolicy *GradingPolicy         `json:"multipleChoiceMultipleOptionsGradingPolicy"`
	MinWords                                   *int                   `json:"minWords"`
	MaxWords                                   *int                   `json:"maxWords"`
	MinValue                                   *int                   `json:"minValue"`
	MaxValue                                   *int                   `json:"maxValue"`
	MinLabel                                   *string                `json:"minLabel"`
	MaxLabel                                   *string                `json:"maxLabel"`
	Options                                    []PublicQuizItemOption `json:"options"`
	TimelineItems                              []PublicTimelineItem   `json:"timelineItems"`
	TimelineItemEvents                         []PublicTimelineEvent  `json:"timelineItemEvents"`
	Title                                      *string                `json:"title"`
	Body                                       *string                `json:"body"`
	Direction                                  *string                `json:"direction"`
}

// OldQuizItemOption keeps both generations of option feedback: the per-correctness
// success/failure pair and the later single message.
type OldQuizItemOption struct {
	ID                                              string  `json:"id"`
	QuizItemID                                      *string `json:"quizItemId"`
	Order                                           int     `json:"order"`
	Correct                                         bool    `json:"correct"`
	Title                                           *string `json:"title"`
	Body                                            *string `json:"body"`
	SuccessMessage                                  *string `json:"successMessage"`
	FailureMessage                                  *string `json:"failureMessage"`
	MessageAfterSubmissionWhenSelected              *string `json:"messageAfterSubmissionWhenSelected"`
	AdditionalCorrectnessExplanationOnModelSolution *string `json:"additionalCorrectnessExplanationOnModelSolution"`
}

// OldQuizAnswer is a legacy submission. Item answers are untyped; the quiz decides.
type OldQuizAnswer struct {
	ID          *string             `json:"id"`
	QuizID      *string             `json:"quizId"`
	Status      *string             `json:"status"`
	ItemAnswers []OldQuizItemAnswer `json:"itemAnswers"`
}

type OldQuizItemAnswer struct {
	ID              *string          `json:"id"`
	QuizAnswerID    *string          `json:"quizAnswerId"`
	QuizItemID      string           `json:"quizItemId"`
	TextData        *string          `json:"textData"`
	IntData         *int             `json:"intData"`
	Correct         bool             `json:"correct"`
	Valid           bool             `json:"valid"`
	OptionAnswers   []string         `json:"optionAnswers"`
	OptionCells     [][]string       `json:"optionCells"`
	TimelineChoices []TimelineChoice `json:"timelineChoices"`
}

// Legacy item tags renamed in the current shape.
const (
	OldQuizItemTypeOpen                    = "open"
	OldQuizItemTypeClickableMultipleChoice = "clickable-multiple-choice"
)
