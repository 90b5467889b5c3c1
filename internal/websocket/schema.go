package websocket

import "github.com/stemsi/exstem-quizzes/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSubscribe Action = "subscribe"
	ActionPing      Action = "ping"
)

// RequestPayload is every message a dashboard may send.
type RequestPayload struct {
	Action Action `json:"action"`
	// QuizID narrows the stream to one quiz. Empty means every quiz.
	QuizID string `json:"quiz_id,omitempty"`
	// PendingOnly narrows the stream to gradings waiting for manual review.
	PendingOnly bool `json:"pending_only,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventSubscribed Event = "subscribed"
	EventGrading    Event = "grading"
	EventPong       Event = "pong"
)

type SubscribedResponse struct {
	Event       Event  `json:"event"`
	QuizID      string `json:"quiz_id,omitempty"`
	PendingOnly bool   `json:"pending_only"`
}

type GradingResponse struct {
	Event   Event               `json:"event"`
	Grading *model.GradingEvent `json:"grading"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// Filter selects which grading events a connection receives.
type Filter struct {
	QuizID      string
	PendingOnly bool
}

// Match reports whether e passes the filter.
func (f Filter) Match(e *model.GradingEvent) bool {
	if f.QuizID != "" && (e.QuizID == nil || *e.QuizID != f.QuizID) {
		return false
	}
	if f.PendingOnly && e.GradingProgress != model.GradingProgressPendingManual {
		return false
	}
	return true
}
