package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/middleware"
	"github.com/stemsi/exstem-quizzes/internal/model"
	"github.com/stemsi/exstem-quizzes/internal/service"
	ws "github.com/stemsi/exstem-quizzes/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams grading events to reviewer dashboards.
type WSHandler struct {
	subscriber service.Subscriber
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(subscriber service.Subscriber, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		subscriber: subscriber,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// GradingStream godoc
// WS /ws/v1/gradings?token=...
// Pushes every grading event to the dashboard. A subscribe action narrows the stream.
func (h *WSHandler) GradingStream(c *gin.Context) {
	subject := ""
	if claims := middleware.GetClaims(c); claims != nil {
		subject = claims.Subject
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("subject", subject).Logger()
	wsLog.Info().Msg("Dashboard connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, closeSub := h.subscriber.Subscribe(ctx, config.CacheKey.GradingChannel())
	defer closeSub()

	// The reader hands requests to the writer loop so only one goroutine writes.
	requests := make(chan ws.RequestPayload)
	go func() {
		defer cancel()
		for {
			var msg ws.RequestPayload
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if ws.IsExpectedClose(err) {
					wsLog.Debug().Msg("Connection closed")
				} else {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case requests <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	var filter ws.Filter
	for {
		select {
		case <-ctx.Done():
			wsLog.Info().Msg("Dashboard disconnected")
			return

		case msg := <-requests:
			switch msg.Action {
			case ws.ActionPing:
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionSubscribe:
				filter = ws.Filter{QuizID: msg.QuizID, PendingOnly: msg.PendingOnly}
				ws.WriteTyped(conn, ws.SubscribedResponse{
					Event:       ws.EventSubscribed,
					QuizID:      filter.QuizID,
					PendingOnly: filter.PendingOnly,
				})
			default:
				wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
				ws.WriteError(conn, "unknown action: "+string(msg.Action))
			}

		case payload, ok := <-events:
			if !ok {
				ws.WriteError(conn, "grading stream closed")
				return
			}
			var event model.GradingEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed grading event")
				continue
			}
			if !filter.Match(&event) {
				continue
			}
			if err := ws.WriteTyped(conn, ws.GradingResponse{Event: ws.EventGrading, Grading: &event}); err != nil {
				wsLog.Warn().Err(err).Msg("Write failed")
				return
			}
		}
	}
}
