package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// ZerologAdapter routes watermill's internal logs through zerolog.
type ZerologAdapter struct {
	log zerolog.Logger
}

// NewZerologAdapter wraps log as a watermill.LoggerAdapter.
func NewZerologAdapter(log zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{log: log}
}

func (a *ZerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

func (a *ZerologAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (a *ZerologAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (a *ZerologAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (a *ZerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &ZerologAdapter{log: a.log.With().Fields(map[string]interface{}(fields)).Logger()}
}
