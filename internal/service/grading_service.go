package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/events"
	"github.com/stemsi/exstem-quizzes/internal/grading"
	"github.com/stemsi/exstem-quizzes/internal/migration"
	"github.com/stemsi/exstem-quizzes/internal/model"
)

// GradingService grades submissions and records every grading for review and export.
type GradingService struct {
	queue       Queue
	broadcaster Broadcaster
	publisher   events.Publisher
	log         zerolog.Logger
	now         func() time.Time
}

// NewGradingService creates a new GradingService.
func NewGradingService(queue Queue, broadcaster Broadcaster, publisher events.Publisher, log zerolog.Logger) *GradingService {
	return &GradingService{
		queue:       queue,
		broadcaster: broadcaster,
		publisher:   publisher,
		log:         log.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// Grade migrates the spec and submission when they are in the legacy shape, then grades.
// Recording the result is best effort and never fails the request.
func (s *GradingService) Grade(ctx context.Context, req *model.GradingRequest) (*model.GradingResult, error) {
	quiz, err := migration.MigratePrivateSpec(req.ExerciseSpec)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, grading.ErrNilSpec
	}

	answer, err := migration.MigrateUserAnswer(req.SubmissionData, quiz)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, grading.ErrNilAnswer
	}

	result, err := grading.Grade(quiz, answer)
	if err != nil {
		return nil, err
	}

	s.record(ctx, req, quiz, answer, result)
	return result, nil
}

func (s *GradingService) record(ctx context.Context, req *model.GradingRequest, quiz *model.PrivateSpecQuiz,
	answer *model.UserAnswer, result *model.GradingResult) {
	rec, err := newGradingRecord(quiz, answer, result, req.GradingUpdateURL, s.now())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode grading record")
		return
	}

	if s.queue != nil {
		if err := PushJSON(ctx, s.queue, config.WorkerKey.PersistGradingsQueue, rec); err != nil {
			s.log.Error().Err(err).Str("grading_id", rec.ID.String()).Msg("Failed to enqueue grading record")
		}
	}

	eventType := model.GradingEventCompleted
	if result.GradingProgress == model.GradingProgressPendingManual {
		eventType = model.GradingEventManualRequired
	}
	notify(ctx, s.publisher, s.broadcaster, s.log, gradingEvent(eventType, rec.ID, quiz.ID, result, s.now()))
}

func newGradingRecord(quiz *model.PrivateSpecQuiz, answer *model.UserAnswer, result *model.GradingResult,
	updateURL *string, now time.Time) (*model.GradingRecord, error) {
	spec, err := json.Marshal(quiz)
	if err != nil {
		return nil, err
	}
	submission, err := json.Marshal(answer)
	if err != nil {
		return nil, err
	}
	res, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &model.GradingRecord{
		ID:               uuid.New(),
		QuizID:           model.CloneString(quiz.ID),
		GradingUpdateURL: model.CloneString(updateURL),
		Progress:         result.GradingProgress,
		ScoreGiven:       result.ScoreGiven,
		ScoreMaximum:     result.ScoreMaximum,
		ExerciseSpec:     spec,
		Submission:       submission,
		Result:           res,
		CreatedAt:        now.UTC(),
	}, nil
}

func gradingEvent(eventType string, id uuid.UUID, quizID *string, result *model.GradingResult, now time.Time) *model.GradingEvent {
	return &model.GradingEvent{
		Type:            eventType,
		GradingID:       id,
		QuizID:          model.CloneString(quizID),
		GradingProgress: result.GradingProgress,
		ScoreGiven:      result.ScoreGiven,
		ScoreMaximum:    result.ScoreMaximum,
		OccurredAt:      now.UTC(),
	}
}

// notify publishes event to the event stream and to live reviewer dashboards.
func notify(ctx context.Context, publisher events.Publisher, broadcaster Broadcaster, log zerolog.Logger, event *model.GradingEvent) {
	if publisher != nil {
		if err := publisher.PublishGradingEvent(ctx, event); err != nil {
			log.Warn().Err(err).Str("grading_id", event.GradingID.String()).Msg("Failed to publish grading event")
		}
	}
	if broadcaster == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("grading_id", event.GradingID.String()).Msg("Failed to encode grading event")
		return
	}
	if err := broadcaster.Broadcast(ctx, config.CacheKey.GradingChannel(), payload); err != nil {
		log.Warn().Err(err).Str("grading_id", event.GradingID.String()).Msg("Failed to broadcast grading event")
	}
}
