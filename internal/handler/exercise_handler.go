package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/model"
	"github.com/stemsi/exstem-quizzes/internal/response"
	"github.com/stemsi/exstem-quizzes/internal/service"
)

// ExerciseHandler serves the exercise-service protocol used by the course platform.
// Bodies are written unwrapped and every failure is a 500 with {error_message}.
type ExerciseHandler struct {
	gradingService *service.GradingService
	specService    *service.SpecService
	log            zerolog.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(gradingService *service.GradingService, specService *service.SpecService, log zerolog.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		gradingService: gradingService,
		specService:    specService,
		log:            log.With().Str("component", "exercise_handler").Logger(),
	}
}

// Grade godoc
// POST /api/grade
// Grades a submission against its private spec. Legacy specs and answers are migrated first.
func (h *ExerciseHandler) Grade(c *gin.Context) {
	var req model.GradingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ExerciseError(c, err)
		return
	}

	result, err := h.gradingService.Grade(c.Request.Context(), &req)
	if err != nil {
		h.log.Warn().Err(err).Msg("Grading failed")
		response.ExerciseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PublicSpec godoc
// POST /api/public-spec
// Returns the student-facing view of a private spec.
func (h *ExerciseHandler) PublicSpec(c *gin.Context) {
	h.project(c, h.specService.PublicSpec)
}

// ModelSolution godoc
// POST /api/model-solution
// Returns the model-solution view of a private spec.
func (h *ExerciseHandler) ModelSolution(c *gin.Context) {
	h.project(c, h.specService.ModelSolution)
}

type projectFunc func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error)

func (h *ExerciseHandler) project(c *gin.Context, build projectFunc) {
	var req model.SpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ExerciseError(c, err)
		return
	}

	out, err := build(c.Request.Context(), req.PrivateSpec)
	if err != nil {
		h.log.Warn().Err(err).Str("request_id", req.RequestID).Msg("Projection failed")
		response.ExerciseError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}
