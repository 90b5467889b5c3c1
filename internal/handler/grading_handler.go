package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/grading"
	"github.com/stemsi/exstem-quizzes/internal/model"
	"github.com/stemsi/exstem-quizzes/internal/response"
	"github.com/stemsi/exstem-quizzes/internal/service"
	"github.com/stemsi/exstem-quizzes/internal/validator"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// GradingHandler serves the manual review API.
type GradingHandler struct {
	reviewService *service.ReviewService
	log           zerolog.Logger
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(reviewService *service.ReviewService, log zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		reviewService: reviewService,
		log:           log.With().Str("component", "grading_handler").Logger(),
	}
}

// ListGradings godoc
// GET /api/v1/gradings?quiz_id=&progress=&page=&per_page=
// Lists stored gradings, newest first.
func (h *GradingHandler) ListGradings(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	filter.Page, filter.PerPage = page, perPage

	gradings, total, err := h.reviewService.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("List gradings failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if gradings == nil {
		gradings = []model.GradingRecordSummary{}
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"gradings": gradings}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// GetGrading godoc
// GET /api/v1/gradings/:grading_id
// Returns one grading with its stored spec, submission and result.
func (h *GradingHandler) GetGrading(c *gin.Context) {
	id, err := uuid.Parse(c.Param("grading_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rec, err := h.reviewService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGradingNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrGradingNotFound)
			return
		}
		h.log.Error().Err(err).Str("grading_id", id.String()).Msg("Get grading failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grading": rec})
}

// ReviewGrading godoc
// POST /api/v1/gradings/:grading_id/review
// Scores the essays of a PendingManual grading and finalizes it.
func (h *GradingHandler) ReviewGrading(c *gin.Context) {
	id, err := uuid.Parse(c.Param("grading_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.reviewService.Review(c.Request.Context(), id, req.ItemScores)
	if err != nil {
		var ve *grading.ValidationError
		switch {
		case errors.Is(err, service.ErrGradingNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrGradingNotFound)
		case errors.Is(err, service.ErrGradingNotPending):
			response.Fail(c, http.StatusConflict, response.ErrGradingNotPending)
		case errors.Is(err, grading.ErrMissingManualScore) && errors.As(err, &ve):
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrMissingItemScore,
				map[string]string{ve.ItemID: ve.Err.Error()})
		case errors.Is(err, grading.ErrUnexpectedScore) && errors.As(err, &ve):
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrUnexpectedItemScore,
				map[string]string{ve.ItemID: ve.Err.Error()})
		case errors.Is(err, grading.ErrInvalidManualScore):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidItemScore)
		default:
			h.log.Error().Err(err).Str("grading_id", id.String()).Msg("Review failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ExportGradings godoc
// GET /api/v1/gradings/export?quiz_id=&progress=
// Downloads the matching gradings as an XLSX workbook.
func (h *GradingHandler) ExportGradings(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	buf, err := h.reviewService.Export(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Export gradings failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := fmt.Sprintf("gradings-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// parseFilter reads quiz_id and progress. It writes the error response itself.
func parseFilter(c *gin.Context) (model.GradingRecordFilter, bool) {
	var filter model.GradingRecordFilter
	if quizID := c.Query("quiz_id"); quizID != "" {
		filter.QuizID = &quizID
	}
	if raw := c.Query("progress"); raw != "" {
		progress := model.GradingProgress(raw)
		if progress != model.GradingProgressFullyGraded && progress != model.GradingProgressPendingManual {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"progress": "progress must be FullyGraded or PendingManual"})
			return filter, false
		}
		filter.Progress = &progress
	}
	return filter, true
}
