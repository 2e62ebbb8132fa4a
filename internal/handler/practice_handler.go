package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/middleware"
	"github.com/schoolsuite/cbt-backend/internal/model"
	"github.com/schoolsuite/cbt-backend/internal/questionsource"
	"github.com/schoolsuite/cbt-backend/internal/response"
	"github.com/schoolsuite/cbt-backend/internal/service"
	"github.com/schoolsuite/cbt-backend/internal/validator"
)

// PracticeHandler exposes the practice session lifecycle over HTTP.
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

// StartSession godoc
// POST /api/v1/practice/session
// Builds a paper from the question source and starts the countdown.
func (h *PracticeHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SetupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	active, err := h.practiceService.StartSession(c.Request.Context(), claims.StudentID, claims.StudentName, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
		case errors.Is(err, questionsource.ErrInsufficientQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNotEnoughItems)
		case errors.Is(err, exam.ErrInvalidConfiguration):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrSetupFailed)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrSetupFailed)
		}
		return
	}

	state, err := h.practiceService.State(claims.StudentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"session_id": active.ID,
		"subjects":   active.Subjects,
		"difficulty": active.Difficulty,
		"state":      state,
	})
}

// GetState godoc
// GET /api/v1/practice/session
// Returns the full recoverable state of the active session.
func (h *PracticeHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	state, err := h.practiceService.State(claims.StudentID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// SelectAnswer godoc
// PUT /api/v1/practice/session/answer
// Selects an option for a question; a null option_index clears it.
func (h *PracticeHandler) SelectAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.practiceService.SelectAnswer(c.Request.Context(), claims.StudentID, req.QuestionIndex, req.OptionIndex)
	if err != nil {
		failMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_index": req.QuestionIndex})
}

// ToggleFlag godoc
// PUT /api/v1/practice/session/flag
// Toggles the review flag on a question.
func (h *PracticeHandler) ToggleFlag(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.FlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.practiceService.ToggleFlag(claims.StudentID, req.QuestionIndex); err != nil {
		failMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_index": req.QuestionIndex})
}

// Navigate godoc
// PUT /api/v1/practice/session/navigate
// Moves the session cursor to a question.
func (h *PracticeHandler) Navigate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.practiceService.Navigate(claims.StudentID, req.QuestionIndex); err != nil {
		failMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_index": req.QuestionIndex})
}

// Submit godoc
// POST /api/v1/practice/session/submit
// Ends the session and returns the scored result with the review.
func (h *PracticeHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	view, err := h.practiceService.Submit(c.Request.Context(), claims.StudentID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// GetResult godoc
// GET /api/v1/practice/session/result
// Returns the result of a submitted session.
func (h *PracticeHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	view, err := h.practiceService.Result(claims.StudentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveSession):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		case errors.Is(err, exam.ErrInvalidState):
			response.Fail(c, http.StatusConflict, response.ErrNotSubmitted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// Abandon godoc
// DELETE /api/v1/practice/session
// Discards the active session without recording an attempt.
func (h *PracticeHandler) Abandon(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.practiceService.Abandon(c.Request.Context(), claims.StudentID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListAttempts godoc
// GET /api/v1/practice/attempts
// Lists the student's persisted attempts, newest first.
func (h *PracticeHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	attempts, total, err := h.practiceService.History(c.Request.Context(), claims.StudentID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// failMutation maps session mutation errors onto the response envelope.
func failMutation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	case errors.Is(err, exam.ErrIndexOutOfRange):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrIndexOutOfRange)
	case errors.Is(err, exam.ErrInvalidState):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
