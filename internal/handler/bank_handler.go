package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/model"
	"github.com/schoolsuite/cbt-backend/internal/repository"
	"github.com/schoolsuite/cbt-backend/internal/response"
	"github.com/schoolsuite/cbt-backend/internal/validator"
)

// BankHandler manages the question bank. All routes are operator-only,
// gated by the admin key middleware.
type BankHandler struct {
	bankRepo *repository.BankRepository
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bankRepo *repository.BankRepository) *BankHandler {
	return &BankHandler{bankRepo: bankRepo}
}

// AddQuestion godoc
// POST /api/v1/admin/bank/questions
// Adds a question to the bank.
func (h *BankHandler) AddQuestion(c *gin.Context) {
	var req model.AddBankQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// Validate options through the same coercion the exam core uses at
	// serving time, so stored rows are always servable.
	var rawOptions []json.RawMessage
	if err := json.Unmarshal(req.Options, &rawOptions); err != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, map[string]string{
			"options": "must be a JSON array",
		})
		return
	}
	if len(rawOptions) < 2 || req.CorrectOption >= len(rawOptions) {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, map[string]string{
			"correct_option": "must index one of at least two options",
		})
		return
	}
	for i, raw := range rawOptions {
		if exam.CoerceOption(raw) == "" {
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, map[string]string{
				"options": "option " + strconv.Itoa(i) + " has no text",
			})
			return
		}
	}

	row := &model.BankQuestion{
		Subject:       req.Subject,
		Difficulty:    req.Difficulty,
		Text:          req.Text,
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
		Explanation:   req.Explanation,
	}
	if err := h.bankRepo.Create(c.Request.Context(), row); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": row})
}

// ListQuestions godoc
// GET /api/v1/admin/bank/questions?subject=&page=&per_page=
// Lists bank questions, optionally filtered by subject.
func (h *BankHandler) ListQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	questions, total, err := h.bankRepo.List(c.Request.Context(), c.Query("subject"), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []model.BankQuestion{}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/bank/questions/:id
// Removes a question from the bank.
func (h *BankHandler) DeleteQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.bankRepo.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListSubjects godoc
// GET /api/v1/admin/bank/subjects
// Reports available subjects with per-difficulty question counts, so
// operators can see which setups the bank can serve.
func (h *BankHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.bankRepo.Subjects(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}
