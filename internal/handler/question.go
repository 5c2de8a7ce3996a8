package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"backend/internal/api"
	"backend/internal/apperror"
	"backend/internal/models"
	"backend/internal/repository"
)

const foreignKeyViolation = "23503"

type QuestionHandler interface {
	Create(c *gin.Context)
	GetByID(c *gin.Context)
	ListByForm(c *gin.Context)
	ListAll(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type questionHandler struct {
	questions repository.QuestionRepository
	logger    *zap.Logger
}

func NewQuestionHandler(questions repository.QuestionRepository, logger *zap.Logger) QuestionHandler {
	return &questionHandler{questions: questions, logger: logger}
}

type createQuestionRequest struct {
	FormID        int64               `json:"form"`
	Type          models.QuestionType `json:"type"`
	QuestionText  string              `json:"questionText"`
	Image         *string             `json:"image"`
	Options       []string            `json:"options"`
	Categories    []string            `json:"categories"`
	CorrectAnswer models.Answer       `json:"correctAnswer"`
}

// Create handles POST /api/v1/questions (secured). The correct answer, if
// provided, is validated against the question type.
func (h *questionHandler) Create(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperror.BadRequest(err.Error()))
		return
	}
	if req.FormID == 0 || req.Type == "" || req.QuestionText == "" {
		api.Fail(c, apperror.BadRequest("form ID, question type, and question text are required"))
		return
	}

	question := &models.Question{
		FormID:        req.FormID,
		Type:          req.Type,
		Text:          req.QuestionText,
		Image:         req.Image,
		Options:       req.Options,
		Categories:    req.Categories,
		CorrectAnswer: req.CorrectAnswer,
	}
	if err := question.Validate(); err != nil {
		api.Fail(c, apperror.BadRequest(err.Error()))
		return
	}

	if err := h.questions.Create(c.Request.Context(), question); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			api.Fail(c, apperror.BadRequest("form does not exist"))
			return
		}
		h.logger.Error("Failed to create question", zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusCreated, question, "question created successfully")
}

// GetByID handles GET /api/v1/questions/:id (secured).
func (h *questionHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	question, err := h.questions.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("question not found"))
			return
		}
		h.logger.Error("Failed to get question", zap.Int64("question_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, question, "question fetched successfully")
}

// ListByForm handles GET /api/v1/questions/form/:formId (secured).
func (h *questionHandler) ListByForm(c *gin.Context) {
	formID, err := pathID(c, "formId")
	if err != nil {
		api.Fail(c, err)
		return
	}

	questions, err := h.questions.ListByForm(c.Request.Context(), formID)
	if err != nil {
		h.logger.Error("Failed to list questions", zap.Int64("form_id", formID), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, questions, "questions fetched successfully")
}

// ListAll handles GET /api/v1/questions (secured).
func (h *questionHandler) ListAll(c *gin.Context) {
	questions, err := h.questions.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list questions", zap.Error(err))
		api.Fail(c, err)
		return
	}
	api.Success(c, http.StatusOK, questions, "all questions fetched successfully")
}

type updateQuestionRequest struct {
	Type          *models.QuestionType `json:"type"`
	QuestionText  *string              `json:"questionText"`
	Image         *string              `json:"image"`
	Options       []string             `json:"options"`
	Categories    []string             `json:"categories"`
	CorrectAnswer *models.Answer       `json:"correctAnswer"`
}

// Update handles PATCH /api/v1/questions/:id (secured). The merged question
// is re-validated so the correct answer always matches the (possibly new)
// type.
func (h *questionHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperror.BadRequest(err.Error()))
		return
	}

	existing, err := h.questions.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("question not found"))
			return
		}
		h.logger.Error("Failed to get question for update", zap.Int64("question_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	question := existing.Question
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.QuestionText != nil {
		question.Text = *req.QuestionText
	}
	if req.Image != nil {
		question.Image = req.Image
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.Categories != nil {
		question.Categories = req.Categories
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if err := question.Validate(); err != nil {
		api.Fail(c, apperror.BadRequest(err.Error()))
		return
	}

	if err := h.questions.Update(c.Request.Context(), &question); err != nil {
		h.logger.Error("Failed to update question", zap.Int64("question_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, question, "question updated successfully")
}

// Delete handles DELETE /api/v1/questions/:id (secured).
func (h *questionHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	if err := h.questions.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("question not found"))
			return
		}
		h.logger.Error("Failed to delete question", zap.Int64("question_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, nil, "question deleted successfully")
}
