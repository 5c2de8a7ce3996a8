package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/api"
	"backend/internal/apperror"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/repository"
)

type ResponseHandler interface {
	Create(c *gin.Context)
	GetByID(c *gin.Context)
	ListByForm(c *gin.Context)
	ListByUser(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type responseHandler struct {
	responses repository.ResponseRepository
	questions repository.QuestionRepository
	forms     repository.FormRepository
	logger    *zap.Logger
}

func NewResponseHandler(responses repository.ResponseRepository, questions repository.QuestionRepository, forms repository.FormRepository, logger *zap.Logger) ResponseHandler {
	return &responseHandler{responses: responses, questions: questions, forms: forms, logger: logger}
}

type createResponseRequest struct {
	FormID  int64                  `json:"form"`
	Answers models.ResponseAnswers `json:"responses"`
}

// Create handles POST /api/v1/responses (secured). Every referenced question
// must belong to the submitted form, and each answer must match its
// question's type.
func (h *responseHandler) Create(c *gin.Context) {
	var req createResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperror.BadRequest(err.Error()))
		return
	}
	if req.FormID == 0 || len(req.Answers) == 0 {
		api.Fail(c, apperror.BadRequest("form ID and responses are required"))
		return
	}

	if err := h.validateAnswers(c.Request.Context(), req.FormID, req.Answers); err != nil {
		api.Fail(c, err)
		return
	}

	userID := middleware.CurrentUser(c).ID
	response := &models.FormResponse{
		FormID:      req.FormID,
		Answers:     req.Answers,
		SubmittedBy: &userID,
	}
	if err := h.responses.Create(c.Request.Context(), response); err != nil {
		h.logger.Error("Failed to create response", zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusCreated, response, "response created successfully")
}

// GetByID handles GET /api/v1/responses/:id (secured); form and question
// details are attached.
func (h *responseHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	response, err := h.responses.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("response not found"))
			return
		}
		h.logger.Error("Failed to get response", zap.Int64("response_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	details, err := h.withFormDetails(c.Request.Context(), response)
	if err != nil {
		h.logger.Error("Failed to load response details", zap.Int64("response_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, details, "response fetched successfully")
}

// ListByForm handles GET /api/v1/responses/form/:formId (secured).
func (h *responseHandler) ListByForm(c *gin.Context) {
	formID, err := pathID(c, "formId")
	if err != nil {
		api.Fail(c, err)
		return
	}

	responses, err := h.responses.ListByForm(c.Request.Context(), formID)
	if err != nil {
		h.logger.Error("Failed to list responses", zap.Int64("form_id", formID), zap.Error(err))
		api.Fail(c, err)
		return
	}

	details := make([]*models.FormResponseDetails, 0, len(responses))
	for _, response := range responses {
		d, err := h.withFormDetails(c.Request.Context(), response)
		if err != nil {
			h.logger.Error("Failed to load response details", zap.Int64("response_id", response.ID), zap.Error(err))
			api.Fail(c, err)
			return
		}
		details = append(details, d)
	}

	api.Success(c, http.StatusOK, details, "responses fetched successfully")
}

// ListByUser handles GET /api/v1/responses/user/:userId (secured).
func (h *responseHandler) ListByUser(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		api.Fail(c, err)
		return
	}

	responses, err := h.responses.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list user responses", zap.Int64("user_id", userID), zap.Error(err))
		api.Fail(c, err)
		return
	}

	details := make([]*models.FormResponseDetails, 0, len(responses))
	for _, response := range responses {
		d, err := h.withFormDetails(c.Request.Context(), response)
		if err != nil {
			h.logger.Error("Failed to load response details", zap.Int64("response_id", response.ID), zap.Error(err))
			api.Fail(c, err)
			return
		}
		details = append(details, d)
	}

	api.Success(c, http.StatusOK, details, "responses fetched successfully")
}

type updateResponseRequest struct {
	Answers models.ResponseAnswers `json:"responses"`
}

// Update handles PATCH /api/v1/responses/:id (secured). Replacement answers
// are validated against the response's original form.
func (h *responseHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req updateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperror.BadRequest(err.Error()))
		return
	}
	if len(req.Answers) == 0 {
		api.Fail(c, apperror.BadRequest("responses are required to update"))
		return
	}

	existing, err := h.responses.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("response not found"))
			return
		}
		h.logger.Error("Failed to get response for update", zap.Int64("response_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	if err := h.validateAnswers(c.Request.Context(), existing.FormID, req.Answers); err != nil {
		api.Fail(c, err)
		return
	}

	updated, err := h.responses.UpdateAnswers(c.Request.Context(), id, req.Answers)
	if err != nil {
		h.logger.Error("Failed to update response", zap.Int64("response_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, updated, "response updated successfully")
}

// Delete handles DELETE /api/v1/responses/:id (secured).
func (h *responseHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	if err := h.responses.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("response not found"))
			return
		}
		h.logger.Error("Failed to delete response", zap.Int64("response_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, nil, "response deleted successfully")
}

// validateAnswers checks that every answered question belongs to the form
// and that set answers match their question's type.
func (h *responseHandler) validateAnswers(ctx context.Context, formID int64, answers models.ResponseAnswers) error {
	questions, err := h.questions.ListByForm(ctx, formID)
	if err != nil {
		h.logger.Error("Failed to load form questions", zap.Int64("form_id", formID), zap.Error(err))
		return err
	}

	byID := make(map[int64]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			return apperror.BadRequest("one or more questions do not belong to the specified form")
		}
		if answer.Answer.IsSet() {
			if err := answer.Answer.Validate(question); err != nil {
				return apperror.BadRequest(err.Error())
			}
		}
	}
	return nil
}

func (h *responseHandler) withFormDetails(ctx context.Context, response *models.FormResponse) (*models.FormResponseDetails, error) {
	form, err := h.forms.GetByID(ctx, response.FormID)
	if err != nil {
		return nil, err
	}
	return &models.FormResponseDetails{
		FormResponse:    *response,
		FormTitle:       form.Title,
		FormHeaderImage: form.HeaderImage,
		Questions:       form.Questions,
	}, nil
}
