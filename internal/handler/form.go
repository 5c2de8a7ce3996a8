package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/api"
	"backend/internal/apperror"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/repository"
)

type FormHandler interface {
	Create(c *gin.Context)
	GetByID(c *gin.Context)
	ListAll(c *gin.Context)
	ListMine(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type formHandler struct {
	forms  repository.FormRepository
	logger *zap.Logger
}

func NewFormHandler(forms repository.FormRepository, logger *zap.Logger) FormHandler {
	return &formHandler{forms: forms, logger: logger}
}

type createFormRequest struct {
	Title       string  `json:"title"`
	HeaderImage *string `json:"headerImage"`
}

// Create handles POST /api/v1/forms (secured).
func (h *formHandler) Create(c *gin.Context) {
	var req createFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperror.BadRequest(err.Error()))
		return
	}
	if req.Title == "" {
		api.Fail(c, apperror.BadRequest("form title is required"))
		return
	}

	form := &models.Form{
		Title:       req.Title,
		HeaderImage: req.HeaderImage,
		CreatedBy:   middleware.CurrentUser(c).ID,
	}
	if err := h.forms.Create(c.Request.Context(), form); err != nil {
		h.logger.Error("Failed to create form", zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusCreated, form, "form created successfully")
}

// GetByID handles GET /api/v1/forms/:id (secured); questions and creator
// details are loaded alongside.
func (h *formHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	form, err := h.forms.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("form not found"))
			return
		}
		h.logger.Error("Failed to get form", zap.Int64("form_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, form, "form fetched successfully")
}

// ListAll handles GET /api/v1/forms.
func (h *formHandler) ListAll(c *gin.Context) {
	forms, err := h.forms.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list forms", zap.Error(err))
		api.Fail(c, err)
		return
	}
	api.Success(c, http.StatusOK, forms, "all forms fetched")
}

// ListMine handles GET /api/v1/forms/my-forms (secured).
func (h *formHandler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)

	forms, err := h.forms.ListByCreator(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to list user forms", zap.Int64("user_id", user.ID), zap.Error(err))
		api.Fail(c, err)
		return
	}
	api.Success(c, http.StatusOK, forms, "forms fetched successfully")
}

type updateFormRequest struct {
	Title       *string `json:"title"`
	HeaderImage *string `json:"headerImage"`
}

// Update handles PATCH /api/v1/forms/:id (secured).
func (h *formHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	var req updateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperror.BadRequest(err.Error()))
		return
	}

	form, err := h.forms.Update(c.Request.Context(), id, req.Title, req.HeaderImage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("form not found"))
			return
		}
		h.logger.Error("Failed to update form", zap.Int64("form_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, form, "form updated successfully")
}

// Delete handles DELETE /api/v1/forms/:id (secured).
func (h *formHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}

	if err := h.forms.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.Fail(c, apperror.NotFound("form not found"))
			return
		}
		h.logger.Error("Failed to delete form", zap.Int64("form_id", id), zap.Error(err))
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, nil, "form deleted successfully")
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperror.BadRequest("invalid " + name)
	}
	return id, nil
}
