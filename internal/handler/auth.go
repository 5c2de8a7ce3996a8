package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/api"
	"backend/internal/apperror"
	"backend/internal/middleware"
	"backend/internal/service"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	RefreshToken(c *gin.Context)
	CurrentUser(c *gin.Context)
	UpdateAccount(c *gin.Context)
	UpdateAvatar(c *gin.Context)
}

type authHandler struct {
	accounts service.AccountService
	logger   *zap.Logger
}

func NewAuthHandler(accounts service.AccountService, logger *zap.Logger) AuthHandler {
	return &authHandler{accounts: accounts, logger: logger}
}

// Register handles POST /api/v1/users/register (multipart, field "avatar").
func (h *authHandler) Register(c *gin.Context) {
	fullName := c.PostForm("fullName")
	email := c.PostForm("email")
	password := c.PostForm("password")

	avatar, closeAvatar, err := formFileUpload(c, "avatar")
	if err == nil {
		defer closeAvatar()
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.logger.Debug("Failed to read avatar upload", zap.Error(err))
		api.Fail(c, apperror.BadRequest("could not read avatar file"))
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), fullName, email, password, avatar)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusCreated, user, "user registered successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/users/login. Tokens are delivered both as
// httpOnly cookies and in the JSON body, so cookie-based and header-based
// clients work alike.
func (h *authHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind JSON for login", zap.Error(err))
	}

	user, pair, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.Fail(c, err)
		return
	}

	setAuthCookies(c, pair)
	api.Success(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "user logged in successfully")
}

// Logout handles POST /api/v1/users/logout (secured).
func (h *authHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.accounts.Logout(c.Request.Context(), user.ID); err != nil {
		api.Fail(c, err)
		return
	}

	clearAuthCookies(c)
	api.Success(c, http.StatusOK, nil, "user logged out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles POST /api/v1/users/refresh-token. The incoming token
// is read from the refreshToken cookie or the JSON body.
func (h *authHandler) RefreshToken(c *gin.Context) {
	token, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil || token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.accounts.Refresh(c.Request.Context(), token)
	if err != nil {
		api.Fail(c, err)
		return
	}

	setAuthCookies(c, pair)
	api.Success(c, http.StatusOK, pair, "access token refreshed")
}

// CurrentUser handles GET /api/v1/users/current-user (secured). The user
// comes straight from the request context; no database round trip.
func (h *authHandler) CurrentUser(c *gin.Context) {
	api.Success(c, http.StatusOK, middleware.CurrentUser(c), "user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateAccount handles PATCH /api/v1/users/update-account (secured).
func (h *authHandler) UpdateAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind JSON for account update", zap.Error(err))
	}

	updated, err := h.accounts.UpdateAccount(c.Request.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, updated, "account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar (secured, multipart).
func (h *authHandler) UpdateAvatar(c *gin.Context) {
	user := middleware.CurrentUser(c)

	avatar, closeAvatar, err := formFileUpload(c, "avatar")
	if err == nil {
		defer closeAvatar()
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.logger.Debug("Failed to read avatar upload", zap.Error(err))
		api.Fail(c, apperror.BadRequest("could not read avatar file"))
		return
	}

	updated, err := h.accounts.UpdateAvatar(c.Request.Context(), user.ID, avatar)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.Success(c, http.StatusOK, updated, "avatar updated successfully")
}

// formFileUpload opens the named multipart file; a nil Upload is returned
// when the field is absent so the service can reject it with its own message.
func formFileUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{
		Filename:    fileHeader.Filename,
		ContentType: contentType(fileHeader),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func setAuthCookies(c *gin.Context, pair *service.TokenPair) {
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken,
		int(time.Until(pair.AccessExpiresAt).Seconds()), "/", "", true, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken,
		int(time.Until(pair.RefreshExpiresAt).Seconds()), "/", "", true, true)
}

func clearAuthCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", true, true)
}
