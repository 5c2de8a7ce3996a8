package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/api"
	"backend/internal/apperror"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/service"
)

// fakeAccountService scripts service results so handler behavior can be
// asserted without a database.
type fakeAccountService struct {
	user *models.User
	pair *service.TokenPair

	registerErr error
	loginErr    error
	refreshErr  error

	gotRefreshToken string
	gotAvatar       bool
}

func (f *fakeAccountService) Register(_ context.Context, _, _, _ string, avatar *service.Upload) (*models.User, error) {
	f.gotAvatar = avatar != nil
	if avatar != nil {
		_, _ = io.Copy(io.Discard, avatar.Body)
	}
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.user, nil
}

func (f *fakeAccountService) Login(_ context.Context, _, _ string) (*models.User, *service.TokenPair, error) {
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	return f.user, f.pair, nil
}

func (f *fakeAccountService) Logout(context.Context, int64) error { return nil }

func (f *fakeAccountService) Refresh(_ context.Context, token string) (*service.TokenPair, error) {
	f.gotRefreshToken = token
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.pair, nil
}

func (f *fakeAccountService) UpdateAccount(context.Context, int64, string, string) (*models.User, error) {
	return f.user, nil
}

func (f *fakeAccountService) UpdateAvatar(_ context.Context, _ int64, avatar *service.Upload) (*models.User, error) {
	f.gotAvatar = avatar != nil
	return f.user, nil
}

func newAuthRouter(t *testing.T, accounts service.AccountService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewAuthHandler(accounts, zap.NewNop())
	router := gin.New()
	router.POST("/users/register", h.Register)
	router.POST("/users/login", h.Login)
	router.POST("/users/refresh-token", h.RefreshToken)
	return router
}

func testPair() *service.TokenPair {
	return &service.TokenPair{
		AccessToken:      "access-token",
		RefreshToken:     "refresh-token",
		AccessExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshExpiresAt: time.Now().Add(10 * 24 * time.Hour),
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var envelope api.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestLoginSetsCookiesAndEnvelope(t *testing.T) {
	fake := &fakeAccountService{
		user: &models.User{ID: 1, Email: "a@x.com", FullName: "A"},
		pair: testPair(),
	}
	router := newAuthRouter(t, fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/login",
		strings.NewReader(`{"email":"a@x.com","password":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	assert.Equal(t, http.StatusOK, envelope.StatusCode)

	cookies := w.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, cookie := range cookies {
		byName[cookie.Name] = cookie
	}
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		cookie, ok := byName[name]
		require.True(t, ok, "missing cookie %s", name)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
	}
	assert.Equal(t, "access-token", byName[middleware.AccessTokenCookie].Value)
	assert.Equal(t, "refresh-token", byName[middleware.RefreshTokenCookie].Value)

	body := w.Body.String()
	assert.Contains(t, body, `"accessToken":"access-token"`)
	assert.Contains(t, body, `"refreshToken":"refresh-token"`)
}

func TestLoginFailureUsesErrorEnvelope(t *testing.T) {
	fake := &fakeAccountService{loginErr: apperror.Unauthorized("invalid email or password")}
	router := newAuthRouter(t, fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/login",
		strings.NewReader(`{"email":"a@x.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	assert.Equal(t, http.StatusUnauthorized, envelope.StatusCode)
	assert.Equal(t, "invalid email or password", envelope.Message)
	assert.Empty(t, w.Result().Cookies())
}

func TestRegisterPassesMultipartAvatar(t *testing.T) {
	fake := &fakeAccountService{user: &models.User{ID: 1, Email: "a@x.com"}}
	router := newAuthRouter(t, fake)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("fullName", "A"))
	require.NoError(t, mw.WriteField("email", "a@x.com"))
	require.NoError(t, mw.WriteField("password", "p1"))
	fw, err := mw.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, fake.gotAvatar)
}

func TestRegisterWithoutAvatarStillReachesService(t *testing.T) {
	fake := &fakeAccountService{registerErr: apperror.BadRequest("avatar file is required")}
	router := newAuthRouter(t, fake)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("fullName", "A"))
	require.NoError(t, mw.WriteField("email", "a@x.com"))
	require.NoError(t, mw.WriteField("password", "p1"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, fake.gotAvatar)
}

func TestRegisterRejectsUnreadableAvatar(t *testing.T) {
	fake := &fakeAccountService{user: &models.User{ID: 1}}
	router := newAuthRouter(t, fake)

	// The avatar field is announced by the content type but the body is
	// not valid multipart, so reading the file fails outright.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/register",
		strings.NewReader("not-a-multipart-body"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Contains(t, envelope.Message, "avatar")
	assert.False(t, fake.gotAvatar)
}

func TestRefreshTokenReadsCookie(t *testing.T) {
	fake := &fakeAccountService{pair: testPair()}
	router := newAuthRouter(t, fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: "cookie-token"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cookie-token", fake.gotRefreshToken)
}

func TestRefreshTokenReadsBody(t *testing.T) {
	fake := &fakeAccountService{pair: testPair()}
	router := newAuthRouter(t, fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/refresh-token",
		strings.NewReader(`{"refreshToken":"body-token"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body-token", fake.gotRefreshToken)
}

func TestRefreshTokenMissingIsUnauthorized(t *testing.T) {
	fake := &fakeAccountService{refreshErr: apperror.Unauthorized("unauthorized request")}
	router := newAuthRouter(t, fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/refresh-token", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, fake.gotRefreshToken)
}
