package middleware

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/api"
	"backend/internal/apperror"
	"backend/internal/models"
	"backend/internal/repository"
	"backend/internal/service"
)

// AccessTokenCookie and RefreshTokenCookie name the auth cookies set on
// login and refresh.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

const userContextKey = "currentUser"

// Auth creates a gin middleware that guards protected routes. The access
// token is read from the accessToken cookie first, then from the
// Authorization header. On success the user is loaded without credential
// columns and attached to the request context; the middleware has no other
// side effects.
func Auth(tokens service.TokenService, users repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			api.Fail(c, apperror.Unauthorized("no token provided"))
			return
		}

		claims, err := tokens.ParseAccessToken(tokenString)
		if err != nil {
			api.Fail(c, apperror.Unauthorized("invalid or expired token"))
			return
		}

		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			api.Fail(c, apperror.Unauthorized("invalid token"))
			return
		}

		user, err := users.GetPublicByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				logger.Error("Failed to load user for token", zap.Int64("user_id", userID), zap.Error(err))
			}
			api.Fail(c, apperror.Unauthorized("invalid token"))
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentUser returns the user attached by Auth; it panics if called from a
// route that is not behind the middleware.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}
