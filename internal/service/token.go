package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"backend/internal/config"
	"backend/internal/models"
)

// ErrInvalidToken covers bad signatures, expiry, and malformed tokens alike;
// callers must not distinguish between them in responses.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService signs and verifies the two token kinds. Access and refresh
// tokens use independent secrets and lifetimes, so an access-token compromise
// has a short blast radius while refresh tokens back long-lived sessions.
type TokenService interface {
	IssueAccessToken(user *models.User) (token string, expiresAt time.Time, err error)
	IssueRefreshToken(userID int64) (token string, expiresAt time.Time, err error)
	ParseAccessToken(token string) (*models.AccessClaims, error)
	ParseRefreshToken(token string) (userID int64, err error)
}

type tokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{
		accessSecret:  []byte(cfg.Auth.AccessTokenSecret),
		refreshSecret: []byte(cfg.Auth.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL(),
		refreshTTL:    cfg.RefreshTokenTTL(),
	}
}

func (s *tokenService) IssueAccessToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.accessTTL)
	claims := &models.AccessClaims{
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *tokenService) IssueRefreshToken(userID int64) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.refreshTTL)
	// The jti makes every refresh token unique even within the same second,
	// so rotation always stores a value distinct from the previous one.
	claims := &models.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *tokenService) ParseAccessToken(tokenString string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	if err := s.parse(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *tokenService) ParseRefreshToken(tokenString string) (int64, error) {
	claims := &models.RefreshClaims{}
	if err := s.parse(tokenString, claims, s.refreshSecret); err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (s *tokenService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
