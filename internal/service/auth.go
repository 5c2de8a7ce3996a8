package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/apperror"
	"backend/internal/models"
	"backend/internal/repository"
)

const bcryptCost = 10

const uniqueViolation = "23505"

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Upload carries a file received from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

type AccountService interface {
	Register(ctx context.Context, fullName, email, password string, avatar *Upload) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	Logout(ctx context.Context, userID int64) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	UpdateAccount(ctx context.Context, userID int64, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID int64, avatar *Upload) (*models.User, error)
}

type accountService struct {
	users    repository.UserRepository
	tokens   TokenService
	uploader Uploader
	logger   *zap.Logger
}

func NewAccountService(users repository.UserRepository, tokens TokenService, uploader Uploader, logger *zap.Logger) AccountService {
	return &accountService{
		users:    users,
		tokens:   tokens,
		uploader: uploader,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) Register(ctx context.Context, fullName, email, password string, avatar *Upload) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	if fullName == "" || email == "" || password == "" {
		return nil, apperror.BadRequest("all fields are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("Failed to check existing user", zap.Error(err))
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if avatar == nil {
		return nil, apperror.BadRequest("avatar file is required")
	}
	avatarURL, err := s.uploader.Upload(ctx, avatarKey(avatar.Filename), avatar.ContentType, avatar.Body)
	if err != nil {
		s.logger.Error("Failed to upload avatar", zap.Error(err))
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	if avatarURL == "" {
		return nil, apperror.BadRequest("avatar file is required")
	}

	// Hashing happens here, in the registration path itself; there is no
	// pre-persist hook that could silently write to the wrong field.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		AvatarURL:    avatarURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperror.Conflict("user with this email already exists")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return sanitize(user), nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil, apperror.BadRequest("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperror.Unauthorized("invalid email or password")
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil, apperror.Unauthorized("invalid email or password")
		}
		// Hash comparison failed for a reason other than a mismatch; never
		// report that as bad credentials.
		s.logger.Error("Failed to verify password", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to verify password: %w", err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return sanitize(user), pair, nil
}

func (s *accountService) Logout(ctx context.Context, userID int64) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		s.logger.Error("Failed to clear refresh token", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	s.logger.Info("User logged out", zap.Int64("user_id", userID))
	return nil
}

func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthorized("unauthorized request")
	}

	userID, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.Unauthorized("invalid refresh token")
		}
		s.logger.Error("Failed to get user for refresh", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	// A refresh token is only valid while it matches the stored value
	// byte-for-byte; rotation revokes every previously issued one.
	if user.RefreshToken == "" || refreshToken != user.RefreshToken {
		return nil, apperror.Unauthorized("refresh token is expired or used")
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tokens refreshed", zap.Int64("user_id", user.ID))
	return pair, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, userID int64, fullName, email string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" {
		return nil, apperror.BadRequest("all fields are required")
	}

	user, err := s.users.UpdateDetails(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user not found")
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperror.Conflict("user with this email already exists")
		}
		s.logger.Error("Failed to update account details", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return sanitize(user), nil
}

func (s *accountService) UpdateAvatar(ctx context.Context, userID int64, avatar *Upload) (*models.User, error) {
	if avatar == nil {
		return nil, apperror.BadRequest("avatar file is missing")
	}

	avatarURL, err := s.uploader.Upload(ctx, avatarKey(avatar.Filename), avatar.ContentType, avatar.Body)
	if err != nil {
		s.logger.Error("Failed to upload avatar", zap.Error(err))
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	if avatarURL == "" {
		return nil, apperror.BadRequest("error while uploading avatar")
	}

	user, err := s.users.UpdateAvatar(ctx, userID, avatarURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user not found")
		}
		s.logger.Error("Failed to update avatar", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	return sanitize(user), nil
}

// issueTokenPair mints both tokens and persists the refresh token on the
// user record, replacing whatever was stored before.
func (s *accountService) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		s.logger.Error("Failed to issue access token", zap.Error(err))
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		s.logger.Error("Failed to issue refresh token", zap.Error(err))
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		s.logger.Error("Failed to persist refresh token", zap.Error(err))
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// sanitize strips credential fields before the user leaves the service layer.
func sanitize(user *models.User) *models.User {
	u := *user
	u.PasswordHash = ""
	u.RefreshToken = ""
	return &u
}

func avatarKey(filename string) string {
	now := time.Now()
	return fmt.Sprintf("avatars/%d/%02d/%v%s", now.Year(), now.Month(), uuid.New(), filepath.Ext(filename))
}
