package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetPublicByID loads a user without the password hash and refresh
	// token columns; this is the shape attached to request context.
	GetPublicByID(ctx context.Context, id int64) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, id int64, token string) error
	ClearRefreshToken(ctx context.Context, id int64) error
	UpdateDetails(ctx context.Context, id int64, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id int64, avatarURL string) (*models.User, error)
}

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, full_name, password_hash, avatar_url)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, user.Email, user.FullName, user.PasswordHash, user.AvatarURL).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, full_name, password_hash, avatar_url, COALESCE(refresh_token, '') AS refresh_token, created_at, updated_at
	          FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, full_name, password_hash, avatar_url, COALESCE(refresh_token, '') AS refresh_token, created_at, updated_at
	          FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetPublicByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, full_name, avatar_url, created_at, updated_at
	          FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRefreshToken touches only the refresh_token column. Concurrent
// logins race last-writer-wins; only the newest session stays valid.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, id int64, token string) error {
	query := `UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, token, id)
	return err
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id int64) error {
	query := `UPDATE users SET refresh_token = NULL, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *userRepository) UpdateDetails(ctx context.Context, id int64, fullName, email string) (*models.User, error) {
	var user models.User
	query := `UPDATE users SET full_name = $1, email = $2, updated_at = now()
	          WHERE id = $3
	          RETURNING id, email, full_name, avatar_url, created_at, updated_at`
	if err := r.db.GetContext(ctx, &user, query, fullName, email, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id int64, avatarURL string) (*models.User, error) {
	var user models.User
	query := `UPDATE users SET avatar_url = $1, updated_at = now()
	          WHERE id = $2
	          RETURNING id, email, full_name, avatar_url, created_at, updated_at`
	if err := r.db.GetContext(ctx, &user, query, avatarURL, id); err != nil {
		return nil, err
	}
	return &user, nil
}
