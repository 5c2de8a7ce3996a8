package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type ResponseRepository interface {
	Create(ctx context.Context, response *models.FormResponse) error
	GetByID(ctx context.Context, id int64) (*models.FormResponse, error)
	ListByForm(ctx context.Context, formID int64) ([]*models.FormResponse, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.FormResponse, error)
	UpdateAnswers(ctx context.Context, id int64, answers models.ResponseAnswers) (*models.FormResponse, error)
	Delete(ctx context.Context, id int64) error
}

type responseRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewResponseRepository(db *sqlx.DB, logger *zap.Logger) ResponseRepository {
	return &responseRepository{db: db, logger: logger}
}

func (r *responseRepository) Create(ctx context.Context, response *models.FormResponse) error {
	query := `INSERT INTO form_responses (form_id, answers, submitted_by)
	          VALUES ($1, $2, $3)
	          RETURNING id, submitted_at`
	return r.db.QueryRowxContext(ctx, query, response.FormID, response.Answers, response.SubmittedBy).
		Scan(&response.ID, &response.SubmittedAt)
}

func (r *responseRepository) GetByID(ctx context.Context, id int64) (*models.FormResponse, error) {
	var response models.FormResponse
	query := `SELECT id, form_id, answers, submitted_by, submitted_at
	          FROM form_responses WHERE id = $1`
	if err := r.db.GetContext(ctx, &response, query, id); err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) ListByForm(ctx context.Context, formID int64) ([]*models.FormResponse, error) {
	var responses []*models.FormResponse
	query := `SELECT id, form_id, answers, submitted_by, submitted_at
	          FROM form_responses WHERE form_id = $1 ORDER BY submitted_at DESC`
	if err := r.db.SelectContext(ctx, &responses, query, formID); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) ListByUser(ctx context.Context, userID int64) ([]*models.FormResponse, error) {
	var responses []*models.FormResponse
	query := `SELECT id, form_id, answers, submitted_by, submitted_at
	          FROM form_responses WHERE submitted_by = $1 ORDER BY submitted_at DESC`
	if err := r.db.SelectContext(ctx, &responses, query, userID); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) UpdateAnswers(ctx context.Context, id int64, answers models.ResponseAnswers) (*models.FormResponse, error) {
	var response models.FormResponse
	query := `UPDATE form_responses SET answers = $1 WHERE id = $2
	          RETURNING id, form_id, answers, submitted_by, submitted_at`
	if err := r.db.GetContext(ctx, &response, query, answers, id); err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM form_responses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
