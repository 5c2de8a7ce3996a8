package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/models"
)

type FormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	GetByID(ctx context.Context, id int64) (*models.FormDetails, error)
	ListAll(ctx context.Context) ([]*models.FormSummary, error)
	ListByCreator(ctx context.Context, userID int64) ([]*models.FormSummary, error)
	Update(ctx context.Context, id int64, title *string, headerImage *string) (*models.Form, error)
	Delete(ctx context.Context, id int64) error
}

type formRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewFormRepository(db *sqlx.DB, logger *zap.Logger) FormRepository {
	return &formRepository{db: db, logger: logger}
}

func (r *formRepository) Create(ctx context.Context, form *models.Form) error {
	query := `INSERT INTO forms (title, header_image, created_by)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, form.Title, form.HeaderImage, form.CreatedBy).
		Scan(&form.ID, &form.CreatedAt, &form.UpdatedAt)
}

func (r *formRepository) GetByID(ctx context.Context, id int64) (*models.FormDetails, error) {
	var row struct {
		models.Form
		models.FormCreator
	}
	query := `SELECT f.id, f.title, f.header_image, f.created_by, f.created_at, f.updated_at,
	                 u.full_name AS creator_name, u.email AS creator_email, u.avatar_url AS creator_avatar
	          FROM forms f
	          JOIN users u ON u.id = f.created_by
	          WHERE f.id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	var questions []*models.Question
	qQuery := `SELECT id, form_id, type, question_text, image, options, categories, correct_answer, created_at, updated_at
	           FROM questions WHERE form_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &questions, qQuery, id); err != nil {
		return nil, err
	}

	return &models.FormDetails{
		Form:      row.Form,
		Creator:   row.FormCreator,
		Questions: questions,
	}, nil
}

func (r *formRepository) ListAll(ctx context.Context) ([]*models.FormSummary, error) {
	var forms []*models.FormSummary
	query := `SELECT f.id, f.title, f.header_image, f.created_by, f.created_at, f.updated_at,
	                 u.full_name AS creator_name, u.email AS creator_email, u.avatar_url AS creator_avatar,
	                 COUNT(q.id) AS question_count
	          FROM forms f
	          JOIN users u ON u.id = f.created_by
	          LEFT JOIN questions q ON q.form_id = f.id
	          GROUP BY f.id, u.full_name, u.email, u.avatar_url
	          ORDER BY f.created_at DESC`
	if err := r.db.SelectContext(ctx, &forms, query); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *formRepository) ListByCreator(ctx context.Context, userID int64) ([]*models.FormSummary, error) {
	var forms []*models.FormSummary
	query := `SELECT f.id, f.title, f.header_image, f.created_by, f.created_at, f.updated_at,
	                 u.full_name AS creator_name, u.email AS creator_email, u.avatar_url AS creator_avatar,
	                 COUNT(q.id) AS question_count
	          FROM forms f
	          JOIN users u ON u.id = f.created_by
	          LEFT JOIN questions q ON q.form_id = f.id
	          WHERE f.created_by = $1
	          GROUP BY f.id, u.full_name, u.email, u.avatar_url
	          ORDER BY f.created_at DESC`
	if err := r.db.SelectContext(ctx, &forms, query, userID); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *formRepository) Update(ctx context.Context, id int64, title *string, headerImage *string) (*models.Form, error) {
	var form models.Form
	query := `UPDATE forms
	          SET title = COALESCE($1::text, title),
	              header_image = COALESCE($2::text, header_image),
	              updated_at = now()
	          WHERE id = $3
	          RETURNING id, title, header_image, created_by, created_at, updated_at`
	if err := r.db.GetContext(ctx, &form, query, title, headerImage, id); err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *formRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM forms WHERE id = $1`, id)
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
