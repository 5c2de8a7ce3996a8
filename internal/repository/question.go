package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"backend/internal/models"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id int64) (*models.QuestionWithForm, error)
	ListByForm(ctx context.Context, formID int64) ([]*models.Question, error)
	ListAll(ctx context.Context) ([]*models.QuestionWithForm, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id int64) error
}

type questionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewQuestionRepository(db *sqlx.DB, logger *zap.Logger) QuestionRepository {
	return &questionRepository{db: db, logger: logger}
}

// textArray maps a nil slice to the empty array literal; the options and
// categories columns are NOT NULL, and a nil pq.StringArray would reach
// Postgres as SQL NULL.
func textArray(a pq.StringArray) pq.StringArray {
	if a == nil {
		return pq.StringArray{}
	}
	return a
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	query := `INSERT INTO questions (form_id, type, question_text, image, options, categories, correct_answer)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		question.FormID, question.Type, question.Text, question.Image,
		textArray(question.Options), textArray(question.Categories), question.CorrectAnswer).
		Scan(&question.ID, &question.CreatedAt, &question.UpdatedAt)
}

func (r *questionRepository) GetByID(ctx context.Context, id int64) (*models.QuestionWithForm, error) {
	var question models.QuestionWithForm
	query := `SELECT q.id, q.form_id, q.type, q.question_text, q.image, q.options, q.categories, q.correct_answer, q.created_at, q.updated_at,
	                 f.title AS form_title, f.header_image AS form_header_image, f.created_by AS form_created_by
	          FROM questions q
	          JOIN forms f ON f.id = q.form_id
	          WHERE q.id = $1`
	if err := r.db.GetContext(ctx, &question, query, id); err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) ListByForm(ctx context.Context, formID int64) ([]*models.Question, error) {
	var questions []*models.Question
	query := `SELECT id, form_id, type, question_text, image, options, categories, correct_answer, created_at, updated_at
	          FROM questions WHERE form_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &questions, query, formID); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) ListAll(ctx context.Context) ([]*models.QuestionWithForm, error) {
	var questions []*models.QuestionWithForm
	query := `SELECT q.id, q.form_id, q.type, q.question_text, q.image, q.options, q.categories, q.correct_answer, q.created_at, q.updated_at,
	                 f.title AS form_title, f.header_image AS form_header_image, f.created_by AS form_created_by
	          FROM questions q
	          JOIN forms f ON f.id = q.form_id
	          ORDER BY q.id`
	if err := r.db.SelectContext(ctx, &questions, query); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	query := `UPDATE questions
	          SET type = $1, question_text = $2, image = $3, options = $4, categories = $5, correct_answer = $6, updated_at = now()
	          WHERE id = $7
	          RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		question.Type, question.Text, question.Image,
		textArray(question.Options), textArray(question.Categories), question.CorrectAnswer, question.ID).
		Scan(&question.CreatedAt, &question.UpdatedAt)
}

func (r *questionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
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
