package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

type QuestionType string

const (
	QuestionCategorize    QuestionType = "categorize"
	QuestionCloze         QuestionType = "cloze"
	QuestionComprehension QuestionType = "comprehension"
)

// ValidQuestionType reports whether t is one of the supported question types.
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionCategorize, QuestionCloze, QuestionComprehension:
		return true
	}
	return false
}

type Question struct {
	ID            int64          `db:"id" json:"id"`
	FormID        int64          `db:"form_id" json:"form"`
	Type          QuestionType   `db:"type" json:"type"`
	Text          string         `db:"question_text" json:"questionText"`
	Image         *string        `db:"image" json:"image"`
	Options       pq.StringArray `db:"options" json:"options"`
	Categories    pq.StringArray `db:"categories" json:"categories"`
	CorrectAnswer Answer         `db:"correct_answer" json:"correctAnswer"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// QuestionWithForm is the single-question shape joined with its form details.
type QuestionWithForm struct {
	Question
	FormTitle       string  `db:"form_title" json:"formTitle"`
	FormHeaderImage *string `db:"form_header_image" json:"formHeaderImage"`
	FormCreatedBy   int64   `db:"form_created_by" json:"formCreatedBy"`
}

// Validate checks the question's own fields and its correct answer, if one
// is set, against the question type.
func (q *Question) Validate() error {
	if !ValidQuestionType(q.Type) {
		return fmt.Errorf("unsupported question type %q", q.Type)
	}
	if q.Text == "" {
		return fmt.Errorf("question text is required")
	}
	if q.CorrectAnswer.IsSet() {
		if err := q.CorrectAnswer.Validate(q); err != nil {
			return fmt.Errorf("correct answer: %w", err)
		}
	}
	return nil
}
