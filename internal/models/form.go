package models

import "time"

type Form struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	HeaderImage *string   `db:"header_image" json:"headerImage"`
	CreatedBy   int64     `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// FormCreator is the subset of user fields exposed alongside a form.
type FormCreator struct {
	FullName  string `db:"creator_name" json:"fullName"`
	Email     string `db:"creator_email" json:"email"`
	AvatarURL string `db:"creator_avatar" json:"avatar"`
}

// FormSummary is the list-view shape: form fields joined with creator
// details and a question count.
type FormSummary struct {
	Form
	FormCreator
	QuestionCount int64 `db:"question_count" json:"questionCount"`
}

// FormDetails is the single-form shape with its questions loaded.
type FormDetails struct {
	Form
	Creator   FormCreator `json:"creator"`
	Questions []*Question `json:"questions"`
}
