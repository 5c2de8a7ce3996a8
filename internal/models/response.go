package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ResponseAnswer pairs a question with the submitted answer.
type ResponseAnswer struct {
	QuestionID int64  `json:"question"`
	Answer     Answer `json:"answer"`
}

// ResponseAnswers is stored as a JSONB array on the response row.
type ResponseAnswers []ResponseAnswer

func (ra ResponseAnswers) Value() (driver.Value, error) {
	if ra == nil {
		ra = ResponseAnswers{}
	}
	return json.Marshal(ra)
}

func (ra *ResponseAnswers) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*ra = nil
		return nil
	case []byte:
		return json.Unmarshal(v, ra)
	case string:
		return json.Unmarshal([]byte(v), ra)
	default:
		return fmt.Errorf("cannot scan %T into ResponseAnswers", src)
	}
}

type FormResponse struct {
	ID          int64           `db:"id" json:"id"`
	FormID      int64           `db:"form_id" json:"form"`
	Answers     ResponseAnswers `db:"answers" json:"responses"`
	SubmittedBy *int64          `db:"submitted_by" json:"submittedBy"`
	SubmittedAt time.Time       `db:"submitted_at" json:"submissionTime"`
}

// FormResponseDetails is a response joined with its form details and the
// questions it answers.
type FormResponseDetails struct {
	FormResponse
	FormTitle       string      `json:"formTitle"`
	FormHeaderImage *string     `json:"formHeaderImage"`
	Questions       []*Question `json:"questionDetails"`
}
