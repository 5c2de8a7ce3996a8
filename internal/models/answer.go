package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// Answer is a tagged union over the supported question types. Exactly one
// of the payload fields is populated, selected by Type:
//   - categorize: item -> category assignments
//   - cloze: blank fill-ins in order
//   - comprehension: sub-question id -> selected option
//
// The zero value (empty Type) means "no answer" and marshals as JSON null.
type Answer struct {
	Type          QuestionType      `json:"type"`
	Categorize    map[string]string `json:"categorize,omitempty"`
	Cloze         []string          `json:"cloze,omitempty"`
	Comprehension map[string]string `json:"comprehension,omitempty"`
}

// IsSet reports whether the answer carries a payload.
func (a Answer) IsSet() bool { return a.Type != "" }

// Validate checks that the answer's shape matches the question's type and
// that categorize assignments reference the question's options and categories.
func (a *Answer) Validate(q *Question) error {
	if a.Type != q.Type {
		return fmt.Errorf("answer type %q does not match question type %q", a.Type, q.Type)
	}
	switch a.Type {
	case QuestionCategorize:
		if len(a.Categorize) == 0 {
			return fmt.Errorf("categorize answer requires at least one assignment")
		}
		for item, category := range a.Categorize {
			if !slices.Contains(q.Options, item) {
				return fmt.Errorf("item %q is not among the question options", item)
			}
			if !slices.Contains(q.Categories, category) {
				return fmt.Errorf("category %q is not among the question categories", category)
			}
		}
	case QuestionCloze:
		if len(a.Cloze) == 0 {
			return fmt.Errorf("cloze answer requires at least one blank")
		}
	case QuestionComprehension:
		if len(a.Comprehension) == 0 {
			return fmt.Errorf("comprehension answer requires at least one selection")
		}
	default:
		return fmt.Errorf("unsupported answer type %q", a.Type)
	}
	return nil
}

// answerAlias breaks the MarshalJSON/UnmarshalJSON recursion.
type answerAlias Answer

func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(answerAlias(a))
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Answer{}
		return nil
	}
	var alias answerAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*a = Answer(alias)
	return nil
}

// Value stores the answer as JSONB; an unset answer is stored as JSON null.
func (a Answer) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Answer) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = Answer{}
		return nil
	case []byte:
		return a.UnmarshalJSON(v)
	case string:
		return a.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into Answer", src)
	}
}
