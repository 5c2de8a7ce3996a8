package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/models"
)

// fakeResponseRepo is an in-memory ResponseRepository.
type fakeResponseRepo struct {
	nextID    int64
	responses map[int64]*models.FormResponse
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{nextID: 1, responses: map[int64]*models.FormResponse{}}
}

func (r *fakeResponseRepo) Create(_ context.Context, response *models.FormResponse) error {
	response.ID = r.nextID
	r.nextID++
	response.SubmittedAt = time.Now()
	stored := *response
	r.responses[response.ID] = &stored
	return nil
}

func (r *fakeResponseRepo) GetByID(_ context.Context, id int64) (*models.FormResponse, error) {
	response, ok := r.responses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *response
	return &copied, nil
}

func (r *fakeResponseRepo) ListByForm(_ context.Context, formID int64) ([]*models.FormResponse, error) {
	var responses []*models.FormResponse
	for _, response := range r.responses {
		if response.FormID == formID {
			copied := *response
			responses = append(responses, &copied)
		}
	}
	return responses, nil
}

func (r *fakeResponseRepo) ListByUser(_ context.Context, userID int64) ([]*models.FormResponse, error) {
	var responses []*models.FormResponse
	for _, response := range r.responses {
		if response.SubmittedBy != nil && *response.SubmittedBy == userID {
			copied := *response
			responses = append(responses, &copied)
		}
	}
	return responses, nil
}

func (r *fakeResponseRepo) UpdateAnswers(_ context.Context, id int64, answers models.ResponseAnswers) (*models.FormResponse, error) {
	response, ok := r.responses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	response.Answers = answers
	copied := *response
	return &copied, nil
}

func (r *fakeResponseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.responses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.responses, id)
	return nil
}

// fakeFormRepo serves the form-details lookup on response reads.
type fakeFormRepo struct {
	forms map[int64]*models.FormDetails
}

func (r *fakeFormRepo) Create(context.Context, *models.Form) error { return nil }

func (r *fakeFormRepo) GetByID(_ context.Context, id int64) (*models.FormDetails, error) {
	form, ok := r.forms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return form, nil
}

func (r *fakeFormRepo) ListAll(context.Context) ([]*models.FormSummary, error) { return nil, nil }

func (r *fakeFormRepo) ListByCreator(context.Context, int64) ([]*models.FormSummary, error) {
	return nil, nil
}

func (r *fakeFormRepo) Update(context.Context, int64, *string, *string) (*models.Form, error) {
	return nil, sql.ErrNoRows
}

func (r *fakeFormRepo) Delete(context.Context, int64) error { return sql.ErrNoRows }

// newResponseRouter seeds form 1 with a cloze question (id 1) and a
// categorize question (id 2), and form 2 with its own question (id 3).
func newResponseRouter(t *testing.T) (*gin.Engine, *fakeResponseRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	questions := newFakeQuestionRepo()
	for _, q := range []*models.Question{
		{FormID: 1, Type: models.QuestionCloze, Text: "The ___ sat on the mat"},
		{FormID: 1, Type: models.QuestionCategorize, Text: "Sort the animals",
			Options: []string{"cat"}, Categories: []string{"mammal"}},
		{FormID: 2, Type: models.QuestionCloze, Text: "Water boils at ___"},
	} {
		require.NoError(t, questions.Create(context.Background(), q))
	}

	responses := newFakeResponseRepo()
	forms := &fakeFormRepo{forms: map[int64]*models.FormDetails{
		1: {Form: models.Form{ID: 1, Title: "Animals"}},
		2: {Form: models.Form{ID: 2, Title: "Physics"}},
	}}

	h := NewResponseHandler(responses, questions, forms, zap.NewNop())
	router := gin.New()
	user := &models.User{ID: 7, Email: "a@x.com"}
	router.POST("/responses", withUser(user), h.Create)
	return router, responses
}

func TestCreateResponse(t *testing.T) {
	router, repo := newResponseRouter(t)

	w := postJSON(t, router, "/responses",
		`{"form":1,"responses":[
			{"question":1,"answer":{"type":"cloze","cloze":["cat"]}},
			{"question":2,"answer":{"type":"categorize","categorize":{"cat":"mammal"}}}
		]}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.responses, 1)
	stored := repo.responses[1]
	assert.Equal(t, int64(1), stored.FormID)
	require.NotNil(t, stored.SubmittedBy)
	assert.Equal(t, int64(7), *stored.SubmittedBy)
}

func TestCreateResponseRejectsForeignQuestion(t *testing.T) {
	router, repo := newResponseRouter(t)

	// Question 3 belongs to form 2.
	w := postJSON(t, router, "/responses",
		`{"form":1,"responses":[{"question":3,"answer":{"type":"cloze","cloze":["100"]}}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Contains(t, envelope.Message, "do not belong")
	assert.Empty(t, repo.responses)
}

func TestCreateResponseRejectsTypeMismatch(t *testing.T) {
	router, repo := newResponseRouter(t)

	// Question 1 is cloze; a categorize answer must not pass.
	w := postJSON(t, router, "/responses",
		`{"form":1,"responses":[{"question":1,"answer":{"type":"categorize","categorize":{"cat":"mammal"}}}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.responses)
}

func TestCreateResponseAllowsUnansweredQuestions(t *testing.T) {
	router, _ := newResponseRouter(t)

	// A null answer marks the question as skipped and is not validated.
	w := postJSON(t, router, "/responses",
		`{"form":1,"responses":[{"question":1,"answer":null}]}`)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateResponseValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		body string
	}{
		{"missing form", `{"responses":[{"question":1,"answer":null}]}`},
		{"empty responses", `{"form":1,"responses":[]}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newResponseRouter(t)
			w := postJSON(t, router, "/responses", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
