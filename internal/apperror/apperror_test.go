package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest("x").Code)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").Code)
	assert.Equal(t, http.StatusNotFound, NotFound("x").Code)
	assert.Equal(t, http.StatusConflict, Conflict("x").Code)
	assert.Equal(t, http.StatusInternalServerError, Internal("x").Code)
	assert.Equal(t, "x", BadRequest("x").Error())
}

func TestFromUnwrapsTypedErrors(t *testing.T) {
	err := fmt.Errorf("handler context: %w", Unauthorized("no token"))

	appErr := From(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	assert.Equal(t, "no token", appErr.Message)
}

func TestFromDefaultsUnknownErrorsTo500(t *testing.T) {
	appErr := From(errors.New("database on fire"))

	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	// Never leak the underlying failure to the client.
	assert.Equal(t, "internal server error", appErr.Message)
}
