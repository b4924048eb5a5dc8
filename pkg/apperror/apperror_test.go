package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("case study", "x"), http.StatusNotFound},
		{"validation", NewValidationFailed(map[string]string{"title": "required"}), http.StatusUnprocessableEntity},
		{"invalid input", NewInvalidInput("bad body", nil), http.StatusBadRequest},
		{"conflict", NewConflict("profile", "username", "ada"), http.StatusConflict},
		{"unauthorized", NewUnauthorized("bad token", nil), http.StatusUnauthorized},
		{"permission", NewPermissionDenied("nope"), http.StatusForbidden},
		{"partial write", NewPartialWrite("timelines", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("load: %w", NewNotFound("profile", "ada")), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToHTTPStatus(tc.err))
		})
	}
}

func TestValidationFailedToJSON(t *testing.T) {
	err := NewValidationFailed(map[string]string{"tools": "Must be at least 1 items/characters long", "title": "This field is required"})

	body := err.ToJSON()
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, err.Fields, body["fields"])
	assert.Contains(t, err.Details, "title, tools")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestToJSONOmitsEmptyFields(t *testing.T) {
	body := NewNotFound("profile", "ada").ToJSON()
	_, ok := body["fields"]
	assert.False(t, ok)
	assert.True(t, IsNotFound(NewNotFound("profile", "ada")))
}

func TestCauseIsReachableButCategoryWins(t *testing.T) {
	cause := NewNotFound("timeline", "x")
	err := NewPartialWrite("timelines", cause)

	assert.ErrorIs(t, err, ErrPartialWrite)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(err))
}
