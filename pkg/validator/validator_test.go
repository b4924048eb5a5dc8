package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type child struct {
	Title string `json:"title" validate:"required"`
}

type sample struct {
	Name     string   `json:"name" validate:"required,min=2"`
	Handle   string   `json:"handle" validate:"required,username"`
	Website  string   `json:"website" validate:"omitempty,url"`
	Tags     []string `json:"tags" validate:"min=1"`
	Children []child  `json:"children" validate:"dive"`
}

func TestValidateCollectsFieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(sample{
		Name:     "a",
		Handle:   "Not Valid",
		Website:  "nope",
		Children: []child{{Title: "ok"}, {}},
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Must be at least 2 characters long", verr.Errors["name"])
	assert.Contains(t, verr.Errors, "handle")
	assert.Equal(t, "Must be a valid URL", verr.Errors["website"])
	assert.Equal(t, "Must contain at least 1 item(s)", verr.Errors["tags"])
	assert.Equal(t, "This field is required", verr.Errors["children[1].title"])
}

func TestValidatePasses(t *testing.T) {
	err := New().Validate(sample{Name: "Ada", Handle: "ada_l", Tags: []string{"go"}})
	assert.NoError(t, err)
}
