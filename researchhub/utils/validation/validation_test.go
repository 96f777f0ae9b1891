package validation

import (
	"net/http"
	"testing"

	"researchhub/researchhub/utils/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string   `json:"email" validate:"required,email"`
	Name  string   `json:"full_name" validate:"required,min=2"`
	Role  string   `json:"role" validate:"oneof=human ai"`
	Tags  []string `json:"tags" validate:"max=2"`
}

func TestStructOK(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@b.io", Name: "Al", Role: "ai"}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Email: "nope", Role: "robot", Tags: []string{"a", "b", "c"}})
	require.Error(t, err)

	appErr := apperrors.From(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	assert.Equal(t, "email must be a valid email", appErr.Fields["email"])
	assert.Equal(t, "full_name is required", appErr.Fields["full_name"])
	assert.Equal(t, "role must be one of: human ai", appErr.Fields["role"])
	assert.Equal(t, "tags must have at most 2 items", appErr.Fields["tags"])
}
