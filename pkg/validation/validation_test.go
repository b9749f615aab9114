package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Stars    int    `json:"stars" validate:"min=1,max=5"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(&login{Email: "ada@example.com", Password: "x", Stars: 3}))

	err := Struct(&login{Email: "nope", Stars: 9})
	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "email", verr.Fields[0].Field)
	assert.Equal(t, "email must be a valid email address", verr.Fields[0].Message)
	assert.Equal(t, "password is required", verr.Fields[1].Message)
	assert.Equal(t, "stars must be at most 5", verr.Fields[2].Message)
}
