package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "users", want: "users"},
		{input: "user_roles2", want: "user_roles2"},
		{input: "users; DROP TABLE users", want: "users"},
		{input: "  spaced", want: "spaced"},
		{input: "\"quoted\"", want: "quoted"},
		{input: "main.users", want: "main"},
		{input: "", want: ""},
		{input: "--;", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SafeName(tt.input))
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateIdentifier("created_at"))
	assert.NoError(t, ValidateIdentifier("col1"))
	assert.ErrorIs(t, ValidateIdentifier(""), ErrInvalidIdentifier)
	assert.ErrorIs(t, ValidateIdentifier("a b"), ErrInvalidIdentifier)
	assert.ErrorIs(t, ValidateIdentifier("a;b"), ErrInvalidIdentifier)
	assert.ErrorIs(t, ValidateIdentifier("a.b"), ErrInvalidIdentifier)
}
