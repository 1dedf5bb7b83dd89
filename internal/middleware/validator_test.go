package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, ValidateSessionID("dev-1"))
	assert.NoError(t, ValidateSessionID("a1b2c3_D4"))

	for _, bad := range []string{"", "has space", "slash/id", strings.Repeat("x", 129)} {
		assert.ErrorIs(t, ValidateSessionID(bad), ErrInvalidRequest, bad)
	}
}

func TestValidateInputText(t *testing.T) {
	assert.NoError(t, ValidateInputText("chest pain"))
	assert.NoError(t, ValidateInputText(""))

	assert.ErrorIs(t, ValidateInputText(strings.Repeat("a", maxInputRunes+1)), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateInputText(string([]byte{0xff, 0xfe})), ErrInvalidRequest)
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "bucket exhausted")
}
