package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateStringSHA256(t *testing.T) {
	// Known vector for the empty string.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		CalculateStringSHA256(""))

	a := CalculateStringSHA256("hello")
	b := CalculateStringSHA256("hello")
	c := CalculateStringSHA256("hello!")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
