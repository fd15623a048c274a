package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain domain", "example.com", "example.com"},
		{"path slashes", "example.com/docs/intro", "example.com_docs_intro"},
		{"root trailing slash stripped", "example.com/", "example.com"},
		{"query characters", "example.com/search?q=go&page=2", "example.com_search_q_go_page_2"},
		{"port colon", "example.com:8080/x", "example.com_8080_x"},
		{"safe chars kept", "a-b_c.d", "a-b_c.d"},
		{"all unsafe", "///", "untitled"},
		{"empty", "", "untitled"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeFilename(tc.input))
		})
	}
}

func TestSanitizeFilename_Truncation(t *testing.T) {
	long := "example.com/" + strings.Repeat("a", 200)
	got := SanitizeFilename(long)

	assert.LessOrEqual(t, len(got), 100)
	assert.False(t, strings.HasSuffix(got, "_"))
}

func TestSanitizeFilename_Deterministic(t *testing.T) {
	input := "example.com/docs/page?v=1"
	assert.Equal(t, SanitizeFilename(input), SanitizeFilename(input))
}
