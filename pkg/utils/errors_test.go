package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "None"},
		{"render timeout", fmt.Errorf("%w: context deadline exceeded", ErrRender), "Render_Timeout"},
		{"render navigation", fmt.Errorf("%w: page load error net::ERR_NAME_NOT_RESOLVED", ErrRender), "Render_Navigation"},
		{"render other", fmt.Errorf("%w: tab crashed", ErrRender), "Render_Other"},
		{"http 404", fmt.Errorf("%w: status 404 for 'https://example.com/x'", ErrHTTPStatus), "HTTP_404"},
		{"http 403", fmt.Errorf("%w: status 403 for 'https://example.com/x'", ErrHTTPStatus), "HTTP_403"},
		{"http 429", fmt.Errorf("%w: status 429 for 'https://example.com/x'", ErrHTTPStatus), "HTTP_429"},
		{"http 500", fmt.Errorf("%w: status 500 for 'https://example.com/x'", ErrHTTPStatus), "HTTP_5xx"},
		{"http 410", fmt.Errorf("%w: status 410 for 'https://example.com/x'", ErrHTTPStatus), "HTTP_4xx"},
		{"extraction", fmt.Errorf("%w: empty document", ErrExtraction), "Content_Extraction"},
		{"setup", fmt.Errorf("%w: launching browser", ErrSetup), "Setup_Browser"},
		{"filesystem other", fmt.Errorf("%w: disk full", ErrFilesystem), "Filesystem_Other"},
		{"bad options", fmt.Errorf("%w: max_pages must be positive", ErrBadOptions), "Config_Validation"},
		{"context canceled", context.Canceled, "System_ContextCanceled"},
		{"context deadline", context.DeadlineExceeded, "System_ContextDeadlineExceeded"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:80: connection refused"), "Network_ConnectionRefused"},
		{"dns", errors.New("lookup nosuchhost.invalid: no such host"), "Network_DNSLookup"},
		{"tls", errors.New("x509: certificate signed by unknown authority"), "Network_TLS"},
		{"unknown", errors.New("something odd"), "Unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CategorizeError(tc.err))
		})
	}
}

func TestCategorizeError_WrappedSentinelWins(t *testing.T) {
	// A sentinel wrapped around a context error categorizes by the sentinel.
	err := fmt.Errorf("%w: %w", ErrRender, context.DeadlineExceeded)
	assert.Equal(t, "Render_Timeout", CategorizeError(err))
}
