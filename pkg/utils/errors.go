package utils

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrRender     = errors.New("page render failed")        // Navigation/timeout/network failure for one URL (page-level)
	ErrExtraction = errors.New("content extraction failed") // Unparseable or absent HTML (page-level)
	ErrSetup      = errors.New("crawler setup failed")      // Browser cannot be started (fatal)
	ErrHTTPStatus = errors.New("HTTP error status")         // Non-2xx document response with no usable body
	ErrFilesystem = errors.New("filesystem error")          // Wraps os errors
	ErrBadOptions = errors.New("invalid options")           // CLI/config validation failure
)

// CategorizeError maps an error to a predefined category string for logging.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	// Check against sentinel errors first
	switch {
	case errors.Is(err, ErrRender):
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded") {
			return "Render_Timeout"
		}
		if strings.Contains(errMsg, "net::") || strings.Contains(errMsg, "navigation") {
			return "Render_Navigation"
		}
		return "Render_Other"
	case errors.Is(err, ErrHTTPStatus):
		errMsg := err.Error()
		if strings.Contains(errMsg, " 404") {
			return "HTTP_404"
		}
		if strings.Contains(errMsg, " 403") {
			return "HTTP_403"
		}
		if strings.Contains(errMsg, " 429") {
			return "HTTP_429"
		}
		if strings.Contains(errMsg, " 5") {
			return "HTTP_5xx"
		}
		return "HTTP_4xx"
	case errors.Is(err, ErrExtraction):
		return "Content_Extraction"
	case errors.Is(err, ErrSetup):
		return "Setup_Browser"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		return "Filesystem_Other"
	case errors.Is(err, ErrBadOptions):
		return "Config_Validation"
	}

	// --- Fallback checks for common underlying error types/strings ---

	// Context errors
	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	// Network errors (if not wrapped by custom sentinels)
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "Network_Timeout"
		}
	}
	lowerErrMsg := strings.ToLower(err.Error())
	if strings.Contains(lowerErrMsg, "timeout") {
		return "Network_TimeoutGeneric"
	}
	if strings.Contains(lowerErrMsg, "connection refused") {
		return "Network_ConnectionRefused"
	}
	if strings.Contains(lowerErrMsg, "no such host") {
		return "Network_DNSLookup"
	}
	if strings.Contains(lowerErrMsg, "tls") || strings.Contains(lowerErrMsg, "certificate") {
		return "Network_TLS"
	}
	if strings.Contains(lowerErrMsg, "reset by peer") {
		return "Network_ConnectionReset"
	}

	return "Unknown"
}
