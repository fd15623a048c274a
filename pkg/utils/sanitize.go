package utils

import (
	"regexp"
	"strings"
)

// --- Filename Sanitization ---
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]`) // Anything outside the portable filename set
const maxFilenameLength = 100                                    // Max length for the URL-derived portion of a filename

// SanitizeFilename maps a URL (scheme already stripped) to a filesystem-safe
// filename component. Every unsafe character, including each path slash,
// becomes an underscore. The result is truncated and trailing underscores are
// stripped so directory-like URLs and their slash-less twins collapse to the
// same name.
func SanitizeFilename(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "_")

	// Limit length before trimming so truncation cannot reintroduce a trailing underscore
	if len(sanitized) > maxFilenameLength {
		sanitized = sanitized[:maxFilenameLength]
	}
	sanitized = strings.TrimRight(sanitized, "_")

	if sanitized == "" {
		sanitized = "untitled"
	}
	return sanitized
}
