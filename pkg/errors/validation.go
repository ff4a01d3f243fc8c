package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds step and interceptor names coming from the feed.
const maxNameLength = 256

// ValidateURL validates a feed URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateNodeName validates a step name used as graph-node identity.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters (labels add their own line breaks)
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGraph, "node name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidGraph, "node name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node name %q contains control characters", name)
		}
	}

	return nil
}

// ValidateViewport checks that viewport dimensions and the zoom cap are usable
// for a fit computation.
func ValidateViewport(width, height, maxScale float64) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "viewport must be positive, got %gx%g", width, height)
	}
	if maxScale <= 0 {
		return New(ErrCodeInvalidInput, "max scale must be positive, got %g", maxScale)
	}
	return nil
}
