package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from user-supplied free text and returns
// plain text.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
