// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from user-supplied free text before it
// is persisted. Club descriptions and score notes are plain text; anything
// that looks like HTML is removed rather than escaped.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML elements and attributes from s, unescapes any
// entities the policy introduced, and trims surrounding whitespace.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
