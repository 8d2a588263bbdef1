// internal/app/system/normalize/normalize.go

// Package normalize provides canonical forms for user-supplied identity
// fields so lookups and uniqueness checks behave consistently.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are stored and
// queried in this form; the unique index on users.email depends on it.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
