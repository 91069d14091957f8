// Package htmlsanitize strips dangerous markup from user-provided rich
// text before it is stored or rendered. Descriptions on reports,
// projects, and learning items pass through here.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var policy = bluemonday.UGCPolicy()

// Sanitize returns s with scripts, event handlers, and javascript:
// URLs removed. Safe formatting tags and http(s)/mailto links survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// StripAll removes every tag, returning plain text. Used for fields
// that must never contain markup (titles, tags).
func StripAll(s string) string {
	if s == "" {
		return ""
	}
	return bluemonday.StrictPolicy().Sanitize(s)
}
