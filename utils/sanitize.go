package utils

import "github.com/microcosm-cc/bluemonday"

// Feedback text is plain prose, so all markup is stripped rather than
// allowing a UGC subset.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips HTML from user supplied text to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
