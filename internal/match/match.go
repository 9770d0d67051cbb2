// Package match selects the automated response for a piece of inbound text.
package match

import (
	"strings"

	"github.com/dmelo/gram-dispatch/internal/registry"
)

// Response returns the response bound to the first keyword in the table
// that occurs, case-insensitively, as a substring of text. First match wins
// regardless of keyword length — tenants control precedence through table
// order. Returns ("", false) when no keyword matches.
func Response(text string, rules []registry.KeywordRule) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.Keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(r.Keyword)) {
			return r.Response, true
		}
	}
	return "", false
}
