// Package processor splits HTML values into translatable text segments and
// writes translated segments back into the markup.
package processor

import "regexp"

// Segment is one translatable text run of a fragment.
type Segment struct {
	ID      string // Stable identifier in document order, e.g. "seg-0"
	Text    string // Trimmed text
	Hash    string // Hash of Text; duplicate texts share a segment
	Context string // Disambiguation hint built from the surrounding markup
}

// DefaultIgnoredTags are elements whose text is never translated.
var DefaultIgnoredTags = []string{"script", "style", "code", "pre", "textarea", "noscript", "svg"}

var tagPattern = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(\s[^<>]*)?/?>`)

// LooksLikeHTML reports whether s contains at least one element tag.
func LooksLikeHTML(s string) bool {
	return tagPattern.MatchString(s)
}
