// Package provider implements translation backends.
package provider

import "github.com/ZaguanLabs/pagetlai"

// Backend is an alias to the main package interface.
type Backend = pagetlai.Backend

// TranslateRequest is an alias to the main package type.
type TranslateRequest = pagetlai.TranslateRequest

var styleDescriptions = map[pagetlai.TranslationStyle]string{
	pagetlai.StyleFormal:    "Use formal, professional language. Address the reader politely and avoid contractions.",
	pagetlai.StyleNeutral:   "Use a neutral, professional tone suitable for general web content.",
	pagetlai.StyleCasual:    "Use casual, conversational language. Contractions and a friendly tone are welcome.",
	pagetlai.StyleMarketing: "Use persuasive, engaging language that motivates the reader to act.",
	pagetlai.StyleTechnical: "Use precise, technical language. Keep terminology consistent and unambiguous.",
}

// StyleDescription returns the prompt instruction for a translation style.
// Unknown styles fall back to the neutral description.
func StyleDescription(style pagetlai.TranslationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[pagetlai.StyleNeutral]
}
