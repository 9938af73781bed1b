package pagetlai

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// DictionaryKey identifies the dictionary of a source/target locale pair.
// Both locales are sanitized, so "en-GB" and "EN" share a key.
func DictionaryKey(sourceLocale, targetLocale string) string {
	return NormalizeLocale(SanitizeLocale(sourceLocale)) + ":" + NormalizeLocale(SanitizeLocale(targetLocale))
}
