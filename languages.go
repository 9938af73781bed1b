package pagetlai

import "strings"

// LanguageNames maps backend locale codes to human-readable names for AI prompts.
var LanguageNames = map[string]string{
	// Tier 1 (High Quality)
	"EN":    "English",
	"EN-US": "English (United States)",
	"EN-GB": "English (United Kingdom)",
	"DE":    "German",
	"ES":    "Spanish",
	"FR":    "French",
	"IT":    "Italian",
	"JA":    "Japanese",
	"PT-BR": "Portuguese (Brazil)",
	"PT-PT": "Portuguese (Portugal)",
	"ZH":    "Chinese (Simplified)",

	// Tier 2 (Good Quality)
	"AR": "Arabic",
	"CS": "Czech",
	"DA": "Danish",
	"EL": "Greek",
	"FI": "Finnish",
	"HU": "Hungarian",
	"ID": "Indonesian",
	"KO": "Korean",
	"NL": "Dutch",
	"NB": "Norwegian Bokmål",
	"PL": "Polish",
	"RO": "Romanian",
	"RU": "Russian",
	"SV": "Swedish",
	"TR": "Turkish",
	"UK": "Ukrainian",

	// Tier 3 (Functional)
	"BG": "Bulgarian",
	"ET": "Estonian",
	"LT": "Lithuanian",
	"LV": "Latvian",
	"SK": "Slovak",
	"SL": "Slovenian",
}

// GetLanguageName returns the human-readable name for a locale code.
// Falls back to the base language, then to the code itself.
func GetLanguageName(code string) string {
	normalized := NormalizeLocale(code)
	if name, ok := LanguageNames[normalized]; ok {
		return name
	}
	base := strings.SplitN(normalized, "-", 2)[0]
	if name, ok := LanguageNames[base]; ok {
		return name
	}
	return code
}

// NormalizeLocale converts a locale code to the backend format (e.g., "en_gb" → "EN-GB").
func NormalizeLocale(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}

// SanitizeLocale maps a locale onto the form glossaries and source
// arguments accept. The backend takes regional variants as targets but only
// the base code as source, so "en-GB" becomes "EN".
func SanitizeLocale(code string) string {
	if strings.EqualFold(strings.TrimSpace(code), "en-gb") {
		return "EN"
	}
	return code
}

// BackendTargetLocale maps a target locale onto the code sent to the
// backend. The bare "en" target is deprecated upstream, so it is sent as "EN-GB".
func BackendTargetLocale(code string) string {
	if strings.EqualFold(strings.TrimSpace(code), "en") {
		return "EN-GB"
	}
	return code
}
