package pagetlai

import (
	"fmt"
	"strings"
)

// TranslationStyle controls the tone and formality of translations.
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language suitable for official documents.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral, professional tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language suitable for blogs/social media.
	StyleCasual TranslationStyle = "casual"
	// StyleMarketing uses persuasive, engaging language for promotional content.
	StyleMarketing TranslationStyle = "marketing"
	// StyleTechnical uses precise, technical language for documentation.
	StyleTechnical TranslationStyle = "technical"
)

// Tag handling modes understood by backends.
const (
	TagHandlingNone = ""
	TagHandlingHTML = "html"
)

// PassThroughMarker prefixes values that are copied verbatim instead of
// translated. The host uses it for embedded dynamic tags.
const PassThroughMarker = "[["

// TranslatePermission is the host permission required to use the feature.
const TranslatePermission = "page-translate"

// AdminTemplates are host templates that are never translated.
var AdminTemplates = []string{"admin", "language", "user", "permission", "role"}

// WriteMode governs whether a populated target value is translated again.
type WriteMode string

const (
	// WriteEmpty only fills target values that are empty.
	WriteEmpty WriteMode = "empty"
	// WriteChanged retranslates the fields changed by the triggering save.
	WriteChanged WriteMode = "changed"
	// WriteAll always overwrites target values.
	WriteAll WriteMode = "all"
)

// ParseWriteMode converts a configuration value into a WriteMode.
// An empty string yields WriteEmpty.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", WriteEmpty:
		return WriteEmpty, nil
	case WriteChanged:
		return WriteChanged, nil
	case WriteAll:
		return WriteAll, nil
	}
	return WriteEmpty, fmt.Errorf("unknown write mode %q", s)
}

// Language is a host language together with its backend locale code.
type Language struct {
	ID       string // Host language identifier
	Code     string // Backend locale code (e.g., "DE", "en-GB")
	Title    string // Display title
	Glossary string // Raw glossary text, one "source==target" entry per line
}

// FieldKind is the structural kind of a field.
type FieldKind int

const (
	KindUnhandled FieldKind = iota
	KindPlainText
	KindFileDescription
	KindRepeatingGroup
	KindNestedSchema
	KindDynamicBundle
	KindTabular
	KindCompositeMultipart
)

var kindNames = map[FieldKind]string{
	KindUnhandled:          "unhandled",
	KindPlainText:          "plain_text",
	KindFileDescription:    "file_description",
	KindRepeatingGroup:     "repeating_group",
	KindNestedSchema:       "nested_schema",
	KindDynamicBundle:      "dynamic_bundle",
	KindTabular:            "tabular",
	KindCompositeMultipart: "composite_multipart",
}

func (k FieldKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnhandled]
}

// fieldTypeKinds maps short host field type names to kinds.
var fieldTypeKinds = map[string]FieldKind{
	"PageTitleLanguage": KindPlainText,
	"TextLanguage":      KindPlainText,
	"TextareaLanguage":  KindPlainText,
	"File":              KindFileDescription,
	"Image":             KindFileDescription,
	"Repeater":          KindRepeatingGroup,
	"RepeaterMatrix":    KindRepeatingGroup,
	"FieldsetPage":      KindNestedSchema,
	"Functional":        KindDynamicBundle,
	"Table":             KindTabular,
	"Combo":             KindCompositeMultipart,
}

// ClassifyFieldType resolves a host field type name to its FieldKind.
// Names may carry a namespace and a "Fieldtype" prefix, so
// "cms/FieldtypeTextLanguage" and "TextLanguage" classify alike.
func ClassifyFieldType(typeName string) FieldKind {
	short := strings.TrimSpace(typeName)
	if i := strings.LastIndexAny(short, `/\`); i >= 0 {
		short = short[i+1:]
	}
	short = strings.TrimPrefix(short, "Fieldtype")
	if kind, ok := fieldTypeKinds[short]; ok {
		return kind
	}
	return KindUnhandled
}

// FieldDescriptor describes one field of a node.
type FieldDescriptor struct {
	Name  string // Field name
	Label string // Human-readable label
	Type  string // Host field type name
}

// Kind classifies the descriptor's host type.
func (f FieldDescriptor) Kind() FieldKind {
	return ClassifyFieldType(f.Type)
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldDescriptor) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// TranslationOutcome is the result of translating one field.
type TranslationOutcome struct {
	Field           string   // Field name
	Label           string   // Field label
	TranslatedCount int      // 1 if any target language was written, else 0
	Errors          []string // Gateway failures for this field
}
