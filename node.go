package pagetlai

import (
	"context"
	"time"
)

// MultiValue is a multilingual scalar: one string per host language.
type MultiValue interface {
	LanguageValue(languageID string) string
	SetLanguageValue(languageID, value string)
}

// NamedValue is a named sub-value of a file item, table row or composite field.
// Value holds a MultiValue when the sub-value is multilingual; any other value
// is left alone.
type NamedValue struct {
	Name  string
	Value any
}

// FileItem is one file or image attached to a file field.
type FileItem interface {
	Name() string
	// Description is the item's multilingual description.
	Description() MultiValue
	// Values returns additional sub-fields declared on the item's schema.
	Values() []NamedValue
	Save(ctx context.Context) error
}

// Bundle is a dynamic key/value field. Translations live under derived
// keys of the form "key.<languageId>"; keys starting with "." are fallback
// shadow entries.
type Bundle interface {
	Keys() []string
	Get(key string) string
	Set(key, value string)
}

// Node is a content record: a page or a sub-record reachable from it, such
// as a repeater item or a fieldset.
type Node interface {
	ID() string
	Template() string
	// Fields lists the node's fields. Nodes whose schema varies per item
	// return the fields of their variant.
	Fields() []FieldDescriptor

	Text(field string) MultiValue
	Files(field string) []FileItem
	Children(field string) []Node
	Nested(field string) Node
	Bundle(field string) Bundle
	Rows(field string) [][]NamedValue
	Parts(field string) []NamedValue

	// Save persists the node, scoped to the named fields.
	Save(ctx context.Context, fields ...string) error
}

// Page is a top-level node that is part of the host's page tree.
type Page interface {
	Node
	Title() string
	Modified() time.Time
	Subpages(includeHidden bool) ([]Page, error)
}
