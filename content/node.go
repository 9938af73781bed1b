package content

import (
	"context"
	"time"

	"github.com/ZaguanLabs/pagetlai"
)

// Record is a content node: a page body, a repeater item or a fieldset.
type Record struct {
	RecordID     string   `yaml:"id"`
	TemplateName string   `yaml:"template,omitempty"`
	FieldList    []*Field `yaml:"fields,omitempty"`

	tree *Tree `yaml:"-"`
	page *Page `yaml:"-"`
}

// Field is one field of a record. Which members are used depends on Type.
type Field struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label,omitempty"`
	Type  string `yaml:"type"`

	Values  map[string]string `yaml:"values,omitempty"`  // plain text, keyed by language ID
	Files   []*File           `yaml:"files,omitempty"`   // file and image fields
	Items   []*Record         `yaml:"items,omitempty"`   // repeaters
	Page    *Record           `yaml:"page,omitempty"`    // fieldsets
	Entries []*Entry          `yaml:"entries,omitempty"` // functional bundles, in key order
	Rows    [][]*SubValue     `yaml:"rows,omitempty"`    // tables
	Parts   []*SubValue       `yaml:"parts,omitempty"`   // combo fields
}

// File is one item of a file or image field.
type File struct {
	FileName  string            `yaml:"name"`
	Desc      map[string]string `yaml:"description,omitempty"`
	Subfields []*SubValue       `yaml:"values,omitempty"`

	owner *Record `yaml:"-"`
}

// Entry is one key of a functional bundle.
type Entry struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// SubValue is a named cell, part or file sub-field. It is multilingual
// when Values is set; Value holds any other scalar.
type SubValue struct {
	Name   string            `yaml:"name"`
	Values map[string]string `yaml:"values,omitempty"`
	Value  any               `yaml:"value,omitempty"`
}

// Page is a record that is part of the page tree.
type Page struct {
	Record     `yaml:",inline"`
	PageTitle  string    `yaml:"title"`
	ModifiedAt time.Time `yaml:"modified,omitempty"`
	Hidden     bool      `yaml:"hidden,omitempty"`
	Subpage    []*Page   `yaml:"children,omitempty"`
}

func (r *Record) ID() string {
	return r.RecordID
}

func (r *Record) Template() string {
	return r.TemplateName
}

func (r *Record) Fields() []pagetlai.FieldDescriptor {
	fields := make([]pagetlai.FieldDescriptor, 0, len(r.FieldList))
	for _, f := range r.FieldList {
		fields = append(fields, pagetlai.FieldDescriptor{Name: f.Name, Label: f.Label, Type: f.Type})
	}
	return fields
}

// Field returns the named field, or nil.
func (r *Record) Field(name string) *Field {
	for _, f := range r.FieldList {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (r *Record) Text(field string) pagetlai.MultiValue {
	f := r.Field(field)
	if f == nil {
		return nil
	}
	return languageValues{m: &f.Values}
}

func (r *Record) Files(field string) []pagetlai.FileItem {
	f := r.Field(field)
	if f == nil {
		return nil
	}
	items := make([]pagetlai.FileItem, 0, len(f.Files))
	for _, file := range f.Files {
		file.owner = r
		items = append(items, file)
	}
	return items
}

func (r *Record) Children(field string) []pagetlai.Node {
	f := r.Field(field)
	if f == nil {
		return nil
	}
	nodes := make([]pagetlai.Node, 0, len(f.Items))
	for _, item := range f.Items {
		nodes = append(nodes, item)
	}
	return nodes
}

func (r *Record) Nested(field string) pagetlai.Node {
	f := r.Field(field)
	if f == nil || f.Page == nil {
		return nil
	}
	return f.Page
}

func (r *Record) Bundle(field string) pagetlai.Bundle {
	f := r.Field(field)
	if f == nil {
		return nil
	}
	return bundle{field: f}
}

func (r *Record) Rows(field string) [][]pagetlai.NamedValue {
	f := r.Field(field)
	if f == nil {
		return nil
	}
	rows := make([][]pagetlai.NamedValue, 0, len(f.Rows))
	for _, row := range f.Rows {
		rows = append(rows, namedValues(row))
	}
	return rows
}

func (r *Record) Parts(field string) []pagetlai.NamedValue {
	f := r.Field(field)
	if f == nil {
		return nil
	}
	return namedValues(f.Parts)
}

// Save records the save with the tree and writes the tree back to its file.
func (r *Record) Save(ctx context.Context, fields ...string) error {
	if r.tree == nil {
		return nil
	}
	return r.tree.recordSave(ctx, r.page, r.RecordID, fields)
}

func (p *Page) Title() string {
	return p.PageTitle
}

func (p *Page) Modified() time.Time {
	return p.ModifiedAt
}

// Subpages returns the direct children, leaving out hidden pages unless
// includeHidden is set.
func (p *Page) Subpages(includeHidden bool) ([]pagetlai.Page, error) {
	pages := make([]pagetlai.Page, 0, len(p.Subpage))
	for _, child := range p.Subpage {
		if child.Hidden && !includeHidden {
			continue
		}
		pages = append(pages, child)
	}
	return pages, nil
}

func (f *File) Name() string {
	return f.FileName
}

func (f *File) Description() pagetlai.MultiValue {
	return languageValues{m: &f.Desc}
}

func (f *File) Values() []pagetlai.NamedValue {
	return namedValues(f.Subfields)
}

func (f *File) Save(ctx context.Context) error {
	if f.owner == nil || f.owner.tree == nil {
		return nil
	}
	return f.owner.tree.recordSave(ctx, f.owner.page, f.owner.RecordID+"/"+f.FileName, nil)
}

// languageValues exposes a language-keyed map as a MultiValue, allocating
// the map on first write.
type languageValues struct {
	m *map[string]string
}

func (v languageValues) LanguageValue(languageID string) string {
	return (*v.m)[languageID]
}

func (v languageValues) SetLanguageValue(languageID, value string) {
	if *v.m == nil {
		*v.m = make(map[string]string)
	}
	(*v.m)[languageID] = value
}

func namedValues(values []*SubValue) []pagetlai.NamedValue {
	out := make([]pagetlai.NamedValue, 0, len(values))
	for _, sv := range values {
		nv := pagetlai.NamedValue{Name: sv.Name, Value: sv.Value}
		if sv.Values != nil {
			nv.Value = languageValues{m: &sv.Values}
		}
		out = append(out, nv)
	}
	return out
}

type bundle struct {
	field *Field
}

func (b bundle) Keys() []string {
	keys := make([]string, 0, len(b.field.Entries))
	for _, e := range b.field.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

func (b bundle) Get(key string) string {
	for _, e := range b.field.Entries {
		if e.Key == key {
			return e.Value
		}
	}
	return ""
}

func (b bundle) Set(key, value string) {
	for _, e := range b.field.Entries {
		if e.Key == key {
			e.Value = value
			return
		}
	}
	b.field.Entries = append(b.field.Entries, &Entry{Key: key, Value: value})
}

var (
	_ pagetlai.Page     = (*Page)(nil)
	_ pagetlai.Node     = (*Record)(nil)
	_ pagetlai.FileItem = (*File)(nil)
)
