package content

import (
	"fmt"
	"strings"

	"github.com/ZaguanLabs/pagetlai"
)

// ChangedFields compares the source-language content of two revisions of a
// record and returns the names of the fields of after that differ, in field
// order. Fields missing from before count as changed. It gives hosts without
// their own change tracking the list WriteChanged runs are filtered by.
func ChangedFields(before, after *Record, sourceID string) []string {
	if after == nil {
		return nil
	}

	old := make(map[string]string)
	if before != nil {
		for _, f := range before.FieldList {
			old[f.Name] = fieldHash(f, sourceID)
		}
	}

	var changed []string
	for _, f := range after.FieldList {
		prev, ok := old[f.Name]
		if !ok || prev != fieldHash(f, sourceID) {
			changed = append(changed, f.Name)
		}
	}
	return changed
}

// fieldHash fingerprints the source-language content of a field.
func fieldHash(f *Field, sourceID string) string {
	var b strings.Builder
	writeField(&b, f, sourceID)
	return pagetlai.HashText(b.String())
}

func writeField(b *strings.Builder, f *Field, sourceID string) {
	fmt.Fprintf(b, "%s|%s|%s\n", f.Name, f.Type, f.Values[sourceID])

	for _, file := range f.Files {
		fmt.Fprintf(b, "file|%s|%s\n", file.FileName, file.Desc[sourceID])
		writeSubValues(b, file.Subfields, sourceID)
	}
	for _, item := range f.Items {
		writeRecord(b, item, sourceID)
	}
	if f.Page != nil {
		writeRecord(b, f.Page, sourceID)
	}

	keys := make(map[string]bool, len(f.Entries))
	for _, e := range f.Entries {
		keys[e.Key] = true
	}
	for _, e := range f.Entries {
		if strings.HasPrefix(e.Key, ".") || isDerived(e.Key, keys) {
			continue
		}
		fmt.Fprintf(b, "entry|%s|%s\n", e.Key, e.Value)
	}

	for i, row := range f.Rows {
		fmt.Fprintf(b, "row|%d\n", i)
		writeSubValues(b, row, sourceID)
	}
	writeSubValues(b, f.Parts, sourceID)
}

func writeRecord(b *strings.Builder, r *Record, sourceID string) {
	fmt.Fprintf(b, "record|%s|%s\n", r.RecordID, r.TemplateName)
	for _, f := range r.FieldList {
		writeField(b, f, sourceID)
	}
}

func writeSubValues(b *strings.Builder, values []*SubValue, sourceID string) {
	for _, sv := range values {
		if sv.Values != nil {
			fmt.Fprintf(b, "sub|%s|%s\n", sv.Name, sv.Values[sourceID])
			continue
		}
		fmt.Fprintf(b, "sub|%s|%v\n", sv.Name, sv.Value)
	}
}

// isDerived reports whether key is a "<base>.<languageId>" translation of
// another key in the bundle.
func isDerived(key string, keys map[string]bool) bool {
	i := strings.LastIndex(key, ".")
	return i > 0 && i < len(key)-1 && keys[key[:i]]
}
