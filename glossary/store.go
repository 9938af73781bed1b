// Package glossary provides glossary dictionary stores implementing
// pagetlai.GlossaryBackend.
package glossary

import (
	"errors"
	"strings"

	"github.com/ZaguanLabs/pagetlai"
	"github.com/google/uuid"
)

// ErrNameRequired is returned when a glossary is created without a name.
var ErrNameRequired = errors.New("glossary name is required")

// IDGenerator issues glossary identifiers.
type IDGenerator func() string

func newUUID() string {
	return uuid.NewString()
}

// normalizeDictionary rewrites the locales of d into their stored form.
func normalizeDictionary(d pagetlai.Dictionary) pagetlai.Dictionary {
	d.SourceLocale = storedLocale(d.SourceLocale)
	d.TargetLocale = storedLocale(d.TargetLocale)
	d.Entries = append([]pagetlai.GlossaryEntry(nil), d.Entries...)
	return d
}

func storedLocale(code string) string {
	return pagetlai.NormalizeLocale(pagetlai.SanitizeLocale(code))
}

func pairKey(sourceLocale, targetLocale string) string {
	return pagetlai.DictionaryKey(sourceLocale, targetLocale)
}

// upsertInfo sets the entry count of a pair, appending new pairs.
func upsertInfo(infos []pagetlai.DictionaryInfo, d pagetlai.Dictionary) []pagetlai.DictionaryInfo {
	for i, info := range infos {
		if pairKey(info.SourceLocale, info.TargetLocale) == pairKey(d.SourceLocale, d.TargetLocale) {
			infos[i].EntryCount = len(d.Entries)
			return infos
		}
	}
	return append(infos, pagetlai.DictionaryInfo{
		SourceLocale: d.SourceLocale,
		TargetLocale: d.TargetLocale,
		EntryCount:   len(d.Entries),
	})
}

// removeInfo drops a pair and reports whether it was present.
func removeInfo(infos []pagetlai.DictionaryInfo, sourceLocale, targetLocale string) ([]pagetlai.DictionaryInfo, bool) {
	key := pairKey(sourceLocale, targetLocale)
	for i, info := range infos {
		if pairKey(info.SourceLocale, info.TargetLocale) == key {
			return append(infos[:i], infos[i+1:]...), true
		}
	}
	return infos, false
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}
