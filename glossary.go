package pagetlai

import (
	"context"
	"errors"
	"strings"
	"time"
)

// GlossaryEntry is one source-term → target-term substitution.
type GlossaryEntry struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Dictionary holds the ordered entries of one source/target locale pair.
type Dictionary struct {
	SourceLocale string          `json:"source_locale"`
	TargetLocale string          `json:"target_locale"`
	Entries      []GlossaryEntry `json:"entries"`
}

// Map returns the entries as a source → target map.
func (d Dictionary) Map() map[string]string {
	m := make(map[string]string, len(d.Entries))
	for _, e := range d.Entries {
		m[e.Source] = e.Target
	}
	return m
}

// DictionaryInfo summarizes one dictionary of a glossary.
type DictionaryInfo struct {
	SourceLocale string `json:"source_locale"`
	TargetLocale string `json:"target_locale"`
	EntryCount   int    `json:"entry_count"`
}

// GlossaryInfo describes a remote glossary holding one dictionary per
// language pair.
type GlossaryInfo struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	CreatedAt    time.Time        `json:"created_at"`
	Dictionaries []DictionaryInfo `json:"dictionaries"`
}

// GlossaryBackend is the glossary CRUD contract of a translation backend.
// Lookups of unknown glossaries or pairs return ErrGlossaryNotFound.
type GlossaryBackend interface {
	CreateGlossary(ctx context.Context, name string, dictionaries []Dictionary) (*GlossaryInfo, error)
	GetGlossary(ctx context.Context, id string) (*GlossaryInfo, error)
	ListGlossaries(ctx context.Context) ([]GlossaryInfo, error)
	GetDictionary(ctx context.Context, glossaryID, sourceLocale, targetLocale string) (*Dictionary, error)
	ReplaceDictionary(ctx context.Context, glossaryID string, dictionary Dictionary) error
	DeleteDictionary(ctx context.Context, glossaryID, sourceLocale, targetLocale string) error
}

// GlossaryIDStore persists the identifier of the provisioned glossary.
type GlossaryIDStore interface {
	GlossaryID() string
	SaveGlossaryID(id string) error
}

// ParseGlossary parses raw glossary text. Each non-blank line holds one
// "source==target" entry; both sides are trimmed and must be non-empty.
// A repeated source term keeps its first position and takes the last target.
func ParseGlossary(text string) []GlossaryEntry {
	var entries []GlossaryEntry
	index := make(map[string]int)

	for _, row := range strings.Split(text, "\n") {
		row = strings.TrimRight(row, "\r")
		if strings.TrimSpace(row) == "" {
			continue
		}

		parts := strings.Split(row, "==")
		if len(parts) < 2 {
			continue
		}
		source := strings.TrimSpace(parts[0])
		target := strings.TrimSpace(parts[1])
		if source == "" || target == "" {
			continue
		}

		if i, ok := index[source]; ok {
			entries[i].Target = target
			continue
		}
		index[source] = len(entries)
		entries = append(entries, GlossaryEntry{Source: source, Target: target})
	}

	return entries
}

// GlossaryManager provisions the run's glossary and maintains its
// per-language dictionaries.
type GlossaryManager struct {
	backend GlossaryBackend
	ids     GlossaryIDStore
	name    string
	logger  Logger
}

// GlossaryOption configures a GlossaryManager.
type GlossaryOption func(*GlossaryManager)

// WithGlossaryName sets the name given to created glossaries.
func WithGlossaryName(name string) GlossaryOption {
	return func(m *GlossaryManager) {
		m.name = name
	}
}

// WithGlossaryLogger sets the manager's logger.
func WithGlossaryLogger(logger Logger) GlossaryOption {
	return func(m *GlossaryManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewGlossaryManager creates a manager on top of a glossary backend. ids
// may be nil, in which case a glossary is created on every Ensure call.
func NewGlossaryManager(backend GlossaryBackend, ids GlossaryIDStore, opts ...GlossaryOption) *GlossaryManager {
	m := &GlossaryManager{
		backend: backend,
		ids:     ids,
		name:    "pagetlai",
		logger:  NoOpLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Ensure returns the glossary to attach during a run. The stored glossary is
// fetched when an identifier is known; otherwise dictionaries are built from
// every non-source language and a glossary is created if at least one of
// them has entries, and its identifier is persisted.
//
// Errors are never fatal: a nil glossary means the run proceeds without
// glossary attachment, and the returned error is meant for display only.
// The glossary may be non-nil while an error is returned.
func (m *GlossaryManager) Ensure(ctx context.Context, source Language, languages []Language) (*GlossaryInfo, error) {
	var errs []error

	if m.ids != nil {
		if id := m.ids.GlossaryID(); id != "" {
			info, err := m.backend.GetGlossary(ctx, id)
			if err == nil {
				return info, nil
			}
			errs = append(errs, &GlossaryError{Message: "fetching glossary " + id, Cause: err})
		}
	}

	dictionaries := m.BuildDictionaries(source, languages)
	if len(dictionaries) == 0 {
		return nil, errors.Join(errs...)
	}

	info, err := m.backend.CreateGlossary(ctx, m.name, dictionaries)
	if err != nil {
		errs = append(errs, &GlossaryError{Message: "creating glossary", Cause: err})
		return nil, errors.Join(errs...)
	}
	m.logger.Info("glossary created", "glossary_id", info.ID, "dictionaries", len(dictionaries))

	if m.ids != nil {
		if err := m.ids.SaveGlossaryID(info.ID); err != nil {
			errs = append(errs, &GlossaryError{Message: "saving glossary id", Cause: err})
		}
	}

	return info, errors.Join(errs...)
}

// BuildDictionaries parses the glossary text of every language except the
// source. Languages without a locale code or without entries are skipped.
func (m *GlossaryManager) BuildDictionaries(source Language, languages []Language) []Dictionary {
	if source.Code == "" {
		return nil
	}

	var dictionaries []Dictionary
	for _, lang := range languages {
		if lang.ID == source.ID || lang.Code == "" {
			continue
		}
		entries := ParseGlossary(lang.Glossary)
		if len(entries) == 0 {
			continue
		}
		dictionaries = append(dictionaries, Dictionary{
			SourceLocale: SanitizeLocale(source.Code),
			TargetLocale: SanitizeLocale(lang.Code),
			Entries:      entries,
		})
	}
	return dictionaries
}

// Dictionary fetches the dictionary of a locale pair. A missing glossary or
// pair yields false rather than an error.
func (m *GlossaryManager) Dictionary(ctx context.Context, glossary *GlossaryInfo, sourceLocale, targetLocale string) (*Dictionary, bool) {
	if glossary == nil {
		return nil, false
	}

	dict, err := m.backend.GetDictionary(ctx, glossary.ID, SanitizeLocale(sourceLocale), SanitizeLocale(targetLocale))
	if err != nil {
		if !errors.Is(err, ErrGlossaryNotFound) {
			m.logger.Warn("glossary dictionary lookup failed", "glossary_id", glossary.ID, "error", err)
		}
		return nil, false
	}
	return dict, true
}

// DictionaryExists reports whether the glossary has a dictionary for the pair.
func (m *GlossaryManager) DictionaryExists(ctx context.Context, glossary *GlossaryInfo, sourceLocale, targetLocale string) bool {
	_, ok := m.Dictionary(ctx, glossary, sourceLocale, targetLocale)
	return ok
}

// RebuildDictionary replaces the pair's dictionary with the entries parsed
// from text, or deletes it when text has no entries. It is idempotent.
func (m *GlossaryManager) RebuildDictionary(ctx context.Context, glossary *GlossaryInfo, text, sourceLocale, targetLocale string) error {
	if glossary == nil {
		return &GlossaryError{Message: "no glossary provisioned"}
	}

	source := SanitizeLocale(sourceLocale)
	target := SanitizeLocale(targetLocale)
	entries := ParseGlossary(text)

	if len(entries) == 0 {
		err := m.backend.DeleteDictionary(ctx, glossary.ID, source, target)
		if err != nil && !errors.Is(err, ErrGlossaryNotFound) {
			return &GlossaryError{Message: "deleting dictionary " + DictionaryKey(source, target), Cause: err}
		}
		m.logger.Info("glossary dictionary deleted", "glossary_id", glossary.ID, "pair", DictionaryKey(source, target))
		return nil
	}

	err := m.backend.ReplaceDictionary(ctx, glossary.ID, Dictionary{
		SourceLocale: source,
		TargetLocale: target,
		Entries:      entries,
	})
	if err != nil {
		return &GlossaryError{Message: "replacing dictionary " + DictionaryKey(source, target), Cause: err}
	}
	m.logger.Info("glossary dictionary replaced", "glossary_id", glossary.ID, "pair", DictionaryKey(source, target), "entries", len(entries))
	return nil
}

// List returns every glossary known to the backend.
func (m *GlossaryManager) List(ctx context.Context) ([]GlossaryInfo, error) {
	return m.backend.ListGlossaries(ctx)
}
