package pagetlai

import (
	"strings"
	"time"
)

// Settings is the persisted configuration a policy is resolved from.
type Settings struct {
	SourceLanguage    string     // Source language ID (falls back to DefaultLanguage)
	DefaultLanguage   string     // Host default language ID
	Languages         []Language // All host languages, in display order
	ExcludedLanguages []string   // Language IDs never translated into
	ExcludedTemplates []string   // Templates never translated
	ExcludedFields    []string   // Field names never translated
	WriteMode         WriteMode
	SingleButton      bool // Offer one combined save action instead of one per language
}

// Actor is the user triggering a run.
type Actor interface {
	HasPermission(name string) bool
}

// Trigger carries the metadata of the event starting a run.
type Trigger struct {
	Action         string    // Submitted save action value
	ChangedFields  []string  // Fields modified by the triggering save
	TargetLanguage string    // Restricts the run to one target language ID
	LastModified   time.Time // Page modification time before the triggering save
	Actor          Actor
}

// TranslationPolicy is the immutable decision input of one run.
type TranslationPolicy struct {
	source            Language
	targets           []Language
	languages         []Language
	excludedTemplates map[string]bool
	excludedFields    map[string]bool
	writeMode         WriteMode
	changedFields     map[string]bool
}

// ResolvePolicy builds the policy of one run from settings and the trigger.
// It never fails: a missing source language falls back to the default
// language, and an empty target set yields a policy that translates nothing.
func ResolvePolicy(settings Settings, trigger Trigger) TranslationPolicy {
	mode := settings.WriteMode
	if mode == "" {
		mode = WriteEmpty
	}

	p := TranslationPolicy{
		source:            resolveSource(settings),
		languages:         append([]Language(nil), settings.Languages...),
		excludedTemplates: toSet(AdminTemplates, settings.ExcludedTemplates),
		excludedFields:    toSet(settings.ExcludedFields),
		writeMode:         mode,
	}

	excludedLanguages := toSet(settings.ExcludedLanguages)
	override := strings.TrimSpace(trigger.TargetLanguage)
	for _, lang := range settings.Languages {
		if lang.ID == p.source.ID || excludedLanguages[lang.ID] {
			continue
		}
		if override != "" && lang.ID != override {
			continue
		}
		p.targets = append(p.targets, lang)
	}

	if mode == WriteChanged {
		p.changedFields = toSet(trigger.ChangedFields)
	}

	return p
}

func resolveSource(settings Settings) Language {
	id := strings.TrimSpace(settings.SourceLanguage)
	if id == "" {
		id = strings.TrimSpace(settings.DefaultLanguage)
	}
	if id == "" && len(settings.Languages) > 0 {
		id = settings.Languages[0].ID
	}
	for _, lang := range settings.Languages {
		if lang.ID == id {
			return lang
		}
	}
	return Language{ID: id}
}

func toSet(lists ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, list := range lists {
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				set[item] = true
			}
		}
	}
	return set
}

// Source returns the language translated from.
func (p TranslationPolicy) Source() Language {
	return p.source
}

// Targets returns a copy of the languages translated into.
func (p TranslationPolicy) Targets() []Language {
	return append([]Language(nil), p.targets...)
}

// Languages returns a copy of every configured language, source included.
func (p TranslationPolicy) Languages() []Language {
	return append([]Language(nil), p.languages...)
}

// WriteMode returns the policy's write mode.
func (p TranslationPolicy) WriteMode() WriteMode {
	return p.writeMode
}

// IsFieldExcluded reports whether a field is never translated.
func (p TranslationPolicy) IsFieldExcluded(name string) bool {
	return p.excludedFields[name]
}

// IsTemplateExcluded reports whether pages of a template are never translated.
func (p TranslationPolicy) IsTemplateExcluded(template string) bool {
	return p.excludedTemplates[template]
}

// IsChanged reports whether a field was modified by the triggering save.
// Always false unless the write mode is WriteChanged.
func (p TranslationPolicy) IsChanged(name string) bool {
	return p.changedFields[name]
}

// withWriteMode returns a copy of p using mode.
func (p TranslationPolicy) withWriteMode(mode WriteMode) TranslationPolicy {
	p.writeMode = mode
	if mode != WriteChanged {
		p.changedFields = nil
	}
	return p
}

// needsTranslation decides whether a target value is (re)translated.
// Under WriteChanged every eligible field is considered stale.
func (p TranslationPolicy) needsTranslation(source, target string) bool {
	if isEmpty(source) {
		return false
	}
	if isEmpty(target) {
		return true
	}
	return p.writeMode != WriteEmpty
}

func isEmpty(value string) bool {
	return strings.TrimSpace(value) == ""
}
