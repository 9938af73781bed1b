package pagetlai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// fakeValue is a MultiValue backed by a map.
type fakeValue map[string]string

func (v fakeValue) LanguageValue(languageID string) string {
	return v[languageID]
}

func (v fakeValue) SetLanguageValue(languageID, value string) {
	v[languageID] = value
}

type fakeFile struct {
	name    string
	desc    fakeValue
	values  []NamedValue
	saves   int
	saveErr error
}

func (f *fakeFile) Name() string { return f.name }
func (f *fakeFile) Description() MultiValue { return f.desc }
func (f *fakeFile) Values() []NamedValue { return f.values }

func (f *fakeFile) Save(ctx context.Context) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	return nil
}

type fakeBundle struct {
	keys   []string
	values map[string]string
}

func newFakeBundle(pairs ...string) *fakeBundle {
	b := &fakeBundle{values: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Set(pairs[i], pairs[i+1])
	}
	return b
}

func (b *fakeBundle) Keys() []string { return append([]string(nil), b.keys...) }
func (b *fakeBundle) Get(key string) string { return b.values[key] }

func (b *fakeBundle) Set(key, value string) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
}

// fakeNode is an in-memory Node. Fields are declared through the add
// helpers, which keep the descriptor list and the field data in step.
type fakeNode struct {
	id       string
	template string
	fields   []FieldDescriptor

	texts    map[string]fakeValue
	files    map[string][]FileItem
	children map[string][]Node
	nested   map[string]Node
	bundles  map[string]*fakeBundle
	rows     map[string][][]NamedValue
	parts    map[string][]NamedValue

	saves   [][]string
	saveErr error
}

func newFakeNode(id, template string) *fakeNode {
	return &fakeNode{
		id:       id,
		template: template,
		texts:    make(map[string]fakeValue),
		files:    make(map[string][]FileItem),
		children: make(map[string][]Node),
		nested:   make(map[string]Node),
		bundles:  make(map[string]*fakeBundle),
		rows:     make(map[string][][]NamedValue),
		parts:    make(map[string][]NamedValue),
	}
}

func (n *fakeNode) declare(name, label, typeName string) {
	n.fields = append(n.fields, FieldDescriptor{Name: name, Label: label, Type: typeName})
}

func (n *fakeNode) addText(name, label string, value fakeValue) fakeValue {
	n.declare(name, label, "FieldtypeTextLanguage")
	n.texts[name] = value
	return value
}

func (n *fakeNode) addFiles(name, label string, items ...*fakeFile) {
	n.declare(name, label, "FieldtypeImage")
	for _, item := range items {
		n.files[name] = append(n.files[name], item)
	}
}

func (n *fakeNode) addChildren(name, label string, children ...*fakeNode) {
	n.declare(name, label, "FieldtypeRepeater")
	for _, child := range children {
		n.children[name] = append(n.children[name], child)
	}
}

func (n *fakeNode) addNested(name, label string, nested *fakeNode) {
	n.declare(name, label, "FieldtypeFieldsetPage")
	n.nested[name] = nested
}

func (n *fakeNode) addBundle(name, label string, b *fakeBundle) {
	n.declare(name, label, "FieldtypeFunctional")
	n.bundles[name] = b
}

func (n *fakeNode) addRows(name, label string, rows ...[]NamedValue) {
	n.declare(name, label, "FieldtypeTable")
	n.rows[name] = rows
}

func (n *fakeNode) addParts(name, label string, parts ...NamedValue) {
	n.declare(name, label, "FieldtypeCombo")
	n.parts[name] = parts
}

func (n *fakeNode) ID() string { return n.id }
func (n *fakeNode) Template() string { return n.template }
func (n *fakeNode) Fields() []FieldDescriptor { return n.fields }

func (n *fakeNode) Text(field string) MultiValue {
	if v, ok := n.texts[field]; ok {
		return v
	}
	return nil
}

func (n *fakeNode) Files(field string) []FileItem { return n.files[field] }
func (n *fakeNode) Children(field string) []Node { return n.children[field] }
func (n *fakeNode) Rows(field string) [][]NamedValue { return n.rows[field] }
func (n *fakeNode) Parts(field string) []NamedValue { return n.parts[field] }

func (n *fakeNode) Nested(field string) Node {
	if nested, ok := n.nested[field]; ok {
		return nested
	}
	return nil
}

func (n *fakeNode) Bundle(field string) Bundle {
	if b, ok := n.bundles[field]; ok {
		return b
	}
	return nil
}

func (n *fakeNode) Save(ctx context.Context, fields ...string) error {
	if n.saveErr != nil {
		return n.saveErr
	}
	n.saves = append(n.saves, fields)
	return nil
}

func (n *fakeNode) savedFields() []string {
	var out []string
	for _, fields := range n.saves {
		out = append(out, fields...)
	}
	return out
}

type fakePage struct {
	*fakeNode
	title    string
	modified time.Time
	hidden   bool
	subpages []*fakePage
	subErr   error
}

func newFakePage(id, title, template string, subpages ...*fakePage) *fakePage {
	return &fakePage{
		fakeNode: newFakeNode(id, template),
		title:    title,
		subpages: subpages,
	}
}

func (p *fakePage) Title() string { return p.title }
func (p *fakePage) Modified() time.Time { return p.modified }

func (p *fakePage) Subpages(includeHidden bool) ([]Page, error) {
	if p.subErr != nil {
		return nil, p.subErr
	}
	var out []Page
	for _, sub := range p.subpages {
		if sub.hidden && !includeHidden {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

// fakeBackend answers "<TARGET>:<text>" unless fail names the target.
type fakeBackend struct {
	mu       sync.Mutex
	fail     map[string]error
	requests []TranslateRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fail: make(map[string]error)}
}

func (b *fakeBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, req)
	if err := b.fail[req.TargetLocale]; err != nil {
		return "", err
	}
	return req.TargetLocale + ":" + req.Text, nil
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *fakeBackend) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, req := range b.requests {
		out = append(out, req.Text)
	}
	return out
}

type fakeActor struct {
	allowed bool
}

func (a fakeActor) HasPermission(name string) bool {
	return a.allowed && name == TranslatePermission
}

// fakeGlossaryBackend is an in-memory GlossaryBackend with injectable
// failures.
type fakeGlossaryBackend struct {
	glossaries map[string]*GlossaryInfo
	dicts      map[string]Dictionary
	nextID     int

	createErr  error
	getErr     error
	replaceErr error
	deleteErr  error

	created  int
	replaced int
	deleted  int
}

func newFakeGlossaryBackend() *fakeGlossaryBackend {
	return &fakeGlossaryBackend{
		glossaries: make(map[string]*GlossaryInfo),
		dicts:      make(map[string]Dictionary),
	}
}

func (b *fakeGlossaryBackend) dictKey(id, source, target string) string {
	return id + "|" + DictionaryKey(source, target)
}

func (b *fakeGlossaryBackend) CreateGlossary(ctx context.Context, name string, dictionaries []Dictionary) (*GlossaryInfo, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	b.nextID++
	b.created++
	info := &GlossaryInfo{ID: fmt.Sprintf("g%d", b.nextID), Name: name}
	for _, d := range dictionaries {
		b.dicts[b.dictKey(info.ID, d.SourceLocale, d.TargetLocale)] = d
		info.Dictionaries = append(info.Dictionaries, DictionaryInfo{
			SourceLocale: d.SourceLocale,
			TargetLocale: d.TargetLocale,
			EntryCount:   len(d.Entries),
		})
	}
	b.glossaries[info.ID] = info
	return info, nil
}

func (b *fakeGlossaryBackend) GetGlossary(ctx context.Context, id string) (*GlossaryInfo, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	info, ok := b.glossaries[id]
	if !ok {
		return nil, ErrGlossaryNotFound
	}
	return info, nil
}

func (b *fakeGlossaryBackend) ListGlossaries(ctx context.Context) ([]GlossaryInfo, error) {
	ids := make([]string, 0, len(b.glossaries))
	for id := range b.glossaries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]GlossaryInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, *b.glossaries[id])
	}
	return out, nil
}

func (b *fakeGlossaryBackend) GetDictionary(ctx context.Context, glossaryID, sourceLocale, targetLocale string) (*Dictionary, error) {
	d, ok := b.dicts[b.dictKey(glossaryID, sourceLocale, targetLocale)]
	if !ok {
		return nil, ErrGlossaryNotFound
	}
	return &d, nil
}

func (b *fakeGlossaryBackend) ReplaceDictionary(ctx context.Context, glossaryID string, dictionary Dictionary) error {
	if b.replaceErr != nil {
		return b.replaceErr
	}
	if _, ok := b.glossaries[glossaryID]; !ok {
		return ErrGlossaryNotFound
	}
	b.replaced++
	b.dicts[b.dictKey(glossaryID, dictionary.SourceLocale, dictionary.TargetLocale)] = dictionary
	return nil
}

func (b *fakeGlossaryBackend) DeleteDictionary(ctx context.Context, glossaryID, sourceLocale, targetLocale string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	key := b.dictKey(glossaryID, sourceLocale, targetLocale)
	if _, ok := b.dicts[key]; !ok {
		return ErrGlossaryNotFound
	}
	b.deleted++
	delete(b.dicts, key)
	return nil
}

type fakeIDStore struct {
	id      string
	saveErr error
	saved   []string
}

func (s *fakeIDStore) GlossaryID() string { return s.id }

func (s *fakeIDStore) SaveGlossaryID(id string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.id = id
	s.saved = append(s.saved, id)
	return nil
}

// testLanguages returns a host with German source and English and French
// targets.
func testLanguages() []Language {
	return []Language{
		{ID: "default", Code: "DE", Title: "Deutsch"},
		{ID: "en", Code: "en", Title: "English"},
		{ID: "fr", Code: "FR", Title: "Français"},
	}
}

func testSettings(mode WriteMode) Settings {
	return Settings{
		DefaultLanguage: "default",
		Languages:       testLanguages(),
		WriteMode:       mode,
	}
}

func testPolicy(mode WriteMode, changed ...string) TranslationPolicy {
	return ResolvePolicy(testSettings(mode), Trigger{ChangedFields: changed})
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func joinSorted(list []string) string {
	sorted := append([]string(nil), list...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
