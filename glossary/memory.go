package glossary

import (
	"context"
	"sync"
	"time"

	"github.com/ZaguanLabs/pagetlai"
)

// MemoryStore is a thread-safe in-memory glossary store. It is used in
// tests and by the CLI when no persistent store is configured.
type MemoryStore struct {
	mu         sync.RWMutex
	glossaries map[string]*memoryGlossary
	order      []string
	newID      IDGenerator
	now        func() time.Time
}

type memoryGlossary struct {
	info         pagetlai.GlossaryInfo
	dictionaries map[string]pagetlai.Dictionary
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryIDGenerator overrides the identifier generator.
func WithMemoryIDGenerator(gen IDGenerator) MemoryOption {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithMemoryClock overrides the time source for creation timestamps.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		glossaries: make(map[string]*memoryGlossary),
		newID:      newUUID,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGlossary stores a new glossary holding dictionaries.
func (s *MemoryStore) CreateGlossary(ctx context.Context, name string, dictionaries []pagetlai.Dictionary) (*pagetlai.GlossaryInfo, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	g := &memoryGlossary{
		info: pagetlai.GlossaryInfo{
			ID:        s.newID(),
			Name:      name,
			CreatedAt: s.now().UTC(),
		},
		dictionaries: make(map[string]pagetlai.Dictionary),
	}
	for _, d := range dictionaries {
		d = normalizeDictionary(d)
		g.dictionaries[pairKey(d.SourceLocale, d.TargetLocale)] = d
		g.info.Dictionaries = upsertInfo(g.info.Dictionaries, d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.glossaries[g.info.ID] = g
	s.order = append(s.order, g.info.ID)

	return g.snapshot(), nil
}

// GetGlossary returns the glossary with the given identifier.
func (s *MemoryStore) GetGlossary(ctx context.Context, id string) (*pagetlai.GlossaryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.glossaries[id]
	if !ok {
		return nil, pagetlai.ErrGlossaryNotFound
	}
	return g.snapshot(), nil
}

// ListGlossaries returns every glossary in creation order.
func (s *MemoryStore) ListGlossaries(ctx context.Context) ([]pagetlai.GlossaryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]pagetlai.GlossaryInfo, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, *s.glossaries[id].snapshot())
	}
	return list, nil
}

// GetDictionary returns the dictionary of a locale pair.
func (s *MemoryStore) GetDictionary(ctx context.Context, glossaryID, sourceLocale, targetLocale string) (*pagetlai.Dictionary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.glossaries[glossaryID]
	if !ok {
		return nil, pagetlai.ErrGlossaryNotFound
	}
	d, ok := g.dictionaries[pairKey(sourceLocale, targetLocale)]
	if !ok {
		return nil, pagetlai.ErrGlossaryNotFound
	}
	d = normalizeDictionary(d)
	return &d, nil
}

// ReplaceDictionary creates or overwrites the dictionary of a locale pair.
func (s *MemoryStore) ReplaceDictionary(ctx context.Context, glossaryID string, dictionary pagetlai.Dictionary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.glossaries[glossaryID]
	if !ok {
		return pagetlai.ErrGlossaryNotFound
	}
	d := normalizeDictionary(dictionary)
	g.dictionaries[pairKey(d.SourceLocale, d.TargetLocale)] = d
	g.info.Dictionaries = upsertInfo(g.info.Dictionaries, d)
	return nil
}

// DeleteDictionary removes the dictionary of a locale pair.
func (s *MemoryStore) DeleteDictionary(ctx context.Context, glossaryID, sourceLocale, targetLocale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.glossaries[glossaryID]
	if !ok {
		return pagetlai.ErrGlossaryNotFound
	}
	infos, found := removeInfo(g.info.Dictionaries, sourceLocale, targetLocale)
	if !found {
		return pagetlai.ErrGlossaryNotFound
	}
	g.info.Dictionaries = infos
	delete(g.dictionaries, pairKey(sourceLocale, targetLocale))
	return nil
}

// Len returns the number of glossaries stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.glossaries)
}

func (g *memoryGlossary) snapshot() *pagetlai.GlossaryInfo {
	info := g.info
	info.Dictionaries = append([]pagetlai.DictionaryInfo(nil), g.info.Dictionaries...)
	return &info
}

// Verify MemoryStore implements GlossaryBackend
var _ pagetlai.GlossaryBackend = (*MemoryStore)(nil)
