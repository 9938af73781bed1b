package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/ZaguanLabs/pagetlai"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// Store owns a configuration file. It persists the provisioned glossary
// identifier and the per-language glossary fingerprints back to the file.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  *Config
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("failed to read configuration %s", path)).
			WithTextCode(codeReadFailed)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return &Store{path: path, cfg: cfg}, nil
}

// NewStore wraps an already decoded configuration. An empty path keeps
// the store in memory.
func NewStore(path string, cfg *Config) *Store {
	return &Store{path: path, cfg: cfg}
}

// Config returns the loaded configuration.
func (s *Store) Config() *Config {
	return s.cfg
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes the configuration back to its file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// GlossaryID returns the stored glossary identifier.
func (s *Store) GlossaryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.GlossaryID
}

// SaveGlossaryID stores the glossary identifier and writes the file.
func (s *Store) SaveGlossaryID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.GlossaryID = id
	return s.save()
}

// GlossaryHash returns the fingerprint of the glossary text last synced
// for a language.
func (s *Store) GlossaryHash(languageID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lang := range s.cfg.Languages {
		if lang.ID == languageID {
			return lang.GlossaryHash
		}
	}
	return ""
}

// SetGlossaryHash records the fingerprint of a language's synced glossary
// text and writes the file.
func (s *Store) SetGlossaryHash(languageID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cfg.Languages {
		if s.cfg.Languages[i].ID == languageID {
			s.cfg.Languages[i].GlossaryHash = hash
			return s.save()
		}
	}
	return fmt.Errorf("language %q is not configured", languageID)
}

var _ pagetlai.GlossaryIDStore = (*Store)(nil)
