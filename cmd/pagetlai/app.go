package main

import (
	"fmt"
	"strings"

	"github.com/ZaguanLabs/pagetlai"
	"github.com/ZaguanLabs/pagetlai/config"
	"github.com/ZaguanLabs/pagetlai/glossary"
	"github.com/ZaguanLabs/pagetlai/internal/logging/gologger"
	"github.com/ZaguanLabs/pagetlai/provider"
)

// app holds the components wired from one configuration file.
type app struct {
	cfgStore   *config.Store
	cfg        *config.Config
	logger     *gologger.Logger
	glossaries *pagetlai.GlossaryManager
	translator *pagetlai.PageTranslator
	closers    []func() error
}

func newApp(configPath string) (*app, error) {
	cfgStore, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg := cfgStore.Config()

	logs, err := gologger.NewProvider(gologger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfgStore: cfgStore,
		cfg:      cfg,
		logger:   logs.Logger(pagetlai.Name),
	}

	backend, err := newBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	store, persistent, err := a.newGlossaryStore(cfg.GlossaryStore)
	if err != nil {
		return nil, err
	}

	// An in-memory glossary dies with the process, so its id is not worth
	// keeping in the configuration file.
	var ids pagetlai.GlossaryIDStore
	if persistent {
		ids = cfgStore
	}

	a.glossaries = pagetlai.NewGlossaryManager(store, ids,
		pagetlai.WithGlossaryName(cfg.GlossaryName),
		pagetlai.WithGlossaryLogger(logs.Logger("glossary")),
	)

	a.translator = pagetlai.NewPageTranslator(backend,
		pagetlai.WithGlossaryManager(a.glossaries),
		pagetlai.WithThrottle(cfg.ThrottleDuration()),
		pagetlai.WithGatewayOptions(
			pagetlai.WithPreserveFormatting(cfg.Backend.PreserveFormattingEnabled()),
			pagetlai.WithTagHandling(cfg.Backend.TagHandlingMode()),
			pagetlai.WithContext(cfg.Backend.Context),
			pagetlai.WithStyle(pagetlai.TranslationStyle(cfg.Backend.Style)),
		),
		pagetlai.WithLogger(a.logger),
	)

	return a, nil
}

func newBackend(cfg config.BackendConfig) (pagetlai.Backend, error) {
	var backend pagetlai.Backend

	switch strings.ToLower(cfg.Provider) {
	case "mock":
		return provider.NewMockProvider(), nil
	case "openai":
		key := cfg.APIKeyOrEnv()
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key required (backend.api_key or OPENAI_API_KEY env)")
		}
		backend = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:      key,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			BaseURL:     cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown backend provider %q", cfg.Provider)
	}

	backend = pagetlai.NewRetryableBackend(backend, cfg.RetryPolicy())
	if limit, ok := cfg.RateLimitPolicy(); ok {
		backend = pagetlai.NewRateLimitedBackend(backend, limit)
	}
	return backend, nil
}

// newGlossaryStore opens the configured glossary store and reports whether
// it outlives the process.
func (a *app) newGlossaryStore(cfg config.StoreConfig) (pagetlai.GlossaryBackend, bool, error) {
	switch strings.ToLower(cfg.Type) {
	case "redis":
		store, err := glossary.NewRedisStore(glossary.RedisConfig{
			URL:       cfg.URL,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, false, err
		}
		a.closers = append(a.closers, store.Close)
		return store, true, nil
	default:
		return glossary.NewMemoryStore(), false, nil
	}
}

// Close releases the glossary store connection.
func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("closing resource failed", "error", err)
		}
	}
}
