// Package config loads, validates and persists the pagetlai YAML
// configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/pagetlai"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up by the CLI.
const DefaultFileName = "pagetlai.yaml"

const (
	codeReadFailed  = "CONFIG_READ_FAILED"
	codeParseFailed = "CONFIG_PARSE_FAILED"
	codeInvalid     = "CONFIG_INVALID"
)

// Config is the decoded configuration file.
type Config struct {
	SourceLanguage    string           `yaml:"source_language,omitempty"`
	DefaultLanguage   string           `yaml:"default_language"`
	Languages         []LanguageConfig `yaml:"languages"`
	ExcludedLanguages []string         `yaml:"excluded_languages,omitempty"`
	ExcludedTemplates []string         `yaml:"excluded_templates,omitempty"`
	ExcludedFields    []string         `yaml:"excluded_fields,omitempty"`
	WriteMode         string           `yaml:"write_mode,omitempty"`
	// OverwriteExisting is the legacy switch; true means write mode "all".
	OverwriteExisting bool `yaml:"overwrite_existing,omitempty"`
	SingleButton      bool `yaml:"single_button,omitempty"`
	// Throttle is the minimum time between interactive runs on a page.
	// Zero means the default; a negative value disables the throttle.
	Throttle time.Duration `yaml:"throttle,omitempty"`

	GlossaryID   string `yaml:"glossary_id,omitempty"`
	GlossaryName string `yaml:"glossary_name,omitempty"`

	Backend       BackendConfig `yaml:"backend"`
	GlossaryStore StoreConfig   `yaml:"glossary_store"`
	Logging       LoggingConfig `yaml:"logging"`
}

// LanguageConfig describes one host language.
type LanguageConfig struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title,omitempty"`
	Locale   string `yaml:"locale,omitempty"`
	Glossary string `yaml:"glossary,omitempty"`
	// GlossaryHash fingerprints the glossary text last synced to the store.
	GlossaryHash string `yaml:"glossary_hash,omitempty"`
}

// BackendConfig selects and tunes the translation backend.
type BackendConfig struct {
	Provider           string          `yaml:"provider"`
	APIKey             string          `yaml:"api_key,omitempty"`
	Model              string          `yaml:"model,omitempty"`
	BaseURL            string          `yaml:"base_url,omitempty"`
	Temperature        float32         `yaml:"temperature,omitempty"`
	Context            string          `yaml:"context,omitempty"`
	Style              string          `yaml:"style,omitempty"`
	PreserveFormatting *bool           `yaml:"preserve_formatting,omitempty"`
	TagHandling        string          `yaml:"tag_handling,omitempty"`
	Retry              RetryConfig     `yaml:"retry,omitempty"`
	RateLimit          RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// RetryConfig tunes backend retries; zero values take the defaults.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries,omitempty"`
	BaseDelay  time.Duration `yaml:"base_delay,omitempty"`
	MaxDelay   time.Duration `yaml:"max_delay,omitempty"`
}

// RateLimitConfig enables backend rate limiting when RequestsPerMinute is set.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty"`
	BurstSize         int `yaml:"burst_size,omitempty"`
}

// StoreConfig selects the glossary store. The memory store is lost when the
// process exits, so the glossary id is only persisted for redis.
type StoreConfig struct {
	Type      string `yaml:"type"`
	URL       string `yaml:"url,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// LoggingConfig sets the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Parse decodes and validates configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse configuration").
			WithTextCode(codeParseFailed)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration").
			WithTextCode(codeInvalid)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.WriteMode == "" && c.OverwriteExisting {
		c.WriteMode = string(pagetlai.WriteAll)
	}
	if c.GlossaryName == "" {
		c.GlossaryName = "pagetlai"
	}
	if c.Backend.Provider == "" {
		c.Backend.Provider = "openai"
	}
	if c.Backend.TagHandling == "" {
		c.Backend.TagHandling = pagetlai.TagHandlingHTML
	}
	if c.GlossaryStore.Type == "" {
		c.GlossaryStore.Type = "memory"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultLanguage, validation.Required),
		validation.Field(&c.Languages, validation.Required, validation.By(uniqueLanguages)),
		validation.Field(&c.SourceLanguage, validation.By(c.knownLanguage)),
		validation.Field(&c.WriteMode, validation.In("empty", "changed", "all")),
		validation.Field(&c.Backend),
		validation.Field(&c.GlossaryStore),
		validation.Field(&c.Logging),
	)
}

func (c Config) knownLanguage(value any) error {
	id, _ := value.(string)
	if id == "" {
		return nil
	}
	for _, lang := range c.Languages {
		if lang.ID == id {
			return nil
		}
	}
	return validation.NewError("config.source_language.unknown", fmt.Sprintf("language %q is not configured", id))
}

func uniqueLanguages(value any) error {
	langs, _ := value.([]LanguageConfig)
	seen := make(map[string]bool)
	for _, lang := range langs {
		if seen[lang.ID] {
			return validation.NewError("config.languages.duplicate", fmt.Sprintf("language %q is listed twice", lang.ID))
		}
		seen[lang.ID] = true
	}
	return nil
}

func (l LanguageConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ID, validation.Required),
	)
}

func (b BackendConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Provider, validation.Required, validation.In("openai", "mock")),
		validation.Field(&b.Style, validation.In("formal", "neutral", "casual", "marketing", "technical")),
		validation.Field(&b.TagHandling, validation.In(pagetlai.TagHandlingHTML, "none")),
		validation.Field(&b.Temperature, validation.Min(float32(0)), validation.Max(float32(2))),
	)
}

func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.Required, validation.In("memory", "redis")),
		validation.Field(&s.URL, validation.When(s.Type == "redis", validation.Required)),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.In("json", "console", "pretty")),
	)
}

// Settings maps the configuration onto the policy input.
func (c *Config) Settings() pagetlai.Settings {
	mode, _ := pagetlai.ParseWriteMode(c.WriteMode)

	return pagetlai.Settings{
		SourceLanguage:    c.SourceLanguage,
		DefaultLanguage:   c.DefaultLanguage,
		Languages:         c.HostLanguages(),
		ExcludedLanguages: c.ExcludedLanguages,
		ExcludedTemplates: c.ExcludedTemplates,
		ExcludedFields:    c.ExcludedFields,
		WriteMode:         mode,
		SingleButton:      c.SingleButton,
	}
}

// HostLanguages returns the configured languages in file order.
func (c *Config) HostLanguages() []pagetlai.Language {
	langs := make([]pagetlai.Language, 0, len(c.Languages))
	for _, l := range c.Languages {
		langs = append(langs, pagetlai.Language{
			ID:       l.ID,
			Code:     l.Locale,
			Title:    l.Title,
			Glossary: l.Glossary,
		})
	}
	return langs
}

// ThrottleDuration resolves the throttle setting.
func (c *Config) ThrottleDuration() time.Duration {
	switch {
	case c.Throttle < 0:
		return 0
	case c.Throttle == 0:
		return pagetlai.DefaultThrottle
	}
	return c.Throttle
}

// APIKeyOrEnv returns the configured key, falling back to OPENAI_API_KEY.
func (b BackendConfig) APIKeyOrEnv() string {
	if b.APIKey != "" {
		return b.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

// TagHandlingMode maps the configured value onto the backend constant.
func (b BackendConfig) TagHandlingMode() string {
	if strings.EqualFold(b.TagHandling, "none") {
		return pagetlai.TagHandlingNone
	}
	return pagetlai.TagHandlingHTML
}

// PreserveFormattingEnabled defaults to true.
func (b BackendConfig) PreserveFormattingEnabled() bool {
	return b.PreserveFormatting == nil || *b.PreserveFormatting
}

// RetryPolicy converts the retry section, filling unset values from
// pagetlai.DefaultRetryConfig.
func (b BackendConfig) RetryPolicy() pagetlai.RetryConfig {
	cfg := pagetlai.DefaultRetryConfig()
	if b.Retry.MaxRetries > 0 {
		cfg.MaxRetries = b.Retry.MaxRetries
	}
	if b.Retry.BaseDelay > 0 {
		cfg.BaseDelay = b.Retry.BaseDelay
	}
	if b.Retry.MaxDelay > 0 {
		cfg.MaxDelay = b.Retry.MaxDelay
	}
	return cfg
}

// RateLimitPolicy converts the rate limit section. ok is false when rate
// limiting is not configured.
func (b BackendConfig) RateLimitPolicy() (cfg pagetlai.RateLimitConfig, ok bool) {
	if b.RateLimit.RequestsPerMinute <= 0 {
		return pagetlai.RateLimitConfig{}, false
	}
	return pagetlai.RateLimitConfig{
		RequestsPerMinute: b.RateLimit.RequestsPerMinute,
		BurstSize:         b.RateLimit.BurstSize,
	}, true
}
