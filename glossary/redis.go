package glossary

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ZaguanLabs/pagetlai"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed glossary store. Glossary metadata and each
// dictionary live under their own JSON-encoded keys; a set indexes the
// glossary identifiers.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	newID     IDGenerator
	now       func() time.Time
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "pagetlai:")
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisIDGenerator overrides the identifier generator.
func WithRedisIDGenerator(gen IDGenerator) RedisOption {
	return func(s *RedisStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithRedisClock overrides the time source for creation timestamps.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, opts ...RedisOption) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix, opts...), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string, opts ...RedisOption) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "pagetlai:"
	}

	s := &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		newID:     newUUID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) indexKey() string {
	return s.keyPrefix + "glossaries"
}

func (s *RedisStore) glossaryKey(id string) string {
	return s.keyPrefix + "glossary:" + id
}

func (s *RedisStore) dictionaryKey(id, sourceLocale, targetLocale string) string {
	return s.glossaryKey(id) + ":" + pairKey(sourceLocale, targetLocale)
}

// CreateGlossary stores a new glossary holding dictionaries.
func (s *RedisStore) CreateGlossary(ctx context.Context, name string, dictionaries []pagetlai.Dictionary) (*pagetlai.GlossaryInfo, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	info := pagetlai.GlossaryInfo{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}

	for _, d := range dictionaries {
		d = normalizeDictionary(d)
		if err := s.setJSON(ctx, s.dictionaryKey(info.ID, d.SourceLocale, d.TargetLocale), d); err != nil {
			return nil, err
		}
		info.Dictionaries = upsertInfo(info.Dictionaries, d)
	}

	if err := s.setJSON(ctx, s.glossaryKey(info.ID), info); err != nil {
		return nil, err
	}
	if err := s.client.SAdd(ctx, s.indexKey(), info.ID).Err(); err != nil {
		return nil, fmt.Errorf("indexing glossary %s: %w", info.ID, err)
	}

	return &info, nil
}

// GetGlossary returns the glossary with the given identifier.
func (s *RedisStore) GetGlossary(ctx context.Context, id string) (*pagetlai.GlossaryInfo, error) {
	var info pagetlai.GlossaryInfo
	if err := s.getJSON(ctx, s.glossaryKey(id), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListGlossaries returns every indexed glossary, oldest first.
func (s *RedisStore) ListGlossaries(ctx context.Context) ([]pagetlai.GlossaryInfo, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, err
	}

	list := make([]pagetlai.GlossaryInfo, 0, len(ids))
	for _, id := range ids {
		info, err := s.GetGlossary(ctx, id)
		if errors.Is(err, pagetlai.ErrGlossaryNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		list = append(list, *info)
	}

	slices.SortFunc(list, func(a, b pagetlai.GlossaryInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

// GetDictionary returns the dictionary of a locale pair.
func (s *RedisStore) GetDictionary(ctx context.Context, glossaryID, sourceLocale, targetLocale string) (*pagetlai.Dictionary, error) {
	var d pagetlai.Dictionary
	if err := s.getJSON(ctx, s.dictionaryKey(glossaryID, sourceLocale, targetLocale), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReplaceDictionary creates or overwrites the dictionary of a locale pair.
func (s *RedisStore) ReplaceDictionary(ctx context.Context, glossaryID string, dictionary pagetlai.Dictionary) error {
	info, err := s.GetGlossary(ctx, glossaryID)
	if err != nil {
		return err
	}

	d := normalizeDictionary(dictionary)
	if err := s.setJSON(ctx, s.dictionaryKey(glossaryID, d.SourceLocale, d.TargetLocale), d); err != nil {
		return err
	}

	info.Dictionaries = upsertInfo(info.Dictionaries, d)
	return s.setJSON(ctx, s.glossaryKey(glossaryID), info)
}

// DeleteDictionary removes the dictionary of a locale pair.
func (s *RedisStore) DeleteDictionary(ctx context.Context, glossaryID, sourceLocale, targetLocale string) error {
	info, err := s.GetGlossary(ctx, glossaryID)
	if err != nil {
		return err
	}

	infos, found := removeInfo(info.Dictionaries, sourceLocale, targetLocale)
	if !found {
		return pagetlai.ErrGlossaryNotFound
	}

	if err := s.client.Del(ctx, s.dictionaryKey(glossaryID, sourceLocale, targetLocale)).Err(); err != nil {
		return err
	}

	info.Dictionaries = infos
	return s.setJSON(ctx, s.glossaryKey(glossaryID), info)
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return pagetlai.ErrGlossaryNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.client.Set(ctx, key, string(data), 0).Err()
}

// Verify RedisStore implements GlossaryBackend
var _ pagetlai.GlossaryBackend = (*RedisStore)(nil)
