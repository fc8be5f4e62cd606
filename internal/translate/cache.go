package translate

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errDetectionUnsupported = errors.New("language detection not supported")

// Cache stores translated texts keyed by source/target/text. Lookups are
// best-effort: a miss or a cache error just means calling the backend.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

type cacheEntry struct {
	text      string
	createdAt time.Time
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewMemoryCache creates a cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns a cached value if present and fresh.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(entry.createdAt) > c.ttl {
		return "", false
	}
	return entry.text, true
}

// Set stores a value with the current timestamp.
func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{text: value, createdAt: time.Now()}
	c.mu.Unlock()
}

// CachedTranslator decorates a Translator with single-message caching.
// Conversation calls pass through uncached: their results depend on the
// surrounding turns, so a text-keyed cache would serve stale context.
type CachedTranslator struct {
	inner Translator
	cache Cache
}

// Cached wraps inner with the given cache.
func Cached(inner Translator, cache Cache) *CachedTranslator {
	return &CachedTranslator{inner: inner, cache: cache}
}

// TranslateSingle consults the cache before the backend.
func (t *CachedTranslator) TranslateSingle(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	key := sourceLang + ":" + targetLang + ":" + text
	if cached, ok := t.cache.Get(ctx, key); ok {
		return cached, nil
	}

	translated, err := t.inner.TranslateSingle(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	t.cache.Set(ctx, key, translated)
	return translated, nil
}

// TranslateConversation delegates to the backend unchanged.
func (t *CachedTranslator) TranslateConversation(ctx context.Context, turns []Turn, sourceLang, targetLang string) ([]Turn, error) {
	return t.inner.TranslateConversation(ctx, turns, sourceLang, targetLang)
}

// DetectLanguage delegates to the backend when it supports detection.
func (t *CachedTranslator) DetectLanguage(ctx context.Context, text string) (string, error) {
	if detector, ok := t.inner.(LanguageDetector); ok {
		return detector.DetectLanguage(ctx, text)
	}
	return "", errDetectionUnsupported
}
