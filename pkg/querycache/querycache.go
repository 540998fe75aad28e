// Package querycache implements the Query Result Cache (C10): a keyed
// memoization of Assistant Responses with atomic get-or-populate and
// per-campaign synchronous invalidation.
package querycache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
)

// DefaultTTL matches spec §4.10's "~5 minutes" default.
const DefaultTTL = 5 * time.Minute

type entryKey struct {
	campaignUUID string
	query        string
}

type entry struct {
	response models.AssistantResponse
	cachedAt time.Time
}

// Cache memoizes Assistant Responses keyed by (campaignUuid,
// normalized_query_string). Error responses are never cached — spec
// §4.10.
type Cache struct {
	mu      sync.RWMutex
	entries map[entryKey]entry
	ttl     time.Duration
	group   singleflight.Group
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{entries: make(map[entryKey]entry), ttl: ttl}
}

// normalize implements spec §4.10's deterministic key normalization: trim
// surrounding whitespace and lowercase.
func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (c *Cache) key(campaignUUID, query string) entryKey {
	return entryKey{campaignUUID: campaignUUID, query: normalize(query)}
}

// Get returns the cached response for (campaignUUID, query), if present
// and not expired.
func (c *Cache) Get(campaignUUID, query string) (models.AssistantResponse, bool) {
	key := c.key(campaignUUID, query)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return models.AssistantResponse{}, false
	}

	if time.Since(e.cachedAt) > c.ttl {
		c.mu.Lock()
		if current, ok := c.entries[key]; ok && time.Since(current.cachedAt) > c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return models.AssistantResponse{}, false
	}

	return e.response, true
}

// Set stores response for (campaignUUID, query), unless response is an
// error response, which is never cached.
func (c *Cache) Set(campaignUUID, query string, response models.AssistantResponse) {
	if response.ResponseType == models.ResponseTypeError {
		return
	}
	key := c.key(campaignUUID, query)
	c.mu.Lock()
	c.entries[key] = entry{response: response, cachedAt: time.Now()}
	c.mu.Unlock()
}

// GetOrPopulate returns the cached response if present, or calls populate
// exactly once per key even under concurrent callers (singleflight),
// caching the result unless it is an error response.
func (c *Cache) GetOrPopulate(ctx context.Context, campaignUUID, query string, populate func(ctx context.Context) (models.AssistantResponse, error)) (models.AssistantResponse, error) {
	if cached, ok := c.Get(campaignUUID, query); ok {
		return cached, nil
	}

	key := c.key(campaignUUID, query)
	sfKey := key.campaignUUID + "\x00" + key.query

	result, err, _ := c.group.Do(sfKey, func() (any, error) {
		response, err := populate(ctx)
		if err != nil {
			return models.AssistantResponse{}, err
		}
		c.Set(campaignUUID, query, response)
		return response, nil
	})
	if err != nil {
		return models.AssistantResponse{}, err
	}
	return result.(models.AssistantResponse), nil
}

// InvalidateAll evicts every cached entry for campaignUUID. It must be
// called synchronously with the ingestion commit that changed the
// campaign's notes, before that commit acknowledges to its own caller —
// spec §4.10/§5's read-your-writes guarantee.
func (c *Cache) InvalidateAll(campaignUUID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.campaignUUID == campaignUUID {
			delete(c.entries, key)
		}
	}
}
