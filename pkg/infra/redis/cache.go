package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	inputSuffix         = ":input"
	coverResponseSuffix = ":cover_response"
)

// ErrDocumentNotFound is returned when a cached document key does not exist.
var ErrDocumentNotFound = errors.New("cached document not found")

// CacheStore reads the documents the upstream COVER submission step cached
// per request id.
type CacheStore struct {
	client redis.Cmdable
	prefix string
}

// NewCacheStore wraps client. Keys are "{prefix}{request_id}:input" and
// "{prefix}{request_id}:cover_response".
func NewCacheStore(client redis.Cmdable, prefix string) *CacheStore {
	return &CacheStore{client: client, prefix: prefix}
}

func (c *CacheStore) InputKey(requestID string) string {
	return c.prefix + requestID + inputSuffix
}

func (c *CacheStore) CoverResponseKey(requestID string) string {
	return c.prefix + requestID + coverResponseSuffix
}

// LoadInput returns the cached order-submission input.
func (c *CacheStore) LoadInput(ctx context.Context, requestID string) (map[string]interface{}, error) {
	return c.load(ctx, c.InputKey(requestID))
}

// LoadCoverResponse returns the cached COVER response.
func (c *CacheStore) LoadCoverResponse(ctx context.Context, requestID string) (map[string]interface{}, error) {
	return c.load(ctx, c.CoverResponseKey(requestID))
}

// Store caches raw under key.
func (c *CacheStore) Store(ctx context.Context, key string, raw []byte) error {
	if err := c.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

func (c *CacheStore) load(ctx context.Context, key string) (map[string]interface{}, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return doc, nil
}
