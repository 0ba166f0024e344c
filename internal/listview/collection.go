package listview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// Identified records can be removed from a cached collection by id.
type Identified interface {
	RecordID() string
}

// Collection caches a fetched list per session so detail pages and confirmed
// deletes do not need another round-trip.
type Collection[T Identified] struct {
	client   *redis.Client
	resource string
	ttl      time.Duration
}

// NewCollection returns a cache for one resource. A nil client disables caching.
func NewCollection[T Identified](client *redis.Client, resource string, ttl time.Duration) *Collection[T] {
	return &Collection[T]{client: client, resource: resource, ttl: ttl}
}

// Get returns the cached records. The boolean is false on a miss.
func (c *Collection[T]) Get(ctx context.Context, sessionID string) ([]T, bool, error) {
	if c == nil || c.client == nil || sessionID == "" {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, shared.CollectionKey(sessionID, c.resource)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("collection %s: get: %w", c.resource, err)
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, true, nil
}

// Put replaces the cached records.
func (c *Collection[T]) Put(ctx context.Context, sessionID string, records []T) error {
	if c == nil || c.client == nil || sessionID == "" {
		return nil
	}
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("collection %s: encode: %w", c.resource, err)
	}
	return c.client.Set(ctx, shared.CollectionKey(sessionID, c.resource), payload, c.ttl).Err()
}

// Fetch serves the cached records unless refresh is set or nothing is cached,
// in which case it calls load and caches a successful result. Failures are
// never cached.
func (c *Collection[T]) Fetch(ctx context.Context, sessionID string, refresh bool, load func(context.Context) ([]T, error)) ([]T, error) {
	if !refresh {
		if records, ok, err := c.Get(ctx, sessionID); err == nil && ok {
			return records, nil
		}
	}
	records, err := load(ctx)
	if err != nil {
		return nil, err
	}
	_ = c.Put(ctx, sessionID, records)
	return records, nil
}

// Find looks up one cached record.
func (c *Collection[T]) Find(ctx context.Context, sessionID, id string) (T, bool, error) {
	var zero T
	records, ok, err := c.Get(ctx, sessionID)
	if err != nil || !ok {
		return zero, false, err
	}
	for _, rec := range records {
		if rec.RecordID() == id {
			return rec, true, nil
		}
	}
	return zero, false, nil
}

// Remove applies a server-confirmed delete to the cached copy. A missing
// cache entry is left alone; the next page load fetches fresh data.
func (c *Collection[T]) Remove(ctx context.Context, sessionID, id string) error {
	records, ok, err := c.Get(ctx, sessionID)
	if err != nil || !ok {
		return err
	}
	kept := make([]T, 0, len(records))
	for _, rec := range records {
		if rec.RecordID() != id {
			kept = append(kept, rec)
		}
	}
	return c.Put(ctx, sessionID, kept)
}

// Invalidate drops the cached copy, e.g. after an update.
func (c *Collection[T]) Invalidate(ctx context.Context, sessionID string) error {
	if c == nil || c.client == nil || sessionID == "" {
		return nil
	}
	return c.client.Del(ctx, shared.CollectionKey(sessionID, c.resource)).Err()
}
