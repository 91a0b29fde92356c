package memory

import (
	"context"
	"encoding"
	"sync"
	"time"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/cache"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is a process-local fallback used when Redis is not configured, and
// by tests.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
}

func New(defaultTTL time.Duration) *Cache {
	if defaultTTL == 0 {
		defaultTTL = cache.DefaultOptions().DefaultTTL
	}
	return &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
	}
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case encoding.BinaryMarshaler:
		b, err := v.MarshalBinary()
		if err != nil {
			return err
		}
		data = b
	default:
		return cache.ErrInvalidValue
	}

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *Cache) Get(ctx context.Context, key string, value interface{}) error {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return cache.ErrNotFound
	}

	switch v := value.(type) {
	case *string:
		*v = string(e.data)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(e.data)
	default:
		return cache.ErrInvalidValue
	}

	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *Cache) Close() error {
	return nil
}
