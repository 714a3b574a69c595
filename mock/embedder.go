package mock

import (
	"context"
	"sync"

	"github.com/civdoc/civdoc"
)

var _ civdoc.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of civdoc.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

var _ civdoc.Cache = (*Cache)(nil)

// Cache is an in-memory civdoc.Cache. The zero value is usable. Optional
// function fields override the default map-backed behavior.
type Cache struct {
	GetFn func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn func(ctx context.Context, key string, value []byte) error

	mu      sync.Mutex
	entries map[string][]byte
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.GetFn != nil {
		return c.GetFn(ctx, key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if c.SetFn != nil {
		return c.SetFn(ctx, key, value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string][]byte)
	}
	c.entries[key] = value
	return nil
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
