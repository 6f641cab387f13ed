package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/busseat/internal/core/domain"
)

// localTTL bounds how long a value may be served from the client-side
// cache. Server-assisted tracking invalidates it earlier on writes.
const localTTL = 5 * time.Second

// Cache implements ports.CacheService on Valkey. Reads go through
// valkey-go's client-side cache; keys are namespaced with prefix.
type Cache struct {
	client valkey.Client
	prefix string
}

// New connects to addr. All cache keys are stored under "busseat:".
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	return &Cache{client: client, prefix: "busseat:"}, nil
}

// Client exposes the connection for the seat hold store.
func (c *Cache) Client() valkey.Client {
	return c.client
}

// Get returns domain.ErrNotFound on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	resp := c.client.DoCache(ctx, c.client.B().Get().Key(c.prefix+key).Cache(), localTTL)
	b, err := resp.AsBytes()
	switch {
	case valkey.IsValkeyNil(err):
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, nil
}

// Set stores value for ttlSeconds; zero or less keeps it without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	b := c.client.B().Set().Key(c.prefix + key).Value(valkey.BinaryString(value))
	if ttlSeconds > 0 {
		return c.client.Do(ctx, b.ExSeconds(int64(ttlSeconds)).Build()).Error()
	}
	return c.client.Do(ctx, b.Build()).Error()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(c.prefix+key).Build()).Error()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *Cache) Close() {
	c.client.Close()
}
