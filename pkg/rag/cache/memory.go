package cache

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"insightops-be/pkg/rag/response"
)

// MemoryCache keeps finished answers in process memory.
type MemoryCache struct {
	cache *gocache.Cache
}

var _ response.CacheStore = &MemoryCache{}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &MemoryCache{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*response.Result, bool) {
	if x, found := c.cache.Get(key); found {
		return x.(*response.Result), true
	}
	return nil, false
}

func (c *MemoryCache) Set(_ context.Context, key string, result *response.Result) {
	c.cache.Set(key, result, gocache.DefaultExpiration)
}

// InvalidateWorkspace drops every cached answer for the workspace. Keys are
// prefixed with the workspace id, so this is a prefix scan over live items.
func (c *MemoryCache) InvalidateWorkspace(_ context.Context, workspaceId uuid.UUID) {
	prefix := workspaceId.String() + ":"
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}
