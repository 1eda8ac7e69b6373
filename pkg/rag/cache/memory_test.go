package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightops-be/pkg/rag/response"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()
	ws := uuid.New()
	key := response.CacheKey(ws, "what is the pto policy?")

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, &response.Result{Answer: "20 days", Confidence: 0.9})

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "20 days", got.Answer)
}

func TestMemoryCache_InvalidateWorkspaceIsScoped(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()
	ws1 := uuid.New()
	ws2 := uuid.New()

	c.Set(ctx, response.CacheKey(ws1, "q1"), &response.Result{Answer: "a1"})
	c.Set(ctx, response.CacheKey(ws1, "q2"), &response.Result{Answer: "a2"})
	c.Set(ctx, response.CacheKey(ws2, "q1"), &response.Result{Answer: "other"})

	c.InvalidateWorkspace(ctx, ws1)

	_, ok := c.Get(ctx, response.CacheKey(ws1, "q1"))
	assert.False(t, ok)
	_, ok = c.Get(ctx, response.CacheKey(ws1, "q2"))
	assert.False(t, ok)

	got, ok := c.Get(ctx, response.CacheKey(ws2, "q1"))
	require.True(t, ok)
	assert.Equal(t, "other", got.Answer)
}
