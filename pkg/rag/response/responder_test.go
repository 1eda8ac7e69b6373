package response

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightops-be/pkg/embedding"
	"insightops-be/pkg/llm"
	"insightops-be/pkg/rag/breaker"
	"insightops-be/pkg/rag/search"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Generate(_ context.Context, _ string, _ string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

type fakeChat struct {
	reply string
	err   error
	calls int
}

func (f *fakeChat) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeChat) Name() string { return "fake" }

type fakeSource struct {
	refs     []search.DocumentRef
	contents map[uuid.UUID]string
}

func (f *fakeSource) ListWorkspaceRefs(_ context.Context, _ uuid.UUID) ([]search.DocumentRef, error) {
	return f.refs, nil
}

func (f *fakeSource) FetchContent(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		out[id] = f.contents[id]
	}
	return out, nil
}

type memCache struct {
	mu    sync.Mutex
	items map[string]*Result
	sets  int
}

func newMemCache() *memCache {
	return &memCache{items: map[string]*Result{}}
}

func (c *memCache) Get(_ context.Context, key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[key]
	return r, ok
}

func (c *memCache) Set(_ context.Context, key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.items[key] = result
}

func (c *memCache) InvalidateWorkspace(_ context.Context, _ uuid.UUID) {}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixture struct {
	responder *Responder
	chat      *fakeChat
	cache     *memCache
	breaker   *breaker.Breaker
	workspace uuid.UUID
	docId     uuid.UUID
}

func newFixture(t *testing.T, reply string, chatErr error, updatedAt time.Time) *fixture {
	t.Helper()

	docId := uuid.New()
	source := &fakeSource{
		refs: []search.DocumentRef{{
			Id:        docId,
			Title:     "Remote Work Policy",
			Type:      "policy",
			Embedding: []float32{1, 0, 0},
			UpdatedAt: updatedAt,
		}},
		contents: map[uuid.UUID]string{docId: "Employees may work remotely two days per week."},
	}

	clock := fixedClock{now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	chat := &fakeChat{reply: reply, err: chatErr}
	cache := newMemCache()
	brk := breaker.New(clock)

	responder := NewResponder(
		&fakeEmbedder{vector: []float32{1, 0, 0}},
		search.NewRetriever(source),
		chat,
		brk,
		cache,
		WithClock(clock),
	)

	return &fixture{
		responder: responder,
		chat:      chat,
		cache:     cache,
		breaker:   brk,
		workspace: uuid.New(),
		docId:     docId,
	}
}

func recent() time.Time {
	return time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
}

func TestAnswer_ParsesModelJSON(t *testing.T) {
	f := newFixture(t, `{"answer": "Two days per week.", "confidence": 0.92}`, nil, recent())

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)

	assert.Equal(t, "Two days per week.", result.Answer)
	assert.Equal(t, 0.92, result.Confidence)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, f.docId, result.Sources[0].DocumentId)
	assert.Empty(t, result.Warnings)
}

func TestAnswer_StripsCodeFences(t *testing.T) {
	reply := "```json\n{\"answer\": \"Two days per week.\", \"confidence\": 0.9}\n```"
	f := newFixture(t, reply, nil, recent())

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)
	assert.Equal(t, "Two days per week.", result.Answer)
}

func TestAnswer_UnparseableOutputFallsBackToRawText(t *testing.T) {
	f := newFixture(t, "The policy allows two remote days weekly.", nil, recent())

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)
	assert.Equal(t, "The policy allows two remote days weekly.", result.Answer)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestAnswer_ZeroConfidenceDefaults(t *testing.T) {
	f := newFixture(t, `{"answer": "Two days per week."}`, nil, recent())

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)
	assert.Equal(t, 0.8, result.Confidence)
}

func TestAnswer_ShortModelOutputDegrades(t *testing.T) {
	f := newFixture(t, `{"answer": "ok", "confidence": 0.9}`, nil, recent())

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningAiError, result.Warnings[0].Type)
	assert.Contains(t, result.Answer, "Remote Work Policy")
}

func TestAnswer_QuotaErrorTripsBreaker(t *testing.T) {
	quotaErr := fmt.Errorf("rate limited: %w", llm.ErrQuotaExceeded)
	f := newFixture(t, "", quotaErr, recent())

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningQuotaExceeded, result.Warnings[0].Type)
	assert.True(t, f.breaker.IsOpen())

	// While the breaker is open no model call happens but excerpts still flow.
	calls := f.chat.calls
	again, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)
	assert.Equal(t, calls, f.chat.calls)
	require.Len(t, again.Warnings, 1)
	assert.Equal(t, WarningQuotaExceeded, again.Warnings[0].Type)
	assert.NotEmpty(t, again.Sources)
}

func TestAnswer_ProviderErrorReturnsBasicResult(t *testing.T) {
	f := newFixture(t, "", errors.New("connection refused"), recent())

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningAiError, result.Warnings[0].Type)
	assert.False(t, f.breaker.IsOpen())
	assert.Greater(t, result.Confidence, 0.0)
}

func TestAnswer_NoProviderUsesBasicMode(t *testing.T) {
	f := newFixture(t, "", nil, recent())
	f.responder.chat = nil

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningBasicMode, result.Warnings[0].Type)
	assert.Contains(t, result.Answer, "Employees may work remotely")
}

func TestAnswer_NoDocumentsIsTerminal(t *testing.T) {
	f := newFixture(t, `{"answer": "irrelevant"}`, nil, recent())
	f.responder.retriever = search.NewRetriever(&fakeSource{})

	result, err := f.responder.Answer(context.Background(), f.workspace, "Anything?")
	require.NoError(t, err)

	assert.Contains(t, result.Answer, "couldn't find any relevant documents")
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Sources)
	assert.Empty(t, result.Warnings)
	assert.Zero(t, f.chat.calls)
}

func TestAnswer_CachesAndServesRepeats(t *testing.T) {
	f := newFixture(t, `{"answer": "Two days per week.", "confidence": 0.92}`, nil, recent())

	_, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)

	// Same question with different casing and padding hits the cache.
	result, err := f.responder.Answer(context.Background(), f.workspace, "  HOW MANY REMOTE DAYS?  ")
	require.NoError(t, err)
	assert.Equal(t, 1, f.chat.calls)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningCached, result.Warnings[0].Type)
	assert.Equal(t, "Two days per week.", result.Answer)
}

func TestAnswer_StaleSourceWarning(t *testing.T) {
	old := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, `{"answer": "Two days per week.", "confidence": 0.9}`, nil, old)

	result, err := f.responder.Answer(context.Background(), f.workspace, "How many remote days?")
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	w := result.Warnings[0]
	assert.Equal(t, WarningStaleSource, w.Type)
	assert.Contains(t, w.Message, "92 days ago")
	require.NotNil(t, w.DocumentId)
	assert.Equal(t, f.docId, *w.DocumentId)
}

func TestCacheKey_Normalizes(t *testing.T) {
	ws := uuid.New()
	assert.Equal(t, CacheKey(ws, "Hello World"), CacheKey(ws, "  hello world  "))
	assert.NotEqual(t, CacheKey(ws, "hello"), CacheKey(uuid.New(), "hello"))
}
