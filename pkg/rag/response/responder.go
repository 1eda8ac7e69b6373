package response

import (
	ctxpkg "context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"insightops-be/pkg/embedding"
	"insightops-be/pkg/llm"
	"insightops-be/pkg/rag/breaker"
	ragcontext "insightops-be/pkg/rag/context"
	"insightops-be/pkg/rag/search"
)

const (
	WarningQuotaExceeded = "quota_exceeded"
	WarningCached        = "cached"
	WarningBasicMode     = "basic_mode"
	WarningStaleSource   = "stale_source"
	WarningAiError       = "ai_error"
)

// StaleAfter is the age past which a cited source gets a staleness warning.
const StaleAfter = 30 * 24 * time.Hour

// DefaultCooldown is how long model calls stay paused after a quota rejection.
const DefaultCooldown = 30 * time.Minute

// minAnswerLength rejects degenerate model output.
const minAnswerLength = 5

const systemPrompt = `You are a helpful assistant. Answer based ONLY on the provided context. Return JSON: { "answer": "...", "confidence": 0.0-1.0 }`

type Warning struct {
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	DocumentId *uuid.UUID `json:"documentId,omitempty"`
}

type Result struct {
	Answer     string              `json:"answer"`
	Confidence float64             `json:"confidence"`
	Sources    []ragcontext.Source `json:"sources"`
	Warnings   []Warning           `json:"warnings"`
}

// CacheStore holds finished answers keyed by workspace and question.
type CacheStore interface {
	Get(ctx ctxpkg.Context, key string) (*Result, bool)
	Set(ctx ctxpkg.Context, key string, result *Result)
	InvalidateWorkspace(ctx ctxpkg.Context, workspaceId uuid.UUID)
}

// CacheKey normalizes a question into its cache key.
func CacheKey(workspaceId uuid.UUID, question string) string {
	return fmt.Sprintf("%s:%s", workspaceId, strings.ToLower(strings.TrimSpace(question)))
}

// Responder runs the full question answering pipeline: embed the question,
// retrieve matches, assemble context and ask the configured model. Every
// degraded state still produces an answer from the retrieved excerpts.
type Responder struct {
	embedder  embedding.Provider
	retriever *search.Retriever
	chat      llm.ChatProvider
	breaker   *breaker.Breaker
	cache     CacheStore
	clock     breaker.Clock
	cooldown  time.Duration
}

type Option func(*Responder)

func WithClock(clock breaker.Clock) Option {
	return func(r *Responder) { r.clock = clock }
}

func WithCooldown(cooldown time.Duration) Option {
	return func(r *Responder) { r.cooldown = cooldown }
}

// NewResponder wires the pipeline. chat may be nil, which keeps the service
// in basic excerpt-only mode.
func NewResponder(
	embedder embedding.Provider,
	retriever *search.Retriever,
	chat llm.ChatProvider,
	brk *breaker.Breaker,
	cache CacheStore,
	opts ...Option,
) *Responder {
	r := &Responder{
		embedder:  embedder,
		retriever: retriever,
		chat:      chat,
		breaker:   brk,
		cache:     cache,
		clock:     breaker.SystemClock(),
		cooldown:  DefaultCooldown,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Responder) Answer(ctx ctxpkg.Context, workspaceId uuid.UUID, question string) (*Result, error) {
	if r.breaker.IsOpen() {
		sources, err := r.findSources(ctx, workspaceId, question)
		if err != nil {
			return nil, err
		}
		result := r.basicAnswer(sources.Sources)
		result.Warnings = []Warning{{
			Type:    WarningQuotaExceeded,
			Message: "AI quota exceeded. Returning basic results (cooldown active).",
		}}
		return result, nil
	}

	cacheKey := CacheKey(workspaceId, question)
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		hit := *cached
		hit.Warnings = []Warning{{
			Type:    WarningCached,
			Message: "Instant response (cached)",
		}}
		return &hit, nil
	}

	built, err := r.findSources(ctx, workspaceId, question)
	if err != nil {
		return nil, err
	}

	if built.Text == "" || len(built.Sources) == 0 {
		return &Result{
			Answer:     "I couldn't find any relevant documents in your workspace to answer this question. Please upload some documents first.",
			Confidence: 0,
			Sources:    []ragcontext.Source{},
			Warnings:   []Warning{},
		}, nil
	}

	if r.chat == nil {
		return r.basicAnswer(built.Sources), nil
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", built.Text, question)
	raw, err := r.chat.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return r.degradedAnswer(built.Sources, err), nil
	}

	answer, confidence := parseModelOutput(raw)
	if len(strings.TrimSpace(answer)) < minAnswerLength {
		return r.degradedAnswer(built.Sources, errors.New("model returned empty or invalid response")), nil
	}

	result := &Result{
		Answer:     answer,
		Confidence: confidence,
		Sources:    topSources(built.Sources),
		Warnings:   r.staleWarnings(built.Sources),
	}

	r.cache.Set(ctx, cacheKey, result)

	return result, nil
}

func (r *Responder) findSources(ctx ctxpkg.Context, workspaceId uuid.UUID, question string) (ragcontext.Built, error) {
	emb, err := r.embedder.Generate(ctx, question, "retrieval_query")
	if err != nil {
		return ragcontext.Built{}, fmt.Errorf("embed question: %w", err)
	}
	matches, err := r.retriever.Retrieve(ctx, workspaceId, emb.Embedding.Values, ragcontext.DefaultTopK)
	if err != nil {
		return ragcontext.Built{}, fmt.Errorf("retrieve documents: %w", err)
	}
	return ragcontext.Build(matches, ragcontext.DefaultTopK), nil
}

func (r *Responder) degradedAnswer(sources []ragcontext.Source, cause error) *Result {
	result := r.basicAnswer(sources)
	if errors.Is(cause, llm.ErrQuotaExceeded) {
		r.breaker.Trip(r.cooldown)
		result.Warnings = []Warning{{
			Type:    WarningQuotaExceeded,
			Message: "AI usage limit reached. Showing basic results only.",
		}}
		return result
	}
	result.Warnings = []Warning{{
		Type:    WarningAiError,
		Message: "AI service unavailable. Showing raw results.",
	}}
	return result
}

// basicAnswer builds an excerpt-only result from the top source.
func (r *Responder) basicAnswer(sources []ragcontext.Source) *Result {
	if len(sources) == 0 {
		return &Result{
			Answer:     "No relevant documents found.",
			Confidence: 0,
			Sources:    []ragcontext.Source{},
			Warnings:   []Warning{},
		}
	}

	top := sources[0]
	excerpt := top.Excerpt
	if excerpt == "" {
		excerpt = "See the document for details."
	}
	return &Result{
		Answer:     fmt.Sprintf("Based on %q, here's relevant information: %s", top.Title, excerpt),
		Confidence: top.Similarity,
		Sources:    topSources(sources),
		Warnings: []Warning{{
			Type:    WarningBasicMode,
			Message: "AI features not configured. Showing document excerpts only.",
		}},
	}
}

func (r *Responder) staleWarnings(sources []ragcontext.Source) []Warning {
	now := r.clock.Now()
	warnings := []Warning{}
	for _, source := range sources {
		age := now.Sub(source.UpdatedAt)
		if age <= StaleAfter {
			continue
		}
		daysOld := int(age.Hours() / 24)
		id := source.DocumentId
		warnings = append(warnings, Warning{
			Type:       WarningStaleSource,
			Message:    fmt.Sprintf("%q was last updated %d days ago", source.Title, daysOld),
			DocumentId: &id,
		})
	}
	return warnings
}

func topSources(sources []ragcontext.Source) []ragcontext.Source {
	if len(sources) > 3 {
		sources = sources[:3]
	}
	return sources
}

type modelOutput struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// parseModelOutput strips markdown code fences and decodes the expected JSON
// payload. Unparseable output is returned verbatim at middling confidence.
func parseModelOutput(raw string) (string, float64) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var out modelOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil || out.Answer == "" {
		return strings.TrimSpace(raw), 0.5
	}
	if out.Confidence == 0 {
		out.Confidence = 0.8
	}
	return out.Answer, out.Confidence
}
