package llm

import (
	"context"
	"errors"
)

// ErrQuotaExceeded marks a rate-limited provider response. Callers treat it
// differently from any other failure: it activates the global cooldown and
// is never retried inline.
var ErrQuotaExceeded = errors.New("llm: provider quota exceeded")

// ChatProvider is the single capability the answering pipeline needs from a
// chat-completion backend. Exactly one concrete backend is selected at
// startup; backends are never tried in sequence per request.
type ChatProvider interface {
	// Complete sends a system prompt and a user prompt and returns the raw
	// assistant text. Implementations must carry a request timeout.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name identifies the backend for logging.
	Name() string
}
