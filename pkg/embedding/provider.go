package embedding

import "context"

// Provider defines the interface for generating text embeddings.
// Every implementation must honor the context deadline: a hung embedding
// call must never block a whole request or batch item.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
