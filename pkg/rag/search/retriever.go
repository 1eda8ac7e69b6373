package search

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"insightops-be/pkg/vector"
)

// MinSimilarity is the relevance floor. Matches at or below it are discarded.
const MinSimilarity = 0.1

// ExcerptLength bounds the content excerpt attached to each match.
const ExcerptLength = 300

// DocumentRef is the lightweight projection scored during retrieval.
// Content is fetched separately for the surviving candidates only.
type DocumentRef struct {
	Id        uuid.UUID
	Title     string
	Type      string
	Embedding []float32
	UpdatedAt time.Time
}

// Match is a scored document with its content excerpt.
type Match struct {
	Id         uuid.UUID
	Title      string
	Type       string
	Similarity float64
	Excerpt    string
	Content    string
	UpdatedAt  time.Time
}

// DocumentSource supplies workspace documents to the retriever.
type DocumentSource interface {
	ListWorkspaceRefs(ctx context.Context, workspaceId uuid.UUID) ([]DocumentRef, error)
	FetchContent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type Retriever struct {
	source DocumentSource
}

func NewRetriever(source DocumentSource) *Retriever {
	return &Retriever{source: source}
}

// Retrieve scores every embedded document in the workspace against the query
// embedding and returns the topK matches above the similarity floor, ordered
// by descending similarity. Documents without an embedding or with a
// mismatched dimension are skipped.
func (r *Retriever) Retrieve(ctx context.Context, workspaceId uuid.UUID, queryEmbedding []float32, topK int) ([]Match, error) {
	if len(queryEmbedding) == 0 {
		return []Match{}, nil
	}

	refs, err := r.source.ListWorkspaceRefs(ctx, workspaceId)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(refs))
	for _, ref := range refs {
		if len(ref.Embedding) == 0 {
			continue
		}
		sim, err := vector.Cosine(queryEmbedding, ref.Embedding)
		if err != nil {
			// Dimension mismatch from a stale embedding model. Skip it.
			continue
		}
		if sim <= MinSimilarity {
			continue
		}
		matches = append(matches, Match{
			Id:         ref.Id,
			Title:      ref.Title,
			Type:       ref.Type,
			Similarity: sim,
			UpdatedAt:  ref.UpdatedAt,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	if len(matches) == 0 {
		return matches, nil
	}

	ids := make([]uuid.UUID, len(matches))
	for i, m := range matches {
		ids[i] = m.Id
	}
	contents, err := r.source.FetchContent(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		content := contents[matches[i].Id]
		matches[i].Content = content
		matches[i].Excerpt = Excerpt(content)
	}

	return matches, nil
}

// Excerpt truncates content to at most ExcerptLength bytes with an ellipsis.
// The cut never splits a multibyte rune.
func Excerpt(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= ExcerptLength {
		return content
	}
	cut := ExcerptLength
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
