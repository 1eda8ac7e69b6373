package context

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"insightops-be/pkg/rag/search"
)

// MaxContextChars caps the assembled context handed to the model.
const MaxContextChars = 6000

// DefaultTopK is how many matches feed the context by default.
const DefaultTopK = 5

// Source is the citation surfaced alongside an answer.
type Source struct {
	DocumentId uuid.UUID `json:"documentId"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Similarity float64   `json:"similarity"`
	Excerpt    string    `json:"excerpt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Built is the assembled prompt context plus its citations.
type Built struct {
	Text    string
	Sources []Source
}

// Build assembles up to topK matches into numbered source blocks. The
// resulting text is truncated to MaxContextChars as a whole.
func Build(matches []search.Match, topK int) Built {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}

	blocks := make([]string, 0, len(matches))
	sources := make([]Source, 0, len(matches))
	for i, m := range matches {
		blocks = append(blocks, fmt.Sprintf("[Source %d: %s]\n%s", i+1, m.Title, m.Excerpt))
		sources = append(sources, Source{
			DocumentId: m.Id,
			Title:      m.Title,
			Type:       m.Type,
			Similarity: round2(m.Similarity),
			Excerpt:    m.Excerpt,
			UpdatedAt:  m.UpdatedAt,
		})
	}

	text := strings.Join(blocks, "\n\n")
	if len(text) > MaxContextChars {
		text = text[:MaxContextChars]
	}

	return Built{Text: text, Sources: sources}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
