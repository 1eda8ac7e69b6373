package context

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightops-be/pkg/rag/search"
)

func match(title, excerpt string, sim float64) search.Match {
	return search.Match{
		Id:         uuid.New(),
		Title:      title,
		Type:       "note",
		Similarity: sim,
		Excerpt:    excerpt,
	}
}

func TestBuild_NumbersSourceBlocks(t *testing.T) {
	built := Build([]search.Match{
		match("Onboarding", "welcome text", 0.91),
		match("Benefits", "perks text", 0.84),
	}, 5)

	assert.Contains(t, built.Text, "[Source 1: Onboarding]\nwelcome text")
	assert.Contains(t, built.Text, "[Source 2: Benefits]\nperks text")
	require.Len(t, built.Sources, 2)
	assert.Equal(t, 0.91, built.Sources[0].Similarity)
}

func TestBuild_RoundsSimilarity(t *testing.T) {
	built := Build([]search.Match{match("Doc", "x", 0.87654)}, 5)
	require.Len(t, built.Sources, 1)
	assert.Equal(t, 0.88, built.Sources[0].Similarity)
}

func TestBuild_TopKCutoff(t *testing.T) {
	matches := make([]search.Match, 8)
	for i := range matches {
		matches[i] = match("Doc", "x", 0.9)
	}

	built := Build(matches, 0)
	assert.Len(t, built.Sources, DefaultTopK)

	built = Build(matches, 3)
	assert.Len(t, built.Sources, 3)
}

func TestBuild_CapsTotalLength(t *testing.T) {
	long := strings.Repeat("a", 4000)
	built := Build([]search.Match{
		match("One", long, 0.9),
		match("Two", long, 0.8),
	}, 5)

	assert.Len(t, built.Text, MaxContextChars)
	assert.Len(t, built.Sources, 2, "sources keep all matches even when text is truncated")
}

func TestBuild_Empty(t *testing.T) {
	built := Build(nil, 5)
	assert.Empty(t, built.Text)
	assert.Empty(t, built.Sources)
}
