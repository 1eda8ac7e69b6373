package decay

import (
	"fmt"

	"insightops-be/pkg/vector"
)

// ContradictionWeight is the contradiction signal's share of the confidence
// score. Contradiction is the strongest decay indicator.
const ContradictionWeight = 0.4

// SiblingSimilarityThreshold gates which siblings count as topically related.
const SiblingSimilarityThreshold = 0.35

// ContradictionEvaluator looks for conflicting factual statements between
// the document and topically related siblings, and between the latest
// version and its predecessors.
type ContradictionEvaluator struct{}

func NewContradictionEvaluator() *ContradictionEvaluator {
	return &ContradictionEvaluator{}
}

func (e *ContradictionEvaluator) Name() string { return "contradiction" }

func (e *ContradictionEvaluator) Evaluate(document Document, versions []Version, siblings []Document) Signal {
	signal := Signal{Weight: ContradictionWeight}
	docTokens := tokenSet(document.Content)

	for _, sibling := range siblings {
		if sibling.Id == document.Id {
			continue
		}
		if !topicallyRelated(document.Embedding, sibling.Embedding) {
			continue
		}
		conflicts := findConflicts(document.Content, docTokens, sibling.Content)
		for _, conflict := range conflicts {
			signal.Detected = true
			signal.Reasons = append(signal.Reasons, fmt.Sprintf(
				"conflicts with %q: %s", sibling.Title, conflict,
			))
			signal.Citations = append(signal.Citations, Citation{DocumentId: sibling.Id})
		}
	}

	// Older versions stating the opposite of the current content mean the
	// document contradicts its own history.
	latestNumber := 0
	for _, v := range versions {
		if v.Number > latestNumber {
			latestNumber = v.Number
		}
	}
	for _, version := range versions {
		if version.Number == latestNumber {
			continue
		}
		conflicts := findConflicts(document.Content, docTokens, version.Content)
		for _, conflict := range conflicts {
			signal.Detected = true
			signal.Reasons = append(signal.Reasons, fmt.Sprintf(
				"contradicts version %d: %s", version.Number, conflict,
			))
			signal.Citations = append(signal.Citations, Citation{
				DocumentId: document.Id,
				Version:    version.Number,
			})
		}
	}

	return signal
}

func topicallyRelated(a, b []float32) bool {
	if len(a) == 0 || len(b) == 0 {
		// Without embeddings relatedness cannot be ruled out.
		return true
	}
	sim, err := vector.Cosine(a, b)
	if err != nil {
		return false
	}
	return sim >= SiblingSimilarityThreshold
}

func findConflicts(content string, contentTokens map[string]bool, other string) []string {
	conflicts := oppositionConflicts(contentTokens, tokenSet(other))
	conflicts = append(conflicts, numericConflicts(content, other)...)
	return conflicts
}
