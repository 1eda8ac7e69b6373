package decay

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Analysis is the full result of analyzing one document.
type Analysis struct {
	DocumentId            uuid.UUID
	DecayDetected         bool
	ConfidenceScore       float64
	RiskLevel             string
	DecayReasons          []string
	WhatChangedSummary    string
	UpdateRecommendations []string
	Citations             []Citation
	ConfidenceBreakdown   map[string]float64
	AnalyzedAt            time.Time
}

// VersionLoader fetches the version history for a document during a batch.
type VersionLoader func(ctx context.Context, documentId uuid.UUID) ([]Version, error)

// BatchResult is one item of a batch analysis. Exactly one of Analysis and
// Err is set.
type BatchResult struct {
	DocumentId uuid.UUID
	Analysis   *Analysis
	Err        error
}

// Orchestrator runs every evaluator over a document and fuses the signals
// into a persisted verdict.
type Orchestrator struct {
	evaluators []Evaluator
	clock      Clock
}

// NewOrchestrator builds the standard evaluator set: freshness,
// contradiction and version drift.
func NewOrchestrator(clock Clock) *Orchestrator {
	if clock == nil {
		clock = systemClock{}
	}
	return &Orchestrator{
		evaluators: []Evaluator{
			NewFreshnessEvaluator(clock),
			NewContradictionEvaluator(),
			NewVersionDriftEvaluator(),
		},
		clock: clock,
	}
}

func (o *Orchestrator) AnalyzeDocument(document Document, versions []Version, siblings []Document) *Analysis {
	signals := make(map[string]Signal, len(o.evaluators))
	citations := []Citation{}
	for _, evaluator := range o.evaluators {
		signal := evaluator.Evaluate(document, versions, siblings)
		signals[evaluator.Name()] = signal
		if signal.Detected {
			citations = append(citations, signal.Citations...)
		}
	}

	agg := Fuse(signals)

	return &Analysis{
		DocumentId:            document.Id,
		DecayDetected:         agg.DecayDetected,
		ConfidenceScore:       agg.ConfidenceScore,
		RiskLevel:             agg.RiskLevel,
		DecayReasons:          agg.Reasons,
		WhatChangedSummary:    WhatChanged(versions),
		UpdateRecommendations: recommendations(agg.Reasons),
		Citations:             dedupeCitations(citations),
		ConfidenceBreakdown:   agg.Breakdown,
		AnalyzedAt:            o.clock.Now(),
	}
}

// BatchAnalyze processes documents sequentially against a shared sibling
// set. A failure loading one document's versions is captured on that item
// and the batch continues. Context cancellation stops the batch, marking
// the remaining items with the cancellation error.
func (o *Orchestrator) BatchAnalyze(ctx context.Context, documents []Document, siblings []Document, loadVersions VersionLoader) []BatchResult {
	results := make([]BatchResult, 0, len(documents))
	for i, document := range documents {
		if err := ctx.Err(); err != nil {
			for _, remaining := range documents[i:] {
				results = append(results, BatchResult{DocumentId: remaining.Id, Err: err})
			}
			break
		}

		versions, err := loadVersions(ctx, document.Id)
		if err != nil {
			results = append(results, BatchResult{DocumentId: document.Id, Err: err})
			continue
		}

		results = append(results, BatchResult{
			DocumentId: document.Id,
			Analysis:   o.AnalyzeDocument(document, versions, siblings),
		})
	}
	return results
}

// recommendations derives actionable follow-ups from the raised reasons.
func recommendations(reasons []string) []string {
	recs := []string{}
	seen := map[string]bool{}
	add := func(rec string) {
		if !seen[rec] {
			seen[rec] = true
			recs = append(recs, rec)
		}
	}

	for _, reason := range reasons {
		switch {
		case strings.Contains(reason, "days old"), strings.Contains(reason, "effective period"):
			add("Review the document and refresh or re-confirm its content.")
		case strings.Contains(reason, "conflicts with"):
			add("Reconcile the conflicting statements with the related document.")
		case strings.Contains(reason, "contradicts version"), strings.Contains(reason, "reverses a statement"):
			add("Archive superseded versions or clarify which statement is current.")
		case strings.Contains(reason, "content changed"):
			add("Verify downstream references still match the rewritten content.")
		}
	}
	return recs
}

func dedupeCitations(citations []Citation) []Citation {
	out := []Citation{}
	seen := map[Citation]bool{}
	for _, c := range citations {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
