package decay

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestFreshness_FlagsOldPolicy(t *testing.T) {
	eval := NewFreshnessEvaluator(fixedClock{now: testNow})

	doc := Document{
		Id:        uuid.New(),
		Type:      "policy",
		Content:   "Expense limits for travel.",
		UpdatedAt: daysAgo(200),
	}

	signal := eval.Evaluate(doc, nil, nil)
	assert.True(t, signal.Detected)
	require.Len(t, signal.Reasons, 1)
	assert.Contains(t, signal.Reasons[0], "200 days old")
	assert.Contains(t, signal.Reasons[0], "180-day validity window")
}

func TestFreshness_RecentDocumentPasses(t *testing.T) {
	eval := NewFreshnessEvaluator(fixedClock{now: testNow})

	doc := Document{Type: "policy", Content: "x", UpdatedAt: daysAgo(30)}
	signal := eval.Evaluate(doc, nil, nil)
	assert.False(t, signal.Detected)
	assert.Empty(t, signal.Reasons)
}

func TestFreshness_UnknownTypeUsesDefaultWindow(t *testing.T) {
	eval := NewFreshnessEvaluator(fixedClock{now: testNow})

	doc := Document{Type: "note", Content: "x", UpdatedAt: daysAgo(200)}
	assert.False(t, eval.Evaluate(doc, nil, nil).Detected)

	doc.UpdatedAt = daysAgo(400)
	assert.True(t, eval.Evaluate(doc, nil, nil).Detected)
}

func TestFreshness_DeclaredExpiryElapsed(t *testing.T) {
	eval := NewFreshnessEvaluator(fixedClock{now: testNow})

	doc := Document{
		Type:      "guide",
		Content:   "These rates are valid until March 2026.",
		UpdatedAt: daysAgo(10),
	}

	signal := eval.Evaluate(doc, nil, nil)
	assert.True(t, signal.Detected)
	require.Len(t, signal.Reasons, 1)
	assert.Equal(t, "declared effective period has elapsed", signal.Reasons[0])
}

func TestFreshness_FutureExpiryPasses(t *testing.T) {
	eval := NewFreshnessEvaluator(fixedClock{now: testNow})

	doc := Document{
		Type:      "guide",
		Content:   "These rates are valid until December 2027.",
		UpdatedAt: daysAgo(10),
	}
	assert.False(t, eval.Evaluate(doc, nil, nil).Detected)
}

func TestContradiction_FlagsOpposingSibling(t *testing.T) {
	eval := NewContradictionEvaluator()

	doc := Document{
		Id:        uuid.New(),
		Title:     "Work Location Policy",
		Content:   "All staff work fully remote.",
		Embedding: []float32{1, 0},
	}
	sibling := Document{
		Id:        uuid.New(),
		Title:     "Attendance Rules",
		Content:   "Staff must be in the office four days a week.",
		Embedding: []float32{0.9, 0.1},
	}

	signal := eval.Evaluate(doc, nil, []Document{sibling})
	assert.True(t, signal.Detected)
	require.NotEmpty(t, signal.Reasons)
	assert.Contains(t, signal.Reasons[0], "Attendance Rules")
	require.Len(t, signal.Citations, 1)
	assert.Equal(t, sibling.Id, signal.Citations[0].DocumentId)
}

func TestContradiction_IgnoresUnrelatedSibling(t *testing.T) {
	eval := NewContradictionEvaluator()

	doc := Document{
		Id:        uuid.New(),
		Content:   "All staff work fully remote.",
		Embedding: []float32{1, 0},
	}
	unrelated := Document{
		Id:        uuid.New(),
		Content:   "The office printer is on the third floor.",
		Embedding: []float32{0, 1},
	}

	assert.False(t, eval.Evaluate(doc, nil, []Document{unrelated}).Detected)
}

func TestContradiction_NumericFactConflict(t *testing.T) {
	eval := NewContradictionEvaluator()

	doc := Document{
		Id:        uuid.New(),
		Content:   "Employees get 25 vacation days per year.",
		Embedding: []float32{1, 0},
	}
	sibling := Document{
		Id:        uuid.New(),
		Title:     "Benefits Overview",
		Content:   "Employees get 20 vacation days per year.",
		Embedding: []float32{1, 0},
	}

	signal := eval.Evaluate(doc, nil, []Document{sibling})
	assert.True(t, signal.Detected)
	assert.Contains(t, signal.Reasons[0], "vacation days")
}

func TestContradiction_CitesOlderVersion(t *testing.T) {
	eval := NewContradictionEvaluator()

	docId := uuid.New()
	doc := Document{Id: docId, Content: "The team is fully remote."}
	versions := []Version{
		{Number: 2, Content: "The team is fully remote."},
		{Number: 1, Content: "The team works from the office."},
	}

	signal := eval.Evaluate(doc, versions, nil)
	assert.True(t, signal.Detected)
	require.Len(t, signal.Citations, 1)
	assert.Equal(t, docId, signal.Citations[0].DocumentId)
	assert.Equal(t, 1, signal.Citations[0].Version)
}

func TestVersionDrift_LargeRewrite(t *testing.T) {
	eval := NewVersionDriftEvaluator()

	doc := Document{Id: uuid.New()}
	versions := []Version{
		{Number: 1, Content: "Submit expense reports by the fifth business day of each month."},
		{Number: 2, Content: "Upload receipts to the finance portal within two weeks of purchase."},
	}

	signal := eval.Evaluate(doc, versions, nil)
	assert.True(t, signal.Detected)
	assert.Contains(t, signal.Reasons[0], "version 1 and version 2")
	require.Len(t, signal.Citations, 2)
}

func TestVersionDrift_ReversalDetected(t *testing.T) {
	eval := NewVersionDriftEvaluator()

	doc := Document{Id: uuid.New()}
	versions := []Version{
		{Number: 1, Content: "Contractors are allowed to access production systems."},
		{Number: 2, Content: "Contractors are prohibited from production systems access."},
	}

	signal := eval.Evaluate(doc, versions, nil)
	assert.True(t, signal.Detected)

	var reversal bool
	for _, reason := range signal.Reasons {
		if strings.Contains(reason, "reverses a statement") {
			reversal = true
		}
	}
	assert.True(t, reversal)
}

func TestVersionDrift_SingleVersionIsQuiet(t *testing.T) {
	eval := NewVersionDriftEvaluator()
	signal := eval.Evaluate(Document{}, []Version{{Number: 1, Content: "x"}}, nil)
	assert.False(t, signal.Detected)
}

func TestFuse_WeightsAndThreshold(t *testing.T) {
	agg := Fuse(map[string]Signal{
		"freshness":     {Detected: false, Weight: 0.3},
		"contradiction": {Detected: true, Weight: 0.4, Reasons: []string{"conflict"}},
		"version_drift": {Detected: true, Weight: 0.3, Reasons: []string{"rewrite"}},
	})

	assert.True(t, agg.DecayDetected)
	assert.InDelta(t, 0.7, agg.ConfidenceScore, 1e-9)
	assert.Equal(t, RiskHigh, agg.RiskLevel)
	assert.Equal(t, []string{"conflict", "rewrite"}, agg.Reasons)
	assert.Equal(t, 0.0, agg.Breakdown["freshness"])
	assert.Equal(t, 0.4, agg.Breakdown["contradiction"])
}

func TestFuse_BelowActivationThreshold(t *testing.T) {
	agg := Fuse(map[string]Signal{
		"weak":  {Detected: true, Weight: 0.1},
		"other": {Detected: false, Weight: 0.9},
	})

	assert.False(t, agg.DecayDetected)
	assert.InDelta(t, 0.1, agg.ConfidenceScore, 1e-9)
}

func TestFuse_NothingDetected(t *testing.T) {
	agg := Fuse(map[string]Signal{
		"freshness": {Detected: false, Weight: 0.3},
	})
	assert.False(t, agg.DecayDetected)
	assert.Zero(t, agg.ConfidenceScore)
	assert.Equal(t, RiskLow, agg.RiskLevel)
}

func TestRiskLevel_Boundaries(t *testing.T) {
	assert.Equal(t, RiskHigh, RiskLevel(0.75))
	assert.Equal(t, RiskMedium, RiskLevel(0.5))
	assert.Equal(t, RiskLow, RiskLevel(0.1))
	assert.Equal(t, RiskHigh, RiskLevel(0.7))
	assert.Equal(t, RiskMedium, RiskLevel(0.4))
}

func TestAnalyzeDocument_PolicyReversalScenario(t *testing.T) {
	orchestrator := NewOrchestrator(fixedClock{now: testNow})

	docId := uuid.New()
	doc := Document{
		Id:        docId,
		Title:     "Work Location Policy",
		Type:      "policy",
		Content:   "Fully remote, effective Jan 2026.",
		UpdatedAt: daysAgo(14),
	}
	versions := []Version{
		{Number: 2, Content: "Fully remote, effective Jan 2026."},
		{Number: 1, Content: "3 office days/week, effective Jan 2025."},
	}

	analysis := orchestrator.AnalyzeDocument(doc, versions, nil)

	assert.True(t, analysis.DecayDetected)
	assert.Equal(t, RiskHigh, analysis.RiskLevel)
	assert.InDelta(t, 0.7, analysis.ConfidenceScore, 1e-9)

	var citesV1 bool
	for _, reason := range analysis.DecayReasons {
		if strings.Contains(reason, "version 1") {
			citesV1 = true
		}
	}
	assert.True(t, citesV1, "reasons must cite the superseded version")

	assert.NotEmpty(t, analysis.WhatChangedSummary)
	assert.NotEmpty(t, analysis.UpdateRecommendations)
	assert.Equal(t, testNow, analysis.AnalyzedAt)
	assert.Zero(t, analysis.ConfidenceBreakdown["freshness"])
}

func TestBatchAnalyze_EmptyInput(t *testing.T) {
	orchestrator := NewOrchestrator(fixedClock{now: testNow})

	results := orchestrator.BatchAnalyze(context.Background(), nil, nil, func(context.Context, uuid.UUID) ([]Version, error) {
		t.Fatal("loader must not be called for an empty batch")
		return nil, nil
	})
	assert.Empty(t, results)
}

func TestBatchAnalyze_IsolatesFailures(t *testing.T) {
	orchestrator := NewOrchestrator(fixedClock{now: testNow})

	good := Document{Id: uuid.New(), Type: "note", Content: "x", UpdatedAt: daysAgo(1)}
	bad := Document{Id: uuid.New(), Type: "note", Content: "y", UpdatedAt: daysAgo(1)}
	loadErr := errors.New("version history unavailable")

	results := orchestrator.BatchAnalyze(context.Background(), []Document{bad, good}, nil,
		func(_ context.Context, id uuid.UUID) ([]Version, error) {
			if id == bad.Id {
				return nil, loadErr
			}
			return []Version{{Number: 1, Content: "x"}}, nil
		})

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, loadErr)
	assert.Nil(t, results[0].Analysis)
	assert.NoError(t, results[1].Err)
	require.NotNil(t, results[1].Analysis)
	assert.Equal(t, good.Id, results[1].Analysis.DocumentId)
}

func TestBatchAnalyze_StopsOnCancelledContext(t *testing.T) {
	orchestrator := NewOrchestrator(fixedClock{now: testNow})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []Document{{Id: uuid.New()}, {Id: uuid.New()}}
	results := orchestrator.BatchAnalyze(ctx, docs, nil, func(context.Context, uuid.UUID) ([]Version, error) {
		return nil, nil
	})

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.ErrorIs(t, results[1].Err, context.Canceled)
}
