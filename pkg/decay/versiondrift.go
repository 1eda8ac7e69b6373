package decay

import (
	"fmt"
	"sort"
)

// VersionDriftWeight is the drift signal's share of the confidence score.
const VersionDriftWeight = 0.3

// DriftThreshold is the fraction of changed content that counts as drift.
const DriftThreshold = 0.4

// VersionDriftEvaluator diffs the latest version against the one before it.
// Large rewrites and reversals of prior statements both flag the document.
type VersionDriftEvaluator struct{}

func NewVersionDriftEvaluator() *VersionDriftEvaluator {
	return &VersionDriftEvaluator{}
}

func (e *VersionDriftEvaluator) Name() string { return "version_drift" }

func (e *VersionDriftEvaluator) Evaluate(document Document, versions []Version, _ []Document) Signal {
	signal := Signal{Weight: VersionDriftWeight}
	if len(versions) < 2 {
		return signal
	}

	ordered := make([]Version, len(versions))
	copy(ordered, versions)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Number > ordered[j].Number
	})

	latest := ordered[0]
	previous := ordered[1]

	ratio := changeRatio(latest.Content, previous.Content)
	if ratio > DriftThreshold {
		signal.Detected = true
		signal.Reasons = append(signal.Reasons, fmt.Sprintf(
			"%.0f%% of the content changed between version %d and version %d",
			ratio*100, previous.Number, latest.Number,
		))
	}

	reversal := hasNegatedOverlap(latest.Content, previous.Content) ||
		len(oppositionConflicts(tokenSet(latest.Content), tokenSet(previous.Content))) > 0
	if reversal {
		signal.Detected = true
		signal.Reasons = append(signal.Reasons, fmt.Sprintf(
			"version %d reverses a statement made in version %d",
			latest.Number, previous.Number,
		))
	}

	if signal.Detected {
		signal.Citations = append(signal.Citations,
			Citation{DocumentId: document.Id, Version: previous.Number},
			Citation{DocumentId: document.Id, Version: latest.Number},
		)
	}

	return signal
}

// WhatChanged summarizes the drift between the two most recent versions.
// Empty when there is nothing to compare.
func WhatChanged(versions []Version) string {
	if len(versions) < 2 {
		return ""
	}

	ordered := make([]Version, len(versions))
	copy(ordered, versions)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Number > ordered[j].Number
	})

	latest := ordered[0]
	previous := ordered[1]
	ratio := changeRatio(latest.Content, previous.Content)

	return fmt.Sprintf("version %d rewrote about %.0f%% of version %d",
		latest.Number, ratio*100, previous.Number)
}
