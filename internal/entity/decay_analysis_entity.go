package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"

	ReviewStatusPending   = "pending"
	ReviewStatusReviewed  = "reviewed"
	ReviewStatusDismissed = "dismissed"
	ReviewStatusActioned  = "actioned"
)

// DecayCitation points at the document or version a decay reason refers to.
// Version is zero when the whole document is meant.
type DecayCitation struct {
	DocumentId uuid.UUID `json:"documentId"`
	Version    int       `json:"version,omitempty"`
}

// DecayAnalysis is the persisted outcome of one decay run over a document.
// The pipeline never mutates a stored analysis; only a human review does.
type DecayAnalysis struct {
	Id                    uuid.UUID
	DocumentId            uuid.UUID
	DecayDetected         bool
	ConfidenceScore       float64
	RiskLevel             string
	DecayReasons          []string
	WhatChangedSummary    string
	UpdateRecommendations []string
	Citations             []DecayCitation
	// ConfidenceBreakdown records each evaluator's raw contribution.
	// Internal only: never serialized across the API.
	ConfidenceBreakdown map[string]float64
	AnalyzedAt          time.Time
	AnalyzedBy          string
	ReviewStatus        string
	ReviewedBy          string
	ReviewNotes         string
	ReviewedAt          *time.Time
}

// ValidReviewStatus reports whether s is one of the accepted review states.
func ValidReviewStatus(s string) bool {
	switch s {
	case ReviewStatusPending, ReviewStatusReviewed, ReviewStatusDismissed, ReviewStatusActioned:
		return true
	}
	return false
}
