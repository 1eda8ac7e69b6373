package dto

import (
	"time"

	"github.com/google/uuid"
)

type AnalyzeDocumentRequest struct {
	DocumentId     uuid.UUID `json:"document_id" validate:"required"`
	IncludeRelated *bool     `json:"include_related"`
}

type DecayCitation struct {
	DocumentId uuid.UUID `json:"document_id"`
	Version    int       `json:"version,omitempty"`
}

// AnalyzeDocumentResponse deliberately omits the confidence breakdown,
// which is internal to the pipeline.
type AnalyzeDocumentResponse struct {
	AnalysisId            uuid.UUID       `json:"analysis_id"`
	DocumentId            uuid.UUID       `json:"document_id"`
	DocumentTitle         string          `json:"document_title"`
	DecayDetected         bool            `json:"decay_detected"`
	ConfidenceScore       float64         `json:"confidence_score"`
	RiskLevel             string          `json:"risk_level"`
	DecayReasons          []string        `json:"decay_reasons"`
	WhatChangedSummary    string          `json:"what_changed_summary"`
	UpdateRecommendations []string        `json:"update_recommendations"`
	Citations             []DecayCitation `json:"citations"`
}

type BatchAnalyzeRequest struct {
	WorkspaceId *uuid.UUID  `json:"workspace_id"`
	DocumentIds []uuid.UUID `json:"document_ids"`
	Limit       int         `json:"limit"`
}

type BatchAnalyzeItem struct {
	DocumentId      uuid.UUID `json:"document_id"`
	DocumentTitle   string    `json:"document_title"`
	DecayDetected   bool      `json:"decay_detected"`
	ConfidenceScore float64   `json:"confidence_score"`
	RiskLevel       string    `json:"risk_level"`
	DecayReasons    []string  `json:"decay_reasons"`
	Error           string    `json:"error,omitempty"`
}

type BatchAnalyzeResponse struct {
	Analyzed      int                `json:"analyzed"`
	DecayDetected int                `json:"decay_detected"`
	Results       []BatchAnalyzeItem `json:"results"`
}

type ListReportsRequest struct {
	DocumentId    *uuid.UUID
	DecayDetected *bool
	RiskLevel     string
	ReviewStatus  string
	Limit         int
	Offset        int
}

type DecayReport struct {
	Id                    uuid.UUID       `json:"id"`
	DocumentId            uuid.UUID       `json:"document_id"`
	DocumentTitle         string          `json:"document_title,omitempty"`
	DecayDetected         bool            `json:"decay_detected"`
	ConfidenceScore       float64         `json:"confidence_score"`
	RiskLevel             string          `json:"risk_level"`
	DecayReasons          []string        `json:"decay_reasons"`
	WhatChangedSummary    string          `json:"what_changed_summary"`
	UpdateRecommendations []string        `json:"update_recommendations"`
	Citations             []DecayCitation `json:"citations"`
	AnalyzedAt            time.Time       `json:"analyzed_at"`
	AnalyzedBy            string          `json:"analyzed_by"`
	ReviewStatus          string          `json:"review_status"`
	ReviewedBy            string          `json:"reviewed_by,omitempty"`
	ReviewNotes           string          `json:"review_notes,omitempty"`
	ReviewedAt            *time.Time      `json:"reviewed_at,omitempty"`
}

type ListReportsResponse struct {
	Reports []DecayReport `json:"reports"`
	Total   int64         `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

type ReviewReportRequest struct {
	Id           uuid.UUID
	ReviewStatus string `json:"review_status" validate:"required"`
	ReviewNotes  string `json:"review_notes"`
	ReviewedBy   string `json:"reviewed_by"`
}

type DecaySummaryResponse struct {
	TotalDocuments    int64            `json:"total_documents"`
	AnalyzedDocuments int              `json:"analyzed_documents"`
	DecayDetected     int              `json:"decay_detected"`
	ByRiskLevel       map[string]int   `json:"by_risk_level"`
	ByReviewStatus    map[string]int   `json:"by_review_status"`
	AverageConfidence float64          `json:"average_confidence"`
}
