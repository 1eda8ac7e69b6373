package mapper

import (
	"encoding/json"

	"insightops-be/internal/entity"
	"insightops-be/internal/model"

	"gorm.io/datatypes"
)

type DecayAnalysisMapper struct{}

func NewDecayAnalysisMapper() *DecayAnalysisMapper {
	return &DecayAnalysisMapper{}
}

func (m *DecayAnalysisMapper) ToEntity(a *model.DecayAnalysis) *entity.DecayAnalysis {
	if a == nil {
		return nil
	}

	e := &entity.DecayAnalysis{
		Id:                 a.Id,
		DocumentId:         a.DocumentId,
		DecayDetected:      a.DecayDetected,
		ConfidenceScore:    a.ConfidenceScore,
		RiskLevel:          a.RiskLevel,
		WhatChangedSummary: a.WhatChangedSummary,
		AnalyzedAt:         a.AnalyzedAt,
		AnalyzedBy:         a.AnalyzedBy,
		ReviewStatus:       a.ReviewStatus,
		ReviewedBy:         a.ReviewedBy,
		ReviewNotes:        a.ReviewNotes,
		ReviewedAt:         a.ReviewedAt,
	}

	// JSON columns are best-effort: a decode failure yields empty slices,
	// not a lost analysis row.
	_ = json.Unmarshal(a.DecayReasons, &e.DecayReasons)
	_ = json.Unmarshal(a.UpdateRecommendations, &e.UpdateRecommendations)
	_ = json.Unmarshal(a.Citations, &e.Citations)
	_ = json.Unmarshal(a.ConfidenceBreakdown, &e.ConfidenceBreakdown)

	return e
}

func (m *DecayAnalysisMapper) ToModel(e *entity.DecayAnalysis) *model.DecayAnalysis {
	if e == nil {
		return nil
	}

	reasons, _ := json.Marshal(e.DecayReasons)
	recommendations, _ := json.Marshal(e.UpdateRecommendations)
	citations, _ := json.Marshal(e.Citations)
	breakdown, _ := json.Marshal(e.ConfidenceBreakdown)

	return &model.DecayAnalysis{
		Id:                    e.Id,
		DocumentId:            e.DocumentId,
		DecayDetected:         e.DecayDetected,
		ConfidenceScore:       e.ConfidenceScore,
		RiskLevel:             e.RiskLevel,
		DecayReasons:          datatypes.JSON(reasons),
		WhatChangedSummary:    e.WhatChangedSummary,
		UpdateRecommendations: datatypes.JSON(recommendations),
		Citations:             datatypes.JSON(citations),
		ConfidenceBreakdown:   datatypes.JSON(breakdown),
		AnalyzedAt:            e.AnalyzedAt,
		AnalyzedBy:            e.AnalyzedBy,
		ReviewStatus:          e.ReviewStatus,
		ReviewedBy:            e.ReviewedBy,
		ReviewNotes:           e.ReviewNotes,
		ReviewedAt:            e.ReviewedAt,
	}
}
