package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DecayAnalysis struct {
	Id                    uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId            uuid.UUID      `gorm:"type:uuid;not null;index"`
	DecayDetected         bool           `gorm:"not null;default:false"`
	ConfidenceScore       float64        `gorm:"not null;default:0"`
	RiskLevel             string         `gorm:"type:varchar(16);not null;default:'low'"`
	DecayReasons          datatypes.JSON `gorm:"type:jsonb"`
	WhatChangedSummary    string         `gorm:"type:text"`
	UpdateRecommendations datatypes.JSON `gorm:"type:jsonb"`
	Citations             datatypes.JSON `gorm:"type:jsonb"`
	ConfidenceBreakdown   datatypes.JSON `gorm:"type:jsonb"`
	AnalyzedAt            time.Time      `gorm:"not null;index"`
	AnalyzedBy            string         `gorm:"type:varchar(255)"`
	ReviewStatus          string         `gorm:"type:varchar(16);not null;default:'pending';index"`
	ReviewedBy            string         `gorm:"type:varchar(255)"`
	ReviewNotes           string         `gorm:"type:text"`
	ReviewedAt            *time.Time
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
}

func (DecayAnalysis) TableName() string {
	return "decay_analyses"
}
