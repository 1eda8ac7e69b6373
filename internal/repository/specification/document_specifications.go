package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByWorkspaceID struct {
	WorkspaceID uuid.UUID
}

func (s ByWorkspaceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id = ?", s.WorkspaceID)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByRiskLevel struct {
	RiskLevel string
}

func (s ByRiskLevel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("risk_level = ?", s.RiskLevel)
}

type ByReviewStatus struct {
	ReviewStatus string
}

func (s ByReviewStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("review_status = ?", s.ReviewStatus)
}

type ByDecayDetected struct {
	Detected bool
}

func (s ByDecayDetected) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("decay_detected = ?", s.Detected)
}
