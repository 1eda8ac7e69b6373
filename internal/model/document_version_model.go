package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentVersion struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId    uuid.UUID `gorm:"type:uuid;not null;index"`
	VersionNumber int       `gorm:"not null"`
	Content       string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (DocumentVersion) TableName() string {
	return "document_versions"
}
