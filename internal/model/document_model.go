package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Document struct {
	Id             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkspaceId    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title          string           `gorm:"type:varchar(255);not null"`
	Type           string           `gorm:"type:varchar(64);not null;default:'other'"`
	Content        string           `gorm:"type:text"`
	Embedding      *pgvector.Vector `gorm:"type:vector(768)"` // null until embedded
	CurrentVersion int              `gorm:"default:1"`
	CreatedAt      time.Time        `gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
