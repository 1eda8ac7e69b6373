package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	WorkspaceId uuid.UUID `json:"workspace_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Type        string    `json:"type"`
	Content     string    `json:"content" validate:"required"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowDocumentResponse struct {
	Id             uuid.UUID `json:"id"`
	WorkspaceId    uuid.UUID `json:"workspace_id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	Content        string    `json:"content"`
	CurrentVersion int       `json:"current_version"`
	HasEmbedding   bool      `json:"has_embedding"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListDocumentItem struct {
	Id             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	CurrentVersion int       `json:"current_version"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UpdateDocumentRequest struct {
	Id      uuid.UUID
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type UpdateDocumentResponse struct {
	Id             uuid.UUID `json:"id"`
	CurrentVersion int       `json:"current_version"`
}

type DocumentVersionItem struct {
	VersionNumber int       `json:"version_number"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

// PublishEmbedDocumentMessage is the payload queued for the embedding worker.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
