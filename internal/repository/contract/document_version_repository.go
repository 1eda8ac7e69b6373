package contract

import (
	"context"

	"insightops-be/internal/entity"

	"github.com/google/uuid"
)

type DocumentVersionRepository interface {
	Create(ctx context.Context, version *entity.DocumentVersion) error
	// FindByDocumentId returns versions newest-first.
	FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.DocumentVersion, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
}
