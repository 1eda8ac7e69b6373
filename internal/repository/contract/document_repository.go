package contract

import (
	"context"

	"insightops-be/internal/entity"
	"insightops-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// ListWorkspaceRefs returns the ranking projection (no content) for the
	// whole workspace, in stable insertion order.
	ListWorkspaceRefs(ctx context.Context, workspaceId uuid.UUID) ([]*entity.DocumentRef, error)
	// FetchContent loads full content only for the given winners.
	FetchContent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	// ListWorkspaceIds returns the distinct workspaces that own documents.
	ListWorkspaceIds(ctx context.Context) ([]uuid.UUID, error)
}
