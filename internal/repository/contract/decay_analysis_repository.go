package contract

import (
	"context"

	"insightops-be/internal/entity"
	"insightops-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DecayAnalysisRepository interface {
	Create(ctx context.Context, analysis *entity.DecayAnalysis) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DecayAnalysis, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DecayAnalysis, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindLatestByDocumentId returns the most recent analysis for a document,
	// or nil when the document has never been analyzed.
	FindLatestByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.DecayAnalysis, error)
	// ListLatestByWorkspace returns the newest analysis per document in a
	// workspace, used for summary statistics.
	ListLatestByWorkspace(ctx context.Context, workspaceId uuid.UUID) ([]*entity.DecayAnalysis, error)
	// UpdateReview mutates only the human-review fields of an analysis.
	UpdateReview(ctx context.Context, analysis *entity.DecayAnalysis) error
}
