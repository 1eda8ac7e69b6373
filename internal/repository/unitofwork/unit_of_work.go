package unitofwork

import (
	"context"

	"insightops-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentVersionRepository() contract.DocumentVersionRepository
	DecayAnalysisRepository() contract.DecayAnalysisRepository
}
