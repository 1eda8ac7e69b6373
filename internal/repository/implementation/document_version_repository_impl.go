package implementation

import (
	"context"

	"insightops-be/internal/entity"
	"insightops-be/internal/mapper"
	"insightops-be/internal/model"
	"insightops-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentVersionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentVersionMapper
}

func NewDocumentVersionRepository(db *gorm.DB) contract.DocumentVersionRepository {
	return &DocumentVersionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentVersionMapper(),
	}
}

func (r *DocumentVersionRepositoryImpl) Create(ctx context.Context, version *entity.DocumentVersion) error {
	m := r.mapper.ToModel(version)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*version = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentVersionRepositoryImpl) FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.DocumentVersion, error) {
	var models []*model.DocumentVersion
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Order("version_number DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	versions := make([]*entity.DocumentVersion, len(models))
	for i, m := range models {
		versions[i] = r.mapper.ToEntity(m)
	}
	return versions, nil
}

func (r *DocumentVersionRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Delete(&model.DocumentVersion{}).Error
}
