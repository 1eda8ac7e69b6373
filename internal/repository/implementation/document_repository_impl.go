package implementation

import (
	"context"
	"errors"

	"insightops-be/internal/entity"
	"insightops-be/internal/mapper"
	"insightops-be/internal/model"
	"insightops-be/internal/repository/contract"
	"insightops-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	return r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", id).
		Update("embedding", vec).Error
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Document, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Document{}).Count(&count).Error
	return count, err
}

func (r *DocumentRepositoryImpl) ListWorkspaceRefs(ctx context.Context, workspaceId uuid.UUID) ([]*entity.DocumentRef, error) {
	var models []*model.Document

	// Exclude content: ranking only needs the embedding projection.
	err := r.db.WithContext(ctx).
		Select("id", "title", "type", "embedding", "updated_at").
		Where("workspace_id = ?", workspaceId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	refs := make([]*entity.DocumentRef, len(models))
	for i, m := range models {
		var embedding []float32
		if m.Embedding != nil {
			embedding = m.Embedding.Slice()
		}
		refs[i] = &entity.DocumentRef{
			Id:        m.Id,
			Title:     m.Title,
			Type:      m.Type,
			Embedding: embedding,
			UpdatedAt: m.UpdatedAt,
		}
	}
	return refs, nil
}

func (r *DocumentRepositoryImpl) FetchContent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	var models []*model.Document
	err := r.db.WithContext(ctx).
		Select("id", "content").
		Where("id IN ?", ids).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	contents := make(map[uuid.UUID]string, len(models))
	for _, m := range models {
		contents[m.Id] = m.Content
	}
	return contents, nil
}

func (r *DocumentRepositoryImpl) ListWorkspaceIds(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Distinct("workspace_id").
		Pluck("workspace_id", &ids).Error
	return ids, err
}
