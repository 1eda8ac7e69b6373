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
	"gorm.io/gorm"
)

type DecayAnalysisRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DecayAnalysisMapper
}

func NewDecayAnalysisRepository(db *gorm.DB) contract.DecayAnalysisRepository {
	return &DecayAnalysisRepositoryImpl{
		db:     db,
		mapper: mapper.NewDecayAnalysisMapper(),
	}
}

func (r *DecayAnalysisRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DecayAnalysisRepositoryImpl) Create(ctx context.Context, analysis *entity.DecayAnalysis) error {
	m := r.mapper.ToModel(analysis)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*analysis = *r.mapper.ToEntity(m)
	return nil
}

func (r *DecayAnalysisRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DecayAnalysis, error) {
	var m model.DecayAnalysis
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DecayAnalysisRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DecayAnalysis, error) {
	var models []*model.DecayAnalysis
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DecayAnalysis, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DecayAnalysisRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.DecayAnalysis{}).Count(&count).Error
	return count, err
}

func (r *DecayAnalysisRepositoryImpl) FindLatestByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.DecayAnalysis, error) {
	var m model.DecayAnalysis
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Order("analyzed_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DecayAnalysisRepositoryImpl) ListLatestByWorkspace(ctx context.Context, workspaceId uuid.UUID) ([]*entity.DecayAnalysis, error) {
	var models []*model.DecayAnalysis

	// DISTINCT ON picks the newest row per document in one round trip.
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (da.document_id) da.*
		     FROM decay_analyses da
		     JOIN documents d ON d.id = da.document_id
		     WHERE d.workspace_id = ?
		     ORDER BY da.document_id, da.analyzed_at DESC`, workspaceId).
		Scan(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.DecayAnalysis, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DecayAnalysisRepositoryImpl) UpdateReview(ctx context.Context, analysis *entity.DecayAnalysis) error {
	return r.db.WithContext(ctx).
		Model(&model.DecayAnalysis{}).
		Where("id = ?", analysis.Id).
		Updates(map[string]interface{}{
			"review_status": analysis.ReviewStatus,
			"reviewed_by":   analysis.ReviewedBy,
			"review_notes":  analysis.ReviewNotes,
			"reviewed_at":   analysis.ReviewedAt,
		}).Error
}
