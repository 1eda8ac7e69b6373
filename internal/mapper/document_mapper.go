package mapper

import (
	"insightops-be/internal/entity"
	"insightops-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var embedding []float32
	if d.Embedding != nil {
		embedding = d.Embedding.Slice()
	}

	return &entity.Document{
		Id:             d.Id,
		WorkspaceId:    d.WorkspaceId,
		Title:          d.Title,
		Type:           d.Type,
		Content:        d.Content,
		Embedding:      embedding,
		CurrentVersion: d.CurrentVersion,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if d.Embedding != nil {
		v := pgvector.NewVector(d.Embedding)
		embedding = &v
	}

	return &model.Document{
		Id:             d.Id,
		WorkspaceId:    d.WorkspaceId,
		Title:          d.Title,
		Type:           d.Type,
		Content:        d.Content,
		Embedding:      embedding,
		CurrentVersion: d.CurrentVersion,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type DocumentVersionMapper struct{}

func NewDocumentVersionMapper() *DocumentVersionMapper {
	return &DocumentVersionMapper{}
}

func (m *DocumentVersionMapper) ToEntity(v *model.DocumentVersion) *entity.DocumentVersion {
	if v == nil {
		return nil
	}
	return &entity.DocumentVersion{
		Id:            v.Id,
		DocumentId:    v.DocumentId,
		VersionNumber: v.VersionNumber,
		Content:       v.Content,
		CreatedAt:     v.CreatedAt,
	}
}

func (m *DocumentVersionMapper) ToModel(v *entity.DocumentVersion) *model.DocumentVersion {
	if v == nil {
		return nil
	}
	return &model.DocumentVersion{
		Id:            v.Id,
		DocumentId:    v.DocumentId,
		VersionNumber: v.VersionNumber,
		Content:       v.Content,
		CreatedAt:     v.CreatedAt,
	}
}
