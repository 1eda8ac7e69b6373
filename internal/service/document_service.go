package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"insightops-be/internal/dto"
	"insightops-be/internal/entity"
	"insightops-be/internal/repository/specification"
	"insightops-be/internal/repository/unitofwork"
	"insightops-be/pkg/events"
	"insightops-be/pkg/rag/response"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, workspaceId uuid.UUID) ([]*dto.ListDocumentItem, error)
	Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	Versions(ctx context.Context, id uuid.UUID) ([]*dto.DocumentVersionItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	answerCache      response.CacheStore
	eventPublisher   IEventPublisher
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	answerCache response.CacheStore,
	eventPublisher IEventPublisher,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		answerCache:      answerCache,
		eventPublisher:   eventPublisher,
	}
}

func (s *documentService) Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	docType := req.Type
	if docType == "" {
		docType = "note"
	}

	now := time.Now()
	doc := entity.Document{
		Id:             uuid.New(),
		WorkspaceId:    req.WorkspaceId,
		Title:          req.Title,
		Type:           docType,
		Content:        req.Content,
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	version := entity.DocumentVersion{
		Id:            uuid.New(),
		DocumentId:    doc.Id,
		VersionNumber: 1,
		Content:       req.Content,
		CreatedAt:     now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}
	if err := uow.DocumentVersionRepository().Create(ctx, &version); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if err := s.queueEmbedding(ctx, doc.Id); err != nil {
		return nil, err
	}

	// Stored answers may now be missing this document.
	s.answerCache.InvalidateWorkspace(ctx, doc.WorkspaceId)

	s.publishEvent(ctx, "DOCUMENT_CREATED", map[string]interface{}{
		"document_id":  doc.Id,
		"workspace_id": doc.WorkspaceId,
		"title":        doc.Title,
	})

	return &dto.CreateDocumentResponse{Id: doc.Id}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil // Not found
	}

	return &dto.ShowDocumentResponse{
		Id:             doc.Id,
		WorkspaceId:    doc.WorkspaceId,
		Title:          doc.Title,
		Type:           doc.Type,
		Content:        doc.Content,
		CurrentVersion: doc.CurrentVersion,
		HasEmbedding:   len(doc.Embedding) > 0,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

func (s *documentService) List(ctx context.Context, workspaceId uuid.UUID) ([]*dto.ListDocumentItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByWorkspaceID{WorkspaceID: workspaceId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ListDocumentItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, &dto.ListDocumentItem{
			Id:             doc.Id,
			Title:          doc.Title,
			Type:           doc.Type,
			CurrentVersion: doc.CurrentVersion,
			UpdatedAt:      doc.UpdatedAt,
		})
	}
	return items, nil
}

func (s *documentService) Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil // Not found
	}

	now := time.Now()
	doc.Title = req.Title
	doc.Content = req.Content
	doc.CurrentVersion++
	doc.UpdatedAt = now
	// Content changed, so the stored embedding no longer represents it.
	doc.Embedding = nil

	version := entity.DocumentVersion{
		Id:            uuid.New(),
		DocumentId:    doc.Id,
		VersionNumber: doc.CurrentVersion,
		Content:       req.Content,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}
	if err := uow.DocumentVersionRepository().Create(ctx, &version); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if err := s.queueEmbedding(ctx, doc.Id); err != nil {
		return nil, err
	}

	s.answerCache.InvalidateWorkspace(ctx, doc.WorkspaceId)

	s.publishEvent(ctx, "DOCUMENT_UPDATED", map[string]interface{}{
		"document_id":     doc.Id,
		"workspace_id":    doc.WorkspaceId,
		"current_version": doc.CurrentVersion,
	})

	return &dto.UpdateDocumentResponse{
		Id:             doc.Id,
		CurrentVersion: doc.CurrentVersion,
	}, nil
}

func (s *documentService) Versions(ctx context.Context, id uuid.UUID) ([]*dto.DocumentVersionItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil // Not found
	}

	versions, err := uow.DocumentVersionRepository().FindByDocumentId(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DocumentVersionItem, 0, len(versions))
	for _, v := range versions {
		items = append(items, &dto.DocumentVersionItem{
			VersionNumber: v.VersionNumber,
			Content:       v.Content,
			CreatedAt:     v.CreatedAt,
		})
	}
	return items, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return nil // Already gone
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentVersionRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.answerCache.InvalidateWorkspace(ctx, doc.WorkspaceId)

	s.publishEvent(ctx, "DOCUMENT_DELETED", map[string]interface{}{
		"document_id":  doc.Id,
		"workspace_id": doc.WorkspaceId,
	})

	return nil
}

func (s *documentService) queueEmbedding(ctx context.Context, documentId uuid.UUID) error {
	msgPayload := dto.PublishEmbedDocumentMessage{DocumentId: documentId}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}

func (s *documentService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	// We log error but don't fail the request as events are auxiliary
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}
