package service

import (
	"context"
	"strings"

	"insightops-be/internal/dto"
	"insightops-be/internal/pkg/logger"
	"insightops-be/internal/pkg/serverutils"
	"insightops-be/internal/repository/unitofwork"
	"insightops-be/pkg/embedding"
	"insightops-be/pkg/rag/response"
	"insightops-be/pkg/rag/search"

	"github.com/google/uuid"
)

type IInsightService interface {
	AskQuestion(ctx context.Context, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error)
	SearchDocuments(ctx context.Context, workspaceId uuid.UUID, query string, topK int) ([]*dto.SearchDocumentsResponse, error)
}

type insightService struct {
	responder         *response.Responder
	retriever         *search.Retriever
	embeddingProvider embedding.Provider
	sysLogger         logger.ILogger
}

func NewInsightService(
	responder *response.Responder,
	retriever *search.Retriever,
	embeddingProvider embedding.Provider,
	sysLogger logger.ILogger,
) IInsightService {
	return &insightService{
		responder:         responder,
		retriever:         retriever,
		embeddingProvider: embeddingProvider,
		sysLogger:         sysLogger,
	}
}

func (s *insightService) AskQuestion(ctx context.Context, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, serverutils.NewBadRequest("question is required")
	}
	if req.WorkspaceId == uuid.Nil {
		return nil, serverutils.NewBadRequest("workspace_id is required")
	}

	result, err := s.responder.Answer(ctx, req.WorkspaceId, question)
	if err != nil {
		s.sysLogger.Error("insight", "question answering failed", map[string]interface{}{
			"workspace_id": req.WorkspaceId.String(),
			"error":        err.Error(),
		})
		return nil, err
	}

	s.sysLogger.Info("insight", "question answered", map[string]interface{}{
		"workspace_id": req.WorkspaceId.String(),
		"confidence":   result.Confidence,
		"sources":      len(result.Sources),
		"warnings":     len(result.Warnings),
	})

	return toAskQuestionResponse(result), nil
}

func (s *insightService) SearchDocuments(ctx context.Context, workspaceId uuid.UUID, query string, topK int) ([]*dto.SearchDocumentsResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, serverutils.NewBadRequest("query is required")
	}
	if workspaceId == uuid.Nil {
		return nil, serverutils.NewBadRequest("workspace_id is required")
	}
	if topK <= 0 {
		topK = 5
	}

	emb, err := s.embeddingProvider.Generate(ctx, query, "retrieval_query")
	if err != nil {
		return nil, err
	}

	matches, err := s.retriever.Retrieve(ctx, workspaceId, emb.Embedding.Values, topK)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.SearchDocumentsResponse, 0, len(matches))
	for _, m := range matches {
		results = append(results, &dto.SearchDocumentsResponse{
			Id:         m.Id,
			Title:      m.Title,
			Type:       m.Type,
			Similarity: m.Similarity,
			Excerpt:    m.Excerpt,
			UpdatedAt:  m.UpdatedAt,
		})
	}
	return results, nil
}

func toAskQuestionResponse(result *response.Result) *dto.AskQuestionResponse {
	sources := make([]dto.AnswerSource, 0, len(result.Sources))
	for _, src := range result.Sources {
		sources = append(sources, dto.AnswerSource{
			DocumentId: src.DocumentId,
			Title:      src.Title,
			Type:       src.Type,
			Similarity: src.Similarity,
			Excerpt:    src.Excerpt,
			UpdatedAt:  src.UpdatedAt,
		})
	}

	warnings := make([]dto.AnswerWarning, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, dto.AnswerWarning{
			Type:       w.Type,
			Message:    w.Message,
			DocumentId: w.DocumentId,
		})
	}

	return &dto.AskQuestionResponse{
		Answer:     result.Answer,
		Confidence: result.Confidence,
		Sources:    sources,
		Warnings:   warnings,
	}
}

// documentSource adapts the repository layer to the retriever's port.
type documentSource struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDocumentSource(uowFactory unitofwork.RepositoryFactory) search.DocumentSource {
	return &documentSource{uowFactory: uowFactory}
}

func (s *documentSource) ListWorkspaceRefs(ctx context.Context, workspaceId uuid.UUID) ([]search.DocumentRef, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	refs, err := uow.DocumentRepository().ListWorkspaceRefs(ctx, workspaceId)
	if err != nil {
		return nil, err
	}

	out := make([]search.DocumentRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, search.DocumentRef{
			Id:        ref.Id,
			Title:     ref.Title,
			Type:      ref.Type,
			Embedding: ref.Embedding,
			UpdatedAt: ref.UpdatedAt,
		})
	}
	return out, nil
}

func (s *documentSource) FetchContent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentRepository().FetchContent(ctx, ids)
}
