package service

import (
	"context"
	"math"
	"time"

	"insightops-be/internal/dto"
	"insightops-be/internal/entity"
	"insightops-be/internal/pkg/logger"
	"insightops-be/internal/pkg/serverutils"
	"insightops-be/internal/repository/specification"
	"insightops-be/internal/repository/unitofwork"
	"insightops-be/pkg/decay"
	"insightops-be/pkg/events"

	"github.com/google/uuid"
)

const defaultBatchLimit = 50

type IDecayService interface {
	AnalyzeDocument(ctx context.Context, req *dto.AnalyzeDocumentRequest, analyzedBy string) (*dto.AnalyzeDocumentResponse, error)
	BatchAnalyze(ctx context.Context, req *dto.BatchAnalyzeRequest, analyzedBy string) (*dto.BatchAnalyzeResponse, error)
	Reports(ctx context.Context, req *dto.ListReportsRequest) (*dto.ListReportsResponse, error)
	LatestReport(ctx context.Context, documentId uuid.UUID) (*dto.DecayReport, error)
	Review(ctx context.Context, req *dto.ReviewReportRequest) (*dto.DecayReport, error)
	Summary(ctx context.Context, workspaceId *uuid.UUID) (*dto.DecaySummaryResponse, error)
}

type decayService struct {
	uowFactory     unitofwork.RepositoryFactory
	orchestrator   *decay.Orchestrator
	eventPublisher IEventPublisher
	sysLogger      logger.ILogger
}

func NewDecayService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *decay.Orchestrator,
	eventPublisher IEventPublisher,
	sysLogger logger.ILogger,
) IDecayService {
	return &decayService{
		uowFactory:     uowFactory,
		orchestrator:   orchestrator,
		eventPublisher: eventPublisher,
		sysLogger:      sysLogger,
	}
}

func (s *decayService) AnalyzeDocument(ctx context.Context, req *dto.AnalyzeDocumentRequest, analyzedBy string) (*dto.AnalyzeDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.DocumentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFound("document not found")
	}

	versions, err := s.loadVersions(ctx, uow, doc.Id)
	if err != nil {
		return nil, err
	}

	includeRelated := req.IncludeRelated == nil || *req.IncludeRelated
	var siblings []decay.Document
	if includeRelated {
		siblings, err = s.loadSiblings(ctx, uow, doc.WorkspaceId)
		if err != nil {
			return nil, err
		}
	}

	analysis := s.orchestrator.AnalyzeDocument(toDecayDocument(doc), versions, siblings)

	record := toAnalysisEntity(analysis, analyzedBy)
	if err := uow.DecayAnalysisRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	s.notifyIfDecayed(ctx, record, doc)

	return &dto.AnalyzeDocumentResponse{
		AnalysisId:            record.Id,
		DocumentId:            doc.Id,
		DocumentTitle:         doc.Title,
		DecayDetected:         analysis.DecayDetected,
		ConfidenceScore:       analysis.ConfidenceScore,
		RiskLevel:             analysis.RiskLevel,
		DecayReasons:          analysis.DecayReasons,
		WhatChangedSummary:    analysis.WhatChangedSummary,
		UpdateRecommendations: analysis.UpdateRecommendations,
		Citations:             toCitationDTOs(analysis.Citations),
	}, nil
}

func (s *decayService) BatchAnalyze(ctx context.Context, req *dto.BatchAnalyzeRequest, analyzedBy string) (*dto.BatchAnalyzeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	limit := req.Limit
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	var specs []specification.Specification
	switch {
	case len(req.DocumentIds) > 0:
		specs = append(specs, specification.ByIDs{IDs: req.DocumentIds})
	case req.WorkspaceId != nil:
		specs = append(specs, specification.ByWorkspaceID{WorkspaceID: *req.WorkspaceId})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: limit},
	)

	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &dto.BatchAnalyzeResponse{Results: []dto.BatchAnalyzeItem{}}, nil
	}

	titles := make(map[uuid.UUID]string, len(docs))
	docById := make(map[uuid.UUID]*entity.Document, len(docs))
	for _, doc := range docs {
		titles[doc.Id] = doc.Title
		docById[doc.Id] = doc
	}

	// Sibling sets are fetched once per distinct workspace and shared
	// across every document of that workspace in the batch.
	byWorkspace := map[uuid.UUID][]decay.Document{}
	order := []uuid.UUID{}
	for _, doc := range docs {
		if _, ok := byWorkspace[doc.WorkspaceId]; !ok {
			order = append(order, doc.WorkspaceId)
		}
		byWorkspace[doc.WorkspaceId] = append(byWorkspace[doc.WorkspaceId], toDecayDocument(doc))
	}

	loader := func(ctx context.Context, documentId uuid.UUID) ([]decay.Version, error) {
		return s.loadVersions(ctx, uow, documentId)
	}

	resp := &dto.BatchAnalyzeResponse{Results: []dto.BatchAnalyzeItem{}}
	for _, workspaceId := range order {
		siblings, err := s.loadSiblings(ctx, uow, workspaceId)
		if err != nil {
			return nil, err
		}

		results := s.orchestrator.BatchAnalyze(ctx, byWorkspace[workspaceId], siblings, loader)
		for _, result := range results {
			item := dto.BatchAnalyzeItem{
				DocumentId:    result.DocumentId,
				DocumentTitle: titles[result.DocumentId],
			}
			if result.Err != nil {
				item.Error = result.Err.Error()
				resp.Results = append(resp.Results, item)
				continue
			}

			record := toAnalysisEntity(result.Analysis, analyzedBy)
			if err := uow.DecayAnalysisRepository().Create(ctx, record); err != nil {
				// Persistence failures are isolated per item in batch mode.
				item.Error = err.Error()
				resp.Results = append(resp.Results, item)
				continue
			}

			s.notifyIfDecayed(ctx, record, docById[result.DocumentId])

			item.DecayDetected = result.Analysis.DecayDetected
			item.ConfidenceScore = result.Analysis.ConfidenceScore
			item.RiskLevel = result.Analysis.RiskLevel
			item.DecayReasons = result.Analysis.DecayReasons
			resp.Results = append(resp.Results, item)

			resp.Analyzed++
			if result.Analysis.DecayDetected {
				resp.DecayDetected++
			}
		}
	}

	s.sysLogger.Info("decay", "batch analysis finished", map[string]interface{}{
		"analyzed":       resp.Analyzed,
		"decay_detected": resp.DecayDetected,
		"items":          len(resp.Results),
	})

	return resp, nil
}

func (s *decayService) Reports(ctx context.Context, req *dto.ListReportsRequest) (*dto.ListReportsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	limit := req.Limit
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	var filters []specification.Specification
	if req.DocumentId != nil {
		filters = append(filters, specification.ByDocumentID{DocumentID: *req.DocumentId})
	}
	if req.DecayDetected != nil {
		filters = append(filters, specification.ByDecayDetected{Detected: *req.DecayDetected})
	}
	if req.RiskLevel != "" {
		filters = append(filters, specification.ByRiskLevel{RiskLevel: req.RiskLevel})
	}
	if req.ReviewStatus != "" {
		filters = append(filters, specification.ByReviewStatus{ReviewStatus: req.ReviewStatus})
	}

	total, err := uow.DecayAnalysisRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(filters,
		specification.OrderBy{Field: "analyzed_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	analyses, err := uow.DecayAnalysisRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	titles, err := s.loadTitles(ctx, uow, analyses)
	if err != nil {
		return nil, err
	}

	reports := make([]dto.DecayReport, 0, len(analyses))
	for _, analysis := range analyses {
		reports = append(reports, toReportDTO(analysis, titles[analysis.DocumentId]))
	}

	return &dto.ListReportsResponse{
		Reports: reports,
		Total:   total,
		Limit:   limit,
		Offset:  req.Offset,
	}, nil
}

func (s *decayService) LatestReport(ctx context.Context, documentId uuid.UUID) (*dto.DecayReport, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	analysis, err := uow.DecayAnalysisRepository().FindLatestByDocumentId(ctx, documentId)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, nil // No report yet
	}

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	title := ""
	if doc != nil {
		title = doc.Title
	}

	report := toReportDTO(analysis, title)
	return &report, nil
}

func (s *decayService) Review(ctx context.Context, req *dto.ReviewReportRequest) (*dto.DecayReport, error) {
	if !entity.ValidReviewStatus(req.ReviewStatus) {
		return nil, serverutils.NewBadRequest("invalid review_status: must be pending, reviewed, dismissed or actioned")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	analysis, err := uow.DecayAnalysisRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, serverutils.NewNotFound("decay report not found")
	}

	reviewedBy := req.ReviewedBy
	if reviewedBy == "" {
		reviewedBy = "unknown"
	}
	now := time.Now()
	analysis.ReviewStatus = req.ReviewStatus
	analysis.ReviewedBy = reviewedBy
	analysis.ReviewNotes = req.ReviewNotes
	analysis.ReviewedAt = &now

	if err := uow.DecayAnalysisRepository().UpdateReview(ctx, analysis); err != nil {
		return nil, err
	}

	report := toReportDTO(analysis, "")
	return &report, nil
}

func (s *decayService) Summary(ctx context.Context, workspaceId *uuid.UUID) (*dto.DecaySummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var workspaceIds []uuid.UUID
	if workspaceId != nil {
		workspaceIds = []uuid.UUID{*workspaceId}
	} else {
		var err error
		workspaceIds, err = uow.DocumentRepository().ListWorkspaceIds(ctx)
		if err != nil {
			return nil, err
		}
	}

	var totalDocs int64
	latest := []*entity.DecayAnalysis{}
	for _, wsId := range workspaceIds {
		count, err := uow.DocumentRepository().Count(ctx, specification.ByWorkspaceID{WorkspaceID: wsId})
		if err != nil {
			return nil, err
		}
		totalDocs += count

		analyses, err := uow.DecayAnalysisRepository().ListLatestByWorkspace(ctx, wsId)
		if err != nil {
			return nil, err
		}
		latest = append(latest, analyses...)
	}

	summary := &dto.DecaySummaryResponse{
		TotalDocuments:    totalDocs,
		AnalyzedDocuments: len(latest),
		ByRiskLevel:       map[string]int{"high": 0, "medium": 0, "low": 0},
		ByReviewStatus:    map[string]int{"pending": 0, "reviewed": 0, "dismissed": 0, "actioned": 0},
		AverageConfidence: 1.0,
	}

	confidenceSum := 0.0
	for _, analysis := range latest {
		if analysis.DecayDetected {
			summary.DecayDetected++
		}
		summary.ByRiskLevel[analysis.RiskLevel]++
		summary.ByReviewStatus[analysis.ReviewStatus]++
		confidenceSum += analysis.ConfidenceScore
	}

	if len(latest) > 0 {
		summary.AverageConfidence = math.Round(confidenceSum/float64(len(latest))*100) / 100
	} else {
		// Nothing analyzed yet: everything counts as low risk.
		summary.ByRiskLevel["low"] = int(totalDocs)
	}

	return summary, nil
}

func (s *decayService) loadVersions(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID) ([]decay.Version, error) {
	versions, err := uow.DocumentVersionRepository().FindByDocumentId(ctx, documentId)
	if err != nil {
		return nil, err
	}

	out := make([]decay.Version, 0, len(versions))
	for _, v := range versions {
		out = append(out, decay.Version{
			Id:        v.Id,
			Number:    v.VersionNumber,
			Content:   v.Content,
			CreatedAt: v.CreatedAt,
		})
	}
	return out, nil
}

func (s *decayService) loadSiblings(ctx context.Context, uow unitofwork.UnitOfWork, workspaceId uuid.UUID) ([]decay.Document, error) {
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.ByWorkspaceID{WorkspaceID: workspaceId})
	if err != nil {
		return nil, err
	}

	out := make([]decay.Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDecayDocument(doc))
	}
	return out, nil
}

func (s *decayService) loadTitles(ctx context.Context, uow unitofwork.UnitOfWork, analyses []*entity.DecayAnalysis) (map[uuid.UUID]string, error) {
	if len(analyses) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	seen := map[uuid.UUID]bool{}
	ids := []uuid.UUID{}
	for _, analysis := range analyses {
		if !seen[analysis.DocumentId] {
			seen[analysis.DocumentId] = true
			ids = append(ids, analysis.DocumentId)
		}
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}

	titles := make(map[uuid.UUID]string, len(docs))
	for _, doc := range docs {
		titles[doc.Id] = doc.Title
	}
	return titles, nil
}

func (s *decayService) notifyIfDecayed(ctx context.Context, record *entity.DecayAnalysis, doc *entity.Document) {
	if s.eventPublisher == nil || !record.DecayDetected {
		return
	}

	evt := events.BaseEvent{
		Type: "DECAY_DETECTED",
		Data: map[string]interface{}{
			"analysis_id":      record.Id,
			"document_id":      doc.Id,
			"workspace_id":     doc.WorkspaceId,
			"title":            doc.Title,
			"risk_level":       record.RiskLevel,
			"confidence_score": record.ConfidenceScore,
		},
		OccurredAt: time.Now(),
	}
	// Events are auxiliary; a failed publish never fails the analysis.
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.sysLogger.Warn("decay", "failed to publish DECAY_DETECTED event", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
	}
}

func toDecayDocument(doc *entity.Document) decay.Document {
	return decay.Document{
		Id:        doc.Id,
		Title:     doc.Title,
		Type:      doc.Type,
		Content:   doc.Content,
		Embedding: doc.Embedding,
		UpdatedAt: doc.UpdatedAt,
	}
}

func toAnalysisEntity(analysis *decay.Analysis, analyzedBy string) *entity.DecayAnalysis {
	citations := make([]entity.DecayCitation, 0, len(analysis.Citations))
	for _, c := range analysis.Citations {
		citations = append(citations, entity.DecayCitation{
			DocumentId: c.DocumentId,
			Version:    c.Version,
		})
	}

	return &entity.DecayAnalysis{
		Id:                    uuid.New(),
		DocumentId:            analysis.DocumentId,
		DecayDetected:         analysis.DecayDetected,
		ConfidenceScore:       analysis.ConfidenceScore,
		RiskLevel:             analysis.RiskLevel,
		DecayReasons:          analysis.DecayReasons,
		WhatChangedSummary:    analysis.WhatChangedSummary,
		UpdateRecommendations: analysis.UpdateRecommendations,
		Citations:             citations,
		ConfidenceBreakdown:   analysis.ConfidenceBreakdown,
		AnalyzedAt:            analysis.AnalyzedAt,
		AnalyzedBy:            analyzedBy,
		ReviewStatus:          entity.ReviewStatusPending,
	}
}

func toCitationDTOs(citations []decay.Citation) []dto.DecayCitation {
	out := make([]dto.DecayCitation, 0, len(citations))
	for _, c := range citations {
		out = append(out, dto.DecayCitation{DocumentId: c.DocumentId, Version: c.Version})
	}
	return out
}

func toReportDTO(analysis *entity.DecayAnalysis, title string) dto.DecayReport {
	citations := make([]dto.DecayCitation, 0, len(analysis.Citations))
	for _, c := range analysis.Citations {
		citations = append(citations, dto.DecayCitation{DocumentId: c.DocumentId, Version: c.Version})
	}

	return dto.DecayReport{
		Id:                    analysis.Id,
		DocumentId:            analysis.DocumentId,
		DocumentTitle:         title,
		DecayDetected:         analysis.DecayDetected,
		ConfidenceScore:       analysis.ConfidenceScore,
		RiskLevel:             analysis.RiskLevel,
		DecayReasons:          analysis.DecayReasons,
		WhatChangedSummary:    analysis.WhatChangedSummary,
		UpdateRecommendations: analysis.UpdateRecommendations,
		Citations:             citations,
		AnalyzedAt:            analysis.AnalyzedAt,
		AnalyzedBy:            analysis.AnalyzedBy,
		ReviewStatus:          analysis.ReviewStatus,
		ReviewedBy:            analysis.ReviewedBy,
		ReviewNotes:           analysis.ReviewNotes,
		ReviewedAt:            analysis.ReviewedAt,
	}
}
