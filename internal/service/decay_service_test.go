package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"insightops-be/internal/dto"
	"insightops-be/internal/entity"
	"insightops-be/internal/pkg/serverutils"
	"insightops-be/internal/repository/contract"
	"insightops-be/internal/repository/specification"
	"insightops-be/internal/repository/unitofwork"
	"insightops-be/pkg/decay"
	"insightops-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var decayTestNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// --- Fakes ---

type fakeDocumentRepo struct {
	docs []*entity.Document
	// siblingFetches counts FindAll calls that load a whole workspace
	// (a single ByWorkspaceID spec with no pagination).
	siblingFetches map[uuid.UUID]int
}

func (f *fakeDocumentRepo) Create(_ context.Context, _ *entity.Document) error { return nil }
func (f *fakeDocumentRepo) Update(_ context.Context, _ *entity.Document) error { return nil }
func (f *fakeDocumentRepo) UpdateEmbedding(_ context.Context, _ uuid.UUID, _ []float32) error {
	return nil
}
func (f *fakeDocumentRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			for _, doc := range f.docs {
				if doc.Id == byId.ID {
					return doc, nil
				}
			}
		}
	}
	return nil, nil
}

func (f *fakeDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	if len(specs) == 1 {
		if byWs, ok := specs[0].(specification.ByWorkspaceID); ok && f.siblingFetches != nil {
			f.siblingFetches[byWs.WorkspaceID]++
		}
	}

	matched := []*entity.Document{}
	limit := 0
	for _, doc := range f.docs {
		keep := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByIDs:
				found := false
				for _, id := range s.IDs {
					if doc.Id == id {
						found = true
					}
				}
				keep = keep && found
			case specification.ByWorkspaceID:
				keep = keep && doc.WorkspaceId == s.WorkspaceID
			case specification.Pagination:
				limit = s.Limit
			}
		}
		if keep {
			matched = append(matched, doc)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeDocumentRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	docs, _ := f.FindAll(context.Background(), specs...)
	return int64(len(docs)), nil
}

func (f *fakeDocumentRepo) ListWorkspaceRefs(_ context.Context, _ uuid.UUID) ([]*entity.DocumentRef, error) {
	return nil, nil
}

func (f *fakeDocumentRepo) FetchContent(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]string, error) {
	return map[uuid.UUID]string{}, nil
}

func (f *fakeDocumentRepo) ListWorkspaceIds(_ context.Context) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	ids := []uuid.UUID{}
	for _, doc := range f.docs {
		if !seen[doc.WorkspaceId] {
			seen[doc.WorkspaceId] = true
			ids = append(ids, doc.WorkspaceId)
		}
	}
	return ids, nil
}

type fakeVersionRepo struct {
	versions map[uuid.UUID][]*entity.DocumentVersion
	failFor  map[uuid.UUID]error
}

func (f *fakeVersionRepo) Create(_ context.Context, _ *entity.DocumentVersion) error { return nil }

func (f *fakeVersionRepo) FindByDocumentId(_ context.Context, documentId uuid.UUID) ([]*entity.DocumentVersion, error) {
	if err, ok := f.failFor[documentId]; ok {
		return nil, err
	}
	return f.versions[documentId], nil
}

func (f *fakeVersionRepo) DeleteByDocumentId(_ context.Context, _ uuid.UUID) error { return nil }

type fakeAnalysisRepo struct {
	created           []*entity.DecayAnalysis
	createFailFor     map[uuid.UUID]error // keyed by DocumentId
	latestByWorkspace map[uuid.UUID][]*entity.DecayAnalysis
}

func (f *fakeAnalysisRepo) Create(_ context.Context, analysis *entity.DecayAnalysis) error {
	if err, ok := f.createFailFor[analysis.DocumentId]; ok {
		return err
	}
	f.created = append(f.created, analysis)
	return nil
}

func (f *fakeAnalysisRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.DecayAnalysis, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			for _, a := range f.created {
				if a.Id == byId.ID {
					return a, nil
				}
			}
		}
	}
	return nil, nil
}

func (f *fakeAnalysisRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.DecayAnalysis, error) {
	matched := []*entity.DecayAnalysis{}
	for _, a := range f.created {
		keep := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByDocumentID:
				keep = keep && a.DocumentId == s.DocumentID
			case specification.ByRiskLevel:
				keep = keep && a.RiskLevel == s.RiskLevel
			case specification.ByReviewStatus:
				keep = keep && a.ReviewStatus == s.ReviewStatus
			case specification.ByDecayDetected:
				keep = keep && a.DecayDetected == s.Detected
			}
		}
		if keep {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (f *fakeAnalysisRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matched, _ := f.FindAll(ctx, specs...)
	return int64(len(matched)), nil
}

func (f *fakeAnalysisRepo) FindLatestByDocumentId(_ context.Context, documentId uuid.UUID) (*entity.DecayAnalysis, error) {
	var latest *entity.DecayAnalysis
	for _, a := range f.created {
		if a.DocumentId == documentId {
			latest = a
		}
	}
	return latest, nil
}

func (f *fakeAnalysisRepo) ListLatestByWorkspace(_ context.Context, workspaceId uuid.UUID) ([]*entity.DecayAnalysis, error) {
	return f.latestByWorkspace[workspaceId], nil
}

func (f *fakeAnalysisRepo) UpdateReview(_ context.Context, _ *entity.DecayAnalysis) error {
	return nil
}

type fakeUow struct {
	docs     *fakeDocumentRepo
	versions *fakeVersionRepo
	analyses *fakeAnalysisRepo
}

func (f *fakeUow) Begin(_ context.Context) error { return nil }
func (f *fakeUow) Commit() error                 { return nil }
func (f *fakeUow) Rollback() error               { return nil }

func (f *fakeUow) DocumentRepository() contract.DocumentRepository { return f.docs }
func (f *fakeUow) DocumentVersionRepository() contract.DocumentVersionRepository {
	return f.versions
}
func (f *fakeUow) DecayAnalysisRepository() contract.DecayAnalysisRepository { return f.analyses }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeEventPublisher struct {
	published []events.Event
}

func (f *fakeEventPublisher) Publish(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

type noopLogger struct{}

func (noopLogger) Info(_, _ string, _ map[string]interface{})  {}
func (noopLogger) Warn(_, _ string, _ map[string]interface{})  {}
func (noopLogger) Error(_, _ string, _ map[string]interface{}) {}
func (noopLogger) Debug(_, _ string, _ map[string]interface{}) {}
func (noopLogger) Sync() error                                 { return nil }

// --- Fixtures ---

func newDecayFixture() (*fakeUow, *fakeEventPublisher, IDecayService) {
	uow := &fakeUow{
		docs:     &fakeDocumentRepo{siblingFetches: map[uuid.UUID]int{}},
		versions: &fakeVersionRepo{versions: map[uuid.UUID][]*entity.DocumentVersion{}, failFor: map[uuid.UUID]error{}},
		analyses: &fakeAnalysisRepo{createFailFor: map[uuid.UUID]error{}, latestByWorkspace: map[uuid.UUID][]*entity.DecayAnalysis{}},
	}
	publisher := &fakeEventPublisher{}
	orchestrator := decay.NewOrchestrator(fixedClock(decayTestNow))
	svc := NewDecayService(&fakeUowFactory{uow: uow}, orchestrator, publisher, noopLogger{})
	return uow, publisher, svc
}

func stalePolicyDoc(workspaceId uuid.UUID) *entity.Document {
	return &entity.Document{
		Id:             uuid.New(),
		WorkspaceId:    workspaceId,
		Title:          "Remote Work Policy",
		Type:           "policy",
		Content:        "All employees may work remotely.",
		CurrentVersion: 1,
		CreatedAt:      decayTestNow.AddDate(0, 0, -220),
		UpdatedAt:      decayTestNow.AddDate(0, 0, -220),
	}
}

func freshGuideDoc(workspaceId uuid.UUID) *entity.Document {
	return &entity.Document{
		Id:             uuid.New(),
		WorkspaceId:    workspaceId,
		Title:          "Onboarding Guide",
		Type:           "guide",
		Content:        "Welcome to the team. Read the handbook first.",
		CurrentVersion: 1,
		CreatedAt:      decayTestNow.AddDate(0, 0, -10),
		UpdatedAt:      decayTestNow.AddDate(0, 0, -10),
	}
}

// --- Tests ---

func TestAnalyzeDocument_NotFound(t *testing.T) {
	_, _, svc := newDecayFixture()

	_, err := svc.AnalyzeDocument(context.Background(), &dto.AnalyzeDocumentRequest{DocumentId: uuid.New()}, "tester")

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestAnalyzeDocument_PersistsPendingRecord(t *testing.T) {
	uow, _, svc := newDecayFixture()
	workspaceId := uuid.New()
	doc := stalePolicyDoc(workspaceId)
	uow.docs.docs = []*entity.Document{doc}

	resp, err := svc.AnalyzeDocument(context.Background(), &dto.AnalyzeDocumentRequest{DocumentId: doc.Id}, "tester")
	require.NoError(t, err)

	// A 220 day old policy is past its 180 day validity window.
	assert.True(t, resp.DecayDetected)
	assert.Equal(t, doc.Id, resp.DocumentId)
	assert.Equal(t, "Remote Work Policy", resp.DocumentTitle)
	assert.NotEmpty(t, resp.DecayReasons)

	require.Len(t, uow.analyses.created, 1)
	record := uow.analyses.created[0]
	assert.Equal(t, entity.ReviewStatusPending, record.ReviewStatus)
	assert.Equal(t, "tester", record.AnalyzedBy)
	assert.Equal(t, resp.AnalysisId, record.Id)
	assert.Equal(t, decayTestNow, record.AnalyzedAt)
}

func TestAnalyzeDocument_SkipsSiblingsWhenExcluded(t *testing.T) {
	uow, _, svc := newDecayFixture()
	workspaceId := uuid.New()
	doc := freshGuideDoc(workspaceId)
	uow.docs.docs = []*entity.Document{doc, stalePolicyDoc(workspaceId)}

	excluded := false
	_, err := svc.AnalyzeDocument(context.Background(), &dto.AnalyzeDocumentRequest{
		DocumentId:     doc.Id,
		IncludeRelated: &excluded,
	}, "tester")
	require.NoError(t, err)

	assert.Zero(t, uow.docs.siblingFetches[workspaceId])
}

func TestBatchAnalyze_SiblingsFetchedOncePerWorkspace(t *testing.T) {
	uow, _, svc := newDecayFixture()
	wsA := uuid.New()
	wsB := uuid.New()
	uow.docs.docs = []*entity.Document{
		stalePolicyDoc(wsA),
		freshGuideDoc(wsA),
		freshGuideDoc(wsB),
	}

	resp, err := svc.BatchAnalyze(context.Background(), &dto.BatchAnalyzeRequest{}, "scheduler")
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Analyzed)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 1, uow.docs.siblingFetches[wsA])
	assert.Equal(t, 1, uow.docs.siblingFetches[wsB])
}

func TestBatchAnalyze_PersistFailureIsolatedPerItem(t *testing.T) {
	uow, _, svc := newDecayFixture()
	workspaceId := uuid.New()
	broken := stalePolicyDoc(workspaceId)
	healthy := freshGuideDoc(workspaceId)
	uow.docs.docs = []*entity.Document{broken, healthy}
	uow.analyses.createFailFor[broken.Id] = errors.New("disk full")

	resp, err := svc.BatchAnalyze(context.Background(), &dto.BatchAnalyzeRequest{}, "scheduler")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Analyzed)
	require.Len(t, resp.Results, 2)
	for _, item := range resp.Results {
		if item.DocumentId == broken.Id {
			assert.Equal(t, "disk full", item.Error)
		} else {
			assert.Empty(t, item.Error)
		}
	}
}

func TestBatchAnalyze_VersionLoaderFailureIsolatedPerItem(t *testing.T) {
	uow, _, svc := newDecayFixture()
	workspaceId := uuid.New()
	broken := freshGuideDoc(workspaceId)
	healthy := freshGuideDoc(workspaceId)
	uow.docs.docs = []*entity.Document{broken, healthy}
	uow.versions.failFor[broken.Id] = fmt.Errorf("version table unavailable")

	resp, err := svc.BatchAnalyze(context.Background(), &dto.BatchAnalyzeRequest{}, "scheduler")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Analyzed)
	require.Len(t, resp.Results, 2)
	for _, item := range resp.Results {
		if item.DocumentId == broken.Id {
			assert.Contains(t, item.Error, "version table unavailable")
		}
	}
}

func TestBatchAnalyze_HonorsExplicitDocumentIds(t *testing.T) {
	uow, _, svc := newDecayFixture()
	workspaceId := uuid.New()
	wanted := freshGuideDoc(workspaceId)
	other := stalePolicyDoc(workspaceId)
	uow.docs.docs = []*entity.Document{wanted, other}

	resp, err := svc.BatchAnalyze(context.Background(), &dto.BatchAnalyzeRequest{
		DocumentIds: []uuid.UUID{wanted.Id},
	}, "tester")
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, wanted.Id, resp.Results[0].DocumentId)
}

func TestBatchAnalyze_PublishesEventPerDecayedItem(t *testing.T) {
	uow, publisher, svc := newDecayFixture()
	workspaceId := uuid.New()
	decayed := stalePolicyDoc(workspaceId)
	healthy := freshGuideDoc(workspaceId)
	uow.docs.docs = []*entity.Document{decayed, healthy}

	_, err := svc.BatchAnalyze(context.Background(), &dto.BatchAnalyzeRequest{}, "scheduler")
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	evt := publisher.published[0]
	assert.Equal(t, "DECAY_DETECTED", evt.EventType())
	assert.Equal(t, decayed.Id, evt.Payload()["document_id"])
	assert.Equal(t, workspaceId, evt.Payload()["workspace_id"])
}

func TestReview_RejectsUnknownStatus(t *testing.T) {
	_, _, svc := newDecayFixture()

	_, err := svc.Review(context.Background(), &dto.ReviewReportRequest{
		Id:           uuid.New(),
		ReviewStatus: "approved",
	})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestReview_UpdatesReviewFields(t *testing.T) {
	uow, _, svc := newDecayFixture()
	analysis := &entity.DecayAnalysis{
		Id:           uuid.New(),
		DocumentId:   uuid.New(),
		RiskLevel:    entity.RiskLevelHigh,
		ReviewStatus: entity.ReviewStatusPending,
	}
	uow.analyses.created = []*entity.DecayAnalysis{analysis}

	report, err := svc.Review(context.Background(), &dto.ReviewReportRequest{
		Id:           analysis.Id,
		ReviewStatus: entity.ReviewStatusDismissed,
		ReviewNotes:  "intentional change",
		ReviewedBy:   "alex",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ReviewStatusDismissed, report.ReviewStatus)
	assert.Equal(t, "alex", report.ReviewedBy)
	assert.Equal(t, "intentional change", report.ReviewNotes)
	require.NotNil(t, report.ReviewedAt)
}

func TestReview_NotFound(t *testing.T) {
	_, _, svc := newDecayFixture()

	_, err := svc.Review(context.Background(), &dto.ReviewReportRequest{
		Id:           uuid.New(),
		ReviewStatus: entity.ReviewStatusReviewed,
	})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestReports_FiltersByRiskLevel(t *testing.T) {
	uow, _, svc := newDecayFixture()
	workspaceId := uuid.New()
	doc := freshGuideDoc(workspaceId)
	uow.docs.docs = []*entity.Document{doc}
	uow.analyses.created = []*entity.DecayAnalysis{
		{Id: uuid.New(), DocumentId: doc.Id, RiskLevel: entity.RiskLevelHigh, ReviewStatus: entity.ReviewStatusPending},
		{Id: uuid.New(), DocumentId: doc.Id, RiskLevel: entity.RiskLevelLow, ReviewStatus: entity.ReviewStatusPending},
	}

	resp, err := svc.Reports(context.Background(), &dto.ListReportsRequest{RiskLevel: entity.RiskLevelHigh})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, entity.RiskLevelHigh, resp.Reports[0].RiskLevel)
	assert.Equal(t, "Onboarding Guide", resp.Reports[0].DocumentTitle)
}

func TestLatestReport_NilWhenNeverAnalyzed(t *testing.T) {
	_, _, svc := newDecayFixture()

	report, err := svc.LatestReport(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestSummary_NothingAnalyzedCountsLow(t *testing.T) {
	uow, _, svc := newDecayFixture()
	workspaceId := uuid.New()
	uow.docs.docs = []*entity.Document{
		freshGuideDoc(workspaceId),
		freshGuideDoc(workspaceId),
		stalePolicyDoc(workspaceId),
	}

	summary, err := svc.Summary(context.Background(), &workspaceId)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalDocuments)
	assert.Equal(t, 0, summary.AnalyzedDocuments)
	assert.Equal(t, 3, summary.ByRiskLevel["low"])
	assert.Equal(t, 1.0, summary.AverageConfidence)
}

func TestSummary_AggregatesLatestAnalyses(t *testing.T) {
	uow, _, svc := newDecayFixture()
	workspaceId := uuid.New()
	docA := freshGuideDoc(workspaceId)
	docB := stalePolicyDoc(workspaceId)
	uow.docs.docs = []*entity.Document{docA, docB}
	uow.analyses.latestByWorkspace[workspaceId] = []*entity.DecayAnalysis{
		{DocumentId: docA.Id, DecayDetected: false, RiskLevel: entity.RiskLevelLow, ReviewStatus: entity.ReviewStatusReviewed, ConfidenceScore: 1.0},
		{DocumentId: docB.Id, DecayDetected: true, RiskLevel: entity.RiskLevelHigh, ReviewStatus: entity.ReviewStatusPending, ConfidenceScore: 0.7},
	}

	summary, err := svc.Summary(context.Background(), &workspaceId)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalDocuments)
	assert.Equal(t, 2, summary.AnalyzedDocuments)
	assert.Equal(t, 1, summary.DecayDetected)
	assert.Equal(t, 1, summary.ByRiskLevel["high"])
	assert.Equal(t, 1, summary.ByRiskLevel["low"])
	assert.Equal(t, 1, summary.ByReviewStatus["pending"])
	assert.Equal(t, 1, summary.ByReviewStatus["reviewed"])
	assert.Equal(t, 0.85, summary.AverageConfidence)
}
