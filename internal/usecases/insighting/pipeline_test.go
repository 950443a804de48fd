package insighting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	repomocks "github.com/vfg2006/marketing-insights-api/infrastructure/repository/mocks"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"github.com/vfg2006/marketing-insights-api/internal/usecases/insighting/mocks"
	"go.uber.org/mock/gomock"
)

var testBusiness = &domain.Business{ID: "biz-1", Name: "Ótica Central", Industry: "eyewear"}

type pipelineFixture struct {
	service  *Service
	gateway  *mocks.MockInferenceGateway
	business *repomocks.MockBusinessRepository
	accounts *repomocks.MockSocialAccountRepository
	metrics  *repomocks.MockMetricSampleRepository
	content  *repomocks.MockContentItemRepository
	insights *memoryInsightRepository
}

func newPipelineFixture(t *testing.T, maxConcurrentUnits int) *pipelineFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &pipelineFixture{
		gateway:  mocks.NewMockInferenceGateway(ctrl),
		business: repomocks.NewMockBusinessRepository(ctrl),
		accounts: repomocks.NewMockSocialAccountRepository(ctrl),
		metrics:  repomocks.NewMockMetricSampleRepository(ctrl),
		content:  repomocks.NewMockContentItemRepository(ctrl),
		insights: newMemoryInsightRepository(),
	}

	cfg := &config.Config{Pipeline: config.Pipeline{
		MaxConcurrentUnits: maxConcurrentUnits,
		TopContentLimit:    5,
		MaxPayloadBytes:    30000,
		PriorInsightLimit:  6,
		DefaultWindowDays:  7,
	}}

	f.service = NewService(cfg, f.gateway, f.business, f.accounts, f.metrics, f.content, f.insights)
	return f
}

// sevenDaysOfData devolve 30 amostras e 10 posts com taxa de engajamento 0.08 cada
func sevenDaysOfData() ([]*domain.MetricSample, []*domain.ContentItem) {
	samples := make([]*domain.MetricSample, 0, 30)
	for i := 0; i < 30; i++ {
		samples = append(samples, &domain.MetricSample{
			ID:              fmt.Sprintf("s-%d", i),
			SocialAccountID: "acc-1",
			Timestamp:       testWindow.Start.Add(time.Duration(i*5) * time.Hour),
			Followers:       int64(1000 + i*10),
		})
	}

	items := make([]*domain.ContentItem, 0, 10)
	for i := 0; i < 10; i++ {
		item := &domain.ContentItem{
			ID:              fmt.Sprintf("c-%d", i),
			SocialAccountID: "acc-1",
			Platform:        "instagram",
			ContentID:       fmt.Sprintf("post-%d", i),
			ContentType:     domain.ContentTypeImage,
			Title:           fmt.Sprintf("Post %d", i),
			PublishedAt:     testWindow.Start.Add(time.Duration(i*16) * time.Hour),
			Likes:           6,
			Comments:        1,
			Shares:          1,
			Views:           100,
			Metadata:        map[string]any{"hashtags": []any{"#oculos"}},
		}
		if i == 0 {
			item.ContentType = domain.ContentTypeVideo
			item.URL = "https://cdn.example.com/post-0.mp4"
		}
		items = append(items, item)
	}
	return samples, items
}

func (f *pipelineFixture) expectData(samples []*domain.MetricSample, items []*domain.ContentItem) {
	f.business.EXPECT().GetByID(gomock.Any(), testBusiness.ID).Return(testBusiness, nil).AnyTimes()
	f.accounts.EXPECT().ListByBusinessID(gomock.Any(), testBusiness.ID).
		Return([]*domain.SocialAccount{{ID: "acc-1", BusinessID: testBusiness.ID, Platform: "instagram"}}, nil).AnyTimes()
	f.metrics.EXPECT().ListByAccountsAndRange(gomock.Any(), []string{"acc-1"}, testWindow).Return(samples, nil).AnyTimes()
	f.content.EXPECT().ListByAccountsAndRange(gomock.Any(), []string{"acc-1"}, testWindow).Return(items, nil).AnyTimes()
}

type recordedRequests struct {
	mu   sync.Mutex
	reqs map[domain.InsightType]*domain.AnalysisRequest
}

func (r *recordedRequests) get(t domain.InsightType) *domain.AnalysisRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reqs[t]
}

// echoGateway devolve a taxa de engajamento que encontrou no prompt
func (f *pipelineFixture) echoGateway() *recordedRequests {
	recorded := &recordedRequests{reqs: make(map[domain.InsightType]*domain.AnalysisRequest)}

	f.gateway.EXPECT().Invoke(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.AnalysisRequest) (*domain.RawResponse, error) {
			recorded.mu.Lock()
			recorded.reqs[req.InsightType] = req
			recorded.mu.Unlock()

			rate := "unknown"
			if strings.Contains(req.Prompt, "0.0800") {
				rate = "0.0800"
			}
			return &domain.RawResponse{
				Text:     fmt.Sprintf("# %s findings\n\nOverall engagement rate was %s.", req.InsightType, rate),
				Attempts: 1,
			}, nil
		}).AnyTimes()

	return recorded
}

func TestRunPipeline_EndToEnd(t *testing.T) {
	f := newPipelineFixture(t, 2)
	f.expectData(sevenDaysOfData())
	recorded := f.echoGateway()

	report, err := f.service.RunPipeline(context.Background(), testBusiness.ID, nil, testWindow)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Outcomes, 4)
	for _, o := range report.Outcomes {
		assert.Equal(t, domain.UnitSucceeded, o.Status, o.Error)
		assert.True(t, o.Created)
		assert.NotEmpty(t, o.InsightID)
	}
	assert.Equal(t, domain.InsightTypeRecommendation, report.Outcomes[3].InsightType)

	assert.Equal(t, 4, f.insights.count())
	trend := f.insights.byType(testBusiness.ID, domain.InsightTypeEngagementTrend)
	require.NotNil(t, trend)
	assert.Equal(t, "engagement_trend findings", trend.Title)
	assert.Contains(t, trend.Body, "0.0800")
	assert.Equal(t, testWindow.Start, trend.WindowStart)
	assert.Equal(t, testWindow.End, trend.WindowEnd)

	demand := recorded.get(domain.InsightTypeProductDemand)
	require.NotNil(t, demand)
	assert.Contains(t, demand.ContentExcerpt, "#oculos")

	video := recorded.get(domain.InsightTypeVideoAnalysis)
	require.NotNil(t, video)
	require.NotNil(t, video.Video)
	assert.Equal(t, "https://cdn.example.com/post-0.mp4", video.Video.Location)

	recommendation := recorded.get(domain.InsightTypeRecommendation)
	require.NotNil(t, recommendation)
	assert.Contains(t, recommendation.Prompt, "[engagement_trend] engagement_trend findings")
	assert.Contains(t, recommendation.Prompt, "[product_demand] product_demand findings")
}

func TestRunPipeline_RerunConverges(t *testing.T) {
	f := newPipelineFixture(t, 4)
	f.expectData(sevenDaysOfData())
	f.echoGateway()

	first, err := f.service.RunPipeline(context.Background(), testBusiness.ID, nil, testWindow)
	require.NoError(t, err)
	second, err := f.service.RunPipeline(context.Background(), testBusiness.ID, nil, testWindow)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 4, f.insights.count())
	for i, o := range second.Outcomes {
		assert.False(t, o.Created)
		assert.Equal(t, first.Outcomes[i].InsightID, o.InsightID)
	}
}

func TestRunPipeline_FailureIsolation(t *testing.T) {
	f := newPipelineFixture(t, 2)
	f.expectData(sevenDaysOfData())

	f.gateway.EXPECT().Invoke(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.AnalysisRequest) (*domain.RawResponse, error) {
			switch req.InsightType {
			case domain.InsightTypeProductDemand:
				return nil, &domain.InferenceError{Kind: domain.InferencePermanent, StatusCode: 400, Attempts: 1, Err: errors.New("bad request")}
			case domain.InsightTypeVideoAnalysis:
				return nil, &domain.InferenceError{Kind: domain.InferenceExhausted, Attempts: 3, Err: errors.New("503")}
			case domain.InsightTypeEngagementTrend:
				return &domain.RawResponse{Text: "   ", Attempts: 1}, nil
			}
			return &domain.RawResponse{Text: "# Keep posting\nReels work.", Attempts: 3, Retries: 2}, nil
		}).Times(4)

	report, err := f.service.RunPipeline(context.Background(), testBusiness.ID, nil, testWindow)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 3, report.Failed)

	byType := make(map[domain.InsightType]domain.UnitOutcome)
	for _, o := range report.Outcomes {
		byType[o.InsightType] = o
	}
	assert.Equal(t, domain.FailureParse, byType[domain.InsightTypeEngagementTrend].FailureKind)
	assert.Equal(t, domain.FailureInferencePermanent, byType[domain.InsightTypeProductDemand].FailureKind)
	assert.Equal(t, domain.FailureInferenceExhausted, byType[domain.InsightTypeVideoAnalysis].FailureKind)
	assert.Equal(t, 2, byType[domain.InsightTypeVideoAnalysis].Retries)

	rec := byType[domain.InsightTypeRecommendation]
	assert.Equal(t, domain.UnitSucceeded, rec.Status)
	assert.Equal(t, 2, rec.Retries)

	assert.ElementsMatch(t,
		[]domain.InsightType{domain.InsightTypeEngagementTrend, domain.InsightTypeProductDemand, domain.InsightTypeVideoAnalysis},
		report.FailedInsightTypes(testBusiness.ID))
	assert.Equal(t, 1, f.insights.count())
}

func TestRunPipeline_RecommendationIgnoresOtherWindows(t *testing.T) {
	f := newPipelineFixture(t, 2)
	f.expectData(sevenDaysOfData())

	older := domain.TimeRange{Start: testWindow.Start.AddDate(0, -1, 0), End: testWindow.Start}
	_, err := f.insights.Upsert(context.Background(), &domain.Insight{
		BusinessID:     testBusiness.ID,
		InsightType:    domain.InsightTypeEngagementTrend,
		Title:          "February trend",
		Body:           "Engagement fell.",
		WindowStart:    older.Start,
		WindowEnd:      older.End,
		IdempotencyKey: domain.IdempotencyKey(testBusiness.ID, domain.InsightTypeEngagementTrend, older),
		GeneratedAt:    older.End,
	})
	require.NoError(t, err)

	var recommendation *domain.AnalysisRequest
	f.gateway.EXPECT().Invoke(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.AnalysisRequest) (*domain.RawResponse, error) {
			switch req.InsightType {
			case domain.InsightTypeEngagementTrend:
				return nil, &domain.InferenceError{Kind: domain.InferencePermanent, StatusCode: 400, Attempts: 1, Err: errors.New("bad request")}
			case domain.InsightTypeRecommendation:
				recommendation = req
			}
			return &domain.RawResponse{Text: fmt.Sprintf("# %s findings\n\nBody.", req.InsightType), Attempts: 1}, nil
		}).Times(4)

	report, err := f.service.RunPipeline(context.Background(), testBusiness.ID, nil, testWindow)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Succeeded)

	require.NotNil(t, recommendation)
	assert.NotContains(t, recommendation.Prompt, "February trend")
	assert.Contains(t, recommendation.Prompt, "[product_demand] product_demand findings")
}

func TestRunPipeline_InsufficientDataSkipsGateway(t *testing.T) {
	f := newPipelineFixture(t, 2)
	f.expectData(nil, nil)
	f.gateway.EXPECT().Invoke(gomock.Any(), gomock.Any()).Times(0)

	report, err := f.service.RunPipeline(context.Background(), testBusiness.ID, nil, testWindow)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Failed)
	assert.Equal(t, map[domain.FailureKind]int{domain.FailureInsufficientData: 4}, report.FailuresByKind())
}

func TestRunPipeline_VideoMissingIsBuildError(t *testing.T) {
	samples, items := sevenDaysOfData()
	items[0].ContentType = domain.ContentTypeImage
	items[0].URL = ""

	f := newPipelineFixture(t, 1)
	f.expectData(samples, items)
	f.gateway.EXPECT().Invoke(gomock.Any(), gomock.Any()).Times(0)

	report, err := f.service.RunPipeline(context.Background(), testBusiness.ID, []domain.InsightType{domain.InsightTypeVideoAnalysis}, testWindow)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, domain.FailureBuild, report.Outcomes[0].FailureKind)
}

func TestRunPipeline_PanicBecomesInternalFailure(t *testing.T) {
	f := newPipelineFixture(t, 1)
	f.expectData(sevenDaysOfData())
	f.gateway.EXPECT().Invoke(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *domain.AnalysisRequest) (*domain.RawResponse, error) {
			panic("boom")
		})

	report, err := f.service.RunPipeline(context.Background(), testBusiness.ID, []domain.InsightType{domain.InsightTypeEngagementTrend}, testWindow)
	require.NoError(t, err)

	assert.Equal(t, domain.FailureInternal, report.Outcomes[0].FailureKind)
	assert.Contains(t, report.Outcomes[0].Error, "boom")
}

func TestRunPipeline_CanceledBeforeStart(t *testing.T) {
	f := newPipelineFixture(t, 2)
	f.expectData(sevenDaysOfData())
	f.gateway.EXPECT().Invoke(gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.service.RunPipeline(ctx, testBusiness.ID, nil, testWindow)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Failed)
	assert.Equal(t, map[domain.FailureKind]int{domain.FailureCanceled: 4}, report.FailuresByKind())
}

func TestRunPipeline_CancelLetsInFlightUnitFinish(t *testing.T) {
	f := newPipelineFixture(t, 1)
	f.expectData(sevenDaysOfData())

	started := make(chan struct{})
	release := make(chan struct{})
	f.gateway.EXPECT().Invoke(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req *domain.AnalysisRequest) (*domain.RawResponse, error) {
			close(started)
			<-release
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return &domain.RawResponse{Text: "# Trend\nStable."}, nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *domain.RunReport, 1)
	go func() {
		report, err := f.service.RunPipeline(ctx, testBusiness.ID, nil, testWindow)
		assert.NoError(t, err)
		done <- report
	}()

	<-started
	cancel()
	close(release)

	var report *domain.RunReport
	select {
	case report = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not return after cancellation")
	}

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 3, report.Failed)
	assert.Equal(t, domain.UnitSucceeded, report.Outcomes[0].Status)
	assert.Equal(t, domain.InsightTypeEngagementTrend, report.Outcomes[0].InsightType)
	assert.Equal(t, map[domain.FailureKind]int{domain.FailureCanceled: 3}, report.FailuresByKind())
	assert.Equal(t, 1, f.insights.count())
}

func TestRunPipeline_RequestErrors(t *testing.T) {
	f := newPipelineFixture(t, 1)

	_, err := f.service.RunPipeline(context.Background(), "biz-1", nil, domain.TimeRange{Start: testWindow.End, End: testWindow.Start})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	_, err = f.service.RunPipeline(context.Background(), "biz-1", []domain.InsightType{"sales_forecast"}, testWindow)
	assert.Error(t, err)

	f.business.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, nil)
	_, err = f.service.RunPipeline(context.Background(), "missing", nil, testWindow)
	assert.ErrorIs(t, err, domain.ErrBusinessNotFound)

	f.business.EXPECT().List(gomock.Any()).Return(nil, nil)
	_, err = f.service.RunForAllBusinesses(context.Background(), nil, testWindow)
	assert.ErrorIs(t, err, domain.ErrNoBusinesses)
}

func TestRunForAllBusinesses_LoadsEachBusinessOnce(t *testing.T) {
	f := newPipelineFixture(t, 4)
	samples, items := sevenDaysOfData()
	other := &domain.Business{ID: "biz-2", Name: "Loja Norte"}

	f.business.EXPECT().List(gomock.Any()).Return([]*domain.Business{testBusiness, other}, nil)
	f.accounts.EXPECT().ListByBusinessID(gomock.Any(), testBusiness.ID).
		Return([]*domain.SocialAccount{{ID: "acc-1"}}, nil).Times(1)
	f.accounts.EXPECT().ListByBusinessID(gomock.Any(), other.ID).Return(nil, nil).Times(1)
	f.metrics.EXPECT().ListByAccountsAndRange(gomock.Any(), []string{"acc-1"}, testWindow).Return(samples, nil).Times(1)
	f.content.EXPECT().ListByAccountsAndRange(gomock.Any(), []string{"acc-1"}, testWindow).Return(items, nil).Times(1)
	f.echoGateway()

	types := []domain.InsightType{domain.InsightTypeEngagementTrend, domain.InsightTypeRecommendation}
	report, err := f.service.RunForAllBusinesses(context.Background(), types, testWindow)
	require.NoError(t, err)

	assert.Len(t, report.Outcomes, 4)
	assert.Equal(t, 2, report.Succeeded)
	assert.Empty(t, report.FailedInsightTypes(testBusiness.ID))
	assert.ElementsMatch(t, types, report.FailedInsightTypes(other.ID))
}
