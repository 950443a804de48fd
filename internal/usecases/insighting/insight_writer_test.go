package insighting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-insights-api/infrastructure/repository/mocks"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestInsightWriter_IsIdempotent(t *testing.T) {
	repo := newMemoryInsightRepository()
	writer := NewInsightWriter(repo)
	writer.now = func() time.Time { return time.Date(2024, 3, 8, 1, 0, 0, 0, time.UTC) }

	parsed := &domain.ParsedInsight{InsightType: domain.InsightTypeEngagementTrend, Title: "First", Body: "v1"}
	first, err := writer.Write(context.Background(), "biz-1", parsed, testWindow)
	require.NoError(t, err)
	assert.True(t, first.Created)

	parsed = &domain.ParsedInsight{InsightType: domain.InsightTypeEngagementTrend, Title: "Second", Body: "v2"}
	second, err := writer.Write(context.Background(), "biz-1", parsed, testWindow)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.InsightID, second.InsightID)

	assert.Equal(t, 1, repo.count())
	stored := repo.byType("biz-1", domain.InsightTypeEngagementTrend)
	assert.Equal(t, "Second", stored.Title)
	assert.Equal(t, "v2", stored.Body)

	otherWindow := domain.TimeRange{Start: testWindow.Start.AddDate(0, 0, 1), End: testWindow.End.AddDate(0, 0, 1)}
	third, err := writer.Write(context.Background(), "biz-1", parsed, otherWindow)
	require.NoError(t, err)
	assert.True(t, third.Created)
	assert.Equal(t, 2, repo.count())
}

func TestInsightWriter_SetsKeyAndWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockInsightRepository(ctrl)
	writer := NewInsightWriter(repo)

	repo.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, insight *domain.Insight) (*domain.WriteOutcome, error) {
			assert.Equal(t, "biz-9", insight.BusinessID)
			assert.Equal(t, domain.IdempotencyKey("biz-9", domain.InsightTypeVideoAnalysis, testWindow), insight.IdempotencyKey)
			assert.Equal(t, testWindow.Start, insight.WindowStart)
			assert.Equal(t, testWindow.End, insight.WindowEnd)
			assert.Equal(t, time.UTC, insight.GeneratedAt.Location())
			return &domain.WriteOutcome{InsightID: "ins-1", Created: true}, nil
		})

	parsed := &domain.ParsedInsight{InsightType: domain.InsightTypeVideoAnalysis, Title: "Hook", Body: "Cut the intro"}
	outcome, err := writer.Write(context.Background(), "biz-9", parsed, testWindow)
	require.NoError(t, err)
	assert.Equal(t, "ins-1", outcome.InsightID)
}

func TestInsightWriter_WrapsStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockInsightRepository(ctrl)
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	parsed := &domain.ParsedInsight{InsightType: domain.InsightTypeRecommendation, Title: "t", Body: "b"}
	_, err := NewInsightWriter(repo).Write(context.Background(), "biz-1", parsed, testWindow)

	var writeErr *domain.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, domain.FailureWrite, domain.ClassifyFailure(err))
}
