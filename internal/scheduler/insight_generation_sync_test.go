package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"github.com/vfg2006/marketing-insights-api/internal/usecases/insighting/mocks"
	"go.uber.org/mock/gomock"
)

func newTestSyncService(t *testing.T, runner *mocks.MockRunner, types []string) *InsightGenerationSyncService {
	t.Helper()

	cfg := &config.Config{
		Pipeline: config.Pipeline{DefaultWindowDays: 30},
		InsightSync: config.InsightSync{
			CronSchedule: "0 1 * * *",
			LookbackDays: 7,
			InsightTypes: types,
			Enabled:      true,
		},
	}

	svc, err := NewInsightGenerationSyncService(runner, cfg)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC) }
	return svc
}

func TestInsightGenerationSyncService_RunOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	svc := newTestSyncService(t, runner, []string{"engagement_trend", "recommendation"})

	expectedWindow := domain.TimeRange{
		Start: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	runner.EXPECT().
		RunForAllBusinesses(gomock.Any(), []domain.InsightType{domain.InsightTypeEngagementTrend, domain.InsightTypeRecommendation}, expectedWindow).
		Return(&domain.RunReport{RunID: "run-1", Succeeded: 3, Failed: 1}, nil)

	report, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)

	status := svc.GetStatus()
	assert.Equal(t, false, status["sync_running"])
	assert.Equal(t, &syncSummary{RunID: "run-1", Succeeded: 3, Failed: 1}, status["last_report"])
	assert.Equal(t, "", status["last_error"])
}

func TestInsightGenerationSyncService_NoBusinessesIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	svc := newTestSyncService(t, runner, nil)

	runner.EXPECT().
		RunForAllBusinesses(gomock.Any(), domain.AllInsightTypes, gomock.Any()).
		Return(nil, domain.ErrNoBusinesses)

	report, err := svc.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, report)
}

func TestInsightGenerationSyncService_RecordsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	svc := newTestSyncService(t, runner, nil)

	runner.EXPECT().
		RunForAllBusinesses(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	_, err := svc.RunOnce(context.Background())
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, "connection refused", svc.GetStatus()["last_error"])
}

func TestInsightGenerationSyncService_SingleFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	svc := newTestSyncService(t, runner, nil)

	started := make(chan struct{})
	release := make(chan struct{})

	runner.EXPECT().
		RunForAllBusinesses(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []domain.InsightType, _ domain.TimeRange) (*domain.RunReport, error) {
			close(started)
			<-release
			return &domain.RunReport{RunID: "run-2"}, nil
		}).
		Times(1)

	require.NoError(t, svc.TriggerManualSync(context.Background()))
	<-started

	assert.ErrorIs(t, svc.TriggerManualSync(context.Background()), ErrSyncAlreadyRunning)
	_, err := svc.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrSyncAlreadyRunning)
	assert.Equal(t, true, svc.GetStatus()["sync_running"])

	close(release)
	assert.Eventually(t, func() bool {
		return svc.GetStatus()["sync_running"] == false
	}, time.Second, 10*time.Millisecond)
}

func TestNewInsightGenerationSyncService_InvalidTypes(t *testing.T) {
	cfg := &config.Config{InsightSync: config.InsightSync{InsightTypes: []string{"sales_forecast"}}}

	_, err := NewInsightGenerationSyncService(nil, cfg)
	assert.Error(t, err)
}

func TestInsightGenerationSyncService_StartDisabled(t *testing.T) {
	cfg := &config.Config{InsightSync: config.InsightSync{Enabled: false, LookbackDays: 7}}

	svc, err := NewInsightGenerationSyncService(nil, cfg)
	require.NoError(t, err)
	assert.NoError(t, svc.Start(context.Background()))
}
