package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"github.com/vfg2006/marketing-insights-api/internal/usecases/insighting"
	"github.com/vfg2006/marketing-insights-api/pkg/log"
	"github.com/vfg2006/marketing-insights-api/pkg/utils"
)

// ErrSyncAlreadyRunning é devolvido quando já existe uma execução agendada em andamento
var ErrSyncAlreadyRunning = errors.New("insight sync already running")

// InsightGenerationSyncConfig representa a configuração do agendador de geração de insights
type InsightGenerationSyncConfig struct {
	CronSchedule string
	LookbackDays int
	InsightTypes []domain.InsightType
	SyncEnabled  bool
}

// InsightGenerationSyncService agenda a geração de insights para todos os negócios
type InsightGenerationSyncService struct {
	scheduler           *gocron.Scheduler
	config              InsightGenerationSyncConfig
	runner              insighting.Runner
	now                 func() time.Time
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastReport          *syncSummary
	lastError           string
}

type syncSummary struct {
	RunID     string `json:"run_id"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

func NewInsightGenerationSyncService(runner insighting.Runner, appConfig *config.Config) (*InsightGenerationSyncService, error) {
	types, err := domain.ParseInsightTypes(appConfig.InsightSync.InsightTypes)
	if err != nil {
		return nil, fmt.Errorf("insight sync types: %w", err)
	}

	syncConfig := InsightGenerationSyncConfig{
		CronSchedule: appConfig.InsightSync.CronSchedule,
		LookbackDays: appConfig.InsightSync.LookbackDays,
		InsightTypes: types,
		SyncEnabled:  appConfig.InsightSync.Enabled,
	}
	if syncConfig.LookbackDays < 1 {
		syncConfig.LookbackDays = appConfig.Pipeline.DefaultWindowDays
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"lookback_days": syncConfig.LookbackDays,
		"insight_types": types,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("scheduler: insight sync configuration loaded")

	return &InsightGenerationSyncService{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    syncConfig,
		runner:    runner,
		now:       time.Now,
	}, nil
}

// Start registra o cron e para o agendador quando ctx é cancelado
func (s *InsightGenerationSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("scheduler: insight sync disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("scheduler: starting insight sync")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrSyncAlreadyRunning) {
			logrus.WithError(err).Error("scheduler: scheduled insight sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule insight sync: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("scheduler: stopping insight sync")
		s.scheduler.Stop()
	}()

	return nil
}

// Window devolve a janela de LookbackDays que termina à meia-noite UTC de hoje
func (s *InsightGenerationSyncService) Window() domain.TimeRange {
	return domain.LastDays(utils.StartOfDay(s.now().UTC()), s.config.LookbackDays)
}

// RunOnce executa uma sincronização completa; nunca há duas em paralelo.
func (s *InsightGenerationSyncService) RunOnce(ctx context.Context) (*domain.RunReport, error) {
	if !s.acquire() {
		logrus.Info("scheduler: insight sync already running, skipping")
		return nil, ErrSyncAlreadyRunning
	}
	return s.sync(ctx)
}

func (s *InsightGenerationSyncService) acquire() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	return true
}

func (s *InsightGenerationSyncService) sync(ctx context.Context) (report *domain.RunReport, err error) {
	window := s.Window()
	startTime := s.now()

	defer func() {
		s.syncMutex.Lock()
		defer s.syncMutex.Unlock()

		s.syncRunning = false
		s.lastSyncCompletedAt = s.now()
		s.lastError = ""
		if err != nil {
			s.lastError = err.Error()
		}
		if report != nil {
			s.lastReport = &syncSummary{RunID: report.RunID, Succeeded: report.Succeeded, Failed: report.Failed}
		}
	}()

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"window_start": window.Start.Format(time.DateOnly),
		"window_end":   window.End.Format(time.DateOnly),
	})
	logger.Info("scheduler: insight sync started")

	report, err = s.runner.RunForAllBusinesses(ctx, s.config.InsightTypes, window)
	if errors.Is(err, domain.ErrNoBusinesses) {
		logger.Info("scheduler: no businesses to process")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	logger.WithFields(log.Fields{
		"run_id":    report.RunID,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"duration":  s.now().Sub(startTime).String(),
	}).Info("scheduler: insight sync completed")

	return report, nil
}

// TriggerManualSync dispara uma sincronização em segundo plano
func (s *InsightGenerationSyncService) TriggerManualSync(ctx context.Context) error {
	if !s.acquire() {
		logrus.Info("scheduler: insight sync already running, ignoring manual request")
		return ErrSyncAlreadyRunning
	}

	logrus.Info("scheduler: manual insight sync triggered")
	go func() {
		if _, err := s.sync(context.WithoutCancel(ctx)); err != nil {
			logrus.WithError(err).Error("scheduler: manual insight sync failed")
		}
	}()
	return nil
}

// GetStatus retorna o status atual da sincronização
func (s *InsightGenerationSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"lookback_days":          s.config.LookbackDays,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_report":            s.lastReport,
		"last_error":             s.lastError,
	}
}
