package insighting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vfg2006/marketing-insights-api/infrastructure/repository"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"github.com/vfg2006/marketing-insights-api/pkg/log"
	"github.com/vfg2006/marketing-insights-api/pkg/metrics"
	"github.com/vfg2006/marketing-insights-api/pkg/utils"
)

const runIDSize = 12

// Service executa o pipeline Aggregator → Builder → Gateway → Parser → Writer por unidade de trabalho.
type Service struct {
	cfg          config.Pipeline
	businessRepo repository.BusinessRepository
	accountRepo  repository.SocialAccountRepository
	metricRepo   repository.MetricSampleRepository
	contentRepo  repository.ContentItemRepository
	insightRepo  repository.InsightRepository
	aggregator   *Aggregator
	builder      *RequestBuilder
	gateway      InferenceGateway
	parser       *ResponseParser
	writer       *InsightWriter
	now          func() time.Time
}

func NewService(
	cfg *config.Config,
	gateway InferenceGateway,
	businessRepo repository.BusinessRepository,
	accountRepo repository.SocialAccountRepository,
	metricRepo repository.MetricSampleRepository,
	contentRepo repository.ContentItemRepository,
	insightRepo repository.InsightRepository,
) *Service {
	pipelineCfg := cfg.Pipeline
	if pipelineCfg.MaxConcurrentUnits < 1 {
		pipelineCfg.MaxConcurrentUnits = 1
	}

	return &Service{
		cfg:          pipelineCfg,
		businessRepo: businessRepo,
		accountRepo:  accountRepo,
		metricRepo:   metricRepo,
		contentRepo:  contentRepo,
		insightRepo:  insightRepo,
		aggregator:   NewAggregator(pipelineCfg.TopContentLimit),
		builder:      NewRequestBuilder(pipelineCfg.MaxPayloadBytes),
		gateway:      gateway,
		parser:       NewResponseParser(),
		writer:       NewInsightWriter(insightRepo),
		now:          time.Now,
	}
}

func (s *Service) RunPipeline(ctx context.Context, businessID string, types []domain.InsightType, window domain.TimeRange) (*domain.RunReport, error) {
	types, err := normalizeRequest(types, window)
	if err != nil {
		return nil, err
	}

	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("load business %s: %w", businessID, err)
	}
	if business == nil {
		return nil, domain.ErrBusinessNotFound
	}

	return s.run(ctx, []*domain.Business{business}, types, window), nil
}

func (s *Service) RunForAllBusinesses(ctx context.Context, types []domain.InsightType, window domain.TimeRange) (*domain.RunReport, error) {
	types, err := normalizeRequest(types, window)
	if err != nil {
		return nil, err
	}

	businesses, err := s.businessRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	if len(businesses) == 0 {
		return nil, domain.ErrNoBusinesses
	}

	return s.run(ctx, businesses, types, window), nil
}

func (s *Service) ListInsights(ctx context.Context, filters domain.InsightFilters) ([]*domain.Insight, error) {
	return s.insightRepo.List(ctx, filters)
}

func normalizeRequest(types []domain.InsightType, window domain.TimeRange) ([]domain.InsightType, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	raw := make([]string, 0, len(types))
	for _, t := range types {
		raw = append(raw, string(t))
	}
	return domain.ParseInsightTypes(raw)
}

type scheduledUnit struct {
	index int
	unit  domain.UnitOfWork
	data  *businessData
}

// run agenda as unidades em duas ondas: primeiro os tipos independentes, depois recommendation,
// que lê os insights recém-gravados. Nenhuma falha de unidade interrompe as demais.
func (s *Service) run(ctx context.Context, businesses []*domain.Business, types []domain.InsightType, window domain.TimeRange) *domain.RunReport {
	runID, err := utils.GenerateID(runIDSize)
	if err != nil {
		runID = uuid.NewString()
	}
	ctx = log.ContextWithCorrelationID(ctx, runID)

	report := &domain.RunReport{RunID: runID, StartedAt: s.now().UTC()}

	var first, second []scheduledUnit
	for _, b := range businesses {
		data := &businessData{business: b}
		for _, t := range types {
			su := scheduledUnit{
				unit: domain.UnitOfWork{BusinessID: b.ID, InsightType: t, Window: window},
				data: data,
			}
			if t == domain.InsightTypeRecommendation {
				second = append(second, su)
			} else {
				first = append(first, su)
			}
		}
	}

	ordered := append(first, second...)
	for i := range ordered {
		ordered[i].index = i
	}
	outcomes := make([]domain.UnitOutcome, len(ordered))

	log.ForContext(ctx).WithFields(log.Fields{
		"run_id":       runID,
		"businesses":   len(businesses),
		"units":        len(ordered),
		"window_start": window.Start,
		"window_end":   window.End,
	}).Info("pipeline: run started")

	var succeeded, failed atomic.Int64
	s.schedule(ctx, ordered[:len(first)], outcomes, &succeeded, &failed)
	s.schedule(ctx, ordered[len(first):], outcomes, &succeeded, &failed)

	report.Outcomes = outcomes
	report.Succeeded = int(succeeded.Load())
	report.Failed = int(failed.Load())
	report.FinishedAt = s.now().UTC()
	metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	log.ForContext(ctx).WithFields(log.Fields{
		"run_id":    runID,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("pipeline: run finished")

	return report
}

// schedule usa um pool limitado por semáforo de canal. Depois do cancelamento nenhuma unidade nova
// é iniciada; as que já estão em execução terminam num contexto sem cancelamento.
func (s *Service) schedule(ctx context.Context, units []scheduledUnit, outcomes []domain.UnitOutcome, succeeded, failed *atomic.Int64) {
	semaphore := make(chan struct{}, s.cfg.MaxConcurrentUnits)
	var wg sync.WaitGroup

	inFlightCtx := context.WithoutCancel(ctx)

	for i, su := range units {
		if ctx.Err() != nil {
			s.cancelRemaining(units[i:], outcomes, ctx.Err(), failed)
			break
		}

		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			s.cancelRemaining(units[i:], outcomes, ctx.Err(), failed)
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(su scheduledUnit) {
			defer wg.Done()
			defer func() { <-semaphore }()

			outcome := s.processUnit(inFlightCtx, su)
			outcomes[su.index] = outcome
			if outcome.Status == domain.UnitSucceeded {
				succeeded.Add(1)
			} else {
				failed.Add(1)
			}
		}(su)
	}

	wg.Wait()
}

func (s *Service) cancelRemaining(units []scheduledUnit, outcomes []domain.UnitOutcome, cause error, failed *atomic.Int64) {
	for _, su := range units {
		outcomes[su.index] = domain.UnitOutcome{
			UnitOfWork:  su.unit,
			Status:      domain.UnitFailed,
			FailureKind: domain.FailureCanceled,
			Error:       cause.Error(),
		}
		failed.Add(1)
		metrics.UnitsTotal.WithLabelValues(su.unit.InsightType.String(), string(domain.FailureCanceled)).Inc()
	}
}

func (s *Service) processUnit(ctx context.Context, su scheduledUnit) (outcome domain.UnitOutcome) {
	started := time.Now()
	unit := su.unit
	outcome = domain.UnitOutcome{UnitOfWork: unit}

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"business_id":  unit.BusinessID,
		"insight_type": unit.InsightType,
	})

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = domain.UnitFailed
			outcome.FailureKind = domain.FailureInternal
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
		outcome.Duration = time.Since(started)

		label := string(outcome.FailureKind)
		if outcome.Status == domain.UnitSucceeded {
			label = string(domain.UnitSucceeded)
			logger.WithField("insight_id", outcome.InsightID).Info("pipeline: unit succeeded")
		} else {
			logger.WithFields(log.Fields{"failure_kind": outcome.FailureKind, "error": outcome.Error}).Warn("pipeline: unit failed")
		}
		metrics.UnitsTotal.WithLabelValues(unit.InsightType.String(), label).Inc()
	}()

	written, retries, err := s.executeUnit(ctx, su)
	outcome.Retries = retries
	if err != nil {
		outcome.Status = domain.UnitFailed
		outcome.FailureKind = domain.ClassifyFailure(err)
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = domain.UnitSucceeded
	outcome.InsightID = written.InsightID
	outcome.Created = written.Created
	return outcome
}

func (s *Service) executeUnit(ctx context.Context, su scheduledUnit) (*domain.WriteOutcome, int, error) {
	unit := su.unit

	data, err := su.data.load(ctx, s, unit.Window)
	if err != nil {
		return nil, 0, err
	}

	result := s.aggregator.Aggregate(data.samples, data.items, unit.Window)
	result.BusinessID = data.business.ID
	result.BusinessName = data.business.Name
	result.Industry = data.business.Industry
	result.InsightType = unit.InsightType
	if result.InsufficientData {
		return nil, 0, domain.ErrInsufficientData
	}

	inputs := BuildInputs{}
	switch unit.InsightType {
	case domain.InsightTypeProductDemand:
		inputs.ContentExcerpt = contentExcerpt(result)
	case domain.InsightTypeVideoAnalysis:
		inputs.Video = pickVideo(data.items, unit.Window)
		if inputs.Video != nil {
			inputs.ContentExcerpt = videoExcerpt(data.items, inputs.Video)
		}
	case domain.InsightTypeRecommendation:
		inputs.PriorInsights = s.priorInsights(ctx, unit.BusinessID, unit.Window)
	}

	req, err := s.builder.Build(result, unit.InsightType, inputs)
	if err != nil {
		return nil, 0, err
	}

	raw, err := s.gateway.Invoke(ctx, req)
	if err != nil {
		var infErr *domain.InferenceError
		if errors.As(err, &infErr) && infErr.Attempts > 0 {
			return nil, infErr.Attempts - 1, err
		}
		return nil, 0, err
	}

	parsed, err := s.parser.Parse(raw, unit.InsightType)
	if err != nil {
		return nil, raw.Retries, err
	}

	written, err := s.writer.Write(ctx, unit.BusinessID, parsed, unit.Window)
	if err != nil {
		return nil, raw.Retries, err
	}

	return written, raw.Retries, nil
}

// priorInsights busca só insights da mesma janela; falha de leitura apenas remove as referências do prompt.
func (s *Service) priorInsights(ctx context.Context, businessID string, window domain.TimeRange) []*domain.Insight {
	limit := s.cfg.PriorInsightLimit
	if limit <= 0 {
		return nil
	}

	firstWave := []domain.InsightType{
		domain.InsightTypeEngagementTrend,
		domain.InsightTypeProductDemand,
		domain.InsightTypeVideoAnalysis,
	}
	insights, err := s.insightRepo.List(ctx, domain.InsightFilters{
		BusinessID:  businessID,
		Types:       firstWave,
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Limit:       uint64(limit),
	})
	if err != nil {
		log.ForContext(ctx).WithField("business_id", businessID).WithError(err).Warn("pipeline: failed to load prior insights")
		return nil
	}
	return insights
}
