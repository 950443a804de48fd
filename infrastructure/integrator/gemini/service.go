package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"github.com/vfg2006/marketing-insights-api/pkg/metrics"
	"golang.org/x/sync/semaphore"
)

// InferenceClient faz uma única chamada ao serviço. Falhas devem vir como *domain.InferenceError
// já classificadas; erros não classificados são tratados como permanentes.
type InferenceClient interface {
	Generate(ctx context.Context, req *domain.AnalysisRequest) (*domain.RawResponse, error)
}

type Gateway struct {
	client  InferenceClient
	cfg     config.Inference
	limiter *semaphore.Weighted
	policy  retrypolicy.RetryPolicy[*domain.RawResponse]
}

// New cria o gateway. O limiter é compartilhado por todas as chamadas feitas por esta instância,
// então o pipeline inteiro deve usar um único Gateway.
func New(client InferenceClient, cfg config.Inference) *Gateway {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxConcurrentCalls < 1 {
		cfg.MaxConcurrentCalls = 1
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = config.DefaultCallTimeout
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.JitterFactor < 0 || cfg.JitterFactor > 1 {
		cfg.JitterFactor = 0
	}

	policy := retrypolicy.NewBuilder[*domain.RawResponse]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxAttempts - 1).
		WithJitterFactor(cfg.JitterFactor).
		HandleIf(func(_ *domain.RawResponse, err error) bool {
			return domain.IsTransient(err)
		}).
		Build()

	return &Gateway{
		client:  client,
		cfg:     cfg,
		limiter: semaphore.NewWeighted(cfg.MaxConcurrentCalls),
		policy:  policy,
	}
}

// Invoke envia a requisição com retentativas para falhas transitórias.
// Retorna InferenceError{Exhausted} quando as tentativas acabam e InferenceError{Permanent} sem retentar.
func (g *Gateway) Invoke(ctx context.Context, req *domain.AnalysisRequest) (*domain.RawResponse, error) {
	var (
		attempts int
		lastErr  error
	)

	resp, err := failsafe.With(g.policy).WithContext(ctx).Get(func() (*domain.RawResponse, error) {
		attempts++
		resp, err := g.attempt(ctx, req, attempts)
		lastErr = err
		return resp, err
	})
	if err == nil {
		resp.Attempts = attempts
		resp.Retries = attempts - 1
		return resp, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && !domain.IsTransient(lastErr) {
		return nil, fmt.Errorf("inference %s: %w", req.InsightType, ctxErr)
	}
	if lastErr == nil {
		lastErr = err
	}

	var infErr *domain.InferenceError
	if errors.As(lastErr, &infErr) && infErr.Kind == domain.InferencePermanent {
		return nil, &domain.InferenceError{
			Kind:       domain.InferencePermanent,
			StatusCode: infErr.StatusCode,
			Attempts:   attempts,
			Err:        infErr.Err,
		}
	}

	exhausted := &domain.InferenceError{Kind: domain.InferenceExhausted, Attempts: attempts, Err: lastErr}
	if infErr != nil {
		exhausted.StatusCode = infErr.StatusCode
		exhausted.Err = infErr.Err
	}

	logrus.WithFields(logrus.Fields{
		"business_id":  req.BusinessID,
		"insight_type": req.InsightType,
		"attempts":     attempts,
	}).WithError(lastErr).Error("gemini: retries exhausted")

	return nil, exhausted
}

// attempt segura uma vaga do limiter global apenas durante a chamada; o backoff acontece fora dela.
func (g *Gateway) attempt(ctx context.Context, req *domain.AnalysisRequest, attempt int) (*domain.RawResponse, error) {
	if err := g.limiter.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.limiter.Release(1)

	metrics.InferenceInFlight.Inc()
	defer metrics.InferenceInFlight.Dec()

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	started := time.Now()
	resp, err := g.client.Generate(callCtx, req)
	metrics.InferenceDuration.WithLabelValues(req.InsightType.String()).Observe(time.Since(started).Seconds())

	err = classify(callCtx, err)

	fields := logrus.Fields{
		"business_id":  req.BusinessID,
		"insight_type": req.InsightType,
		"attempt":      attempt,
	}

	if err != nil {
		result := string(domain.InferencePermanent)
		if domain.IsTransient(err) {
			result = string(domain.InferenceTransient)
		}
		metrics.InferenceAttempts.WithLabelValues(req.InsightType.String(), result).Inc()
		logrus.WithFields(fields).WithError(err).Warn("gemini: inference attempt failed")
		return nil, err
	}

	metrics.InferenceAttempts.WithLabelValues(req.InsightType.String(), "success").Inc()
	logrus.WithFields(fields).Debug("gemini: inference attempt succeeded")

	if resp == nil {
		resp = &domain.RawResponse{}
	}
	return resp, nil
}

func classify(callCtx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var infErr *domain.InferenceError
	if errors.As(err, &infErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return domain.NewTransientError(0, fmt.Errorf("call timeout: %w", err))
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	return domain.NewPermanentError(0, err)
}
