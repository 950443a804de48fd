package insighting

import (
	"context"

	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces.go -package=mocks

// InferenceGateway é o único ponto do pipeline com latência externa.
type InferenceGateway interface {
	Invoke(ctx context.Context, req *domain.AnalysisRequest) (*domain.RawResponse, error)
}

// Runner é a superfície de invocação usada pela API, pelo agendador e pela CLI.
type Runner interface {
	// RunPipeline processa os tipos pedidos para um negócio; tipos vazios significam todos
	RunPipeline(ctx context.Context, businessID string, types []domain.InsightType, window domain.TimeRange) (*domain.RunReport, error)

	// RunForAllBusinesses processa todos os negócios cadastrados
	RunForAllBusinesses(ctx context.Context, types []domain.InsightType, window domain.TimeRange) (*domain.RunReport, error)

	ListInsights(ctx context.Context, filters domain.InsightFilters) ([]*domain.Insight, error)
}
