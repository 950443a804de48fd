package insighting

import (
	"context"
	"time"

	"github.com/vfg2006/marketing-insights-api/infrastructure/repository"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

// InsightWriter grava insights por upsert na chave de idempotência da unidade de trabalho.
type InsightWriter struct {
	repo repository.InsightRepository
	now  func() time.Time
}

func NewInsightWriter(repo repository.InsightRepository) *InsightWriter {
	return &InsightWriter{repo: repo, now: time.Now}
}

func (w *InsightWriter) Write(ctx context.Context, businessID string, parsed *domain.ParsedInsight, window domain.TimeRange) (*domain.WriteOutcome, error) {
	insight := &domain.Insight{
		BusinessID:     businessID,
		InsightType:    parsed.InsightType,
		Title:          parsed.Title,
		Body:           parsed.Body,
		WindowStart:    window.Start.UTC(),
		WindowEnd:      window.End.UTC(),
		IdempotencyKey: domain.IdempotencyKey(businessID, parsed.InsightType, window),
		GeneratedAt:    w.now().UTC(),
	}

	outcome, err := w.repo.Upsert(ctx, insight)
	if err != nil {
		return nil, &domain.WriteError{Err: err}
	}

	return outcome, nil
}
