package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vfg2006/marketing-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

const insightsTable = "insights i"

type InsightRepository interface {
	Upsert(ctx context.Context, insight *domain.Insight) (*domain.WriteOutcome, error)
	List(ctx context.Context, filters domain.InsightFilters) ([]*domain.Insight, error)
}

type insightRepository struct {
	conn postgres.Queryer
}

func NewInsightRepository(conn postgres.Queryer) InsightRepository {
	return &insightRepository{
		conn: conn,
	}
}

// Upsert grava pela chave de idempotência. Em conflito, título, corpo e generated_at são substituídos
// e o id original é mantido; created informa se a linha foi inserida agora.
func (r *insightRepository) Upsert(ctx context.Context, insight *domain.Insight) (*domain.WriteOutcome, error) {
	if insight.ID == "" {
		insight.ID = uuid.NewString()
	}

	query, args, err := squirrel.StatementBuilder.
		Insert("insights").
		Columns(
			"id",
			"business_id",
			"insight_type",
			"title",
			"body",
			"window_start",
			"window_end",
			"idempotency_key",
			"generated_at",
		).
		Values(
			insight.ID,
			insight.BusinessID,
			string(insight.InsightType),
			insight.Title,
			insight.Body,
			insight.WindowStart,
			insight.WindowEnd,
			insight.IdempotencyKey,
			insight.GeneratedAt,
		).
		Suffix(`
			ON CONFLICT (idempotency_key) DO UPDATE SET
				title = EXCLUDED.title,
				body = EXCLUDED.body,
				generated_at = EXCLUDED.generated_at,
				updated_at = NOW()
			RETURNING id, (xmax = 0) AS created
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	outcome := &domain.WriteOutcome{}
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&outcome.InsightID, &outcome.Created); err != nil {
		return nil, fmt.Errorf("erro ao salvar insight %s: %w", insight.IdempotencyKey, err)
	}

	insight.ID = outcome.InsightID

	return outcome, nil
}

// List retorna os insights mais recentes primeiro
func (r *insightRepository) List(ctx context.Context, filters domain.InsightFilters) ([]*domain.Insight, error) {
	builder := squirrel.
		Select(
			"i.id, i.business_id, i.insight_type, i.title, i.body",
			"i.window_start, i.window_end, i.idempotency_key, i.generated_at, i.created_at, i.updated_at",
		).
		From(insightsTable).
		Where(squirrel.Eq{"i.business_id": filters.BusinessID}).
		OrderBy("i.generated_at DESC", "i.id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(filters.Types) > 0 {
		types := make([]string, 0, len(filters.Types))
		for _, t := range filters.Types {
			types = append(types, string(t))
		}
		builder = builder.Where(squirrel.Expr("i.insight_type = ANY(?)", pq.Array(types)))
	}

	if !filters.WindowStart.IsZero() {
		builder = builder.Where(squirrel.Eq{"i.window_start": filters.WindowStart.UTC()})
	}
	if !filters.WindowEnd.IsZero() {
		builder = builder.Where(squirrel.Eq{"i.window_end": filters.WindowEnd.UTC()})
	}

	if filters.Limit > 0 {
		builder = builder.Limit(filters.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	insights := make([]*domain.Insight, 0)
	for rows.Next() {
		var insightType string
		insight := &domain.Insight{}
		if err := rows.Scan(
			&insight.ID,
			&insight.BusinessID,
			&insightType,
			&insight.Title,
			&insight.Body,
			&insight.WindowStart,
			&insight.WindowEnd,
			&insight.IdempotencyKey,
			&insight.GeneratedAt,
			&insight.CreatedAt,
			&insight.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear insight: %w", err)
		}
		insight.InsightType = domain.InsightType(insightType)
		insights = append(insights, insight)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return insights, nil
}
