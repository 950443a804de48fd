package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/marketing-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

const socialMetricsTable = "social_metrics sm"

type MetricSampleRepository interface {
	ListByAccountsAndRange(ctx context.Context, accountIDs []string, window domain.TimeRange) ([]*domain.MetricSample, error)
}

type metricSampleRepository struct {
	conn postgres.Queryer
}

func NewMetricSampleRepository(conn postgres.Queryer) MetricSampleRepository {
	return &metricSampleRepository{
		conn: conn,
	}
}

// ListByAccountsAndRange busca as amostras com timestamp em [start, end)
func (r *metricSampleRepository) ListByAccountsAndRange(ctx context.Context, accountIDs []string, window domain.TimeRange) ([]*domain.MetricSample, error) {
	if len(accountIDs) == 0 {
		return []*domain.MetricSample{}, nil
	}

	query, args, err := squirrel.
		Select("sm.id, sm.social_account_id, sm.timestamp, sm.followers, sm.likes, sm.comments, sm.shares, sm.views, sm.platform_data").
		From(socialMetricsTable).
		Where(squirrel.Eq{"sm.social_account_id": accountIDs}).
		Where(squirrel.GtOrEq{"sm.timestamp": window.Start}).
		Where(squirrel.Lt{"sm.timestamp": window.End}).
		OrderBy("sm.timestamp ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	samples := make([]*domain.MetricSample, 0)
	for rows.Next() {
		var platformData []byte
		sample := &domain.MetricSample{}
		if err := rows.Scan(
			&sample.ID,
			&sample.SocialAccountID,
			&sample.Timestamp,
			&sample.Followers,
			&sample.Likes,
			&sample.Comments,
			&sample.Shares,
			&sample.Views,
			&platformData,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear métrica: %w", err)
		}

		if sample.PlatformData, err = decodePayload(platformData); err != nil {
			return nil, fmt.Errorf("erro ao desserializar platform_data da métrica %s: %w", sample.ID, err)
		}

		samples = append(samples, sample)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return samples, nil
}
