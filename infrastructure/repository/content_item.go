package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/marketing-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

const contentTable = "content c"

type ContentItemRepository interface {
	ListByAccountsAndRange(ctx context.Context, accountIDs []string, window domain.TimeRange) ([]*domain.ContentItem, error)
}

type contentItemRepository struct {
	conn postgres.Queryer
}

func NewContentItemRepository(conn postgres.Queryer) ContentItemRepository {
	return &contentItemRepository{
		conn: conn,
	}
}

// ListByAccountsAndRange busca o conteúdo publicado em [start, end)
func (r *contentItemRepository) ListByAccountsAndRange(ctx context.Context, accountIDs []string, window domain.TimeRange) ([]*domain.ContentItem, error) {
	if len(accountIDs) == 0 {
		return []*domain.ContentItem{}, nil
	}

	query, args, err := squirrel.
		Select(
			"c.id, c.social_account_id, sa.platform, c.content_id, c.content_type",
			"COALESCE(c.title, ''), COALESCE(c.description, ''), COALESCE(c.url, ''), COALESCE(c.thumbnail_url, '')",
			"c.published_at, c.likes, c.comments, c.shares, c.views, c.content_metadata",
			"COALESCE(c.video_id, ''), COALESCE(c.video_url, '')",
		).
		From(contentTable).
		Join("social_accounts sa ON sa.id = c.social_account_id").
		Where(squirrel.Eq{"c.social_account_id": accountIDs}).
		Where(squirrel.GtOrEq{"c.published_at": window.Start}).
		Where(squirrel.Lt{"c.published_at": window.End}).
		OrderBy("c.published_at ASC").
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

	items := make([]*domain.ContentItem, 0)
	for rows.Next() {
		var (
			contentType string
			metadata    []byte
		)
		item := &domain.ContentItem{}
		if err := rows.Scan(
			&item.ID,
			&item.SocialAccountID,
			&item.Platform,
			&item.ContentID,
			&contentType,
			&item.Title,
			&item.Description,
			&item.URL,
			&item.ThumbnailURL,
			&item.PublishedAt,
			&item.Likes,
			&item.Comments,
			&item.Shares,
			&item.Views,
			&metadata,
			&item.VideoID,
			&item.VideoURL,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear conteúdo: %w", err)
		}
		item.ContentType = domain.ContentType(contentType)

		if item.Metadata, err = decodePayload(metadata); err != nil {
			return nil, fmt.Errorf("erro ao desserializar content_metadata do conteúdo %s: %w", item.ID, err)
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return items, nil
}
