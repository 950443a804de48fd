package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/marketing-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

const businessesTable = "businesses b"

type BusinessRepository interface {
	GetByID(ctx context.Context, businessID string) (*domain.Business, error)
	List(ctx context.Context) ([]*domain.Business, error)
}

type businessRepository struct {
	conn postgres.Queryer
}

func NewBusinessRepository(conn postgres.Queryer) BusinessRepository {
	return &businessRepository{
		conn: conn,
	}
}

// GetByID retorna nil, nil quando o negócio não existe
func (r *businessRepository) GetByID(ctx context.Context, businessID string) (*domain.Business, error) {
	query, args, err := squirrel.
		Select("b.id, b.name, COALESCE(b.industry, ''), b.created_at").
		From(businessesTable).
		Where(squirrel.Eq{"b.id": businessID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	business := &domain.Business{}
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&business.ID,
		&business.Name,
		&business.Industry,
		&business.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear negócio: %w", err)
	}

	return business, nil
}

func (r *businessRepository) List(ctx context.Context) ([]*domain.Business, error) {
	query, args, err := squirrel.
		Select("b.id, b.name, COALESCE(b.industry, ''), b.created_at").
		From(businessesTable).
		OrderBy("b.created_at ASC", "b.id ASC").
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

	businesses := make([]*domain.Business, 0)
	for rows.Next() {
		business := &domain.Business{}
		if err := rows.Scan(&business.ID, &business.Name, &business.Industry, &business.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear negócio: %w", err)
		}
		businesses = append(businesses, business)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return businesses, nil
}
