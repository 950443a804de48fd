package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/marketing-insights-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
)

const socialAccountsTable = "social_accounts sa"

type SocialAccountRepository interface {
	ListByBusinessID(ctx context.Context, businessID string) ([]*domain.SocialAccount, error)
}

type socialAccountRepository struct {
	conn postgres.Queryer
}

func NewSocialAccountRepository(conn postgres.Queryer) SocialAccountRepository {
	return &socialAccountRepository{
		conn: conn,
	}
}

func (r *socialAccountRepository) ListByBusinessID(ctx context.Context, businessID string) ([]*domain.SocialAccount, error) {
	query, args, err := squirrel.
		Select("sa.id, sa.business_id, sa.platform, sa.account_id, COALESCE(sa.account_name, '')").
		From(socialAccountsTable).
		Where(squirrel.Eq{"sa.business_id": businessID}).
		OrderBy("sa.platform ASC", "sa.id ASC").
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

	accounts := make([]*domain.SocialAccount, 0)
	for rows.Next() {
		account := &domain.SocialAccount{}
		if err := rows.Scan(
			&account.ID,
			&account.BusinessID,
			&account.Platform,
			&account.AccountID,
			&account.AccountName,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear conta social: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return accounts, nil
}
