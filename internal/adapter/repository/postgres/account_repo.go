package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klarbok/klarbok/internal/domain"
)

// AccountRepository implements usecase.AccountRepository for company accounts
// that extend the standard plan.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new company account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (company_id, code, name, category, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, code) DO NOTHING`,
		account.CompanyID,
		account.Code,
		account.Name,
		string(account.Category),
		timeToPgTimestamptz(account.CreatedAt),
	)

	return err
}

// GetByCode retrieves a company account by its BAS code.
func (r *AccountRepository) GetByCode(ctx context.Context, companyID, code string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT company_id, code, name, category, created_at
		FROM accounts
		WHERE company_id = $1 AND code = $2`,
		companyID, code,
	)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// List lists a company's accounts ordered by code.
func (r *AccountRepository) List(ctx context.Context, companyID string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT company_id, code, name, category, created_at
		FROM accounts
		WHERE company_id = $1
		ORDER BY code`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		category  string
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&account.CompanyID, &account.Code, &account.Name, &category, &createdAt); err != nil {
		return nil, err
	}

	account.Category = domain.AccountCategory(category)
	account.CreatedAt = createdAt.Time

	return &account, nil
}
