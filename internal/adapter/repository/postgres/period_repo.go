package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
)

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

// Get retrieves a fiscal period.
func (r *PeriodRepository) Get(ctx context.Context, companyID string, year int) (*domain.FiscalPeriod, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT company_id, year, status, updated_at
		FROM fiscal_periods
		WHERE company_id = $1 AND year = $2`,
		companyID, year,
	)

	period, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}

		return nil, err
	}

	return period, nil
}

// GetForUpdate locks the period row for the rest of the transaction,
// inserting an open period first if the year has never been touched. The
// lock serializes closing against concurrent closings of the same year.
func (r *PeriodRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, companyID string, year int) (*domain.FiscalPeriod, error) {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO fiscal_periods (company_id, year, status, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (company_id, year) DO NOTHING`,
		companyID, year, string(domain.PeriodOpen),
	)
	if err != nil {
		return nil, err
	}

	row := pgxTx.QueryRow(ctx, `
		SELECT company_id, year, status, updated_at
		FROM fiscal_periods
		WHERE company_id = $1 AND year = $2
		FOR UPDATE`,
		companyID, year,
	)

	return scanPeriod(row)
}

// SetStatus updates the period status inside the caller's transaction.
func (r *PeriodRepository) SetStatus(ctx context.Context, tx usecase.Transaction, companyID string, year int, status domain.PeriodStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE fiscal_periods
		SET status = $3, updated_at = $4
		WHERE company_id = $1 AND year = $2`,
		companyID, year, string(status), timeToPgTimestamptz(updatedAt),
	)

	return err
}

func scanPeriod(row pgx.Row) (*domain.FiscalPeriod, error) {
	var (
		period    domain.FiscalPeriod
		status    string
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&period.CompanyID, &period.Year, &status, &updatedAt); err != nil {
		return nil, err
	}

	period.Status = domain.PeriodStatus(status)
	period.UpdatedAt = updatedAt.Time

	return &period, nil
}
