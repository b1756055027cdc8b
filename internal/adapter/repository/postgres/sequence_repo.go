package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klarbok/klarbok/internal/usecase"
)

// SequenceRepository implements usecase.SequenceRepository on a counter
// table. The upsert locks the counter row for the rest of the transaction,
// so numbers within one (company, series, fiscal year) are gapless and never
// handed out twice: a competing transaction blocks until commit or rollback.
type SequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository creates a new SequenceRepository.
func NewSequenceRepository(pool *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{pool: pool}
}

// Next allocates the next verification number inside the caller's
// transaction.
func (r *SequenceRepository) Next(ctx context.Context, tx usecase.Transaction, companyID, series string, fiscalYear int) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var number int64
	err := pgxTx.QueryRow(ctx, `
		INSERT INTO verification_counters (company_id, series, fiscal_year, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, series, fiscal_year)
		DO UPDATE SET last_number = verification_counters.last_number + 1
		RETURNING last_number`,
		companyID, series, fiscalYear,
	).Scan(&number)
	if err != nil {
		return 0, err
	}

	return number, nil
}
