package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
)

// VerificationRepository implements usecase.VerificationRepository. The
// tables are append-only: the repository exposes no update or delete.
type VerificationRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRepository creates a new VerificationRepository.
func NewVerificationRepository(pool *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

// Create inserts the verification header and its rows inside the caller's
// transaction.
func (r *VerificationRepository) Create(ctx context.Context, tx usecase.Transaction, v *domain.Verification) error {
	pgxTx := tx.(*Tx).PgxTx()

	var sourceType, sourceID *string
	if v.Source != nil {
		st := string(v.Source.Type)
		sourceType = &st
		sourceID = &v.Source.SourceID
	}

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO verifications (id, company_id, series, number, fiscal_year, date, description, source_type, source_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID,
		v.CompanyID,
		v.Series,
		v.Number,
		v.FiscalYear,
		timeToPgDate(v.Date),
		v.Description,
		sourceType,
		sourceID,
		timeToPgTimestamptz(v.CreatedAt),
	)
	if err != nil {
		return err
	}

	for i, row := range v.Rows {
		_, err := pgxTx.Exec(ctx, `
			INSERT INTO verification_rows (verification_id, position, account_code, debit, credit, description)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			v.ID,
			i,
			row.AccountCode,
			decimalToNumeric(row.Debit),
			decimalToNumeric(row.Credit),
			row.Description,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a verification with its rows.
func (r *VerificationRepository) GetByID(ctx context.Context, companyID, id string) (*domain.Verification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, company_id, series, number, fiscal_year, date, description, source_type, source_id, created_at
		FROM verifications
		WHERE company_id = $1 AND id = $2`,
		companyID, id,
	)

	v, err := scanVerification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVerificationNotFound
		}

		return nil, err
	}

	if err := r.loadRows(ctx, v); err != nil {
		return nil, err
	}

	return v, nil
}

// List lists verifications ordered by series and number.
func (r *VerificationRepository) List(ctx context.Context, filter usecase.VerificationFilter) ([]*domain.Verification, error) {
	query := `
		SELECT id, company_id, series, number, fiscal_year, date, description, source_type, source_id, created_at
		FROM verifications
		WHERE company_id = $1`
	args := []any{filter.CompanyID}

	if filter.Series != "" {
		args = append(args, filter.Series)
		query += fmt.Sprintf(" AND series = $%d", len(args))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND fiscal_year = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, timeToPgDate(*filter.From))
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, timeToPgDate(*filter.To))
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	query += " ORDER BY series, number"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verifications []*domain.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}

		verifications = append(verifications, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, v := range verifications {
		if err := r.loadRows(ctx, v); err != nil {
			return nil, err
		}
	}

	return verifications, nil
}

// Totals sums debit and credit per account over [from, to]. Nil bounds mean
// unbounded on that side.
func (r *VerificationRepository) Totals(ctx context.Context, companyID string, from, to *time.Time) ([]usecase.AccountTotal, error) {
	query := `
		SELECT vr.account_code, COALESCE(SUM(vr.debit), 0), COALESCE(SUM(vr.credit), 0)
		FROM verification_rows vr
		JOIN verifications v ON v.id = vr.verification_id
		WHERE v.company_id = $1`
	args := []any{companyID}

	if from != nil {
		args = append(args, timeToPgDate(*from))
		query += fmt.Sprintf(" AND v.date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, timeToPgDate(*to))
		query += fmt.Sprintf(" AND v.date <= $%d", len(args))
	}

	query += " GROUP BY vr.account_code ORDER BY vr.account_code"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []usecase.AccountTotal
	for rows.Next() {
		var (
			total         usecase.AccountTotal
			debit, credit pgtype.Numeric
		)
		if err := rows.Scan(&total.AccountCode, &debit, &credit); err != nil {
			return nil, err
		}

		total.Debit = numericToDecimal(debit)
		total.Credit = numericToDecimal(credit)
		totals = append(totals, total)
	}

	return totals, rows.Err()
}

// HasReversal reports whether a correction verification already references
// originalID. The original row is locked FOR UPDATE first: a concurrent
// correction blocks here until this transaction commits, then sees the
// reversal.
func (r *VerificationRepository) HasReversal(ctx context.Context, tx usecase.Transaction, companyID, originalID string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	if _, err := pgxTx.Exec(ctx, `
		SELECT 1 FROM verifications
		WHERE company_id = $1 AND id = $2
		FOR UPDATE`,
		companyID, originalID,
	); err != nil {
		return false, err
	}

	var exists bool
	err := pgxTx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM verifications
			WHERE company_id = $1 AND source_type = $2 AND source_id = $3
		)`,
		companyID, string(domain.SourceCorrection), originalID,
	).Scan(&exists)

	return exists, err
}

func (r *VerificationRepository) loadRows(ctx context.Context, v *domain.Verification) error {
	rows, err := r.pool.Query(ctx, `
		SELECT account_code, debit, credit, description
		FROM verification_rows
		WHERE verification_id = $1
		ORDER BY position`,
		v.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row           domain.Row
			debit, credit pgtype.Numeric
		)
		if err := rows.Scan(&row.AccountCode, &debit, &credit, &row.Description); err != nil {
			return err
		}

		row.Debit = numericToDecimal(debit)
		row.Credit = numericToDecimal(credit)
		v.Rows = append(v.Rows, row)
	}

	return rows.Err()
}

func scanVerification(row pgx.Row) (*domain.Verification, error) {
	var (
		v          domain.Verification
		date       pgtype.Date
		sourceType *string
		sourceID   *string
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(&v.ID, &v.CompanyID, &v.Series, &v.Number, &v.FiscalYear, &date, &v.Description, &sourceType, &sourceID, &createdAt)
	if err != nil {
		return nil, err
	}

	v.Date = date.Time
	v.CreatedAt = createdAt.Time
	if sourceType != nil && sourceID != nil {
		v.Source = &domain.Source{Type: domain.SourceType(*sourceType), SourceID: *sourceID}
	}

	return &v, nil
}
