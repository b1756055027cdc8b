package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
)

// ReportRepository implements usecase.ReportRepository. The computed field
// map is stored as jsonb; decimal values serialize as strings to keep them
// exact.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create persists a new draft report.
func (r *ReportRepository) Create(ctx context.Context, report *domain.TaxReport) error {
	fields, err := marshalFields(report.Fields)
	if err != nil {
		return err
	}
	unmapped, err := json.Marshal(report.Unmapped)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO tax_reports (id, company_id, type, year, mapping_version, fields, unmapped, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		report.ID,
		report.CompanyID,
		string(report.Type),
		report.Year,
		report.MappingVersion,
		fields,
		unmapped,
		string(report.Status),
		timeToPgTimestamptz(report.CreatedAt),
		timeToPgTimestamptz(report.UpdatedAt),
	)

	return err
}

// GetByID retrieves a report by id.
func (r *ReportRepository) GetByID(ctx context.Context, companyID, id string) (*domain.TaxReport, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, company_id, type, year, mapping_version, fields, unmapped, status, created_at, updated_at
		FROM tax_reports
		WHERE company_id = $1 AND id = $2`,
		companyID, id,
	)

	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}

		return nil, err
	}

	return report, nil
}

// ListByYear lists a company's reports for a fiscal year.
func (r *ReportRepository) ListByYear(ctx context.Context, companyID string, year int) ([]*domain.TaxReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, type, year, mapping_version, fields, unmapped, status, created_at, updated_at
		FROM tax_reports
		WHERE company_id = $1 AND ($2 = 0 OR year = $2)
		ORDER BY created_at`,
		companyID, year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.TaxReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// UpdateStatus flips the report status inside the caller's transaction.
func (r *ReportRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, companyID, id string, status domain.ReportStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE tax_reports
		SET status = $3, updated_at = $4
		WHERE company_id = $1 AND id = $2`,
		companyID, id, string(status), timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}

	return nil
}

func marshalFields(fields map[string]decimal.Decimal) ([]byte, error) {
	out := make(map[string]string, len(fields))
	for code, value := range fields {
		out[code] = value.String()
	}

	return json.Marshal(out)
}

func unmarshalFields(data []byte) (map[string]decimal.Decimal, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(raw))
	for code, value := range raw {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, err
		}
		out[code] = d
	}

	return out, nil
}

func scanReport(row pgx.Row) (*domain.TaxReport, error) {
	var (
		report               domain.TaxReport
		reportType, status   string
		fields, unmapped     []byte
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&report.ID, &report.CompanyID, &reportType, &report.Year, &report.MappingVersion, &fields, &unmapped, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	report.Type = domain.ReportType(reportType)
	report.Status = domain.ReportStatus(status)
	report.CreatedAt = createdAt.Time
	report.UpdatedAt = updatedAt.Time

	if report.Fields, err = unmarshalFields(fields); err != nil {
		return nil, err
	}
	if unmapped != nil {
		if err := json.Unmarshal(unmapped, &report.Unmapped); err != nil {
			return nil, err
		}
	}

	return &report, nil
}
