package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
)

// AccountRepository defines data access for company-specific accounts that
// extend the standard plan.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByCode(ctx context.Context, companyID, code string) (*domain.Account, error)
	List(ctx context.Context, companyID string) ([]*domain.Account, error)
}

// VerificationFilter narrows verification listings.
type VerificationFilter struct {
	CompanyID string
	Series    string
	Year      int
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// AccountTotal is the summed debit/credit per account over a period.
type AccountTotal struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Balance is the signed balance (debit minus credit) of the total.
func (t AccountTotal) Balance() decimal.Decimal {
	return t.Debit.Sub(t.Credit)
}

// VerificationRepository defines data access for verifications. The ledger
// is append-only: there are no update or delete operations.
type VerificationRepository interface {
	Create(ctx context.Context, tx Transaction, v *domain.Verification) error
	GetByID(ctx context.Context, companyID, id string) (*domain.Verification, error)
	List(ctx context.Context, filter VerificationFilter) ([]*domain.Verification, error)
	// Totals sums debit and credit per account over [from, to]. A nil from
	// means since inception, as balance-sheet figures require.
	Totals(ctx context.Context, companyID string, from, to *time.Time) ([]AccountTotal, error)
	// HasReversal reports whether a correction already references originalID.
	// It runs inside tx and locks the original verification row first, so two
	// concurrent corrections of the same verification serialize: the second
	// observes the first reversal once it commits.
	HasReversal(ctx context.Context, tx Transaction, companyID, originalID string) (bool, error)
}

// SequenceRepository allocates verification numbers. Next must be atomic per
// (company, series, fiscal year): two concurrent transactions never observe
// the same number.
type SequenceRepository interface {
	Next(ctx context.Context, tx Transaction, companyID, series string, fiscalYear int) (int64, error)
}

// PeriodRepository defines data access for fiscal periods.
type PeriodRepository interface {
	Get(ctx context.Context, companyID string, year int) (*domain.FiscalPeriod, error)
	// GetForUpdate locks the period row for the duration of tx, creating an
	// open period if none exists yet.
	GetForUpdate(ctx context.Context, tx Transaction, companyID string, year int) (*domain.FiscalPeriod, error)
	SetStatus(ctx context.Context, tx Transaction, companyID string, year int, status domain.PeriodStatus, updatedAt time.Time) error
}

// ReportRepository defines data access for computed tax reports.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.TaxReport) error
	GetByID(ctx context.Context, companyID, id string) (*domain.TaxReport, error)
	// ListByYear lists a company's reports; year 0 means all years.
	ListByYear(ctx context.Context, companyID string, year int) ([]*domain.TaxReport, error)
	UpdateStatus(ctx context.Context, tx Transaction, companyID, id string, status domain.ReportStatus, updatedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on retryable store conflicts (sequence races,
// serialization failures). Non-retryable errors pass through unchanged.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage for mutating requests.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
