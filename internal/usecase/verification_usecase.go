package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/domain/basplan"
)

// VerificationUseCase is the single write path into the ledger. Every
// posting, manual or engine-generated, goes through here.
type VerificationUseCase struct {
	txManager   TransactionManager
	verRepo     VerificationRepository
	seqRepo     SequenceRepository
	accountRepo AccountRepository
	idGen       IDGenerator
	retrier     Retrier
}

// NewVerificationUseCase creates a new VerificationUseCase.
func NewVerificationUseCase(
	txManager TransactionManager,
	verRepo VerificationRepository,
	seqRepo SequenceRepository,
	accountRepo AccountRepository,
	idGen IDGenerator,
	retrier Retrier,
) *VerificationUseCase {
	return &VerificationUseCase{
		txManager:   txManager,
		verRepo:     verRepo,
		seqRepo:     seqRepo,
		accountRepo: accountRepo,
		idGen:       idGen,
		retrier:     retrier,
	}
}

// CreateVerificationInput represents one verification to post.
type CreateVerificationInput struct {
	CompanyID   string
	Series      string
	Date        time.Time
	Description string
	Rows        []domain.Row
	Source      *domain.Source
}

// CreateVerification validates and persists a single balanced verification.
func (uc *VerificationUseCase) CreateVerification(ctx context.Context, input CreateVerificationInput) (*domain.Verification, error) {
	result, err := uc.CreateBatch(ctx, []CreateVerificationInput{input})
	if err != nil {
		return nil, err
	}

	return result[0], nil
}

// CreateBatch posts several verifications in one all-or-nothing transaction.
// Sequence allocation races retry internally; validation failures abort
// before anything is written.
func (uc *VerificationUseCase) CreateBatch(ctx context.Context, inputs []CreateVerificationInput) ([]*domain.Verification, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", domain.ErrValidation)
	}

	// Validate everything before touching the store.
	for i := range inputs {
		if err := uc.validateInput(ctx, &inputs[i]); err != nil {
			return nil, err
		}
	}

	var created []*domain.Verification
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		created, err = uc.postBatch(ctx, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// CreateBatchInTx posts a batch inside a caller-owned transaction. The
// closing engine uses this to commit postings and the period status flip
// atomically. The inputs must already be validated.
func (uc *VerificationUseCase) CreateBatchInTx(ctx context.Context, tx Transaction, inputs []CreateVerificationInput) ([]*domain.Verification, error) {
	now := time.Now().UTC()

	created := make([]*domain.Verification, 0, len(inputs))
	for i := range inputs {
		v, err := uc.postOne(ctx, tx, &inputs[i], now)
		if err != nil {
			return nil, err
		}

		created = append(created, v)
	}

	return created, nil
}

// ValidateInput runs the full pre-persist validation for a single input.
// Engines call this before batching so a broken batch refuses to start.
func (uc *VerificationUseCase) ValidateInput(ctx context.Context, input *CreateVerificationInput) error {
	return uc.validateInput(ctx, input)
}

func (uc *VerificationUseCase) postBatch(ctx context.Context, inputs []CreateVerificationInput) ([]*domain.Verification, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	defer tx.Rollback(ctx)

	created, err := uc.CreateBatchInTx(ctx, tx, inputs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	return created, nil
}

func (uc *VerificationUseCase) postOne(ctx context.Context, tx Transaction, input *CreateVerificationInput, now time.Time) (*domain.Verification, error) {
	fiscalYear := domain.FiscalYearOf(input.Date)

	number, err := uc.seqRepo.Next(ctx, tx, input.CompanyID, input.Series, fiscalYear)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Row, len(input.Rows))
	for i, r := range input.Rows {
		rows[i] = domain.Row{
			AccountCode: r.AccountCode,
			Debit:       r.Debit.Round(2),
			Credit:      r.Credit.Round(2),
			Description: r.Description,
		}
	}

	v := &domain.Verification{
		ID:          uc.idGen.Generate(),
		CompanyID:   input.CompanyID,
		Series:      input.Series,
		Number:      number,
		FiscalYear:  fiscalYear,
		Date:        input.Date,
		Description: input.Description,
		Rows:        rows,
		Source:      input.Source,
		CreatedAt:   now,
	}

	if err := uc.verRepo.Create(ctx, tx, v); err != nil {
		return nil, err
	}

	return v, nil
}

func (uc *VerificationUseCase) validateInput(ctx context.Context, input *CreateVerificationInput) error {
	if input.CompanyID == "" {
		return fmt.Errorf("%w: missing company", domain.ErrValidation)
	}
	if input.Series == "" {
		input.Series = DefaultSeries
	}
	if len(input.Series) != 1 || input.Series[0] < 'A' || input.Series[0] > 'Z' {
		return fmt.Errorf("%w: series must be a single letter A-Z", domain.ErrValidation)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: missing date", domain.ErrValidation)
	}

	if err := domain.ValidateRows(input.Rows); err != nil {
		return err
	}

	plan := basplan.ForYear(domain.FiscalYearOf(input.Date))
	for _, row := range input.Rows {
		if plan.Contains(row.AccountCode) {
			continue
		}

		if _, err := uc.accountRepo.GetByCode(ctx, input.CompanyID, row.AccountCode); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, row.AccountCode)
		}
	}

	return nil
}

// GetVerification retrieves a verification by id.
func (uc *VerificationUseCase) GetVerification(ctx context.Context, companyID, id string) (*domain.Verification, error) {
	return uc.verRepo.GetByID(ctx, companyID, id)
}

// ListVerifications lists verifications for a company.
func (uc *VerificationUseCase) ListVerifications(ctx context.Context, filter VerificationFilter) ([]*domain.Verification, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	return uc.verRepo.List(ctx, filter)
}
