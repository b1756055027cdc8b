package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/klarbok/klarbok/internal/domain"
)

// CorrectionUseCase reverses a posted verification and optionally books a
// replacement (rättelseverifikat). The original is never touched; history is
// the original plus the reversal plus the replacement.
type CorrectionUseCase struct {
	txManager      TransactionManager
	verificationUC *VerificationUseCase
	verRepo        VerificationRepository
	retrier        Retrier
}

// NewCorrectionUseCase creates a new CorrectionUseCase.
func NewCorrectionUseCase(
	txManager TransactionManager,
	verificationUC *VerificationUseCase,
	verRepo VerificationRepository,
	retrier Retrier,
) *CorrectionUseCase {
	return &CorrectionUseCase{
		txManager:      txManager,
		verificationUC: verificationUC,
		verRepo:        verRepo,
		retrier:        retrier,
	}
}

// CorrectionInput identifies the verification to reverse and, optionally,
// the corrected rows to book in its place.
type CorrectionInput struct {
	CompanyID      string
	VerificationID string
	CorrectedRows  []domain.Row
	Description    string
}

// CorrectionResult holds the reversal and the optional replacement.
type CorrectionResult struct {
	Reversal    *domain.Verification
	Replacement *domain.Verification
}

// Execute posts the reversal (rows with debit and credit swapped, dated
// today) and the optional replacement in one atomic batch. Reversing an
// already-reversed verification is a conflict. The duplicate check runs
// inside the posting transaction, under a lock on the original row, so two
// concurrent corrections of the same verification never both commit.
func (uc *CorrectionUseCase) Execute(ctx context.Context, input CorrectionInput) (*CorrectionResult, error) {
	// The original is immutable once posted; reading it outside the
	// transaction is safe.
	original, err := uc.verRepo.GetByID(ctx, input.CompanyID, input.VerificationID)
	if err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Rättelse av %s%d", original.Series, original.Number)
	}

	source := &domain.Source{Type: domain.SourceCorrection, SourceID: original.ID}
	today := time.Now().UTC().Truncate(24 * time.Hour)

	reversalRows := make([]domain.Row, len(original.Rows))
	for i, r := range original.Rows {
		reversalRows[i] = r.Reversed()
	}

	inputs := []CreateVerificationInput{{
		CompanyID:   input.CompanyID,
		Series:      original.Series,
		Date:        today,
		Description: description,
		Rows:        reversalRows,
		Source:      source,
	}}

	if len(input.CorrectedRows) > 0 {
		inputs = append(inputs, CreateVerificationInput{
			CompanyID:   input.CompanyID,
			Series:      original.Series,
			Date:        today,
			Description: description,
			Rows:        input.CorrectedRows,
			Source:      source,
		})
	}

	for i := range inputs {
		if err := uc.verificationUC.ValidateInput(ctx, &inputs[i]); err != nil {
			return nil, err
		}
	}

	var created []*domain.Verification
	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStore, err)
		}
		defer tx.Rollback(ctx)

		reversed, err := uc.verRepo.HasReversal(ctx, tx, input.CompanyID, original.ID)
		if err != nil {
			return err
		}
		if reversed {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyReversed, original.ID)
		}

		created, err = uc.verificationUC.CreateBatchInTx(ctx, tx, inputs)
		if err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStore, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CorrectionResult{Reversal: created[0]}
	if len(created) > 1 {
		result.Replacement = created[1]
	}

	return result, nil
}
