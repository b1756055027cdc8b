package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
	"github.com/klarbok/klarbok/internal/usecase/mocks"
)

type correctionFixture struct {
	uc      *usecase.CorrectionUseCase
	verUC   *usecase.VerificationUseCase
	verRepo *mocks.MockVerificationRepository
	txMgr   *mocks.MockTransactionManager
}

func newCorrectionFixture() *correctionFixture {
	verRepo := mocks.NewMockVerificationRepository()
	txMgr := mocks.NewMockTransactionManager()
	retrier := mocks.NewMockRetrier()

	verUC := usecase.NewVerificationUseCase(
		txMgr,
		verRepo,
		mocks.NewMockSequenceRepository(),
		mocks.NewMockAccountRepository(),
		mocks.NewMockIDGenerator(),
		retrier,
	)

	return &correctionFixture{
		uc:      usecase.NewCorrectionUseCase(txMgr, verUC, verRepo, retrier),
		verUC:   verUC,
		verRepo: verRepo,
		txMgr:   txMgr,
	}
}

func (f *correctionFixture) postOriginal(t *testing.T) *domain.Verification {
	t.Helper()

	v, err := f.verUC.CreateVerification(context.Background(), usecase.CreateVerificationInput{
		CompanyID:   "company-1",
		Series:      "A",
		Date:        time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Description: "Mobilabonnemang",
		Rows: []domain.Row{
			{AccountCode: "6212", Debit: decimal.NewFromInt(890)},
			{AccountCode: "1930", Credit: decimal.NewFromInt(890)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return v
}

func TestCorrectionUseCase_ReversalSwapsSides(t *testing.T) {
	f := newCorrectionFixture()
	ctx := context.Background()

	original := f.postOriginal(t)
	originalRows := append([]domain.Row(nil), original.Rows...)

	result, err := f.uc.Execute(ctx, usecase.CorrectionInput{
		CompanyID:      "company-1",
		VerificationID: original.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Replacement != nil {
		t.Error("no corrected rows given, expected no replacement")
	}

	reversal := result.Reversal
	assertRow(t, reversal.Rows[0], "6212", "0", "890")
	assertRow(t, reversal.Rows[1], "1930", "890", "0")
	if reversal.Source == nil || reversal.Source.Type != domain.SourceCorrection || reversal.Source.SourceID != original.ID {
		t.Error("reversal must reference the original through its source")
	}
	if reversal.Description != "Rättelse av A1" {
		t.Errorf("description = %q, want Rättelse av A1", reversal.Description)
	}

	// The original is untouched.
	stored, err := f.verRepo.GetByID(ctx, "company-1", original.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range stored.Rows {
		if !r.Debit.Equal(originalRows[i].Debit) || !r.Credit.Equal(originalRows[i].Credit) {
			t.Errorf("original row %d changed: %+v", i, r)
		}
	}
}

func TestCorrectionUseCase_ReplacementPostedWithReversal(t *testing.T) {
	f := newCorrectionFixture()
	ctx := context.Background()

	original := f.postOriginal(t)

	result, err := f.uc.Execute(ctx, usecase.CorrectionInput{
		CompanyID:      "company-1",
		VerificationID: original.ID,
		CorrectedRows: []domain.Row{
			{AccountCode: "6570", Debit: decimal.NewFromInt(890)},
			{AccountCode: "1930", Credit: decimal.NewFromInt(890)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Replacement == nil {
		t.Fatal("expected a replacement verification")
	}
	assertRow(t, result.Replacement.Rows[0], "6570", "890", "0")
	if result.Replacement.Source == nil || result.Replacement.Source.SourceID != original.ID {
		t.Error("replacement must reference the original")
	}

	// History is original + reversal + replacement; ledger still balances.
	totals, err := f.verRepo.Totals(ctx, "company-1", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	debit, credit := decimal.Zero, decimal.Zero
	for _, total := range totals {
		debit = debit.Add(total.Debit)
		credit = credit.Add(total.Credit)
	}
	if !debit.Equal(credit) {
		t.Errorf("ledger out of balance after correction: %s vs %s", debit, credit)
	}
}

func TestCorrectionUseCase_SecondReversalConflicts(t *testing.T) {
	f := newCorrectionFixture()
	ctx := context.Background()

	original := f.postOriginal(t)

	if _, err := f.uc.Execute(ctx, usecase.CorrectionInput{CompanyID: "company-1", VerificationID: original.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	posted := len(f.verRepo.All())

	_, err := f.uc.Execute(ctx, usecase.CorrectionInput{CompanyID: "company-1", VerificationID: original.ID})
	if !errors.Is(err, domain.ErrAlreadyReversed) {
		t.Fatalf("expected already reversed error, got %v", err)
	}
	if len(f.verRepo.All()) != posted {
		t.Error("failed correction must not post anything")
	}
}

func TestCorrectionUseCase_ReversalCheckRunsInsidePostingTx(t *testing.T) {
	f := newCorrectionFixture()
	ctx := context.Background()

	original := f.postOriginal(t)
	posted := len(f.verRepo.All())

	// Simulate a racing correction: the row lock resolves and the check
	// reports a reversal that committed after this call began.
	var began bool
	var checkedTx usecase.Transaction
	f.txMgr.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		began = true
		return &mocks.MockTransaction{}, nil
	}
	f.verRepo.HasReversalFunc = func(ctx context.Context, tx usecase.Transaction, companyID, originalID string) (bool, error) {
		if !began {
			t.Error("duplicate check ran before the posting transaction began")
		}
		checkedTx = tx
		return true, nil
	}

	_, err := f.uc.Execute(ctx, usecase.CorrectionInput{CompanyID: "company-1", VerificationID: original.ID})
	if !errors.Is(err, domain.ErrAlreadyReversed) {
		t.Fatalf("expected already reversed error, got %v", err)
	}
	if checkedTx == nil {
		t.Error("duplicate check must receive the posting transaction")
	}
	if len(f.verRepo.All()) != posted {
		t.Error("losing correction must not post anything")
	}
}

func TestCorrectionUseCase_UnknownVerification(t *testing.T) {
	f := newCorrectionFixture()

	_, err := f.uc.Execute(context.Background(), usecase.CorrectionInput{
		CompanyID:      "company-1",
		VerificationID: "missing",
	})
	if !errors.Is(err, domain.ErrVerificationNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCorrectionUseCase_UnbalancedReplacementRejected(t *testing.T) {
	f := newCorrectionFixture()
	ctx := context.Background()

	original := f.postOriginal(t)
	posted := len(f.verRepo.All())

	_, err := f.uc.Execute(ctx, usecase.CorrectionInput{
		CompanyID:      "company-1",
		VerificationID: original.ID,
		CorrectedRows: []domain.Row{
			{AccountCode: "6570", Debit: decimal.NewFromInt(890)},
			{AccountCode: "1930", Credit: decimal.NewFromInt(800)},
		},
	})
	if !errors.Is(err, domain.ErrUnbalancedRows) {
		t.Fatalf("expected unbalanced error, got %v", err)
	}
	// The reversal must not land without its replacement.
	if len(f.verRepo.All()) != posted {
		t.Error("failed correction must not post anything")
	}
}
