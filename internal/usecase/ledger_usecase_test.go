package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
	"github.com/klarbok/klarbok/internal/usecase/gomocks"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	verRepo := gomocks.NewMockVerificationRepository(ctrl)
	verRepo.EXPECT().Totals(gomock.Any(), "company-1", nil, nil).Return([]usecase.AccountTotal{
		{AccountCode: "1930", Debit: decimal.NewFromInt(1000), Credit: decimal.NewFromInt(400)},
		{AccountCode: "3001", Debit: decimal.Zero, Credit: decimal.NewFromInt(1000)},
		{AccountCode: "5010", Debit: decimal.NewFromInt(400), Credit: decimal.Zero},
	}, nil)

	uc := usecase.NewLedgerUseCase(verRepo, gomocks.NewMockAccountRepository(ctrl))

	result, err := uc.CheckConsistency(context.Background(), "company-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Consistent {
		t.Error("expected a consistent ledger")
	}
	if !result.TotalDebit.Equal(decimal.NewFromInt(1400)) {
		t.Errorf("total debit = %s, want 1400", result.TotalDebit)
	}
	if !result.TotalDebit.Equal(result.TotalCredit) {
		t.Errorf("debit %s != credit %s", result.TotalDebit, result.TotalCredit)
	}
}

func TestLedgerUseCase_CheckConsistencyDetectsImbalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	verRepo := gomocks.NewMockVerificationRepository(ctrl)
	verRepo.EXPECT().Totals(gomock.Any(), "company-1", nil, nil).Return([]usecase.AccountTotal{
		{AccountCode: "1930", Debit: decimal.NewFromInt(1000), Credit: decimal.Zero},
		{AccountCode: "3001", Debit: decimal.Zero, Credit: decimal.NewFromInt(900)},
	}, nil)

	uc := usecase.NewLedgerUseCase(verRepo, gomocks.NewMockAccountRepository(ctrl))

	result, err := uc.CheckConsistency(context.Background(), "company-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Consistent {
		t.Error("a skewed ledger must not report consistent")
	}
}

func TestLedgerUseCase_TrialBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dayBefore := domain.YearStart(2024).AddDate(0, 0, -1)
	yearStart := domain.YearStart(2024)
	yearEnd := domain.YearEnd(2024)

	verRepo := gomocks.NewMockVerificationRepository(ctrl)
	// Opening: everything booked before 2024.
	verRepo.EXPECT().Totals(gomock.Any(), "company-1", nil, &dayBefore).Return([]usecase.AccountTotal{
		{AccountCode: "1930", Debit: decimal.NewFromInt(5000), Credit: decimal.Zero},
		{AccountCode: "3001", Debit: decimal.Zero, Credit: decimal.NewFromInt(5000)},
	}, nil)
	// Movement inside 2024.
	verRepo.EXPECT().Totals(gomock.Any(), "company-1", &yearStart, &yearEnd).Return([]usecase.AccountTotal{
		{AccountCode: "5010", Debit: decimal.NewFromInt(1200), Credit: decimal.Zero},
		{AccountCode: "1930", Debit: decimal.Zero, Credit: decimal.NewFromInt(1200)},
	}, nil)

	uc := usecase.NewLedgerUseCase(verRepo, gomocks.NewMockAccountRepository(ctrl))

	rows, err := uc.TrialBalance(context.Background(), "company-1", 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byCode := make(map[string]usecase.TrialBalanceRow)
	for _, r := range rows {
		byCode[r.AccountCode] = r
	}

	bank := byCode["1930"]
	if !bank.Opening.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("bank opening = %s, want 5000", bank.Opening)
	}
	if !bank.Credit.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("bank year credit = %s, want 1200", bank.Credit)
	}
	if !bank.Closing.Equal(decimal.NewFromInt(3800)) {
		t.Errorf("bank closing = %s, want 3800", bank.Closing)
	}

	rent := byCode["5010"]
	if !rent.Opening.IsZero() {
		t.Errorf("rent opening = %s, want 0", rent.Opening)
	}
	if !rent.Closing.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("rent closing = %s, want 1200", rent.Closing)
	}

	// Rows come back ordered by account code.
	for i := 1; i < len(rows); i++ {
		if rows[i-1].AccountCode >= rows[i].AccountCode {
			t.Fatalf("rows out of order: %s before %s", rows[i-1].AccountCode, rows[i].AccountCode)
		}
	}
}

func TestLedgerUseCase_AccountBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	end2024 := domain.YearEnd(2024)
	end2023 := domain.YearEnd(2023)

	verRepo := gomocks.NewMockVerificationRepository(ctrl)
	verRepo.EXPECT().Totals(gomock.Any(), "company-1", nil, &end2024).Return([]usecase.AccountTotal{
		{AccountCode: "1930", Debit: decimal.NewFromInt(5000), Credit: decimal.NewFromInt(1200)},
		{AccountCode: "5010", Debit: decimal.NewFromInt(1200), Credit: decimal.Zero},
	}, nil).Times(2)
	verRepo.EXPECT().Totals(gomock.Any(), "company-1", nil, &end2023).Return([]usecase.AccountTotal{
		{AccountCode: "1930", Debit: decimal.NewFromInt(5000), Credit: decimal.Zero},
	}, nil)

	uc := usecase.NewLedgerUseCase(verRepo, gomocks.NewMockAccountRepository(ctrl))
	ctx := context.Background()

	balance, err := uc.AccountBalance(ctx, "company-1", "1930", 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(3800)) {
		t.Errorf("balance = %s, want 3800", balance)
	}

	// The 2023 view ignores the 2024 movement.
	balance, err = uc.AccountBalance(ctx, "company-1", "1930", 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("balance = %s, want 5000", balance)
	}

	// Accounts without activity read zero.
	balance, err = uc.AccountBalance(ctx, "company-1", "2440", 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("balance = %s, want 0", balance)
	}
}
