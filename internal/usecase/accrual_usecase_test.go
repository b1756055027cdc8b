package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
	"github.com/klarbok/klarbok/internal/usecase/mocks"
)

func newAccrualFixture() (*usecase.AccrualUseCase, *mocks.MockVerificationRepository, *mocks.MockAccountRepository) {
	verRepo := mocks.NewMockVerificationRepository()
	accountRepo := mocks.NewMockAccountRepository()

	verificationUC := usecase.NewVerificationUseCase(
		mocks.NewMockTransactionManager(),
		verRepo,
		mocks.NewMockSequenceRepository(),
		accountRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
	)

	uc := usecase.NewAccrualUseCase(verificationUC, accountRepo, mocks.NewMockIDGenerator())

	return uc, verRepo, accountRepo
}

func TestAccrualUseCase_PreviewTwelveEvenMonths(t *testing.T) {
	uc, _, _ := newAccrualFixture()

	preview, err := uc.Preview(context.Background(), usecase.AccrualInput{
		CompanyID:      "company-1",
		Series:         "A",
		TotalAmount:    decimal.NewFromInt(12000),
		Description:    "Försäkringspremie",
		ExpenseAccount: "5410",
		Type:           domain.AccrualPrepaidExpense,
		StartPeriod:    "2025-01",
		EndPeriod:      "2025-12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if preview.PeriodCount != 12 {
		t.Fatalf("expected 12 periods, got %d", preview.PeriodCount)
	}
	if !preview.MonthlyAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected monthly amount 1000, got %s", preview.MonthlyAmount)
	}
	for i, row := range preview.Rows {
		if !row.Amount.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("row %d: expected 1000.00, got %s", i, row.Amount)
		}
		if row.FromAccount != "1790" || row.ToAccount != "5410" {
			t.Errorf("row %d: expected transfer 1790 -> 5410, got %s -> %s", i, row.FromAccount, row.ToAccount)
		}
	}
	if got := preview.Rows[0].Period; got != "2025-01" {
		t.Errorf("first period = %s, want 2025-01", got)
	}
	if got := preview.Rows[11].Period; got != "2025-12" {
		t.Errorf("last period = %s, want 2025-12", got)
	}
}

func TestAccrualUseCase_PreviewRemainderOnLastPeriod(t *testing.T) {
	uc, _, _ := newAccrualFixture()

	preview, err := uc.Preview(context.Background(), usecase.AccrualInput{
		CompanyID:      "company-1",
		Series:         "A",
		TotalAmount:    decimal.NewFromInt(10000),
		Description:    "Licens",
		ExpenseAccount: "5410",
		Type:           domain.AccrualPrepaidExpense,
		StartPeriod:    "2025-01",
		EndPeriod:      "2025-03",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"3333.33", "3333.33", "3333.34"}
	if len(preview.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(preview.Rows))
	}

	sum := decimal.Zero
	for i, row := range preview.Rows {
		if row.Amount.StringFixed(2) != want[i] {
			t.Errorf("row %d: expected %s, got %s", i, want[i], row.Amount.StringFixed(2))
		}
		sum = sum.Add(row.Amount)
	}
	if !sum.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("periods must sum to the total: got %s", sum)
	}
}

func TestAccrualUseCase_PreviewRejectsReversedSpan(t *testing.T) {
	uc, _, _ := newAccrualFixture()

	_, err := uc.Preview(context.Background(), usecase.AccrualInput{
		CompanyID:      "company-1",
		Series:         "A",
		TotalAmount:    decimal.NewFromInt(1000),
		ExpenseAccount: "5410",
		Type:           domain.AccrualPrepaidExpense,
		StartPeriod:    "2025-06",
		EndPeriod:      "2025-03",
	})
	if !errors.Is(err, domain.ErrInvalidAccrualSpan) {
		t.Fatalf("expected invalid span error, got %v", err)
	}
}

func TestAccrualUseCase_ExecutePostsInitialAndPeriodVerifications(t *testing.T) {
	uc, verRepo, _ := newAccrualFixture()

	result, err := uc.Execute(context.Background(), usecase.AccrualInput{
		CompanyID:      "company-1",
		Series:         "A",
		TotalAmount:    decimal.NewFromInt(12000),
		Description:    "Försäkringspremie",
		ExpenseAccount: "5410",
		Type:           domain.AccrualPrepaidExpense,
		StartPeriod:    "2025-01",
		EndPeriod:      "2025-12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.VerificationIDs) != 13 {
		t.Fatalf("expected 13 verifications (initial + 12 periods), got %d", len(result.VerificationIDs))
	}

	all := verRepo.All()
	if len(all) != 13 {
		t.Fatalf("expected 13 stored verifications, got %d", len(all))
	}

	// Initial verification books the lump sum into the clearing account.
	initial := all[0]
	assertRow(t, initial.Rows[0], "1790", "12000", "0")
	assertRow(t, initial.Rows[1], "1930", "0", "12000")

	for _, v := range all {
		if v.Source == nil || v.Source.Type != domain.SourceAccrual || v.Source.SourceID != result.GroupID {
			t.Errorf("verification %s: expected accrual source with group %s", v.ID, result.GroupID)
		}
	}

	// Each period verification moves 1000 from the clearing account into the
	// expense account, dated the period's last day.
	for i, v := range all[1:] {
		assertRow(t, v.Rows[0], "5410", "1000", "0")
		assertRow(t, v.Rows[1], "1790", "0", "1000")
		if v.Date.Day() < 28 {
			t.Errorf("period %d: expected last day of month, got %s", i, v.Date)
		}
	}

	// The clearing account must drain to zero over the schedule.
	totals, err := verRepo.Totals(context.Background(), "company-1", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, total := range totals {
		if total.AccountCode == "1790" && !total.Balance().IsZero() {
			t.Errorf("clearing account balance = %s, want 0", total.Balance())
		}
	}
}

func TestAccrualUseCase_ExecuteCreatesMissingTargetAccount(t *testing.T) {
	uc, _, accountRepo := newAccrualFixture()
	ctx := context.Background()

	_, err := uc.Execute(ctx, usecase.AccrualInput{
		CompanyID:          "company-1",
		Series:             "A",
		TotalAmount:        decimal.NewFromInt(3000),
		Description:        "Programvara",
		ExpenseAccount:     "5420",
		ExpenseAccountName: "Programvaror",
		Type:               domain.AccrualPrepaidExpense,
		StartPeriod:        "2025-01",
		EndPeriod:          "2025-03",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, err := accountRepo.GetByCode(ctx, "company-1", "5420")
	if err != nil {
		t.Fatalf("expected account to be created: %v", err)
	}
	if account.Name != "Programvaror" {
		t.Errorf("account name = %q, want Programvaror", account.Name)
	}
	if account.Category != domain.CategoryExpense {
		t.Errorf("account category = %s, want expense", account.Category)
	}
}

func TestAccrualUseCase_ExecuteUnknownAccountWithoutName(t *testing.T) {
	uc, verRepo, _ := newAccrualFixture()

	_, err := uc.Execute(context.Background(), usecase.AccrualInput{
		CompanyID:      "company-1",
		Series:         "A",
		TotalAmount:    decimal.NewFromInt(3000),
		ExpenseAccount: "5420",
		Type:           domain.AccrualPrepaidExpense,
		StartPeriod:    "2025-01",
		EndPeriod:      "2025-03",
	})
	if !errors.Is(err, domain.ErrUnknownAccount) {
		t.Fatalf("expected unknown account error, got %v", err)
	}
	if len(verRepo.All()) != 0 {
		t.Error("failed accrual must not write to the ledger")
	}
}

func assertRow(t *testing.T, row domain.Row, account, debit, credit string) {
	t.Helper()
	if row.AccountCode != account {
		t.Errorf("account = %s, want %s", row.AccountCode, account)
	}
	if !row.Debit.Equal(decimal.RequireFromString(debit)) {
		t.Errorf("%s debit = %s, want %s", account, row.Debit, debit)
	}
	if !row.Credit.Equal(decimal.RequireFromString(credit)) {
		t.Errorf("%s credit = %s, want %s", account, row.Credit, credit)
	}
}
