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

type taxFieldFixture struct {
	uc         *usecase.TaxFieldUseCase
	verUC      *usecase.VerificationUseCase
	verRepo    *mocks.MockVerificationRepository
	reportRepo *mocks.MockReportRepository
	periodRepo *mocks.MockPeriodRepository
}

func newTaxFieldFixture() *taxFieldFixture {
	verRepo := mocks.NewMockVerificationRepository()
	reportRepo := mocks.NewMockReportRepository()
	periodRepo := mocks.NewMockPeriodRepository()
	txMgr := mocks.NewMockTransactionManager()

	verUC := usecase.NewVerificationUseCase(
		txMgr,
		verRepo,
		mocks.NewMockSequenceRepository(),
		mocks.NewMockAccountRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
	)

	return &taxFieldFixture{
		uc:         usecase.NewTaxFieldUseCase(txMgr, verRepo, reportRepo, periodRepo, mocks.NewMockIDGenerator()),
		verUC:      verUC,
		verRepo:    verRepo,
		reportRepo: reportRepo,
		periodRepo: periodRepo,
	}
}

func (f *taxFieldFixture) post(t *testing.T, date time.Time, rows []domain.Row) {
	t.Helper()
	_, err := f.verUC.CreateVerification(context.Background(), usecase.CreateVerificationInput{
		CompanyID: "company-1",
		Series:    "A",
		Date:      date,
		Rows:      rows,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaxFieldUseCase_ComputeFields(t *testing.T) {
	f := newTaxFieldFixture()
	ctx := context.Background()

	// Two sales and one cost during 2024.
	f.post(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), []domain.Row{
		{AccountCode: "1930", Debit: decimal.NewFromInt(100000)},
		{AccountCode: "3001", Credit: decimal.NewFromInt(100000)},
	})
	f.post(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), []domain.Row{
		{AccountCode: "1930", Debit: decimal.NewFromInt(50000)},
		{AccountCode: "3001", Credit: decimal.NewFromInt(50000)},
	})
	f.post(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), []domain.Row{
		{AccountCode: "5010", Debit: decimal.NewFromInt(60000)},
		{AccountCode: "1930", Credit: decimal.NewFromInt(60000)},
	})

	result, err := f.uc.ComputeFields(ctx, "company-1", 2024, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MappingVersion != "INK2-2024P4" {
		t.Errorf("mapping version = %s, want INK2-2024P4", result.MappingVersion)
	}

	// Revenue fields are stated from the credit perspective.
	if got := result.Fields["7410"]; !got.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("net revenue field = %s, want 150000", got)
	}
	if got := result.Fields["7513"]; !got.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("external costs field = %s, want 60000", got)
	}
	if got := result.Fields["7281"]; !got.Equal(decimal.NewFromInt(90000)) {
		t.Errorf("bank balance field = %s, want 90000", got)
	}
	if got := result.Fields["7450"]; !got.Equal(decimal.NewFromInt(90000)) {
		t.Errorf("net result field = %s, want 90000", got)
	}
	if len(result.Unmapped) != 0 {
		t.Errorf("expected no unmapped accounts, got %v", result.Unmapped)
	}
}

func TestTaxFieldUseCase_ComputeFieldsDeterministic(t *testing.T) {
	f := newTaxFieldFixture()
	ctx := context.Background()

	f.post(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), []domain.Row{
		{AccountCode: "1930", Debit: decimal.NewFromInt(12345)},
		{AccountCode: "3001", Credit: decimal.NewFromInt(12345)},
	})

	first, err := f.uc.ComputeFields(ctx, "company-1", 2024, "INK2-2024P4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.uc.ComputeFields(ctx, "company-1", 2024, "INK2-2024P4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Order) != len(second.Order) {
		t.Fatal("field order must be stable")
	}
	for i, code := range first.Order {
		if second.Order[i] != code {
			t.Fatalf("field order differs at %d: %s vs %s", i, code, second.Order[i])
		}
		if !first.Fields[code].Equal(second.Fields[code]) {
			t.Errorf("field %s differs: %s vs %s", code, first.Fields[code], second.Fields[code])
		}
	}
}

func TestTaxFieldUseCase_BalanceFieldsReadCumulatively(t *testing.T) {
	f := newTaxFieldFixture()
	ctx := context.Background()

	// Money arrives in 2023, nothing happens in 2024. The balance-sheet
	// field still sees it; the income-statement field does not.
	f.post(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), []domain.Row{
		{AccountCode: "1930", Debit: decimal.NewFromInt(40000)},
		{AccountCode: "3001", Credit: decimal.NewFromInt(40000)},
	})

	result, err := f.uc.ComputeFields(ctx, "company-1", 2024, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := result.Fields["7281"]; !got.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("bank balance field = %s, want 40000", got)
	}
	if got := result.Fields["7410"]; !got.IsZero() {
		t.Errorf("revenue field = %s, want 0", got)
	}
}

func TestTaxFieldUseCase_UnmappedAccountsFlagged(t *testing.T) {
	f := newTaxFieldFixture()
	ctx := context.Background()

	// 1630 (tax account) has activity but no INK2 rule reads it.
	f.post(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), []domain.Row{
		{AccountCode: "1630", Debit: decimal.NewFromInt(5000)},
		{AccountCode: "1930", Credit: decimal.NewFromInt(5000)},
	})

	result, err := f.uc.ComputeFields(ctx, "company-1", 2024, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Unmapped) != 1 || result.Unmapped[0] != "1630" {
		t.Errorf("unmapped = %v, want [1630]", result.Unmapped)
	}
}

func TestTaxFieldUseCase_UnknownMappingVersion(t *testing.T) {
	f := newTaxFieldFixture()

	_, err := f.uc.ComputeFields(context.Background(), "company-1", 2024, "INK2-1999P1")
	if !errors.Is(err, domain.ErrUnknownMapping) {
		t.Fatalf("expected unknown mapping error, got %v", err)
	}
}

func TestTaxFieldUseCase_SubmitReport(t *testing.T) {
	f := newTaxFieldFixture()
	ctx := context.Background()

	f.post(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), []domain.Row{
		{AccountCode: "1930", Debit: decimal.NewFromInt(1000)},
		{AccountCode: "3001", Credit: decimal.NewFromInt(1000)},
	})

	report, err := f.uc.CreateDraftReport(ctx, "company-1", 2024, domain.ReportIncomeDeclaration, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != domain.ReportDraft {
		t.Fatalf("new report status = %s, want draft", report.Status)
	}

	submitted, err := f.uc.SubmitReport(ctx, "company-1", report.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if submitted.Status != domain.ReportSubmitted {
		t.Errorf("report status = %s, want submitted", submitted.Status)
	}

	period, err := f.periodRepo.Get(ctx, "company-1", 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period.Status != domain.PeriodSubmitted {
		t.Errorf("period status = %s, want submitted", period.Status)
	}

	// Submitting twice is a conflict.
	_, err = f.uc.SubmitReport(ctx, "company-1", report.ID)
	if !errors.Is(err, domain.ErrReportSubmitted) {
		t.Fatalf("expected report submitted error, got %v", err)
	}
}
