package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/domain/basplan"
)

// AccrualUseCase spreads a lump sum across fiscal periods (periodisering).
// Execution posts one clearing verification plus one verification per
// period, all through the verification service in a single batch.
type AccrualUseCase struct {
	verificationUC *VerificationUseCase
	accountRepo    AccountRepository
	idGen          IDGenerator
}

// NewAccrualUseCase creates a new AccrualUseCase.
func NewAccrualUseCase(verificationUC *VerificationUseCase, accountRepo AccountRepository, idGen IDGenerator) *AccrualUseCase {
	return &AccrualUseCase{
		verificationUC: verificationUC,
		accountRepo:    accountRepo,
		idGen:          idGen,
	}
}

// AccrualInput describes one accrual to preview or execute.
type AccrualInput struct {
	CompanyID          string
	Series             string
	TotalAmount        decimal.Decimal
	Description        string
	ExpenseAccount     string
	ExpenseAccountName string
	Type               domain.AccrualType
	StartPeriod        string
	EndPeriod          string
}

// AccrualPreview is the write-free breakdown of an accrual.
type AccrualPreview struct {
	PeriodCount   int
	MonthlyAmount decimal.Decimal
	Rows          []AccrualPreviewRow
}

// AccrualPreviewRow is one period's planned transfer.
type AccrualPreviewRow struct {
	Period      string
	Date        time.Time
	Amount      decimal.Decimal
	FromAccount string
	ToAccount   string
}

// AccrualResult reports the verifications an executed accrual produced.
type AccrualResult struct {
	VerificationIDs []string
	GroupID         string
	PeriodCount     int
	MonthlyAmount   decimal.Decimal
}

// Preview computes the period breakdown without writing anything.
func (uc *AccrualUseCase) Preview(ctx context.Context, input AccrualInput) (*AccrualPreview, error) {
	schedule, _, err := uc.buildSchedule(input)
	if err != nil {
		return nil, err
	}

	clearing := basplan.ClearingAccount(input.Type)

	preview := &AccrualPreview{
		PeriodCount:   schedule.PeriodCount,
		MonthlyAmount: schedule.MonthlyAmount,
		Rows:          make([]AccrualPreviewRow, 0, schedule.PeriodCount),
	}
	for i, period := range schedule.Periods {
		from, to := clearing, input.ExpenseAccount
		if input.Type == domain.AccrualAccruedRevenue {
			// Revenue is credited from the clearing side.
			from, to = input.ExpenseAccount, clearing
		}

		preview.Rows = append(preview.Rows, AccrualPreviewRow{
			Period:      period.String(),
			Date:        period.LastDay(),
			Amount:      schedule.Amounts[i],
			FromAccount: from,
			ToAccount:   to,
		})
	}

	return preview, nil
}

// Execute posts the accrual: the full amount into the clearing account, then
// one transfer per period. All verifications share a source group id and are
// written atomically; a failure anywhere rolls the whole accrual back.
func (uc *AccrualUseCase) Execute(ctx context.Context, input AccrualInput) (*AccrualResult, error) {
	schedule, start, err := uc.buildSchedule(input)
	if err != nil {
		return nil, err
	}

	if err := uc.ensureTargetAccount(ctx, input); err != nil {
		return nil, err
	}

	groupID := uc.idGen.Generate()
	source := &domain.Source{Type: domain.SourceAccrual, SourceID: groupID}
	clearing := basplan.ClearingAccount(input.Type)

	inputs := make([]CreateVerificationInput, 0, schedule.PeriodCount+1)

	// Initial verification: the full amount between the settlement account
	// and the clearing account.
	initialRows := accrualInitialRows(input.Type, clearing, input.TotalAmount)
	inputs = append(inputs, CreateVerificationInput{
		CompanyID:   input.CompanyID,
		Series:      input.Series,
		Date:        start.LastDay(),
		Description: fmt.Sprintf("%s (periodisering %s..%s)", input.Description, input.StartPeriod, input.EndPeriod),
		Rows:        initialRows,
		Source:      source,
	})

	// One verification per period moving that period's share out of the
	// clearing account.
	for i, period := range schedule.Periods {
		inputs = append(inputs, CreateVerificationInput{
			CompanyID:   input.CompanyID,
			Series:      input.Series,
			Date:        period.LastDay(),
			Description: fmt.Sprintf("%s (%s)", input.Description, period),
			Rows:        accrualPeriodRows(input.Type, clearing, input.ExpenseAccount, schedule.Amounts[i]),
			Source:      source,
		})
	}

	created, err := uc.verificationUC.CreateBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(created))
	for i, v := range created {
		ids[i] = v.ID
	}

	return &AccrualResult{
		VerificationIDs: ids,
		GroupID:         groupID,
		PeriodCount:     schedule.PeriodCount,
		MonthlyAmount:   schedule.MonthlyAmount,
	}, nil
}

func (uc *AccrualUseCase) buildSchedule(input AccrualInput) (*domain.AccrualSchedule, domain.Month, error) {
	switch input.Type {
	case domain.AccrualPrepaidExpense, domain.AccrualAccruedExpense, domain.AccrualAccruedRevenue:
	default:
		return nil, domain.Month{}, fmt.Errorf("%w: unknown accrual type %q", domain.ErrValidation, input.Type)
	}
	if !domain.ValidAccountCode(input.ExpenseAccount) {
		return nil, domain.Month{}, fmt.Errorf("%w: %q", domain.ErrUnknownAccount, input.ExpenseAccount)
	}

	start, err := domain.ParseMonth(input.StartPeriod)
	if err != nil {
		return nil, domain.Month{}, err
	}
	end, err := domain.ParseMonth(input.EndPeriod)
	if err != nil {
		return nil, domain.Month{}, err
	}

	schedule, err := domain.SpreadAmount(input.TotalAmount, start, end)
	if err != nil {
		return nil, domain.Month{}, err
	}

	return schedule, start, nil
}

// ensureTargetAccount registers the expense/revenue account as a company
// account when it is outside the standard plan and a name was supplied.
func (uc *AccrualUseCase) ensureTargetAccount(ctx context.Context, input AccrualInput) error {
	plan := basplan.ForYear(time.Now().UTC().Year())
	if plan.Contains(input.ExpenseAccount) {
		return nil
	}

	if _, err := uc.accountRepo.GetByCode(ctx, input.CompanyID, input.ExpenseAccount); err == nil {
		return nil
	}

	if input.ExpenseAccountName == "" {
		return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, input.ExpenseAccount)
	}

	return uc.accountRepo.Create(ctx, &domain.Account{
		CompanyID: input.CompanyID,
		Code:      input.ExpenseAccount,
		Name:      input.ExpenseAccountName,
		Category:  domain.CategoryForCode(input.ExpenseAccount),
		CreatedAt: time.Now().UTC(),
	})
}

// accrualInitialRows books the lump sum between the settlement account and
// the clearing account. Prepaid expenses are paid up front (clearing is
// debited); accrued expenses settle a liability; accrued revenue books the
// receipt against the accrued asset.
func accrualInitialRows(t domain.AccrualType, clearing string, total decimal.Decimal) []domain.Row {
	switch t {
	case domain.AccrualAccruedExpense:
		return []domain.Row{
			{AccountCode: clearing, Debit: total},
			{AccountCode: basplan.AccountBank, Credit: total},
		}
	case domain.AccrualAccruedRevenue:
		return []domain.Row{
			{AccountCode: basplan.AccountBank, Debit: total},
			{AccountCode: clearing, Credit: total},
		}
	default: // prepaid expense
		return []domain.Row{
			{AccountCode: clearing, Debit: total},
			{AccountCode: basplan.AccountBank, Credit: total},
		}
	}
}

// accrualPeriodRows moves one period's share from the clearing account into
// the expense or revenue account.
func accrualPeriodRows(t domain.AccrualType, clearing, target string, amount decimal.Decimal) []domain.Row {
	if t == domain.AccrualAccruedRevenue {
		return []domain.Row{
			{AccountCode: clearing, Debit: amount},
			{AccountCode: target, Credit: amount},
		}
	}

	return []domain.Row{
		{AccountCode: target, Debit: amount},
		{AccountCode: clearing, Credit: amount},
	}
}
