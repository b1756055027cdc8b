package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/domain/basplan"
)

// ClosingUseCase computes and posts year-end entries (bokslut): tax on the
// result for limited companies, then the transfer of the net result into
// equity. Executing also closes the fiscal period, atomically with the
// postings.
type ClosingUseCase struct {
	txManager      TransactionManager
	verificationUC *VerificationUseCase
	verRepo        VerificationRepository
	periodRepo     PeriodRepository
	retrier        Retrier
}

// NewClosingUseCase creates a new ClosingUseCase.
func NewClosingUseCase(
	txManager TransactionManager,
	verificationUC *VerificationUseCase,
	verRepo VerificationRepository,
	periodRepo PeriodRepository,
	retrier Retrier,
) *ClosingUseCase {
	return &ClosingUseCase{
		txManager:      txManager,
		verificationUC: verificationUC,
		verRepo:        verRepo,
		periodRepo:     periodRepo,
		retrier:        retrier,
	}
}

// ClosingPreview is the write-free view of the year-end entries.
type ClosingPreview struct {
	Year         int
	NetResult    decimal.Decimal
	Tax          decimal.Decimal
	ProposedRows []domain.Row
}

// ClosingResult reports an executed closing.
type ClosingResult struct {
	VerificationIDs []string
	NetResult       decimal.Decimal
	Tax             decimal.Decimal
}

// Preview computes the net result and proposed closing rows for a year.
func (uc *ClosingUseCase) Preview(ctx context.Context, companyID string, year int, companyType domain.CompanyType) (*ClosingPreview, error) {
	if err := uc.checkOpen(ctx, companyID, year); err != nil {
		return nil, err
	}

	net, err := uc.netResult(ctx, companyID, year)
	if err != nil {
		return nil, err
	}

	tax, entries := closingEntries(year, companyType, net)

	var rows []domain.Row
	for _, e := range entries {
		rows = append(rows, e.rows...)
	}

	return &ClosingPreview{Year: year, NetResult: net, Tax: tax, ProposedRows: rows}, nil
}

// Execute posts the closing entries and marks the fiscal period closed in
// the same transaction. A second call for the same year fails with a
// conflict and posts nothing.
func (uc *ClosingUseCase) Execute(ctx context.Context, companyID string, year int, companyType domain.CompanyType) (*ClosingResult, error) {
	net, err := uc.netResult(ctx, companyID, year)
	if err != nil {
		return nil, err
	}

	tax, entries := closingEntries(year, companyType, net)

	inputs := make([]CreateVerificationInput, 0, len(entries))
	for _, e := range entries {
		inputs = append(inputs, CreateVerificationInput{
			CompanyID:   companyID,
			Series:      "B",
			Date:        domain.YearEnd(year),
			Description: e.description,
			Rows:        e.rows,
			Source:      &domain.Source{Type: domain.SourceClosing, SourceID: fmt.Sprintf("bokslut-%d", year)},
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

		// Lock the period row first: the closed check and the status flip
		// must be atomic with the postings.
		period, err := uc.periodRepo.GetForUpdate(ctx, tx, companyID, year)
		if err != nil {
			return err
		}
		if period.Status == domain.PeriodClosed {
			return fmt.Errorf("%w: %d", domain.ErrPeriodClosed, year)
		}

		now := time.Now().UTC()
		if err := period.Transition(domain.PeriodClosed, now); err != nil {
			return err
		}

		// A zero-result year has no entries to post; the period still closes.
		if len(inputs) > 0 {
			created, err = uc.verificationUC.CreateBatchInTx(ctx, tx, inputs)
			if err != nil {
				return err
			}
		}

		if err := uc.periodRepo.SetStatus(ctx, tx, companyID, year, domain.PeriodClosed, now); err != nil {
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

	ids := make([]string, len(created))
	for i, v := range created {
		ids[i] = v.ID
	}

	return &ClosingResult{VerificationIDs: ids, NetResult: net, Tax: tax}, nil
}

func (uc *ClosingUseCase) checkOpen(ctx context.Context, companyID string, year int) error {
	period, err := uc.periodRepo.Get(ctx, companyID, year)
	if err != nil {
		// No period row yet means the year has never been touched: open.
		return nil
	}
	if period.Status == domain.PeriodClosed {
		return fmt.Errorf("%w: %d", domain.ErrPeriodClosed, year)
	}

	return nil
}

// netResult is the pre-tax result for the year: the credit surplus over all
// income and expense accounts.
func (uc *ClosingUseCase) netResult(ctx context.Context, companyID string, year int) (decimal.Decimal, error) {
	from := domain.YearStart(year)
	to := domain.YearEnd(year)

	totals, err := uc.verRepo.Totals(ctx, companyID, &from, &to)
	if err != nil {
		return decimal.Zero, err
	}

	net := decimal.Zero
	for _, t := range totals {
		category := domain.CategoryForCode(t.AccountCode)
		if category != domain.CategoryIncome && category != domain.CategoryExpense {
			continue
		}
		// Credit-normal perspective: revenue adds, costs subtract.
		net = net.Add(t.Credit.Sub(t.Debit))
	}

	return net, nil
}

// closingEntry is one proposed year-end verification: its rows and the
// description it will be posted under.
type closingEntry struct {
	description string
	rows        []domain.Row
}

// closingEntries builds the year-end entries. For an AB with a profit the
// first entry books corporate tax, the second moves the after-tax result
// into retained earnings. An EF moves the whole result into owner capital.
// Whole-krona tax: öretal on the computed tax fall away.
func closingEntries(year int, companyType domain.CompanyType, net decimal.Decimal) (decimal.Decimal, []closingEntry) {
	tax := decimal.Zero
	var entries []closingEntry

	equity := basplan.AccountResultCarried
	if companyType == domain.CompanyEF {
		equity = basplan.AccountOwnerCapital
	}

	if companyType == domain.CompanyAB && net.IsPositive() {
		rate := basplan.ParamsForYear(year).CorporateTaxRate
		tax = net.Mul(rate).RoundDown(0)

		entries = append(entries, closingEntry{
			description: fmt.Sprintf("Bokslut %d: skatt på årets resultat", year),
			rows: []domain.Row{
				{AccountCode: basplan.AccountTaxOnResult, Debit: tax, Description: "Skatt på årets resultat"},
				{AccountCode: basplan.AccountTaxLiability, Credit: tax, Description: "Skatteskuld"},
			},
		})
	}

	disposition := fmt.Sprintf("Bokslut %d: resultatdisposition", year)
	remainder := net.Sub(tax)
	switch {
	case remainder.IsPositive():
		entries = append(entries, closingEntry{
			description: disposition,
			rows: []domain.Row{
				{AccountCode: basplan.AccountResultOfYear, Debit: remainder, Description: "Årets resultat"},
				{AccountCode: equity, Credit: remainder, Description: "Årets resultat"},
			},
		})
	case remainder.IsNegative():
		loss := remainder.Abs()
		entries = append(entries, closingEntry{
			description: disposition,
			rows: []domain.Row{
				{AccountCode: equity, Debit: loss, Description: "Årets förlust"},
				{AccountCode: basplan.AccountResultOfYear, Credit: loss, Description: "Årets förlust"},
			},
		})
	}

	return tax, entries
}
