package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
)

// LedgerUseCase answers read-only questions about ledger state: consistency,
// account balances and the trial balance backing the exports.
type LedgerUseCase struct {
	verRepo     VerificationRepository
	accountRepo AccountRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(verRepo VerificationRepository, accountRepo AccountRepository) *LedgerUseCase {
	return &LedgerUseCase{verRepo: verRepo, accountRepo: accountRepo}
}

// ConsistencyResult reports whether total debits equal total credits across
// every verification row ever posted.
type ConsistencyResult struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Consistent  bool
	CheckedAt   time.Time
}

// CheckConsistency verifies the double-entry invariant over the whole ledger.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context, companyID string) (*ConsistencyResult, error) {
	totals, err := uc.verRepo.Totals(ctx, companyID, nil, nil)
	if err != nil {
		return nil, err
	}

	debit := decimal.Zero
	credit := decimal.Zero
	for _, t := range totals {
		debit = debit.Add(t.Debit)
		credit = credit.Add(t.Credit)
	}

	return &ConsistencyResult{
		TotalDebit:  debit,
		TotalCredit: credit,
		Consistent:  debit.Equal(credit),
		CheckedAt:   time.Now().UTC(),
	}, nil
}

// TrialBalanceRow is one account's movement over a fiscal year.
type TrialBalanceRow struct {
	AccountCode string
	Opening     decimal.Decimal
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Closing     decimal.Decimal
}

// TrialBalance computes per-account opening balance, year movement and
// closing balance for a fiscal year, ordered by account code. Opening
// balances are folds over all rows before the year; result accounts start
// each year at zero only once the prior closing has been posted, which is a
// property of the ledger, not of this query.
func (uc *LedgerUseCase) TrialBalance(ctx context.Context, companyID string, year int) ([]TrialBalanceRow, error) {
	yearStart := domain.YearStart(year)
	yearEnd := domain.YearEnd(year)
	dayBefore := yearStart.AddDate(0, 0, -1)

	opening, err := uc.verRepo.Totals(ctx, companyID, nil, &dayBefore)
	if err != nil {
		return nil, err
	}
	movement, err := uc.verRepo.Totals(ctx, companyID, &yearStart, &yearEnd)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*TrialBalanceRow)
	get := func(code string) *TrialBalanceRow {
		if r, ok := rows[code]; ok {
			return r
		}
		r := &TrialBalanceRow{
			AccountCode: code,
			Opening:     decimal.Zero,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		rows[code] = r
		return r
	}

	for _, t := range opening {
		get(t.AccountCode).Opening = t.Balance()
	}
	for _, t := range movement {
		r := get(t.AccountCode)
		r.Debit = t.Debit
		r.Credit = t.Credit
	}

	out := make([]TrialBalanceRow, 0, len(rows))
	for _, r := range rows {
		r.Closing = r.Opening.Add(r.Debit).Sub(r.Credit)
		out = append(out, *r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AccountCode < out[j].AccountCode })

	return out, nil
}

// AccountBalance returns the signed balance of one account at the end of a
// fiscal year, folded over the full history.
func (uc *LedgerUseCase) AccountBalance(ctx context.Context, companyID, code string, year int) (decimal.Decimal, error) {
	yearEnd := domain.YearEnd(year)

	totals, err := uc.verRepo.Totals(ctx, companyID, nil, &yearEnd)
	if err != nil {
		return decimal.Zero, err
	}

	for _, t := range totals {
		if t.AccountCode == code {
			return t.Balance(), nil
		}
	}

	return decimal.Zero, nil
}
