package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SourceType tags the origin of an automated posting.
type SourceType string

const (
	SourceTransaction SourceType = "transaction"
	SourceInvoice     SourceType = "invoice"
	SourceAccrual     SourceType = "accrual"
	SourceClosing     SourceType = "closing"
	SourceCorrection  SourceType = "correction"
	SourceManual      SourceType = "manual"
)

// Source records the provenance of a verification. SourceID carries the id
// of the originating record: the bank transaction, the invoice, the accrual
// group, or the corrected verification, depending on Type.
type Source struct {
	Type     SourceType
	SourceID string
}

// Row is a single debit or credit line within a verification. Exactly one of
// Debit and Credit is nonzero.
type Row struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Validate checks the row invariant: nonnegative amounts, exactly one side set.
func (r *Row) Validate() error {
	if r.Debit.IsNegative() || r.Credit.IsNegative() {
		return fmt.Errorf("%w: account %s", ErrNegativeRowAmount, r.AccountCode)
	}

	debitSet := !r.Debit.IsZero()
	creditSet := !r.Credit.IsZero()
	if debitSet == creditSet {
		return fmt.Errorf("%w: account %s", ErrRowAmountConflict, r.AccountCode)
	}

	return nil
}

// Reversed returns the row with debit and credit swapped.
func (r Row) Reversed() Row {
	return Row{
		AccountCode: r.AccountCode,
		Debit:       r.Credit,
		Credit:      r.Debit,
		Description: r.Description,
	}
}

// Verification is a balanced journal entry. Once persisted it is never
// mutated or deleted; corrections reference it through new verifications.
type Verification struct {
	ID          string
	CompanyID   string
	Series      string
	Number      int64
	FiscalYear  int
	Date        time.Time
	Description string
	Rows        []Row
	Source      *Source
	CreatedAt   time.Time
}

// ValidateRows enforces the verification invariants: rows non-empty, every
// row well-formed, and sum(debit) == sum(credit) to the cent after rounding
// each amount to two decimals.
func ValidateRows(rows []Row) error {
	if len(rows) == 0 {
		return ErrEmptyRows
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		debits = debits.Add(rows[i].Debit.Round(2))
		credits = credits.Add(rows[i].Credit.Round(2))
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debit %s, credit %s", ErrUnbalancedRows, debits, credits)
	}

	return nil
}

// Totals returns the verification's summed debit and credit sides.
func (v *Verification) Totals() (debit, credit decimal.Decimal) {
	debit = decimal.Zero
	credit = decimal.Zero
	for _, r := range v.Rows {
		debit = debit.Add(r.Debit)
		credit = credit.Add(r.Credit)
	}

	return debit, credit
}

// FiscalYearOf returns the fiscal year a posting date belongs to. Fiscal
// years follow the calendar year.
func FiscalYearOf(date time.Time) int {
	return date.Year()
}
