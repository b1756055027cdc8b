package domain

import "errors"

// The four error classes callers above this core see. Every engine failure
// wraps exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStore      = errors.New("ledger store failure")
)

var (
	// Verification errors
	ErrEmptyRows            = errors.New("verification has no rows")
	ErrUnbalancedRows       = errors.New("debits and credits do not balance")
	ErrRowAmountConflict    = errors.New("row must have exactly one of debit or credit set")
	ErrNegativeRowAmount    = errors.New("row amounts must not be negative")
	ErrUnknownAccount       = errors.New("unknown account code")
	ErrVerificationNotFound = errors.New("verification not found")

	// Fiscal period errors
	ErrPeriodClosed     = errors.New("fiscal year is already closed")
	ErrPeriodTransition = errors.New("fiscal period transition not allowed")
	ErrPeriodNotFound   = errors.New("fiscal period not found")

	// Correction errors
	ErrAlreadyReversed = errors.New("verification has already been reversed")

	// Accrual errors
	ErrInvalidAccrualSpan = errors.New("accrual period span is invalid")
	ErrInvalidAmount      = errors.New("amount must be positive")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Report errors
	ErrReportNotFound  = errors.New("tax report not found")
	ErrReportSubmitted = errors.New("tax report is already submitted")
	ErrUnknownMapping  = errors.New("unknown field mapping version")
)

// Class maps a specific error onto one of the four public classes so the
// transport layer never has to know every sentinel.
func Class(err error) error {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrEmptyRows),
		errors.Is(err, ErrUnbalancedRows),
		errors.Is(err, ErrRowAmountConflict),
		errors.Is(err, ErrNegativeRowAmount),
		errors.Is(err, ErrUnknownAccount),
		errors.Is(err, ErrInvalidAccrualSpan),
		errors.Is(err, ErrUnknownMapping),
		errors.Is(err, ErrInvalidAmount):
		return ErrValidation
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrVerificationNotFound),
		errors.Is(err, ErrPeriodNotFound),
		errors.Is(err, ErrReportNotFound),
		errors.Is(err, ErrAccountNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrPeriodClosed),
		errors.Is(err, ErrPeriodTransition),
		errors.Is(err, ErrReportSubmitted),
		errors.Is(err, ErrAlreadyReversed):
		return ErrConflict
	default:
		return ErrStore
	}
}
