// Package sie renders and parses SIE type 4 files, the Swedish bookkeeping
// interchange format: tag-prefixed records, ISO 8859-1 bytes, CRLF line
// endings, quoted strings.
package sie

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one chart-of-accounts line (#KONTO).
type Account struct {
	Code string
	Name string
}

// Balance is one #IB/#UB/#RES record for year index 0 (the exported year).
type Balance struct {
	AccountCode string
	Amount      decimal.Decimal
}

// Trans is one #TRANS row. Amount is signed: debit positive, credit
// negative.
type Trans struct {
	AccountCode string
	Amount      decimal.Decimal
	Text        string
}

// Verification is one #VER block.
type Verification struct {
	Series string
	Number int64
	Date   time.Time
	Text   string
	Rows   []Trans
}

// Document is a full SIE type 4 export for one company and fiscal year.
type Document struct {
	ProgramName     string
	ProgramVersion  string
	GeneratedAt     time.Time
	CompanyName     string
	OrgNumber       string
	FiscalYearStart time.Time
	FiscalYearEnd   time.Time
	Accounts        []Account
	OpeningBalances []Balance
	ClosingBalances []Balance
	ResultBalances  []Balance
	Verifications   []Verification
}
