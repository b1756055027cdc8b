package domain

import "time"

// AccountCategory classifies an account within the BAS chart of accounts.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "asset"
	CategoryLiability AccountCategory = "liability"
	CategoryEquity    AccountCategory = "equity"
	CategoryIncome    AccountCategory = "income"
	CategoryExpense   AccountCategory = "expense"
)

// Account is a single position in the chart of accounts. The code is the
// stable identifier (a 4-digit BAS number); an account is immutable once a
// posted verification row references it.
type Account struct {
	CompanyID string
	Code      string
	Name      string
	Category  AccountCategory
	CreatedAt time.Time
}

// CategoryForCode derives the category from a BAS account number. The BAS
// plan reserves the leading digit: 1 assets, 2 liabilities (20xx equity),
// 3 revenue, 4-7 operating costs, 8 financial items. Within class 8 the
// revenue accounts occupy 80xx-83xx.
func CategoryForCode(code string) AccountCategory {
	if len(code) == 0 {
		return CategoryAsset
	}
	switch code[0] {
	case '1':
		return CategoryAsset
	case '2':
		if len(code) >= 2 && code[1] == '0' {
			return CategoryEquity
		}
		return CategoryLiability
	case '3':
		return CategoryIncome
	case '8':
		if len(code) >= 2 && code[1] <= '3' {
			return CategoryIncome
		}
		return CategoryExpense
	default:
		return CategoryExpense
	}
}

// IsResultAccount reports whether the account belongs to the income
// statement (and is zeroed by the year-end closing) as opposed to the
// balance sheet.
func (a *Account) IsResultAccount() bool {
	return a.Category == CategoryIncome || a.Category == CategoryExpense
}

// ValidAccountCode reports whether code looks like a BAS account number.
func ValidAccountCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return code[0] >= '1' && code[0] <= '8'
}
