// Package basplan carries the year-versioned BAS chart of accounts and the
// statutory parameters that change between fiscal years. The tables are
// compiled in: they are law, not deployment configuration.
package basplan

import (
	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
)

// Well-known accounts the engines post against.
const (
	AccountBank            = "1930" // företagskonto
	AccountCustomerClaims  = "1510" // kundfordringar
	AccountPrepaid         = "1790" // förutbetalda kostnader och upplupna intäkter
	AccountOwnerCapital    = "2010" // eget kapital (enskild firma)
	AccountResultCarried   = "2099" // årets resultat
	AccountTaxLiability    = "2510" // skatteskulder
	AccountVATOut          = "2610" // utgående moms
	AccountVATIn           = "2640" // ingående moms
	AccountEmployeeTax     = "2710" // personalskatt
	AccountSocialFees      = "2731" // avräkning lagstadgade sociala avgifter
	AccountAccruedExpenses = "2990" // upplupna kostnader och förutbetalda intäkter
	AccountRounding        = "3740" // öresavrundning
	AccountSalaries        = "7210" // löner till tjänstemän
	AccountEmployerFees    = "7510" // arbetsgivaravgifter
	AccountTaxOnResult     = "8910" // skatt på årets resultat
	AccountResultOfYear    = "8999" // årets resultat (resultaträkning)
)

// Plan is the chart of accounts in force for one fiscal year.
type Plan struct {
	Year     int
	accounts map[string]domain.Account
}

// Lookup returns the account for code, if the plan defines it.
func (p *Plan) Lookup(code string) (domain.Account, bool) {
	a, ok := p.accounts[code]
	return a, ok
}

// Contains reports whether the plan defines code.
func (p *Plan) Contains(code string) bool {
	_, ok := p.accounts[code]
	return ok
}

// Accounts returns all accounts in the plan, order unspecified.
func (p *Plan) Accounts() []domain.Account {
	out := make([]domain.Account, 0, len(p.accounts))
	for _, a := range p.accounts {
		out = append(out, a)
	}

	return out
}

// baseAccounts is the subset of BAS 2025 the engines and reports reference.
// The full standard plan lives in the account-plan collaborator; this core
// only needs the accounts that participate in ledger invariants.
var baseAccounts = map[string]string{
	"1510": "Kundfordringar",
	"1630": "Skattekonto",
	"1790": "Övriga förutbetalda kostnader och upplupna intäkter",
	"1910": "Kassa",
	"1930": "Företagskonto",
	"2010": "Eget kapital",
	"2081": "Aktiekapital",
	"2091": "Balanserad vinst eller förlust",
	"2099": "Årets resultat",
	"2440": "Leverantörsskulder",
	"2510": "Skatteskulder",
	"2610": "Utgående moms, 25 %",
	"2640": "Ingående moms",
	"2710": "Personalskatt",
	"2731": "Avräkning lagstadgade sociala avgifter",
	"2898": "Outtagen vinstutdelning",
	"2990": "Upplupna kostnader och förutbetalda intäkter",
	"3001": "Försäljning inom Sverige, 25 % moms",
	"3740": "Öres- och kronutjämning",
	"3960": "Valutakursvinster",
	"4010": "Inköp av varor och material",
	"5010": "Lokalhyra",
	"5410": "Förbrukningsinventarier",
	"6212": "Mobiltelefon",
	"6570": "Bankkostnader",
	"7210": "Löner till tjänstemän",
	"7510": "Arbetsgivaravgifter",
	"8310": "Ränteintäkter",
	"8423": "Räntekostnader",
	"8910": "Skatt på årets resultat",
	"8999": "Årets resultat",
}

var plans = buildPlans()

func buildPlans() map[int]*Plan {
	out := make(map[int]*Plan)
	// Account numbering has been stable across the supported years; rates
	// have not (see Params). Each year still gets its own plan value so a
	// future yearly revision only touches this table.
	for year := 2020; year <= 2026; year++ {
		accounts := make(map[string]domain.Account, len(baseAccounts))
		for code, name := range baseAccounts {
			accounts[code] = domain.Account{
				Code:     code,
				Name:     name,
				Category: domain.CategoryForCode(code),
			}
		}

		out[year] = &Plan{Year: year, accounts: accounts}
	}

	return out
}

// ForYear returns the plan in force for a fiscal year. Years outside the
// table fall back to the nearest supported year.
func ForYear(year int) *Plan {
	if p, ok := plans[year]; ok {
		return p
	}
	if year < 2020 {
		return plans[2020]
	}

	return plans[2026]
}

// Params are the statutory rates in force for one fiscal year.
type Params struct {
	Year             int
	CorporateTaxRate decimal.Decimal
	EmployerFeeRate  decimal.Decimal
}

var paramsByYear = map[int]Params{
	2020: {Year: 2020, CorporateTaxRate: decimal.NewFromFloat(0.214), EmployerFeeRate: decimal.NewFromFloat(0.3142)},
	2021: {Year: 2021, CorporateTaxRate: decimal.NewFromFloat(0.206), EmployerFeeRate: decimal.NewFromFloat(0.3142)},
	2022: {Year: 2022, CorporateTaxRate: decimal.NewFromFloat(0.206), EmployerFeeRate: decimal.NewFromFloat(0.3142)},
	2023: {Year: 2023, CorporateTaxRate: decimal.NewFromFloat(0.206), EmployerFeeRate: decimal.NewFromFloat(0.3142)},
	2024: {Year: 2024, CorporateTaxRate: decimal.NewFromFloat(0.206), EmployerFeeRate: decimal.NewFromFloat(0.3142)},
	2025: {Year: 2025, CorporateTaxRate: decimal.NewFromFloat(0.206), EmployerFeeRate: decimal.NewFromFloat(0.3142)},
	2026: {Year: 2026, CorporateTaxRate: decimal.NewFromFloat(0.206), EmployerFeeRate: decimal.NewFromFloat(0.3142)},
}

// ParamsForYear returns the statutory parameters for a fiscal year, falling
// back to the nearest supported year outside the table.
func ParamsForYear(year int) Params {
	if p, ok := paramsByYear[year]; ok {
		return p
	}
	if year < 2020 {
		return paramsByYear[2020]
	}

	return paramsByYear[2026]
}

// ClearingAccount returns the clearing account an accrual of the given type
// runs through.
func ClearingAccount(t domain.AccrualType) string {
	switch t {
	case domain.AccrualAccruedExpense:
		return AccountAccruedExpenses
	default:
		// Prepaid expenses and accrued revenue both use 1790 per BAS.
		return AccountPrepaid
	}
}
