// Package srumap holds the year-versioned mapping from BAS account ranges to
// SRU field codes on the income declaration. A mapping version is frozen:
// re-running the mapper against the same ledger state and version always
// produces the same field values.
package srumap

// Basis selects which slice of the ledger a field reads.
type Basis int

const (
	// BasisBalance sums account balances cumulatively since inception, as
	// balance-sheet fields require.
	BasisBalance Basis = iota
	// BasisResult sums the current fiscal year only, as income-statement
	// fields require.
	BasisResult
)

// Sign is the convention applied after netting the account ranges. Signed
// balances are debit minus credit, so credit-normal accounts net negative.
type Sign int

const (
	// SignNatural keeps the signed balance as is.
	SignNatural Sign = iota
	// SignAbsolute reports the magnitude regardless of natural sign.
	SignAbsolute
	// SignNegated flips the sign, used for fields stated from the credit
	// perspective (net result, revenue totals on some forms).
	SignNegated
)

// Range is an inclusive BAS account code interval.
type Range struct {
	From string
	To   string
}

// Contains reports whether code falls inside the range. BAS codes are fixed
// width so string comparison orders correctly.
func (r Range) Contains(code string) bool {
	return code >= r.From && code <= r.To
}

// Rule produces one SRU field. When both Add and Subtract are set the field
// is the difference of the two netted groups.
type Rule struct {
	FieldCode string
	Label     string
	Add       []Range
	Subtract  []Range
	Basis     Basis
	Sign      Sign
}

// Covers reports whether the rule reads the given account.
func (r *Rule) Covers(code string) bool {
	for _, rg := range r.Add {
		if rg.Contains(code) {
			return true
		}
	}
	for _, rg := range r.Subtract {
		if rg.Contains(code) {
			return true
		}
	}

	return false
}

// Mapping is one frozen version of the account-to-field table.
type Mapping struct {
	Version string
	Year    int
	FormID  string
	Rules   []Rule
}

// Covers reports whether any rule in the mapping reads the given account.
func (m *Mapping) Covers(code string) bool {
	for i := range m.Rules {
		if m.Rules[i].Covers(code) {
			return true
		}
	}

	return false
}

// ink2Rules is the INK2 layout shared by recent years. Field codes follow
// the Skatteverket SRU record layout for INK2R/INK2S.
var ink2Rules = []Rule{
	{FieldCode: "7251", Label: "Kundfordringar", Add: []Range{{"1500", "1599"}}, Basis: BasisBalance, Sign: SignNatural},
	{FieldCode: "7261", Label: "Förutbetalda kostnader och upplupna intäkter", Add: []Range{{"1700", "1799"}}, Basis: BasisBalance, Sign: SignNatural},
	{FieldCode: "7281", Label: "Kassa och bank", Add: []Range{{"1900", "1999"}}, Basis: BasisBalance, Sign: SignNatural},
	{FieldCode: "7301", Label: "Bundet eget kapital", Add: []Range{{"2080", "2089"}}, Basis: BasisBalance, Sign: SignAbsolute},
	{FieldCode: "7302", Label: "Fritt eget kapital", Add: []Range{{"2010", "2079"}, {"2090", "2099"}}, Basis: BasisBalance, Sign: SignAbsolute},
	{FieldCode: "7365", Label: "Skatteskulder", Add: []Range{{"2500", "2599"}}, Basis: BasisBalance, Sign: SignAbsolute},
	{FieldCode: "7366", Label: "Leverantörsskulder", Add: []Range{{"2440", "2449"}}, Basis: BasisBalance, Sign: SignAbsolute},
	{FieldCode: "7369", Label: "Övriga skulder", Add: []Range{{"2600", "2899"}, {"2900", "2999"}}, Basis: BasisBalance, Sign: SignAbsolute},
	{FieldCode: "7410", Label: "Nettoomsättning", Add: []Range{{"3000", "3799"}}, Basis: BasisResult, Sign: SignNegated},
	{FieldCode: "7413", Label: "Övriga rörelseintäkter", Add: []Range{{"3800", "3999"}}, Basis: BasisResult, Sign: SignNegated},
	{FieldCode: "7511", Label: "Råvaror och handelsvaror", Add: []Range{{"4000", "4999"}}, Basis: BasisResult, Sign: SignAbsolute},
	{FieldCode: "7513", Label: "Övriga externa kostnader", Add: []Range{{"5000", "6999"}}, Basis: BasisResult, Sign: SignAbsolute},
	{FieldCode: "7514", Label: "Personalkostnader", Add: []Range{{"7000", "7699"}}, Basis: BasisResult, Sign: SignAbsolute},
	{FieldCode: "7517", Label: "Ränteintäkter och liknande", Add: []Range{{"8300", "8399"}}, Basis: BasisResult, Sign: SignNegated},
	{FieldCode: "7522", Label: "Räntekostnader och liknande", Add: []Range{{"8400", "8499"}}, Basis: BasisResult, Sign: SignAbsolute},
	{FieldCode: "7528", Label: "Skatt på årets resultat", Add: []Range{{"8910", "8919"}}, Basis: BasisResult, Sign: SignAbsolute},
	// Net result is the credit surplus over every result account. Signed
	// balances are debit minus credit, so one netted group with the sign
	// flipped gives revenue minus costs.
	{FieldCode: "7450", Label: "Årets resultat", Add: []Range{{"3000", "3999"}, {"4000", "7999"}, {"8300", "8499"}, {"8910", "8919"}}, Basis: BasisResult, Sign: SignNegated},
}

var mappings = map[string]*Mapping{
	"INK2-2023P4": {Version: "INK2-2023P4", Year: 2023, FormID: "INK2R", Rules: ink2Rules},
	"INK2-2024P4": {Version: "INK2-2024P4", Year: 2024, FormID: "INK2R", Rules: ink2Rules},
	"INK2-2025P4": {Version: "INK2-2025P4", Year: 2025, FormID: "INK2R", Rules: ink2Rules},
}

var versionByYear = map[int]string{
	2023: "INK2-2023P4",
	2024: "INK2-2024P4",
	2025: "INK2-2025P4",
}

// ByVersion returns a frozen mapping by version id.
func ByVersion(version string) (*Mapping, bool) {
	m, ok := mappings[version]
	return m, ok
}

// ForYear returns the current mapping version for a fiscal year.
func ForYear(year int) (*Mapping, bool) {
	v, ok := versionByYear[year]
	if !ok {
		return nil, false
	}

	return ByVersion(v)
}
