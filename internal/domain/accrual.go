package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccrualType selects which clearing account an accrual runs through.
type AccrualType string

const (
	AccrualPrepaidExpense AccrualType = "prepaid_expense"
	AccrualAccruedExpense AccrualType = "accrued_expense"
	AccrualAccruedRevenue AccrualType = "accrued_revenue"
)

// Month is a calendar month in a specific year, parsed from "YYYY-MM".
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a period in "YYYY-MM" form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q is not a YYYY-MM period", ErrInvalidAccrualSpan, s)
	}

	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Index returns the month as a single comparable ordinal.
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}

	return Month{Year: m.Year, Month: m.Month + 1}
}

// LastDay returns the last day of the month, UTC. Accrual period postings
// are dated here.
func (m Month) LastDay() time.Time {
	firstOfNext := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// MonthsInclusive counts calendar months from start through end, inclusive.
// A span within a single month counts as one period.
func MonthsInclusive(start, end Month) int {
	return end.Index() - start.Index() + 1
}

// AccrualSchedule is the per-period breakdown of an accrual, computed before
// any posting happens. The sum of Amounts always equals the original total.
type AccrualSchedule struct {
	PeriodCount   int
	MonthlyAmount decimal.Decimal
	Periods       []Month
	Amounts       []decimal.Decimal
}

// SpreadAmount splits total over n inclusive months starting at start. Each
// period gets round(total/n, 2); the final period absorbs the rounding
// remainder so the schedule reconciles to the cent.
func SpreadAmount(total decimal.Decimal, start, end Month) (*AccrualSchedule, error) {
	n := MonthsInclusive(start, end)
	if n < 1 {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidAccrualSpan, start, end)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, total)
	}

	monthly := total.Div(decimal.NewFromInt(int64(n))).Round(2)

	schedule := &AccrualSchedule{
		PeriodCount:   n,
		MonthlyAmount: monthly,
		Periods:       make([]Month, 0, n),
		Amounts:       make([]decimal.Decimal, 0, n),
	}

	m := start
	allocated := decimal.Zero
	for i := 0; i < n; i++ {
		amount := monthly
		if i == n-1 {
			amount = total.Sub(allocated)
		}

		schedule.Periods = append(schedule.Periods, m)
		schedule.Amounts = append(schedule.Amounts, amount)
		allocated = allocated.Add(amount)
		m = m.Next()
	}

	return schedule, nil
}
