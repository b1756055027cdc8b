package domain

import "time"

// PeriodStatus is the lifecycle state of a fiscal year.
type PeriodStatus string

const (
	PeriodOpen      PeriodStatus = "open"
	PeriodSubmitted PeriodStatus = "submitted"
	PeriodClosed    PeriodStatus = "closed"
)

// FiscalPeriod tracks the state of one company's fiscal year. Closing moves
// it to closed (one-way); report submission moves it to submitted. Closed
// periods reject further closing attempts but never block corrections, which
// only append new verifications.
type FiscalPeriod struct {
	CompanyID string
	Year      int
	Status    PeriodStatus
	UpdatedAt time.Time
}

// CanTransition reports whether the period may move to target.
func (p *FiscalPeriod) CanTransition(target PeriodStatus) bool {
	if p.Status == target {
		return false
	}
	switch p.Status {
	case PeriodOpen:
		return target == PeriodSubmitted || target == PeriodClosed
	case PeriodSubmitted:
		return target == PeriodClosed
	default:
		return false
	}
}

// Transition validates and applies a status change.
func (p *FiscalPeriod) Transition(target PeriodStatus, now time.Time) error {
	if p.Status == PeriodClosed && target == PeriodClosed {
		return ErrPeriodClosed
	}
	if !p.CanTransition(target) {
		return ErrPeriodTransition
	}

	p.Status = target
	p.UpdatedAt = now

	return nil
}

// YearStart returns January 1 of the fiscal year, UTC.
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// YearEnd returns December 31 of the fiscal year, UTC.
func YearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
