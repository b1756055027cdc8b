package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportType identifies a statutory report derived from the ledger.
type ReportType string

const (
	ReportIncomeDeclaration ReportType = "income_declaration"
	ReportAnnualReport      ReportType = "annual_report"
	ReportVAT               ReportType = "vat"
	ReportAGI               ReportType = "agi"
)

// ReportStatus is the lifecycle state of a tax report.
type ReportStatus string

const (
	ReportDraft     ReportStatus = "draft"
	ReportSubmitted ReportStatus = "submitted"
)

// TaxReport holds the computed field map for one statutory report. The
// engine computes Fields; submission is a status flip, never a recompute.
type TaxReport struct {
	ID             string
	CompanyID      string
	Type           ReportType
	Year           int
	MappingVersion string
	Fields         map[string]decimal.Decimal
	Unmapped       []string
	Status         ReportStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CompanyType distinguishes the legal forms with different closing rules.
type CompanyType string

const (
	CompanyAB CompanyType = "AB" // aktiebolag, pays corporate tax
	CompanyEF CompanyType = "EF" // enskild firma, result goes to owner capital
)

// PayrollRecord is one employee line in a payroll-tax declaration. The
// records arrive from the payroll collaborator already computed; this core
// only renders them.
type PayrollRecord struct {
	PersonalNumber string
	Name           string
	GrossSalary    decimal.Decimal
	TaxDeducted    decimal.Decimal
	Benefits       decimal.Decimal
}
