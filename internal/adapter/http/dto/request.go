package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
)

// RowRequest is a single debit or credit line in a posting request.
type RowRequest struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// ToDomain converts to a domain row.
func (r RowRequest) ToDomain() domain.Row {
	return domain.Row{
		AccountCode: r.AccountCode,
		Debit:       r.Debit,
		Credit:      r.Credit,
		Description: r.Description,
	}
}

func rowsToDomain(rows []RowRequest) []domain.Row {
	result := make([]domain.Row, len(rows))
	for i, r := range rows {
		result[i] = r.ToDomain()
	}
	return result
}

// CreateVerificationRequest represents a request to post a verification.
type CreateVerificationRequest struct {
	Series      string       `json:"series,omitempty"`
	Date        time.Time    `json:"date"`
	Description string       `json:"description"`
	Rows        []RowRequest `json:"rows"`
	SourceType  string       `json:"source_type,omitempty"`
	SourceID    string       `json:"source_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateVerificationRequest) ToUseCaseInput(companyID string) usecase.CreateVerificationInput {
	input := usecase.CreateVerificationInput{
		CompanyID:   companyID,
		Series:      r.Series,
		Date:        r.Date,
		Description: r.Description,
		Rows:        rowsToDomain(r.Rows),
	}
	if r.SourceType != "" {
		input.Source = &domain.Source{
			Type:     domain.SourceType(r.SourceType),
			SourceID: r.SourceID,
		}
	}
	return input
}

// CreateBatchVerificationRequest posts several verifications atomically.
type CreateBatchVerificationRequest struct {
	Verifications []CreateVerificationRequest `json:"verifications"`
}

// ToUseCaseInput converts to use case inputs.
func (r *CreateBatchVerificationRequest) ToUseCaseInput(companyID string) []usecase.CreateVerificationInput {
	inputs := make([]usecase.CreateVerificationInput, len(r.Verifications))
	for i := range r.Verifications {
		inputs[i] = r.Verifications[i].ToUseCaseInput(companyID)
	}
	return inputs
}

// AccrualRequest represents an accrual preview or execution request. On the
// execution endpoint, execute=false downgrades the request to a preview.
type AccrualRequest struct {
	Execute            bool            `json:"execute,omitempty"`
	Series             string          `json:"series,omitempty"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Description        string          `json:"description"`
	ExpenseAccount     string          `json:"expense_account"`
	ExpenseAccountName string          `json:"expense_account_name,omitempty"`
	Type               string          `json:"type"`
	StartPeriod        string          `json:"start_period"`
	EndPeriod          string          `json:"end_period"`
}

// ToUseCaseInput converts to use case input.
func (r *AccrualRequest) ToUseCaseInput(companyID string) usecase.AccrualInput {
	return usecase.AccrualInput{
		CompanyID:          companyID,
		Series:             r.Series,
		TotalAmount:        r.TotalAmount,
		Description:        r.Description,
		ExpenseAccount:     r.ExpenseAccount,
		ExpenseAccountName: r.ExpenseAccountName,
		Type:               domain.AccrualType(r.Type),
		StartPeriod:        r.StartPeriod,
		EndPeriod:          r.EndPeriod,
	}
}

// CorrectionRequest represents a request to reverse a verification and
// optionally post corrected rows in its place.
type CorrectionRequest struct {
	VerificationID string       `json:"verification_id"`
	CorrectedRows  []RowRequest `json:"corrected_rows,omitempty"`
	Description    string       `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CorrectionRequest) ToUseCaseInput(companyID string) usecase.CorrectionInput {
	return usecase.CorrectionInput{
		CompanyID:      companyID,
		VerificationID: r.VerificationID,
		CorrectedRows:  rowsToDomain(r.CorrectedRows),
		Description:    r.Description,
	}
}

// CreateAccountRequest represents a request to register a custom account.
type CreateAccountRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreateReportRequest represents a request to create a draft tax report.
type CreateReportRequest struct {
	Year           int    `json:"year"`
	Type           string `json:"type"`
	MappingVersion string `json:"mapping_version,omitempty"`
}

// PayrollRecordRequest is one employee line in an AGI export request.
type PayrollRecordRequest struct {
	PersonalNumber string          `json:"personal_number"`
	Name           string          `json:"name"`
	GrossSalary    decimal.Decimal `json:"gross_salary"`
	TaxDeducted    decimal.Decimal `json:"tax_deducted"`
	Benefits       decimal.Decimal `json:"benefits"`
}

// AGIExportRequest represents a request to render an employer declaration.
type AGIExportRequest struct {
	Period      string                 `json:"period"`
	CompanyName string                 `json:"company_name"`
	OrgNumber   string                 `json:"org_number"`
	Records     []PayrollRecordRequest `json:"records"`
}

// ToDomainRecords converts the payroll lines.
func (r *AGIExportRequest) ToDomainRecords() []domain.PayrollRecord {
	records := make([]domain.PayrollRecord, len(r.Records))
	for i, rec := range r.Records {
		records[i] = domain.PayrollRecord{
			PersonalNumber: rec.PersonalNumber,
			Name:           rec.Name,
			GrossSalary:    rec.GrossSalary,
			TaxDeducted:    rec.TaxDeducted,
			Benefits:       rec.Benefits,
		}
	}
	return records
}
