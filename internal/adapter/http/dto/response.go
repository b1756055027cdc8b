package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RowResponse is a verification row in API responses.
type RowResponse struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// VerificationResponse represents a verification in API responses.
type VerificationResponse struct {
	ID          string        `json:"id"`
	Series      string        `json:"series"`
	Number      int64         `json:"number"`
	FiscalYear  int           `json:"fiscal_year"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Rows        []RowResponse `json:"rows"`
	SourceType  string        `json:"source_type,omitempty"`
	SourceID    string        `json:"source_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// VerificationFromDomain converts a domain verification to a response.
func VerificationFromDomain(v *domain.Verification) *VerificationResponse {
	rows := make([]RowResponse, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = RowResponse{
			AccountCode: r.AccountCode,
			Debit:       r.Debit,
			Credit:      r.Credit,
			Description: r.Description,
		}
	}

	resp := &VerificationResponse{
		ID:          v.ID,
		Series:      v.Series,
		Number:      v.Number,
		FiscalYear:  v.FiscalYear,
		Date:        v.Date,
		Description: v.Description,
		Rows:        rows,
		CreatedAt:   v.CreatedAt,
	}
	if v.Source != nil {
		resp.SourceType = string(v.Source.Type)
		resp.SourceID = v.Source.SourceID
	}
	return resp
}

// VerificationsFromDomain converts domain verifications to responses.
func VerificationsFromDomain(verifications []*domain.Verification) []*VerificationResponse {
	result := make([]*VerificationResponse, len(verifications))
	for i, v := range verifications {
		result[i] = VerificationFromDomain(v)
	}
	return result
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		Code:      a.Code,
		Name:      a.Name,
		Category:  string(a.Category),
		CreatedAt: a.CreatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// AccrualPreviewRowResponse is one planned period transfer.
type AccrualPreviewRowResponse struct {
	Period      string          `json:"period"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
}

// AccrualPreviewResponse is the write-free breakdown of an accrual.
type AccrualPreviewResponse struct {
	PeriodCount   int                         `json:"period_count"`
	MonthlyAmount decimal.Decimal             `json:"monthly_amount"`
	Rows          []AccrualPreviewRowResponse `json:"rows"`
}

// AccrualPreviewFromUseCase converts an accrual preview to a response.
func AccrualPreviewFromUseCase(p *usecase.AccrualPreview) *AccrualPreviewResponse {
	rows := make([]AccrualPreviewRowResponse, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = AccrualPreviewRowResponse{
			Period:      r.Period,
			Date:        r.Date,
			Amount:      r.Amount,
			FromAccount: r.FromAccount,
			ToAccount:   r.ToAccount,
		}
	}
	return &AccrualPreviewResponse{
		PeriodCount:   p.PeriodCount,
		MonthlyAmount: p.MonthlyAmount,
		Rows:          rows,
	}
}

// AccrualResultResponse reports the verifications an executed accrual made.
type AccrualResultResponse struct {
	VerificationIDs []string        `json:"verification_ids"`
	GroupID         string          `json:"group_id"`
	PeriodCount     int             `json:"period_count"`
	MonthlyAmount   decimal.Decimal `json:"monthly_amount"`
}

// ClosingPreviewResponse is the proposed year-end closing.
type ClosingPreviewResponse struct {
	Year         int             `json:"year"`
	NetResult    decimal.Decimal `json:"net_result"`
	Tax          decimal.Decimal `json:"tax"`
	ProposedRows []RowResponse   `json:"proposed_rows"`
}

// ClosingPreviewFromUseCase converts a closing preview to a response.
func ClosingPreviewFromUseCase(p *usecase.ClosingPreview) *ClosingPreviewResponse {
	rows := make([]RowResponse, len(p.ProposedRows))
	for i, r := range p.ProposedRows {
		rows[i] = RowResponse{
			AccountCode: r.AccountCode,
			Debit:       r.Debit,
			Credit:      r.Credit,
			Description: r.Description,
		}
	}
	return &ClosingPreviewResponse{
		Year:         p.Year,
		NetResult:    p.NetResult,
		Tax:          p.Tax,
		ProposedRows: rows,
	}
}

// ClosingResultResponse reports an executed closing.
type ClosingResultResponse struct {
	VerificationIDs []string        `json:"verification_ids"`
	NetResult       decimal.Decimal `json:"net_result"`
	Tax             decimal.Decimal `json:"tax"`
}

// CorrectionResponse holds the reversal and the optional replacement.
type CorrectionResponse struct {
	Reversal    *VerificationResponse `json:"reversal"`
	Replacement *VerificationResponse `json:"replacement,omitempty"`
}

// CorrectionFromUseCase converts a correction result to a response.
func CorrectionFromUseCase(r *usecase.CorrectionResult) *CorrectionResponse {
	resp := &CorrectionResponse{
		Reversal: VerificationFromDomain(r.Reversal),
	}
	if r.Replacement != nil {
		resp.Replacement = VerificationFromDomain(r.Replacement)
	}
	return resp
}

// FieldResultResponse is a computed tax field map.
type FieldResultResponse struct {
	MappingVersion string                     `json:"mapping_version"`
	FormID         string                     `json:"form_id"`
	Fields         map[string]decimal.Decimal `json:"fields"`
	Order          []string                   `json:"order"`
	Unmapped       []string                   `json:"unmapped,omitempty"`
}

// FieldResultFromUseCase converts a field result to a response.
func FieldResultFromUseCase(r *usecase.FieldResult) *FieldResultResponse {
	return &FieldResultResponse{
		MappingVersion: r.MappingVersion,
		FormID:         r.FormID,
		Fields:         r.Fields,
		Order:          r.Order,
		Unmapped:       r.Unmapped,
	}
}

// TaxReportResponse represents a tax report in API responses.
type TaxReportResponse struct {
	ID             string                     `json:"id"`
	Type           string                     `json:"type"`
	Year           int                        `json:"year"`
	MappingVersion string                     `json:"mapping_version"`
	Fields         map[string]decimal.Decimal `json:"fields"`
	Unmapped       []string                   `json:"unmapped,omitempty"`
	Status         string                     `json:"status"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// TaxReportFromDomain converts a domain tax report to a response.
func TaxReportFromDomain(r *domain.TaxReport) *TaxReportResponse {
	return &TaxReportResponse{
		ID:             r.ID,
		Type:           string(r.Type),
		Year:           r.Year,
		MappingVersion: r.MappingVersion,
		Fields:         r.Fields,
		Unmapped:       r.Unmapped,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// TaxReportsFromDomain converts domain tax reports to responses.
func TaxReportsFromDomain(reports []*domain.TaxReport) []*TaxReportResponse {
	result := make([]*TaxReportResponse, len(reports))
	for i, r := range reports {
		result[i] = TaxReportFromDomain(r)
	}
	return result
}

// ConsistencyResponse reports the double-entry check over the ledger.
type ConsistencyResponse struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Consistent  bool            `json:"consistent"`
	CheckedAt   time.Time       `json:"checked_at"`
}

// TrialBalanceRowResponse is one account's movement over a fiscal year.
type TrialBalanceRowResponse struct {
	AccountCode string          `json:"account_code"`
	Opening     decimal.Decimal `json:"opening"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Closing     decimal.Decimal `json:"closing"`
}

// TrialBalanceFromUseCase converts trial balance rows to responses.
func TrialBalanceFromUseCase(rows []usecase.TrialBalanceRow) []TrialBalanceRowResponse {
	result := make([]TrialBalanceRowResponse, len(rows))
	for i, r := range rows {
		result[i] = TrialBalanceRowResponse{
			AccountCode: r.AccountCode,
			Opening:     r.Opening,
			Debit:       r.Debit,
			Credit:      r.Credit,
			Closing:     r.Closing,
		}
	}
	return result
}
