package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/domain/basplan"
	"github.com/klarbok/klarbok/internal/export/agi"
	"github.com/klarbok/klarbok/internal/export/sie"
	"github.com/klarbok/klarbok/internal/export/sru"
)

// ExportUseCase assembles ledger data into the statutory file formats. The
// renderers themselves are pure; this usecase only gathers their input.
type ExportUseCase struct {
	ledgerUC    *LedgerUseCase
	taxUC       *TaxFieldUseCase
	verRepo     VerificationRepository
	accountRepo AccountRepository
}

// NewExportUseCase creates a new ExportUseCase.
func NewExportUseCase(ledgerUC *LedgerUseCase, taxUC *TaxFieldUseCase, verRepo VerificationRepository, accountRepo AccountRepository) *ExportUseCase {
	return &ExportUseCase{
		ledgerUC:    ledgerUC,
		taxUC:       taxUC,
		verRepo:     verRepo,
		accountRepo: accountRepo,
	}
}

// CompanyInfo identifies the exporting company.
type CompanyInfo struct {
	ID        string
	Name      string
	OrgNumber string
}

// BuildSIE assembles a full SIE type 4 document for one fiscal year.
func (uc *ExportUseCase) BuildSIE(ctx context.Context, company CompanyInfo, year int) (*sie.Document, error) {
	trialBalance, err := uc.ledgerUC.TrialBalance(ctx, company.ID, year)
	if err != nil {
		return nil, err
	}

	verifications, err := uc.verRepo.List(ctx, VerificationFilter{
		CompanyID: company.ID,
		Year:      year,
		Limit:     100000,
	})
	if err != nil {
		return nil, err
	}

	doc := &sie.Document{
		ProgramName:     ProgramName,
		ProgramVersion:  ProgramVersion,
		GeneratedAt:     time.Now().UTC(),
		CompanyName:     company.Name,
		OrgNumber:       company.OrgNumber,
		FiscalYearStart: domain.YearStart(year),
		FiscalYearEnd:   domain.YearEnd(year),
	}

	names, err := uc.accountNames(ctx, company.ID, year, trialBalance)
	if err != nil {
		return nil, err
	}
	doc.Accounts = names

	for _, row := range trialBalance {
		category := domain.CategoryForCode(row.AccountCode)
		if category == domain.CategoryIncome || category == domain.CategoryExpense {
			movement := row.Debit.Sub(row.Credit)
			doc.ResultBalances = append(doc.ResultBalances, sie.Balance{AccountCode: row.AccountCode, Amount: movement})
			continue
		}

		doc.OpeningBalances = append(doc.OpeningBalances, sie.Balance{AccountCode: row.AccountCode, Amount: row.Opening})
		doc.ClosingBalances = append(doc.ClosingBalances, sie.Balance{AccountCode: row.AccountCode, Amount: row.Closing})
	}

	for _, v := range verifications {
		exported := sie.Verification{
			Series: v.Series,
			Number: v.Number,
			Date:   v.Date,
			Text:   v.Description,
		}
		for _, r := range v.Rows {
			exported.Rows = append(exported.Rows, sie.Trans{
				AccountCode: r.AccountCode,
				Amount:      r.Debit.Sub(r.Credit),
				Text:        r.Description,
			})
		}

		doc.Verifications = append(doc.Verifications, exported)
	}

	return doc, nil
}

// BuildSRU assembles the fixed-format declaration from the computed field
// map, preserving the mapping's field order.
func (uc *ExportUseCase) BuildSRU(ctx context.Context, company CompanyInfo, year int, mappingVersion string) (*sru.File, error) {
	fields, err := uc.taxUC.ComputeFields(ctx, company.ID, year, mappingVersion)
	if err != nil {
		return nil, err
	}

	file := &sru.File{
		OrgNumber:      company.OrgNumber,
		FormID:         fields.FormID,
		MappingVersion: fields.MappingVersion,
		GeneratedAt:    time.Now().UTC(),
		Fields:         make([]sru.Field, 0, len(fields.Order)),
	}
	for _, code := range fields.Order {
		file.Fields = append(file.Fields, sru.Field{Code: code, Value: fields.Fields[code]})
	}

	return file, nil
}

// BuildAGI assembles the payroll-tax declaration for one filing period from
// records the payroll collaborator supplies.
func (uc *ExportUseCase) BuildAGI(company CompanyInfo, period string, records []domain.PayrollRecord) (*agi.Declaration, error) {
	if _, err := time.Parse("200601", period); err != nil {
		return nil, fmt.Errorf("%w: period must be YYYYMM, got %q", domain.ErrValidation, period)
	}

	return &agi.Declaration{
		OrgNumber:   company.OrgNumber,
		Period:      period,
		GeneratedAt: time.Now().UTC(),
		Records:     records,
	}, nil
}

// accountNames resolves display names for every account in the trial
// balance, from the standard plan first and company accounts second.
func (uc *ExportUseCase) accountNames(ctx context.Context, companyID string, year int, rows []TrialBalanceRow) ([]sie.Account, error) {
	plan := basplan.ForYear(year)

	custom, err := uc.accountRepo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	customByCode := make(map[string]*domain.Account, len(custom))
	for _, a := range custom {
		customByCode[a.Code] = a
	}

	out := make([]sie.Account, 0, len(rows))
	for _, row := range rows {
		name := row.AccountCode
		if a, ok := plan.Lookup(row.AccountCode); ok {
			name = a.Name
		} else if a, ok := customByCode[row.AccountCode]; ok {
			name = a.Name
		}

		out = append(out, sie.Account{Code: row.AccountCode, Name: name})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	return out, nil
}
