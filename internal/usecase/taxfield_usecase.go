package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/domain/srumap"
)

// TaxFieldUseCase aggregates ledger balances into statutory report fields
// using a frozen, year-versioned mapping. Computation is pure over ledger
// reads: the same ledger state and mapping version always produce the same
// field map.
type TaxFieldUseCase struct {
	txManager  TransactionManager
	verRepo    VerificationRepository
	reportRepo ReportRepository
	periodRepo PeriodRepository
	idGen      IDGenerator
}

// NewTaxFieldUseCase creates a new TaxFieldUseCase.
func NewTaxFieldUseCase(
	txManager TransactionManager,
	verRepo VerificationRepository,
	reportRepo ReportRepository,
	periodRepo PeriodRepository,
	idGen IDGenerator,
) *TaxFieldUseCase {
	return &TaxFieldUseCase{
		txManager:  txManager,
		verRepo:    verRepo,
		reportRepo: reportRepo,
		periodRepo: periodRepo,
		idGen:      idGen,
	}
}

// FieldResult is one computed field map. Order preserves the mapping's rule
// order, which also fixes the serialization order in the SRU export.
type FieldResult struct {
	MappingVersion string
	FormID         string
	Fields         map[string]decimal.Decimal
	Order          []string
	Unmapped       []string
}

// ComputeFields evaluates the mapping for a fiscal year. An empty
// mappingVersion selects the year's current version. Accounts with activity
// that no rule covers are reported in Unmapped, never silently dropped.
func (uc *TaxFieldUseCase) ComputeFields(ctx context.Context, companyID string, year int, mappingVersion string) (*FieldResult, error) {
	mapping, err := resolveMapping(year, mappingVersion)
	if err != nil {
		return nil, err
	}

	yearStart := domain.YearStart(year)
	yearEnd := domain.YearEnd(year)

	// Balance-sheet fields read cumulatively since inception; income-
	// statement fields read the fiscal year only.
	balanceTotals, err := uc.verRepo.Totals(ctx, companyID, nil, &yearEnd)
	if err != nil {
		return nil, err
	}
	resultTotals, err := uc.verRepo.Totals(ctx, companyID, &yearStart, &yearEnd)
	if err != nil {
		return nil, err
	}

	result := &FieldResult{
		MappingVersion: mapping.Version,
		FormID:         mapping.FormID,
		Fields:         make(map[string]decimal.Decimal, len(mapping.Rules)),
		Order:          make([]string, 0, len(mapping.Rules)),
	}

	for i := range mapping.Rules {
		rule := &mapping.Rules[i]

		totals := resultTotals
		if rule.Basis == srumap.BasisBalance {
			totals = balanceTotals
		}

		value := evaluateRule(rule, totals)
		result.Fields[rule.FieldCode] = value
		result.Order = append(result.Order, rule.FieldCode)
	}

	result.Unmapped = unmappedAccounts(mapping, balanceTotals)

	return result, nil
}

// CreateDraftReport computes the fields and persists them as a draft report.
func (uc *TaxFieldUseCase) CreateDraftReport(ctx context.Context, companyID string, year int, reportType domain.ReportType, mappingVersion string) (*domain.TaxReport, error) {
	fields, err := uc.ComputeFields(ctx, companyID, year, mappingVersion)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := &domain.TaxReport{
		ID:             uc.idGen.Generate(),
		CompanyID:      companyID,
		Type:           reportType,
		Year:           year,
		MappingVersion: fields.MappingVersion,
		Fields:         fields.Fields,
		Unmapped:       fields.Unmapped,
		Status:         domain.ReportDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// SubmitReport flips a draft report to submitted and moves the fiscal period
// from open to submitted in the same transaction. Closing is a separate,
// orthogonal transition.
func (uc *TaxFieldUseCase) SubmitReport(ctx context.Context, companyID, reportID string) (*domain.TaxReport, error) {
	report, err := uc.reportRepo.GetByID(ctx, companyID, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status == domain.ReportSubmitted {
		return nil, fmt.Errorf("%w: %s", domain.ErrReportSubmitted, reportID)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	period, err := uc.periodRepo.GetForUpdate(ctx, tx, companyID, report.Year)
	if err != nil {
		return nil, err
	}
	if period.Status == domain.PeriodOpen {
		if err := period.Transition(domain.PeriodSubmitted, now); err != nil {
			return nil, err
		}
		if err := uc.periodRepo.SetStatus(ctx, tx, companyID, report.Year, domain.PeriodSubmitted, now); err != nil {
			return nil, err
		}
	}

	if err := uc.reportRepo.UpdateStatus(ctx, tx, companyID, reportID, domain.ReportSubmitted, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	report.Status = domain.ReportSubmitted
	report.UpdatedAt = now

	return report, nil
}

// GetReport retrieves a report by id.
func (uc *TaxFieldUseCase) GetReport(ctx context.Context, companyID, id string) (*domain.TaxReport, error) {
	return uc.reportRepo.GetByID(ctx, companyID, id)
}

// ListReports lists a company's reports for a year.
func (uc *TaxFieldUseCase) ListReports(ctx context.Context, companyID string, year int) ([]*domain.TaxReport, error) {
	return uc.reportRepo.ListByYear(ctx, companyID, year)
}

func resolveMapping(year int, version string) (*srumap.Mapping, error) {
	if version == "" {
		mapping, ok := srumap.ForYear(year)
		if !ok {
			return nil, fmt.Errorf("%w: no mapping for %d", domain.ErrUnknownMapping, year)
		}

		return mapping, nil
	}

	mapping, ok := srumap.ByVersion(version)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMapping, version)
	}

	return mapping, nil
}

// evaluateRule nets the signed balances of the rule's account ranges, then
// applies the field's sign convention.
func evaluateRule(rule *srumap.Rule, totals []AccountTotal) decimal.Decimal {
	net := decimal.Zero
	for _, t := range totals {
		signed := t.Balance()
		for _, rg := range rule.Add {
			if rg.Contains(t.AccountCode) {
				net = net.Add(signed)
				break
			}
		}
		for _, rg := range rule.Subtract {
			if rg.Contains(t.AccountCode) {
				net = net.Sub(signed)
				break
			}
		}
	}

	switch rule.Sign {
	case srumap.SignAbsolute:
		net = net.Abs()
	case srumap.SignNegated:
		net = net.Neg()
	}

	return net.Round(2)
}

// unmappedAccounts flags accounts with activity that no rule reads.
func unmappedAccounts(mapping *srumap.Mapping, totals []AccountTotal) []string {
	var out []string
	for _, t := range totals {
		if t.Debit.IsZero() && t.Credit.IsZero() {
			continue
		}
		if !mapping.Covers(t.AccountCode) {
			out = append(out, t.AccountCode)
		}
	}

	sort.Strings(out)

	return out
}
