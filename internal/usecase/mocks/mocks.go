package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
)

// MockAccountRepository is an in-memory implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc    func(ctx context.Context, account *domain.Account) error
	GetByCodeFunc func(ctx context.Context, companyID, code string) (*domain.Account, error)
	ListFunc      func(ctx context.Context, companyID string) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func accountKey(companyID, code string) string { return companyID + "/" + code }

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[accountKey(account.CompanyID, account.Code)] = account
	return nil
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, companyID, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, companyID, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[accountKey(companyID, code)]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, companyID string) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, companyID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, a := range m.accounts {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// MockVerificationRepository is an in-memory implementation of
// VerificationRepository. It is append-only, like the real one.
type MockVerificationRepository struct {
	mu            sync.RWMutex
	verifications []*domain.Verification

	CreateFunc      func(ctx context.Context, tx usecase.Transaction, v *domain.Verification) error
	GetByIDFunc     func(ctx context.Context, companyID, id string) (*domain.Verification, error)
	ListFunc        func(ctx context.Context, filter usecase.VerificationFilter) ([]*domain.Verification, error)
	TotalsFunc      func(ctx context.Context, companyID string, from, to *time.Time) ([]usecase.AccountTotal, error)
	HasReversalFunc func(ctx context.Context, tx usecase.Transaction, companyID, originalID string) (bool, error)
}

func NewMockVerificationRepository() *MockVerificationRepository {
	return &MockVerificationRepository{}
}

func (m *MockVerificationRepository) Create(ctx context.Context, tx usecase.Transaction, v *domain.Verification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, v)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, v)
	return nil
}

func (m *MockVerificationRepository) GetByID(ctx context.Context, companyID, id string) (*domain.Verification, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, companyID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.verifications {
		if v.CompanyID == companyID && v.ID == id {
			return v, nil
		}
	}
	return nil, domain.ErrVerificationNotFound
}

func (m *MockVerificationRepository) List(ctx context.Context, filter usecase.VerificationFilter) ([]*domain.Verification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Verification
	for _, v := range m.verifications {
		if v.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Series != "" && v.Series != filter.Series {
			continue
		}
		if filter.Year != 0 && v.FiscalYear != filter.Year {
			continue
		}
		if filter.From != nil && v.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && v.Date.After(*filter.To) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Series != out[j].Series {
			return out[i].Series < out[j].Series
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (m *MockVerificationRepository) Totals(ctx context.Context, companyID string, from, to *time.Time) ([]usecase.AccountTotal, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx, companyID, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	byAccount := make(map[string]*usecase.AccountTotal)
	for _, v := range m.verifications {
		if v.CompanyID != companyID {
			continue
		}
		if from != nil && v.Date.Before(*from) {
			continue
		}
		if to != nil && v.Date.After(*to) {
			continue
		}
		for _, r := range v.Rows {
			t, ok := byAccount[r.AccountCode]
			if !ok {
				t = &usecase.AccountTotal{AccountCode: r.AccountCode, Debit: decimal.Zero, Credit: decimal.Zero}
				byAccount[r.AccountCode] = t
			}
			t.Debit = t.Debit.Add(r.Debit)
			t.Credit = t.Credit.Add(r.Credit)
		}
	}
	out := make([]usecase.AccountTotal, 0, len(byAccount))
	for _, t := range byAccount {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountCode < out[j].AccountCode })
	return out, nil
}

func (m *MockVerificationRepository) HasReversal(ctx context.Context, tx usecase.Transaction, companyID, originalID string) (bool, error) {
	if m.HasReversalFunc != nil {
		return m.HasReversalFunc(ctx, tx, companyID, originalID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.verifications {
		if v.CompanyID != companyID || v.Source == nil {
			continue
		}
		if v.Source.Type == domain.SourceCorrection && v.Source.SourceID == originalID {
			return true, nil
		}
	}
	return false, nil
}

// All returns every stored verification, for test assertions.
func (m *MockVerificationRepository) All() []*domain.Verification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Verification, len(m.verifications))
	copy(out, m.verifications)
	return out
}

// MockSequenceRepository allocates numbers from in-memory counters.
type MockSequenceRepository struct {
	mu       sync.Mutex
	counters map[string]int64

	NextFunc func(ctx context.Context, tx usecase.Transaction, companyID, series string, fiscalYear int) (int64, error)
}

func NewMockSequenceRepository() *MockSequenceRepository {
	return &MockSequenceRepository{counters: make(map[string]int64)}
}

func (m *MockSequenceRepository) Next(ctx context.Context, tx usecase.Transaction, companyID, series string, fiscalYear int) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, tx, companyID, series, fiscalYear)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s/%s/%d", companyID, series, fiscalYear)
	m.counters[key]++
	return m.counters[key], nil
}

// MockPeriodRepository stores fiscal periods in memory.
type MockPeriodRepository struct {
	mu      sync.RWMutex
	periods map[string]*domain.FiscalPeriod

	GetFunc          func(ctx context.Context, companyID string, year int) (*domain.FiscalPeriod, error)
	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction, companyID string, year int) (*domain.FiscalPeriod, error)
	SetStatusFunc    func(ctx context.Context, tx usecase.Transaction, companyID string, year int, status domain.PeriodStatus, updatedAt time.Time) error
}

func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{periods: make(map[string]*domain.FiscalPeriod)}
}

func periodKey(companyID string, year int) string { return fmt.Sprintf("%s/%d", companyID, year) }

func (m *MockPeriodRepository) Get(ctx context.Context, companyID string, year int) (*domain.FiscalPeriod, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, companyID, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.periods[periodKey(companyID, year)]; ok {
		return p, nil
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, companyID string, year int) (*domain.FiscalPeriod, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, companyID, year)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := periodKey(companyID, year)
	if p, ok := m.periods[key]; ok {
		return p, nil
	}
	p := &domain.FiscalPeriod{CompanyID: companyID, Year: year, Status: domain.PeriodOpen}
	m.periods[key] = p
	return p, nil
}

func (m *MockPeriodRepository) SetStatus(ctx context.Context, tx usecase.Transaction, companyID string, year int, status domain.PeriodStatus, updatedAt time.Time) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, tx, companyID, year, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := periodKey(companyID, year)
	if p, ok := m.periods[key]; ok {
		p.Status = status
		p.UpdatedAt = updatedAt
		return nil
	}
	m.periods[key] = &domain.FiscalPeriod{CompanyID: companyID, Year: year, Status: status, UpdatedAt: updatedAt}
	return nil
}

// MockReportRepository stores tax reports in memory.
type MockReportRepository struct {
	mu      sync.RWMutex
	reports map[string]*domain.TaxReport

	CreateFunc       func(ctx context.Context, report *domain.TaxReport) error
	GetByIDFunc      func(ctx context.Context, companyID, id string) (*domain.TaxReport, error)
	ListByYearFunc   func(ctx context.Context, companyID string, year int) ([]*domain.TaxReport, error)
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, companyID, id string, status domain.ReportStatus, updatedAt time.Time) error
}

func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{reports: make(map[string]*domain.TaxReport)}
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.TaxReport) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, report)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.ID] = report
	return nil
}

func (m *MockReportRepository) GetByID(ctx context.Context, companyID, id string) (*domain.TaxReport, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, companyID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.reports[id]; ok && r.CompanyID == companyID {
		return r, nil
	}
	return nil, domain.ErrReportNotFound
}

func (m *MockReportRepository) ListByYear(ctx context.Context, companyID string, year int) ([]*domain.TaxReport, error) {
	if m.ListByYearFunc != nil {
		return m.ListByYearFunc(ctx, companyID, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TaxReport
	for _, r := range m.reports {
		if r.CompanyID == companyID && (year == 0 || r.Year == year) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockReportRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, companyID, id string, status domain.ReportStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, companyID, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[id]; ok && r.CompanyID == companyID {
		r.Status = status
		r.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrReportNotFound
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockRetrier runs the operation once, without retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
