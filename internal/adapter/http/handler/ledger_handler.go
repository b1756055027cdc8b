package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
)

// LedgerHandler handles ledger inspection HTTP requests.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Consistency checks the double-entry invariant over the whole ledger.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	result, err := h.ledgerUC.CheckConsistency(r.Context(), company)
	if err != nil {
		writeDomainError(w, r, err, "failed to check consistency")
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{
		TotalDebit:  result.TotalDebit,
		TotalCredit: result.TotalCredit,
		Consistent:  result.Consistent,
		CheckedAt:   result.CheckedAt,
	})
}

// AccountBalance returns one account's closing balance for a fiscal year.
func (h *LedgerHandler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	if !domain.ValidAccountCode(code) {
		writeError(w, http.StatusBadRequest, "invalid account code", "account codes are four digits")
		return
	}

	year, ok := parseYearQuery(w, r, "year")
	if !ok {
		return
	}

	balance, err := h.ledgerUC.AccountBalance(r.Context(), company, code, year)
	if err != nil {
		writeDomainError(w, r, err, "failed to compute balance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_code": code,
		"year":         year,
		"balance":      balance,
	})
}

// TrialBalance returns per-account opening, movement and closing balances
// for a fiscal year.
func (h *LedgerHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	year, ok := parseYearQuery(w, r, "year")
	if !ok {
		return
	}

	rows, err := h.ledgerUC.TrialBalance(r.Context(), company, year)
	if err != nil {
		writeDomainError(w, r, err, "failed to compute trial balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromUseCase(rows))
}
