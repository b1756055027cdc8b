package handler

import (
	"net/http"
	"time"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/usecase"
)

// AccountHandler handles chart-of-accounts HTTP requests.
type AccountHandler struct {
	accountRepo usecase.AccountRepository
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountRepo usecase.AccountRepository) *AccountHandler {
	return &AccountHandler{accountRepo: accountRepo}
}

// Create registers a custom account that extends the standard plan.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !domain.ValidAccountCode(req.Code) {
		writeError(w, http.StatusBadRequest, "invalid account code", "account codes are four digits")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing account name", "")
		return
	}

	account := &domain.Account{
		CompanyID: company,
		Code:      req.Code,
		Name:      req.Name,
		Category:  domain.CategoryForCode(req.Code),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.accountRepo.Create(r.Context(), account); err != nil {
		writeDomainError(w, r, err, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// List lists the company's custom accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	accounts, err := h.accountRepo.List(r.Context(), company)
	if err != nil {
		writeDomainError(w, r, err, "failed to list accounts")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}
