package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/usecase"
)

// ClosingHandler handles year-end closing HTTP requests.
type ClosingHandler struct {
	closingUC *usecase.ClosingUseCase
	metrics   *metrics.Metrics
}

// NewClosingHandler creates a new ClosingHandler.
func NewClosingHandler(closingUC *usecase.ClosingUseCase, m *metrics.Metrics) *ClosingHandler {
	return &ClosingHandler{closingUC: closingUC, metrics: m}
}

// Preview computes the proposed closing entries without posting.
func (h *ClosingHandler) Preview(w http.ResponseWriter, r *http.Request) {
	company, year, companyType, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	preview, err := h.closingUC.Preview(r.Context(), company, year, companyType)
	if err != nil {
		writeDomainError(w, r, err, "failed to preview closing")
		return
	}

	writeJSON(w, http.StatusOK, dto.ClosingPreviewFromUseCase(preview))
}

// Execute posts the closing entries and closes the fiscal year.
func (h *ClosingHandler) Execute(w http.ResponseWriter, r *http.Request) {
	company, year, companyType, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	result, err := h.closingUC.Execute(r.Context(), company, year, companyType)
	if err != nil {
		writeDomainError(w, r, err, "failed to execute closing")
		return
	}

	h.metrics.ClosingsExecuted.WithLabelValues(string(companyType)).Inc()

	writeJSON(w, http.StatusCreated, dto.ClosingResultResponse{
		VerificationIDs: result.VerificationIDs,
		NetResult:       result.NetResult,
		Tax:             result.Tax,
	})
}

func (h *ClosingHandler) parseParams(w http.ResponseWriter, r *http.Request) (string, int, domain.CompanyType, bool) {
	company, ok := companyID(w, r)
	if !ok {
		return "", 0, "", false
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", "the year path segment must be numeric")
		return "", 0, "", false
	}

	companyType := domain.CompanyType(r.URL.Query().Get("company_type"))
	if companyType == "" {
		companyType = domain.CompanyAB
	}
	if companyType != domain.CompanyAB && companyType != domain.CompanyEF {
		writeError(w, http.StatusBadRequest, "invalid company type", "company_type must be AB or EF")
		return "", 0, "", false
	}

	return company, year, companyType, true
}
