package handler

import (
	"net/http"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/usecase"
)

// AccrualHandler handles accrual-related HTTP requests.
type AccrualHandler struct {
	accrualUC *usecase.AccrualUseCase
	metrics   *metrics.Metrics
}

// NewAccrualHandler creates a new AccrualHandler.
func NewAccrualHandler(accrualUC *usecase.AccrualUseCase, m *metrics.Metrics) *AccrualHandler {
	return &AccrualHandler{accrualUC: accrualUC, metrics: m}
}

// Preview computes the period breakdown without posting anything.
func (h *AccrualHandler) Preview(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	var req dto.AccrualRequest
	if !decodeBody(w, r, &req) {
		return
	}

	preview, err := h.accrualUC.Preview(r.Context(), req.ToUseCaseInput(company))
	if err != nil {
		writeDomainError(w, r, err, "failed to preview accrual")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccrualPreviewFromUseCase(preview))
}

// Execute posts the accrual verifications. A request with execute=false is
// answered with the preview instead, without writing anything.
func (h *AccrualHandler) Execute(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	var req dto.AccrualRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !req.Execute {
		preview, err := h.accrualUC.Preview(r.Context(), req.ToUseCaseInput(company))
		if err != nil {
			writeDomainError(w, r, err, "failed to preview accrual")
			return
		}

		writeJSON(w, http.StatusOK, dto.AccrualPreviewFromUseCase(preview))

		return
	}

	result, err := h.accrualUC.Execute(r.Context(), req.ToUseCaseInput(company))
	if err != nil {
		writeDomainError(w, r, err, "failed to execute accrual")
		return
	}

	h.metrics.AccrualsExecuted.Inc()
	h.metrics.AccrualPeriods.Observe(float64(result.PeriodCount))

	writeJSON(w, http.StatusCreated, dto.AccrualResultResponse{
		VerificationIDs: result.VerificationIDs,
		GroupID:         result.GroupID,
		PeriodCount:     result.PeriodCount,
		MonthlyAmount:   result.MonthlyAmount,
	})
}
