package handler

import (
	"net/http"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/usecase"
)

// CorrectionHandler handles correction HTTP requests.
type CorrectionHandler struct {
	correctionUC *usecase.CorrectionUseCase
	metrics      *metrics.Metrics
}

// NewCorrectionHandler creates a new CorrectionHandler.
func NewCorrectionHandler(correctionUC *usecase.CorrectionUseCase, m *metrics.Metrics) *CorrectionHandler {
	return &CorrectionHandler{correctionUC: correctionUC, metrics: m}
}

// Create reverses a verification and optionally posts corrected rows.
func (h *CorrectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	var req dto.CorrectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.correctionUC.Execute(r.Context(), req.ToUseCaseInput(company))
	if err != nil {
		writeDomainError(w, r, err, "failed to post correction")
		return
	}

	h.metrics.CorrectionsPosted.Inc()
	writeJSON(w, http.StatusCreated, dto.CorrectionFromUseCase(result))
}
