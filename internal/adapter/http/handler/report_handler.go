package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/usecase"
)

// ReportHandler handles tax report HTTP requests.
type ReportHandler struct {
	taxUC   *usecase.TaxFieldUseCase
	metrics *metrics.Metrics
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(taxUC *usecase.TaxFieldUseCase, m *metrics.Metrics) *ReportHandler {
	return &ReportHandler{taxUC: taxUC, metrics: m}
}

// ComputeFields evaluates the field mapping for a fiscal year without
// persisting anything.
func (h *ReportHandler) ComputeFields(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	year, ok := parseYearQuery(w, r, "year")
	if !ok {
		return
	}

	result, err := h.taxUC.ComputeFields(r.Context(), company, year, r.URL.Query().Get("version"))
	if err != nil {
		writeDomainError(w, r, err, "failed to compute fields")
		return
	}

	h.metrics.ReportsComputed.WithLabelValues(result.MappingVersion).Inc()
	writeJSON(w, http.StatusOK, dto.FieldResultFromUseCase(result))
}

// CreateDraft computes and stores a draft report.
func (h *ReportHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	var req dto.CreateReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reportType := domain.ReportType(req.Type)
	if reportType == "" {
		reportType = domain.ReportIncomeDeclaration
	}

	report, err := h.taxUC.CreateDraftReport(r.Context(), company, req.Year, reportType, req.MappingVersion)
	if err != nil {
		writeDomainError(w, r, err, "failed to create draft report")
		return
	}

	h.metrics.ReportsComputed.WithLabelValues(report.MappingVersion).Inc()
	writeJSON(w, http.StatusCreated, dto.TaxReportFromDomain(report))
}

// Submit flips a draft report to submitted.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing report ID", "")
		return
	}

	report, err := h.taxUC.SubmitReport(r.Context(), company, id)
	if err != nil {
		writeDomainError(w, r, err, "failed to submit report")
		return
	}

	writeJSON(w, http.StatusOK, dto.TaxReportFromDomain(report))
}

// Get retrieves a report by ID.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing report ID", "")
		return
	}

	report, err := h.taxUC.GetReport(r.Context(), company, id)
	if err != nil {
		writeDomainError(w, r, err, "failed to get report")
		return
	}

	writeJSON(w, http.StatusOK, dto.TaxReportFromDomain(report))
}

// List lists reports, optionally filtered by year.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	reports, err := h.taxUC.ListReports(r.Context(), company, parseIntQuery(r, "year", 0))
	if err != nil {
		writeDomainError(w, r, err, "failed to list reports")
		return
	}

	writeJSON(w, http.StatusOK, dto.TaxReportsFromDomain(reports))
}
