package handler

import (
	"net/http"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/export/agi"
	"github.com/klarbok/klarbok/internal/export/sie"
	"github.com/klarbok/klarbok/internal/export/sru"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/usecase"
)

// ExportHandler handles file export HTTP requests.
type ExportHandler struct {
	exportUC *usecase.ExportUseCase
	metrics  *metrics.Metrics
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportUC *usecase.ExportUseCase, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{exportUC: exportUC, metrics: m}
}

// SIE renders a full-year SIE type 4 file.
func (h *ExportHandler) SIE(w http.ResponseWriter, r *http.Request) {
	company, year, ok := h.parseCompanyYear(w, r)
	if !ok {
		return
	}

	doc, err := h.exportUC.BuildSIE(r.Context(), company, year)
	if err != nil {
		writeDomainError(w, r, err, "failed to build SIE export")
		return
	}

	data, err := sie.Render(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render SIE export", err.Error())
		return
	}

	h.metrics.ExportsGenerated.WithLabelValues("sie").Inc()

	w.Header().Set("Content-Type", "text/plain; charset=ISO-8859-1")
	w.Header().Set("Content-Disposition", "attachment; filename=export.se")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// SRU renders INFO.SRU-style field records for an income declaration.
func (h *ExportHandler) SRU(w http.ResponseWriter, r *http.Request) {
	company, year, ok := h.parseCompanyYear(w, r)
	if !ok {
		return
	}

	file, err := h.exportUC.BuildSRU(r.Context(), company, year, r.URL.Query().Get("version"))
	if err != nil {
		writeDomainError(w, r, err, "failed to build SRU export")
		return
	}

	data, err := sru.Render(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render SRU export", err.Error())
		return
	}

	h.metrics.ExportsGenerated.WithLabelValues("sru").Inc()

	w.Header().Set("Content-Type", "text/plain; charset=ISO-8859-1")
	w.Header().Set("Content-Disposition", "attachment; filename=BLANKETTER.SRU")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// AGI renders an employer declaration XML file from submitted payroll lines.
func (h *ExportHandler) AGI(w http.ResponseWriter, r *http.Request) {
	companyIDValue, ok := companyID(w, r)
	if !ok {
		return
	}

	var req dto.AGIExportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	company := usecase.CompanyInfo{
		ID:        companyIDValue,
		Name:      req.CompanyName,
		OrgNumber: req.OrgNumber,
	}

	decl, err := h.exportUC.BuildAGI(company, req.Period, req.ToDomainRecords())
	if err != nil {
		writeDomainError(w, r, err, "failed to build AGI export")
		return
	}

	data, err := agi.Render(decl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render AGI export", err.Error())
		return
	}

	h.metrics.ExportsGenerated.WithLabelValues("agi").Inc()

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ExportHandler) parseCompanyYear(w http.ResponseWriter, r *http.Request) (usecase.CompanyInfo, int, bool) {
	id, ok := companyID(w, r)
	if !ok {
		return usecase.CompanyInfo{}, 0, false
	}

	year, ok := parseYearQuery(w, r, "year")
	if !ok {
		return usecase.CompanyInfo{}, 0, false
	}

	orgNumber := r.URL.Query().Get("org_number")
	if orgNumber == "" {
		writeError(w, http.StatusBadRequest, "missing organisation number", "the org_number query parameter is required")
		return usecase.CompanyInfo{}, 0, false
	}

	return usecase.CompanyInfo{
		ID:        id,
		Name:      r.URL.Query().Get("company_name"),
		OrgNumber: orgNumber,
	}, year, true
}
