package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/usecase"
)

// VerificationHandler handles verification-related HTTP requests.
type VerificationHandler struct {
	verificationUC *usecase.VerificationUseCase
	metrics        *metrics.Metrics
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verificationUC *usecase.VerificationUseCase, m *metrics.Metrics) *VerificationHandler {
	return &VerificationHandler{verificationUC: verificationUC, metrics: m}
}

// Create posts a new verification.
func (h *VerificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	var req dto.CreateVerificationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	v, err := h.verificationUC.CreateVerification(r.Context(), req.ToUseCaseInput(company))
	if err != nil {
		h.metrics.VerificationErrors.WithLabelValues(errorClass(err)).Inc()
		writeDomainError(w, r, err, "failed to post verification")

		return
	}

	h.recordPosted(v)
	writeJSON(w, http.StatusCreated, dto.VerificationFromDomain(v))
}

// CreateBatch posts several verifications atomically.
func (h *VerificationHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	var req dto.CreateBatchVerificationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	verifications, err := h.verificationUC.CreateBatch(r.Context(), req.ToUseCaseInput(company))
	if err != nil {
		h.metrics.VerificationErrors.WithLabelValues(errorClass(err)).Inc()
		writeDomainError(w, r, err, "failed to post verifications")

		return
	}

	for _, v := range verifications {
		h.recordPosted(v)
	}
	writeJSON(w, http.StatusCreated, dto.VerificationsFromDomain(verifications))
}

// Get retrieves a verification by ID.
func (h *VerificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing verification ID", "")
		return
	}

	v, err := h.verificationUC.GetVerification(r.Context(), company, id)
	if err != nil {
		writeDomainError(w, r, err, "failed to get verification")
		return
	}

	writeJSON(w, http.StatusOK, dto.VerificationFromDomain(v))
}

// List lists verifications with optional series, year and date filters.
func (h *VerificationHandler) List(w http.ResponseWriter, r *http.Request) {
	company, ok := companyID(w, r)
	if !ok {
		return
	}

	filter := usecase.VerificationFilter{
		CompanyID: company,
		Series:    r.URL.Query().Get("series"),
		Year:      parseIntQuery(r, "year", 0),
		Limit:     parseIntQuery(r, "limit", 100),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date", err.Error())
			return
		}
		filter.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date", err.Error())
			return
		}
		filter.To = &t
	}

	verifications, err := h.verificationUC.ListVerifications(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err, "failed to list verifications")
		return
	}

	writeJSON(w, http.StatusOK, dto.VerificationsFromDomain(verifications))
}

func (h *VerificationHandler) recordPosted(v *domain.Verification) {
	source := string(domain.SourceManual)
	if v.Source != nil {
		source = string(v.Source.Type)
	}
	h.metrics.VerificationsCreated.WithLabelValues(source).Inc()
	h.metrics.VerificationRows.Observe(float64(len(v.Rows)))
}
