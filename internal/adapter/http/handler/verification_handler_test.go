package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/domain"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/usecase"
	"github.com/klarbok/klarbok/internal/usecase/mocks"
)

// Prometheus collectors register globally, so the test binary creates them once.
var testMetrics = metrics.New()

func newTestVerificationHandler() *VerificationHandler {
	uc := usecase.NewVerificationUseCase(
		mocks.NewMockTransactionManager(),
		mocks.NewMockVerificationRepository(),
		mocks.NewMockSequenceRepository(),
		mocks.NewMockAccountRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
	)
	return NewVerificationHandler(uc, testMetrics)
}

func newRouter(h *VerificationHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/verifications", h.Create)
	r.Get("/verifications", h.List)
	r.Get("/verifications/{id}", h.Get)
	return r
}

func postBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(body)
}

func TestVerificationHandler_Create_Success(t *testing.T) {
	router := newRouter(newTestVerificationHandler())

	req := httptest.NewRequest(http.MethodPost, "/verifications", postBody(t, dto.CreateVerificationRequest{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Kontorsmaterial",
		Rows: []dto.RowRequest{
			{AccountCode: "5410", Debit: decimal.RequireFromString("250.00")},
			{AccountCode: "1930", Credit: decimal.RequireFromString("250.00")},
		},
	}))
	req.Header.Set(CompanyIDHeader, "company-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.VerificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Series != "A" || resp.Number != 1 {
		t.Fatalf("expected A1, got %s%d", resp.Series, resp.Number)
	}
	if resp.FiscalYear != 2025 {
		t.Fatalf("expected fiscal year 2025, got %d", resp.FiscalYear)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Rows))
	}
}

func TestVerificationHandler_Create_MissingCompanyHeader(t *testing.T) {
	router := newRouter(newTestVerificationHandler())

	req := httptest.NewRequest(http.MethodPost, "/verifications", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVerificationHandler_Create_UnbalancedRows(t *testing.T) {
	router := newRouter(newTestVerificationHandler())

	req := httptest.NewRequest(http.MethodPost, "/verifications", postBody(t, dto.CreateVerificationRequest{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Obalanserad",
		Rows: []dto.RowRequest{
			{AccountCode: "5410", Debit: decimal.RequireFromString("250.00")},
			{AccountCode: "1930", Credit: decimal.RequireFromString("200.00")},
		},
	}))
	req.Header.Set(CompanyIDHeader, "company-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error == "" {
		t.Fatalf("expected an error message")
	}
}

func TestVerificationHandler_Create_StoreFailureStaysGeneric(t *testing.T) {
	verRepo := mocks.NewMockVerificationRepository()
	verRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, v *domain.Verification) error {
		return errors.New("ERROR: connect to host db-internal.prod:5432 failed (SQLSTATE 08006)")
	}

	uc := usecase.NewVerificationUseCase(
		mocks.NewMockTransactionManager(),
		verRepo,
		mocks.NewMockSequenceRepository(),
		mocks.NewMockAccountRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
	)
	router := newRouter(NewVerificationHandler(uc, testMetrics))

	req := httptest.NewRequest(http.MethodPost, "/verifications", postBody(t, dto.CreateVerificationRequest{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Kontorsmaterial",
		Rows: []dto.RowRequest{
			{AccountCode: "5410", Debit: decimal.RequireFromString("250.00")},
			{AccountCode: "1930", Credit: decimal.RequireFromString("250.00")},
		},
	}))
	req.Header.Set(CompanyIDHeader, "company-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	for _, fragment := range []string{"db-internal", "SQLSTATE", "5432"} {
		if strings.Contains(body, fragment) {
			t.Errorf("response body leaks storage detail %q: %s", fragment, body)
		}
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Message != "internal error" {
		t.Errorf("message = %q, want internal error", resp.Message)
	}
}

func TestVerificationHandler_Get_NotFound(t *testing.T) {
	router := newRouter(newTestVerificationHandler())

	req := httptest.NewRequest(http.MethodGet, "/verifications/missing", nil)
	req.Header.Set(CompanyIDHeader, "company-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestVerificationHandler_CreateThenGet(t *testing.T) {
	router := newRouter(newTestVerificationHandler())

	req := httptest.NewRequest(http.MethodPost, "/verifications", postBody(t, dto.CreateVerificationRequest{
		Date:        time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		Description: "Hyra maj",
		Rows: []dto.RowRequest{
			{AccountCode: "5010", Debit: decimal.RequireFromString("9500.00")},
			{AccountCode: "1930", Credit: decimal.RequireFromString("9500.00")},
		},
	}))
	req.Header.Set(CompanyIDHeader, "company-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created dto.VerificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/verifications/"+created.ID, nil)
	getReq.Header.Set(CompanyIDHeader, "company-1")
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getRec.Code)
	}

	var fetched dto.VerificationResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if fetched.ID != created.ID || fetched.Description != "Hyra maj" {
		t.Fatalf("expected the created verification back, got %+v", fetched)
	}
}
