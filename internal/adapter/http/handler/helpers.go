package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/klarbok/klarbok/internal/adapter/http/dto"
	"github.com/klarbok/klarbok/internal/domain"
)

// CompanyIDHeader carries the acting company on every API request.
const CompanyIDHeader = "X-Company-ID"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain error classes to HTTP status codes.
func mapDomainError(err error) int {
	switch domain.Class(err) {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError renders err under the status for its class. Store failures
// carry driver and host detail that must not reach clients: the detail is
// logged and the body gets a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(message)
		writeError(w, status, message, "internal error")

		return
	}

	writeError(w, status, message, err.Error())
}

// companyID extracts the acting company from the request, writing a 400 and
// returning false when the header is missing.
func companyID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(CompanyIDHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing company", "the "+CompanyIDHeader+" header is required")
		return "", false
	}
	return id, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseYearQuery parses a required fiscal year query parameter.
func parseYearQuery(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	val := r.URL.Query().Get(key)
	year, err := strconv.Atoi(val)
	if err != nil || year < 1900 || year > 9999 {
		writeError(w, http.StatusBadRequest, "invalid year", "the "+key+" query parameter must be a four-digit year")
		return 0, false
	}
	return year, true
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// errorClass labels an error by its domain class for metrics.
func errorClass(err error) string {
	switch {
	case errors.Is(domain.Class(err), domain.ErrValidation):
		return "validation"
	case errors.Is(domain.Class(err), domain.ErrNotFound):
		return "not_found"
	case errors.Is(domain.Class(err), domain.ErrConflict):
		return "conflict"
	default:
		return "store"
	}
}
