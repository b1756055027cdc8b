package middleware

import (
	"context"
	"net/http"

	"github.com/klarbok/klarbok/internal/infrastructure/logging"
)

// CompanyContext copies the X-Company-ID header into the request context so
// downstream log lines carry the acting company.
func CompanyContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if company := r.Header.Get(CompanyIDHeader); company != "" {
			ctx := context.WithValue(r.Context(), logging.CompanyIDKey, company)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
