package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "verification path",
			input:    "/api/v1/verifications/01ABC123",
			expected: "/api/v1/verifications/:id",
		},
		{
			name:     "report path with suffix",
			input:    "/api/v1/reports/01ABC123/submit",
			expected: "/api/v1/reports/:id/submit",
		},
		{
			name:     "closing year path",
			input:    "/api/v1/closing/2024/execute",
			expected: "/api/v1/closing/:id/execute",
		},
		{
			name:     "non-matching path",
			input:    "/api/v1/ledger/consistency",
			expected: "/api/v1/ledger/consistency",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizePath(tc.input); got != tc.expected {
				t.Fatalf("normalizePath(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
