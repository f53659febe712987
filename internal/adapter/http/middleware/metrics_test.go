package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/api/v1/accounts/acc-1", "/api/v1/accounts/:id"},
		{"/api/v1/accounts/acc-1/transactions", "/api/v1/accounts/:id/transactions"},
		{"/api/v1/transactions/01ABC/approve", "/api/v1/transactions/:id/approve"},
		{"/api/v1/loans/loan-1/repayments", "/api/v1/loans/:id/repayments"},
		{"/api/v1/statements/stmt-1/lines/unmatched", "/api/v1/statements/:id/lines/unmatched"},
		{"/api/v1/audit/transaction/txn-1", "/api/v1/audit/transaction/:id"},
		{"/api/v1/ledger/consistency", "/api/v1/ledger/consistency"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.expected {
			t.Errorf("normalizePath(%s) = %s, want %s", tt.path, got, tt.expected)
		}
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{
			name:       "normalizes transaction path",
			method:     http.MethodGet,
			path:       "/api/v1/transactions/01ABC",
			statusCode: http.StatusTeapot,
		},
		{
			name:       "keeps non-matching path as-is",
			method:     http.MethodPost,
			path:       "/health",
			statusCode: http.StatusCreated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpRequestsTotal.Reset()
			httpRequestDuration.Reset()
			httpRequestsInFlight.Set(0)

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(tc.statusCode)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()

			Metrics(next).ServeHTTP(rr, req)

			if !handlerCalled {
				t.Fatal("expected handler to be called")
			}

			normalized := normalizePath(tc.path)
			count := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, normalized, strconv.Itoa(tc.statusCode)))
			if count != 1 {
				t.Fatalf("expected 1 request recorded, got %f", count)
			}

			if inFlight := testutil.ToFloat64(httpRequestsInFlight); inFlight != 0 {
				t.Fatalf("expected in-flight gauge back at 0, got %f", inFlight)
			}
		})
	}
}
