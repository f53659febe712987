package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/adapter/http/handler"
	apimiddleware "github.com/iho/bankcore/internal/adapter/http/middleware"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
		cfg.IdempotencyKeyTTL = time.Hour
	}))

	body := `{"account_id":"acc-1","direction":"credit","amount":"100","reference":"DEP-1","creator_id":"u1","creator_role":"teller"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/transactions/",
		"POST /api/v1/transactions/{id}/approve",
		"POST /api/v1/transactions/{id}/reverse",
		"GET /api/v1/accounts/{id}",
		"POST /api/v1/loans/{id}/disburse",
		"POST /api/v1/loans/{id}/repayments",
		"POST /api/v1/statements/",
		"POST /api/v1/statements/{id}/reconcile",
		"POST /api/v1/reconciliation/matches",
		"GET /api/v1/alerts/",
		"GET /api/v1/ledger/consistency",
		"GET /api/v1/audit/{entityType}/{entityID}",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		TransactionHandler:    handler.NewTransactionHandler(&stubPostingService{}),
		LoanHandler:           handler.NewLoanHandler(&stubLoanService{}),
		ReconciliationHandler: handler.NewReconciliationHandler(&stubReconciliationService{}),
		AlertHandler:          handler.NewAlertHandler(&stubAlertService{}),
		LedgerHandler:         handler.NewLedgerHandler(&stubLedgerService{}),
		HealthHandler:         &handler.HealthHandler{},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubPostingService struct{}

func (stubPostingService) CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return &domain.Transaction{ID: "txn"}, nil
}

func (stubPostingService) Approve(ctx context.Context, transactionID, approverID string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: transactionID}, nil
}

func (stubPostingService) Reject(ctx context.Context, transactionID, approverID string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: transactionID}, nil
}

func (stubPostingService) Reverse(ctx context.Context, transactionID, actorID string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: transactionID}, nil
}

func (stubPostingService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: id}, nil
}

func (stubPostingService) GetEntries(ctx context.Context, transactionID string) ([]*domain.GLEntry, error) {
	return []*domain.GLEntry{}, nil
}

func (stubPostingService) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	return []*domain.Transaction{}, nil
}

func (stubPostingService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

type stubLoanService struct{}

func (stubLoanService) Disburse(ctx context.Context, loanID, actorID string) (*domain.Loan, error) {
	return &domain.Loan{ID: loanID}, nil
}

func (stubLoanService) Repay(ctx context.Context, loanID string, amount decimal.Decimal, actorID string) (*usecase.RepayResult, error) {
	return &usecase.RepayResult{}, nil
}

func (stubLoanService) GetLoan(ctx context.Context, id string) (*domain.Loan, []*domain.Installment, error) {
	return &domain.Loan{ID: id}, []*domain.Installment{}, nil
}

type stubReconciliationService struct{}

func (stubReconciliationService) RegisterStatement(ctx context.Context, input usecase.RegisterStatementInput) (*domain.BankStatement, error) {
	return &domain.BankStatement{ID: "stmt"}, nil
}

func (stubReconciliationService) UploadLines(ctx context.Context, statementID, actorID string, inputs []usecase.LineInput) (int, error) {
	return 0, nil
}

func (stubReconciliationService) AutoReconcile(ctx context.Context, statementID string) (*usecase.AutoReconcileResult, error) {
	return &usecase.AutoReconcileResult{}, nil
}

func (stubReconciliationService) ListUnmatched(ctx context.Context, statementID string) ([]*domain.StatementLine, error) {
	return []*domain.StatementLine{}, nil
}

func (stubReconciliationService) ManualMatch(ctx context.Context, lineID, entryID, actorID string) error {
	return nil
}

type stubAlertService struct{}

func (stubAlertService) ListOpen(ctx context.Context, limit, offset int) ([]*domain.RiskAlert, error) {
	return []*domain.RiskAlert{}, nil
}

func (stubAlertService) Resolve(ctx context.Context, alertID, actorID string) error {
	return nil
}

type stubLedgerService struct{}

func (stubLedgerService) CheckConsistency(ctx context.Context) error {
	return nil
}

func (stubLedgerService) AuditTrail(ctx context.Context, entityType, entityID string) ([]*domain.AuditLog, error) {
	return []*domain.AuditLog{}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
