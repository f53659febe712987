package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed adds an account to the backing store.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, approverID *string, updatedAt time.Time) error
	SetReversalFunc      func(ctx context.Context, tx usecase.Transaction, id, reversalID string, updatedAt time.Time) error
	ListByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Seed(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.txns[id]; ok {
		return txn, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, approverID *string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, approverID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn, ok := m.txns[id]; ok {
		txn.Status = status
		txn.ApproverID = approverID
		txn.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockTransactionRepository) SetReversal(ctx context.Context, tx usecase.Transaction, id, reversalID string, updatedAt time.Time) error {
	if m.SetReversalFunc != nil {
		return m.SetReversalFunc(ctx, tx, id, reversalID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn, ok := m.txns[id]; ok {
		txn.ReversalID = &reversalID
		txn.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, txn := range m.txns {
		if txn.AccountID == accountID {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

// MockGLRepository is a mock implementation of GLRepository.
type MockGLRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.GLAccount
	entries  map[string]*domain.GLEntry

	GetAccountForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.GLAccount, error)
	UpdateAccountBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	CreateEntryFunc             func(ctx context.Context, tx usecase.Transaction, entry *domain.GLEntry) error
	GetEntriesByTransactionFunc func(ctx context.Context, transactionID string) ([]*domain.GLEntry, error)
	GetEntryForUpdateFunc       func(ctx context.Context, tx usecase.Transaction, id string) (*domain.GLEntry, error)
	FindUnmatchedEntriesFunc    func(ctx context.Context, tx usecase.Transaction, glAccountID string, amount decimal.Decimal, from, to time.Time) ([]*domain.GLEntry, error)
	SetStatementLineFunc        func(ctx context.Context, tx usecase.Transaction, entryID, lineID string) error
	CheckConsistencyFunc        func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockGLRepository() *MockGLRepository {
	return &MockGLRepository{
		accounts: make(map[string]*domain.GLAccount),
		entries:  make(map[string]*domain.GLEntry),
	}
}

func (m *MockGLRepository) SeedAccount(account *domain.GLAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockGLRepository) SeedEntry(entry *domain.GLEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
}

func (m *MockGLRepository) GetAccountForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.GLAccount, error) {
	if m.GetAccountForUpdateFunc != nil {
		return m.GetAccountForUpdateFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrGLAccountNotFound
}

func (m *MockGLRepository) UpdateAccountBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateAccountBalanceFunc != nil {
		return m.UpdateAccountBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockGLRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.GLEntry) error {
	if m.CreateEntryFunc != nil {
		return m.CreateEntryFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockGLRepository) GetEntriesByTransaction(ctx context.Context, transactionID string) ([]*domain.GLEntry, error) {
	if m.GetEntriesByTransactionFunc != nil {
		return m.GetEntriesByTransactionFunc(ctx, transactionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.GLEntry
	for _, e := range m.entries {
		if e.TransactionID == transactionID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (m *MockGLRepository) GetEntryForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.GLEntry, error) {
	if m.GetEntryForUpdateFunc != nil {
		return m.GetEntryForUpdateFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockGLRepository) FindUnmatchedEntries(ctx context.Context, tx usecase.Transaction, glAccountID string, amount decimal.Decimal, from, to time.Time) ([]*domain.GLEntry, error) {
	if m.FindUnmatchedEntriesFunc != nil {
		return m.FindUnmatchedEntriesFunc(ctx, tx, glAccountID, amount, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.GLEntry
	for _, e := range m.entries {
		if e.GLAccountID != glAccountID || e.StatementLineID != nil {
			continue
		}
		if !e.Amount.Equal(amount) {
			continue
		}
		if e.EffectiveDate.Before(from) || e.EffectiveDate.After(to) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (m *MockGLRepository) SetStatementLine(ctx context.Context, tx usecase.Transaction, entryID, lineID string) error {
	if m.SetStatementLineFunc != nil {
		return m.SetStatementLineFunc(ctx, tx, entryID, lineID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[entryID]; ok {
		e.StatementLineID = &lineID
	}
	return nil
}

func (m *MockGLRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if m.CheckConsistencyFunc != nil {
		return m.CheckConsistencyFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.Side == domain.GLSideDebit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits, nil
}

// MockLoanRepository is a mock implementation of LoanRepository.
type MockLoanRepository struct {
	mu           sync.RWMutex
	loans        map[string]*domain.Loan
	installments map[string][]*domain.Installment

	GetByIDFunc                 func(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdateFunc        func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error)
	UpdateStatusFunc            func(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, disbursedAt *time.Time, updatedAt time.Time) error
	CreateInstallmentsFunc      func(ctx context.Context, tx usecase.Transaction, installments []*domain.Installment) error
	GetInstallmentsFunc         func(ctx context.Context, loanID string) ([]*domain.Installment, error)
	GetOutstandingForUpdateFunc func(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Installment, error)
	UpdateInstallmentFunc       func(ctx context.Context, tx usecase.Transaction, inst *domain.Installment) error
	MarkOverdueFunc             func(ctx context.Context, asOf time.Time) (int64, error)
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		loans:        make(map[string]*domain.Loan),
		installments: make(map[string][]*domain.Installment),
	}
}

func (m *MockLoanRepository) Seed(loan *domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
}

func (m *MockLoanRepository) SeedInstallments(loanID string, installments []*domain.Installment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installments[loanID] = installments
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, disbursedAt *time.Time, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, disbursedAt, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan, ok := m.loans[id]; ok {
		loan.Status = status
		if disbursedAt != nil {
			loan.DisbursedAt = disbursedAt
		}
		loan.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockLoanRepository) CreateInstallments(ctx context.Context, tx usecase.Transaction, installments []*domain.Installment) error {
	if m.CreateInstallmentsFunc != nil {
		return m.CreateInstallmentsFunc(ctx, tx, installments)
	}
	if len(installments) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loanID := installments[0].LoanID
	m.installments[loanID] = append(m.installments[loanID], installments...)
	return nil
}

func (m *MockLoanRepository) GetInstallments(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	if m.GetInstallmentsFunc != nil {
		return m.GetInstallmentsFunc(ctx, loanID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.installments[loanID], nil
}

func (m *MockLoanRepository) GetOutstandingForUpdate(ctx context.Context, tx usecase.Transaction, loanID string) ([]*domain.Installment, error) {
	if m.GetOutstandingForUpdateFunc != nil {
		return m.GetOutstandingForUpdateFunc(ctx, tx, loanID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var outstanding []*domain.Installment
	for _, inst := range m.installments[loanID] {
		if inst.Status.IsOutstanding() {
			outstanding = append(outstanding, inst)
		}
	}
	sort.Slice(outstanding, func(i, j int) bool {
		return outstanding[i].DueDate.Before(outstanding[j].DueDate)
	})
	return outstanding, nil
}

func (m *MockLoanRepository) UpdateInstallment(ctx context.Context, tx usecase.Transaction, inst *domain.Installment) error {
	if m.UpdateInstallmentFunc != nil {
		return m.UpdateInstallmentFunc(ctx, tx, inst)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.installments[inst.LoanID] {
		if existing.ID == inst.ID {
			m.installments[inst.LoanID][i] = inst
			break
		}
	}
	return nil
}

func (m *MockLoanRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	if m.MarkOverdueFunc != nil {
		return m.MarkOverdueFunc(ctx, asOf)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, insts := range m.installments {
		for _, inst := range insts {
			if inst.Status.IsOutstanding() && inst.Status != domain.InstallmentStatusOverdue && inst.DueDate.Before(asOf) {
				inst.Status = domain.InstallmentStatusOverdue
				n++
			}
		}
	}
	return n, nil
}

// MockStatementRepository is a mock implementation of StatementRepository.
type MockStatementRepository struct {
	mu         sync.RWMutex
	statements map[string]*domain.BankStatement
	lines      map[string]*domain.StatementLine

	CreateStatementFunc  func(ctx context.Context, tx usecase.Transaction, st *domain.BankStatement) error
	GetStatementFunc     func(ctx context.Context, id string) (*domain.BankStatement, error)
	CreateLinesFunc      func(ctx context.Context, tx usecase.Transaction, lines []*domain.StatementLine) (int, error)
	ListUnmatchedFunc    func(ctx context.Context, statementID string) ([]*domain.StatementLine, error)
	GetLineForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.StatementLine, error)
	MarkMatchedFunc      func(ctx context.Context, tx usecase.Transaction, lineID, entryID string, updatedAt time.Time) error
}

func NewMockStatementRepository() *MockStatementRepository {
	return &MockStatementRepository{
		statements: make(map[string]*domain.BankStatement),
		lines:      make(map[string]*domain.StatementLine),
	}
}

func (m *MockStatementRepository) SeedStatement(st *domain.BankStatement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements[st.ID] = st
}

func (m *MockStatementRepository) SeedLine(line *domain.StatementLine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[line.ID] = line
}

func (m *MockStatementRepository) CreateStatement(ctx context.Context, tx usecase.Transaction, st *domain.BankStatement) error {
	if m.CreateStatementFunc != nil {
		return m.CreateStatementFunc(ctx, tx, st)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements[st.ID] = st
	return nil
}

func (m *MockStatementRepository) GetStatement(ctx context.Context, id string) (*domain.BankStatement, error) {
	if m.GetStatementFunc != nil {
		return m.GetStatementFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.statements[id]; ok {
		return st, nil
	}
	return nil, domain.ErrStatementNotFound
}

func (m *MockStatementRepository) CreateLines(ctx context.Context, tx usecase.Transaction, lines []*domain.StatementLine) (int, error) {
	if m.CreateLinesFunc != nil {
		return m.CreateLinesFunc(ctx, tx, lines)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, line := range lines {
		dup := false
		for _, existing := range m.lines {
			if existing.StatementID == line.StatementID && existing.LineNo == line.LineNo {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		m.lines[line.ID] = line
		inserted++
	}
	return inserted, nil
}

func (m *MockStatementRepository) ListUnmatched(ctx context.Context, statementID string) ([]*domain.StatementLine, error) {
	if m.ListUnmatchedFunc != nil {
		return m.ListUnmatchedFunc(ctx, statementID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var lines []*domain.StatementLine
	for _, line := range m.lines {
		if line.StatementID == statementID && line.Status == domain.LineStatusUnmatched {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNo < lines[j].LineNo })
	return lines, nil
}

func (m *MockStatementRepository) GetLineForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.StatementLine, error) {
	if m.GetLineForUpdateFunc != nil {
		return m.GetLineForUpdateFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if line, ok := m.lines[id]; ok {
		return line, nil
	}
	return nil, domain.ErrLineNotFound
}

func (m *MockStatementRepository) MarkMatched(ctx context.Context, tx usecase.Transaction, lineID, entryID string, updatedAt time.Time) error {
	if m.MarkMatchedFunc != nil {
		return m.MarkMatchedFunc(ctx, tx, lineID, entryID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if line, ok := m.lines[lineID]; ok {
		line.Status = domain.LineStatusMatched
		line.MatchedEntryID = &entryID
		line.UpdatedAt = updatedAt
	}
	return nil
}

// MockRiskAlertRepository is a mock implementation of RiskAlertRepository.
type MockRiskAlertRepository struct {
	mu     sync.RWMutex
	alerts map[string]*domain.RiskAlert

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, alert *domain.RiskAlert) error
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.RiskAlert, error)
	ResolveFunc          func(ctx context.Context, tx usecase.Transaction, id, actorID string, resolvedAt time.Time) error
	ListOpenFunc         func(ctx context.Context, limit, offset int) ([]*domain.RiskAlert, error)
}

func NewMockRiskAlertRepository() *MockRiskAlertRepository {
	return &MockRiskAlertRepository{
		alerts: make(map[string]*domain.RiskAlert),
	}
}

func (m *MockRiskAlertRepository) Seed(alert *domain.RiskAlert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[alert.ID] = alert
}

func (m *MockRiskAlertRepository) Create(ctx context.Context, tx usecase.Transaction, alert *domain.RiskAlert) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, alert)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[alert.ID] = alert
	return nil
}

func (m *MockRiskAlertRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RiskAlert, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if alert, ok := m.alerts[id]; ok {
		return alert, nil
	}
	return nil, domain.ErrAlertNotFound
}

func (m *MockRiskAlertRepository) Resolve(ctx context.Context, tx usecase.Transaction, id, actorID string, resolvedAt time.Time) error {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, tx, id, actorID, resolvedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if alert, ok := m.alerts[id]; ok {
		alert.Status = domain.AlertStatusResolved
		alert.ResolvedBy = &actorID
		alert.ResolvedAt = &resolvedAt
	}
	return nil
}

func (m *MockRiskAlertRepository) ListOpen(ctx context.Context, limit, offset int) ([]*domain.RiskAlert, error) {
	if m.ListOpenFunc != nil {
		return m.ListOpenFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var alerts []*domain.RiskAlert
	for _, alert := range m.alerts {
		if alert.Status == domain.AlertStatusOpen {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

// MockFiscalPeriodRepository is a mock implementation of FiscalPeriodRepository.
type MockFiscalPeriodRepository struct {
	mu      sync.RWMutex
	periods []*domain.FiscalPeriod

	FindClosedContainingFunc func(ctx context.Context, tx usecase.Transaction, date time.Time) (*domain.FiscalPeriod, error)
}

func NewMockFiscalPeriodRepository() *MockFiscalPeriodRepository {
	return &MockFiscalPeriodRepository{}
}

func (m *MockFiscalPeriodRepository) Seed(period *domain.FiscalPeriod) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods = append(m.periods, period)
}

func (m *MockFiscalPeriodRepository) FindClosedContaining(ctx context.Context, tx usecase.Transaction, date time.Time) (*domain.FiscalPeriod, error) {
	if m.FindClosedContainingFunc != nil {
		return m.FindClosedContainingFunc(ctx, tx, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.Status == domain.PeriodStatusClosed && p.Contains(date) {
			return p, nil
		}
	}
	return nil, nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc      func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc    func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc        func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByEntityFunc func(ctx context.Context, entityType, entityID string) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Logs returns a snapshot of all recorded audit logs.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditLog, len(m.logs))
	copy(out, m.logs)
	return out
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.logs {
		if filter.EntityType != "" && l.EntityType != filter.EntityType {
			continue
		}
		if filter.ActorID != "" && l.ActorID != filter.ActorID {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (m *MockAuditRepository) GetByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditLog, error) {
	if m.GetByEntityFunc != nil {
		return m.GetByEntityFunc(ctx, entityType, entityID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.logs {
		if l.EntityType == entityType && l.EntityID == entityID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	m.data[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
