package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/bankcore/internal/adapter/repository/postgres"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/config"
	"github.com/iho/bankcore/internal/infrastructure/logger"
	"github.com/iho/bankcore/internal/infrastructure/postgres"
	"github.com/iho/bankcore/internal/usecase"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankcore-cli",
		Short: "BankCore back-office CLI",
		Long:  `A command line interface for operating the BankCore posting and reconciliation engine.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BankCore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that total debits equal total credits",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	})
	rootCmd.AddCommand(ledgerCmd)

	// Statement commands
	statementsCmd := &cobra.Command{
		Use:   "statements",
		Short: "Bank statement operations",
	}
	statementsCmd.AddCommand(&cobra.Command{
		Use:   "reconcile <statement-id>",
		Short: "Run the automatic matching pass over a statement",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			reconcileStatement(args[0])
		},
	})
	rootCmd.AddCommand(statementsCmd)

	// Loan commands
	loansCmd := &cobra.Command{
		Use:   "loans",
		Short: "Loan book operations",
	}
	loansCmd.AddCommand(&cobra.Command{
		Use:   "mark-overdue",
		Short: "Flag installments past their due date as overdue",
		Run: func(cmd *cobra.Command, args []string) {
			markOverdue()
		},
	})
	rootCmd.AddCommand(loansCmd)

	// Account commands
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Customer account operations",
	}
	createAccountCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new customer account",
		Run: func(cmd *cobra.Command, args []string) {
			customerID, _ := cmd.Flags().GetString("customer")
			name, _ := cmd.Flags().GetString("name")
			accType, _ := cmd.Flags().GetString("type")
			balance, _ := cmd.Flags().GetString("balance")
			createAccount(customerID, name, accType, balance)
		},
	}
	createAccountCmd.Flags().String("customer", "", "Customer ID the account belongs to")
	createAccountCmd.Flags().String("name", "", "Display name")
	createAccountCmd.Flags().String("type", "savings", "Account type (savings, current, wallet, internal)")
	createAccountCmd.Flags().String("balance", "0", "Opening balance")
	_ = createAccountCmd.MarkFlagRequired("customer")
	_ = createAccountCmd.MarkFlagRequired("name")
	accountsCmd.AddCommand(createAccountCmd)

	listAccountsCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			listAccounts(limit, offset)
		},
	}
	listAccountsCmd.Flags().Int("limit", 50, "Maximum rows to return")
	listAccountsCmd.Flags().Int("offset", 0, "Rows to skip")
	accountsCmd.AddCommand(listAccountsCmd)
	rootCmd.AddCommand(accountsCmd)

	// Audit commands
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail queries",
	}
	auditListCmd := &cobra.Command{
		Use:   "list",
		Short: "List audit rows, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			actor, _ := cmd.Flags().GetString("actor")
			action, _ := cmd.Flags().GetString("action")
			entityType, _ := cmd.Flags().GetString("entity-type")
			entityID, _ := cmd.Flags().GetString("entity-id")
			kind, _ := cmd.Flags().GetString("kind")
			limit, _ := cmd.Flags().GetInt("limit")
			listAudit(domain.AuditFilter{
				ActorID:    actor,
				Action:     action,
				EntityType: entityType,
				EntityID:   entityID,
				Kind:       domain.AuditKind(kind),
				Limit:      limit,
			})
		},
	}
	auditListCmd.Flags().String("actor", "", "Filter by actor ID")
	auditListCmd.Flags().String("action", "", "Filter by action")
	auditListCmd.Flags().String("entity-type", "", "Filter by entity type")
	auditListCmd.Flags().String("entity-id", "", "Filter by entity ID")
	auditListCmd.Flags().String("kind", "", "Filter by kind (business, security)")
	auditListCmd.Flags().Int("limit", 50, "Maximum rows to return")
	auditCmd.AddCommand(auditListCmd)
	rootCmd.AddCommand(auditCmd)

	// Migration commands
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(false)
		},
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(true)
		},
	})
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
	if consistent, ok := result["consistent"].(bool); ok {
		fmt.Printf("Consistent: %v\n", consistent)
	}
}

// reconcileStatement runs the automatic pass directly against the
// database. Matching locks lines and vault entries, so concurrent
// uploads can deadlock against it; the retrier reruns the pass on
// deadlock or serialization failure.
func reconcileStatement(statementID string) {
	cfg, reconUC, cleanup := bootstrap()
	defer cleanup()

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Service: "bankcore-cli"})
	retrier := postgresRepo.NewRetrier(appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var result *usecase.AutoReconcileResult
	err := retrier.Retry(ctx, func() error {
		var rerr error
		result, rerr = reconUC.AutoReconcile(ctx, statementID)
		return rerr
	})
	if err != nil {
		fmt.Printf("Reconciliation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Reconciliation complete\nMatched: %d\nUnmatched: %d\n", result.MatchedCount, result.UnmatchedCount)
}

func markOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, cleanup := openPool(ctx)
	defer cleanup()

	loanRepo := postgresRepo.NewLoanRepository(pool)
	marked, err := loanRepo.MarkOverdue(ctx, time.Now())
	if err != nil {
		fmt.Printf("Overdue sweep failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Overdue sweep complete\nInstallments marked: %d\n", marked)
}

func createAccount(customerID, name, accType, balance string) {
	t := domain.AccountType(accType)
	if !t.IsValid() {
		fmt.Printf("Invalid account type: %s\n", accType)
		os.Exit(1)
	}
	opening, err := decimal.NewFromString(balance)
	if err != nil {
		fmt.Printf("Invalid opening balance: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, cleanup := openPool(ctx)
	defer cleanup()

	now := time.Now().UTC()
	account := &domain.Account{
		ID:         postgresRepo.NewULIDGenerator().Generate(),
		CustomerID: customerID,
		Name:       name,
		Type:       t,
		Status:     domain.AccountStatusActive,
		Balance:    opening,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := postgresRepo.NewAccountRepository(pool).Create(ctx, account); err != nil {
		fmt.Printf("Account creation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Account created\nID: %s\n", account.ID)
}

func listAccounts(limit, offset int) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, cleanup := openPool(ctx)
	defer cleanup()

	accounts, err := postgresRepo.NewAccountRepository(pool).List(ctx, limit, offset)
	if err != nil {
		fmt.Printf("Account listing failed: %v\n", err)
		os.Exit(1)
	}

	for _, a := range accounts {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", a.ID, a.CustomerID, a.Name, a.Type, a.Balance.StringFixed(2))
	}
	fmt.Printf("Total: %d\n", len(accounts))
}

func listAudit(filter domain.AuditFilter) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, cleanup := openPool(ctx)
	defer cleanup()

	logs, err := postgresRepo.NewAuditRepository(pool).List(ctx, filter)
	if err != nil {
		fmt.Printf("Audit listing failed: %v\n", err)
		os.Exit(1)
	}

	for _, l := range logs {
		fmt.Printf("%s\t%s\t%s\t%s/%s\t%s\n",
			l.CreatedAt.Format(time.RFC3339), l.Kind, l.ActorID, l.EntityType, l.EntityID, l.Action)
	}
	fmt.Printf("Total: %d\n", len(logs))
}

func openPool(ctx context.Context) (*pgxpool.Pool, func()) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		fmt.Printf("Failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}

	return pool, pool.Close
}

func runMigrations(down bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if down {
		err = postgres.RunMigrationsDown(cfg.DatabaseURL, "migrations")
	} else {
		err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations applied")
}

// bootstrap wires the reconciliation use case against the configured
// database. The returned cleanup closes the pool.
func bootstrap() (*config.Config, *usecase.ReconciliationUseCase, func()) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		fmt.Printf("Failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}

	txManager := postgresRepo.NewTxManager(pool)
	statementRepo := postgresRepo.NewStatementRepository(pool)
	glRepo := postgresRepo.NewGLRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	reconUC := usecase.NewReconciliationUseCase(txManager, statementRepo, glRepo, auditRepo, idGen, cfg.GLVaultAccountID, nil)

	return cfg, reconUC, pool.Close
}
