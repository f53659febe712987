package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/tests/testutil"
)

// Fires parallel postings at a single account and checks that the row
// lock serializes them: the final balance is the exact signed sum and
// the ledger stays balanced, with no lost updates.
func TestConcurrentPostings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestRouter(t, testDB)

	account := testDB.CreateTestAccount(ctx, "busy-wallet", domain.AccountTypeWallet, decimal.NewFromInt(10000))

	const credits = 12
	const debits = 8

	var wg sync.WaitGroup
	codes := make(chan int, credits+debits)

	post := func(direction string, amount int64, ref string) {
		defer wg.Done()
		rec := postJSON(t, router, "/api/v1/transactions", dto.CreateTransactionRequest{
			AccountID:   account.ID,
			Direction:   direction,
			Amount:      decimal.NewFromInt(amount),
			Reference:   ref,
			CreatorID:   "teller-1",
			CreatorRole: "teller",
		})
		codes <- rec.Code
	}

	wg.Add(credits + debits)
	for i := 0; i < credits; i++ {
		go post("credit", 500, "concurrent deposit")
	}
	for i := 0; i < debits; i++ {
		go post("debit", 250, "concurrent withdrawal")
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		if code != http.StatusCreated {
			t.Fatalf("expected every posting to return 201, got %d", code)
		}
	}

	// 10000 + 12*500 - 8*250 = 14000
	var acc dto.AccountResponse
	rec := getJSON(t, router, "/api/v1/accounts/"+account.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &acc); err != nil {
		t.Fatalf("failed to decode account: %v", err)
	}
	if !acc.Balance.Equal(decimal.NewFromInt(14000)) {
		t.Errorf("expected balance 14000 after concurrent postings, got %s", acc.Balance)
	}

	var txnCount int
	if err := testDB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = $1 AND status = 'posted'`,
		account.ID,
	).Scan(&txnCount); err != nil {
		t.Fatalf("failed to count transactions: %v", err)
	}
	if txnCount != credits+debits {
		t.Errorf("expected %d posted transactions, got %d", credits+debits, txnCount)
	}

	var entryCount int
	if err := testDB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM gl_entries e
		 JOIN transactions t ON t.id = e.transaction_id
		 WHERE t.account_id = $1`,
		account.ID,
	).Scan(&entryCount); err != nil {
		t.Fatalf("failed to count gl entries: %v", err)
	}
	if entryCount != 2*(credits+debits) {
		t.Errorf("expected %d gl entries, got %d", 2*(credits+debits), entryCount)
	}

	rec = getJSON(t, router, "/api/v1/ledger/consistency")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected consistent ledger after concurrent postings, got %d: %s", rec.Code, rec.Body.String())
	}
}
