package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/tests/testutil"
)

func TestReconciliationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestRouter(t, testDB)

	t.Run("auto pass matches equal amounts within the window", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := testDB.CreateTestAccount(ctx, "savings-recon", domain.AccountTypeSavings, decimal.Zero)

		// Posting creates a vault entry the statement line should hit.
		postRec := postJSON(t, router, "/api/v1/transactions", dto.CreateTransactionRequest{
			AccountID:   account.ID,
			Direction:   "credit",
			Amount:      decimal.NewFromInt(500),
			Reference:   "deposit",
			CreatorID:   "teller-1",
			CreatorRole: "teller",
		})
		if postRec.Code != http.StatusCreated {
			t.Fatalf("posting failed: %d %s", postRec.Code, postRec.Body.String())
		}

		now := time.Now().UTC()
		statement := testDB.CreateTestStatement(ctx, "First National", now.AddDate(0, -1, 0), now)

		uploadRec := postJSON(t, router, "/api/v1/statements/"+statement.ID+"/lines", dto.UploadLinesRequest{
			ActorID: "ops-1",
			Lines: []dto.StatementLineItem{
				{LineNo: 1, Description: "CASH DEP", Amount: decimal.NewFromInt(500), ValueDate: now},
				{LineNo: 2, Description: "UNKNOWN FEE", Amount: decimal.NewFromInt(75), ValueDate: now},
			},
		})
		if uploadRec.Code != http.StatusCreated {
			t.Fatalf("upload failed: %d %s", uploadRec.Code, uploadRec.Body.String())
		}

		// Re-uploading the same lines inserts nothing.
		repeatRec := postJSON(t, router, "/api/v1/statements/"+statement.ID+"/lines", dto.UploadLinesRequest{
			ActorID: "ops-1",
			Lines: []dto.StatementLineItem{
				{LineNo: 1, Description: "CASH DEP", Amount: decimal.NewFromInt(500), ValueDate: now},
			},
		})
		var repeat dto.UploadLinesResponse
		if err := json.Unmarshal(repeatRec.Body.Bytes(), &repeat); err != nil {
			t.Fatalf("failed to decode upload response: %v", err)
		}
		if repeat.Inserted != 0 {
			t.Fatalf("expected idempotent re-upload, inserted %d", repeat.Inserted)
		}

		reconRec := postJSON(t, router, "/api/v1/statements/"+statement.ID+"/reconcile", nil)
		if reconRec.Code != http.StatusOK {
			t.Fatalf("reconcile failed: %d %s", reconRec.Code, reconRec.Body.String())
		}

		var result dto.ReconcileResponse
		if err := json.Unmarshal(reconRec.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode result: %v", err)
		}
		if result.Matched != 1 || result.Unmatched != 1 {
			t.Fatalf("expected 1 matched / 1 unmatched, got %+v", result)
		}

		unmatchedRec := getJSON(t, router, "/api/v1/statements/"+statement.ID+"/lines/unmatched")
		var unmatched []*dto.StatementLineResponse
		if err := json.Unmarshal(unmatchedRec.Body.Bytes(), &unmatched); err != nil {
			t.Fatalf("failed to decode lines: %v", err)
		}
		if len(unmatched) != 1 || unmatched[0].LineNo != 2 {
			t.Fatalf("expected line 2 unmatched, got %+v", unmatched)
		}
	})

	t.Run("manual match links an ambiguous line", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := testDB.CreateTestAccount(ctx, "savings-manual", domain.AccountTypeSavings, decimal.Zero)

		// Two identical movements make the auto pass ambiguous.
		var txnIDs []string
		for i := 0; i < 2; i++ {
			rec := postJSON(t, router, "/api/v1/transactions", dto.CreateTransactionRequest{
				AccountID:   account.ID,
				Direction:   "credit",
				Amount:      decimal.NewFromInt(250),
				Reference:   "deposit",
				CreatorID:   "teller-1",
				CreatorRole: "teller",
			})
			var txn dto.TransactionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &txn); err != nil {
				t.Fatalf("failed to decode transaction: %v", err)
			}
			txnIDs = append(txnIDs, txn.ID)
		}

		now := time.Now().UTC()
		statement := testDB.CreateTestStatement(ctx, "First National", now.AddDate(0, -1, 0), now)

		postJSON(t, router, "/api/v1/statements/"+statement.ID+"/lines", dto.UploadLinesRequest{
			ActorID: "ops-1",
			Lines: []dto.StatementLineItem{
				{LineNo: 1, Description: "CASH DEP", Amount: decimal.NewFromInt(250), ValueDate: now},
			},
		})

		reconRec := postJSON(t, router, "/api/v1/statements/"+statement.ID+"/reconcile", nil)
		var result dto.ReconcileResponse
		if err := json.Unmarshal(reconRec.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode result: %v", err)
		}
		if result.Matched != 0 {
			t.Fatalf("expected ambiguous line left unmatched, got %+v", result)
		}

		unmatchedRec := getJSON(t, router, "/api/v1/statements/"+statement.ID+"/lines/unmatched")
		var unmatched []*dto.StatementLineResponse
		if err := json.Unmarshal(unmatchedRec.Body.Bytes(), &unmatched); err != nil {
			t.Fatalf("failed to decode lines: %v", err)
		}
		if len(unmatched) != 1 {
			t.Fatalf("expected 1 unmatched line, got %d", len(unmatched))
		}

		entriesRec := getJSON(t, router, "/api/v1/transactions/"+txnIDs[0]+"/entries")
		var entries []*dto.GLEntryResponse
		if err := json.Unmarshal(entriesRec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("failed to decode entries: %v", err)
		}
		var vaultEntryID string
		for _, e := range entries {
			if e.GLAccountID == "GL-1001" {
				vaultEntryID = e.ID
			}
		}
		if vaultEntryID == "" {
			t.Fatal("expected a vault entry")
		}

		matchRec := postJSON(t, router, "/api/v1/reconciliation/matches", dto.ManualMatchRequest{
			LineID:  unmatched[0].ID,
			EntryID: vaultEntryID,
			ActorID: "ops-1",
		})
		if matchRec.Code != http.StatusOK {
			t.Fatalf("manual match failed: %d %s", matchRec.Code, matchRec.Body.String())
		}

		// Matching the line again to another entry must fail.
		otherRec := getJSON(t, router, "/api/v1/transactions/"+txnIDs[1]+"/entries")
		var otherEntries []*dto.GLEntryResponse
		if err := json.Unmarshal(otherRec.Body.Bytes(), &otherEntries); err != nil {
			t.Fatalf("failed to decode entries: %v", err)
		}
		var otherVaultID string
		for _, e := range otherEntries {
			if e.GLAccountID == "GL-1001" {
				otherVaultID = e.ID
			}
		}

		conflictRec := postJSON(t, router, "/api/v1/reconciliation/matches", dto.ManualMatchRequest{
			LineID:  unmatched[0].ID,
			EntryID: otherVaultID,
			ActorID: "ops-1",
		})
		if conflictRec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", conflictRec.Code)
		}
	})
}
