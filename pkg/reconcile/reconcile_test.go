package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholarled/paper-nft-go/internal/storage"
	"github.com/scholarled/paper-nft-go/pkg/journal"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/ledger/ledgertest"
	"github.com/scholarled/paper-nft-go/pkg/mint"
	"github.com/scholarled/paper-nft-go/pkg/payload"
)

func tokenPayload(t *testing.T, hash string) []byte {
	t.Helper()
	encoded, err := payload.Encode(payload.Record{ContentHash: hash, Title: "t", Authors: "a", Timestamp: time.Unix(0, 0).UTC()})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return encoded
}

func outstanding(t *testing.T, store *journal.Store, hash string, outcome mint.Outcome) string {
	t.Helper()
	id, err := store.Begin(payload.Record{ContentHash: hash, Title: "t"}, "rOwner")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := store.Finish(id, outcome); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	return id
}

func newTestReconciler(t *testing.T, store *journal.Store, client ledger.Client) *Reconciler {
	t.Helper()
	logger := zerolog.Nop()
	reconciler, err := NewReconciler(Config{Journal: store, Client: client, Logger: &logger})
	if err != nil {
		t.Fatalf("NewReconciler failed: %v", err)
	}
	return reconciler
}

func TestNewReconcilerValidation(t *testing.T) {
	if _, err := NewReconciler(Config{Client: ledgertest.New()}); err == nil {
		t.Fatal("expected error for missing journal")
	}
	if _, err := NewReconciler(Config{Journal: journal.NewStore(storage.NewMemory())}); err == nil {
		t.Fatal("expected error for missing client")
	}
}

func TestRunMatchesPayloadHash(t *testing.T) {
	store := journal.NewStore(storage.NewMemory())
	id := outstanding(t, store, "ab12", mint.Outcome{Success: true, Unresolved: true, TxRef: "TXU"})

	fake := ledgertest.New()
	fake.AddToken(ledger.TokenRecord{TokenID: "OTHER", Owner: "rOwner", Payload: tokenPayload(t, "ffff")})
	fake.AddToken(ledger.TokenRecord{TokenID: "MATCH", Owner: "rOwner", Payload: tokenPayload(t, "AB12")})
	fake.AddToken(ledger.TokenRecord{TokenID: "JUNK", Owner: "rOwner", Payload: []byte("not a record")})

	results, err := newTestReconciler(t, store, fake).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].Action != ActionReconciled || results[0].TokenID != "MATCH" {
		t.Fatalf("unexpected results: %+v", results)
	}

	entry, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.State != journal.StateReconciled || entry.TokenID != "MATCH" || entry.Confidence != ConfidencePayload {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestRunPrefersFetchedTransaction(t *testing.T) {
	store := journal.NewStore(storage.NewMemory())
	outstanding(t, store, "ab12", mint.Outcome{Unknown: true, TxRef: "TXK"})

	fake := ledgertest.New()
	fake.Transactions["TXK"] = ledger.SubmitResult{Code: ledgertest.SuccessCode, Diff: ledgertest.CreatedPage("FROM-DIFF")}

	results, err := newTestReconciler(t, store, fake).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].TokenID != "FROM-DIFF" || results[0].Detail != "exact" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRunMarksRejectedTransaction(t *testing.T) {
	store := journal.NewStore(storage.NewMemory())
	id := outstanding(t, store, "ab12", mint.Outcome{Unknown: true, TxRef: "TXR"})

	fake := ledgertest.New()
	fake.Transactions["TXR"] = ledger.SubmitResult{Code: "tecNO_PERMISSION"}

	results, err := newTestReconciler(t, store, fake).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].Action != ActionRejected {
		t.Fatalf("unexpected results: %+v", results)
	}
	entry, _ := store.Get(id)
	if entry.State != journal.StateRejected || entry.Code != "tecNO_PERMISSION" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestRunLeavesAmbiguousEntries(t *testing.T) {
	store := journal.NewStore(storage.NewMemory())
	id := outstanding(t, store, "ab12", mint.Outcome{Success: true, Unresolved: true})

	fake := ledgertest.New()
	fake.AddToken(ledger.TokenRecord{TokenID: "ONE", Payload: tokenPayload(t, "ab12")})
	fake.AddToken(ledger.TokenRecord{TokenID: "TWO", Payload: tokenPayload(t, "ab12")})

	results, err := newTestReconciler(t, store, fake).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].Action != ActionSkipped {
		t.Fatalf("unexpected results: %+v", results)
	}
	entry, _ := store.Get(id)
	if entry.State != journal.StateUnresolved {
		t.Fatalf("expected entry to stay unresolved, got %s", entry.State)
	}
}

func TestRunSkipsClaimedTokens(t *testing.T) {
	store := journal.NewStore(storage.NewMemory())
	outstanding(t, store, "ab12", mint.Outcome{Success: true, Token: &ledger.TokenEntry{TokenID: "ONE"}})
	outstanding(t, store, "ab12", mint.Outcome{Success: true, Unresolved: true})

	fake := ledgertest.New()
	fake.AddToken(ledger.TokenRecord{TokenID: "ONE", Payload: tokenPayload(t, "ab12")})
	fake.AddToken(ledger.TokenRecord{TokenID: "TWO", Payload: tokenPayload(t, "ab12")})

	results, err := newTestReconciler(t, store, fake).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || results[0].TokenID != "TWO" {
		t.Fatalf("expected unclaimed token TWO, got %+v", results)
	}
}

func TestRunWithNothingOutstanding(t *testing.T) {
	store := journal.NewStore(storage.NewMemory())
	results, err := newTestReconciler(t, store, ledgertest.New()).Run(context.Background())
	if err != nil || len(results) != 0 {
		t.Fatalf("expected no work, got %+v (%v)", results, err)
	}
}
