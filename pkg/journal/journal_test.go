package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/scholarled/paper-nft-go/internal/storage"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/mint"
	"github.com/scholarled/paper-nft-go/pkg/payload"
	"github.com/scholarled/paper-nft-go/pkg/resolver"
)

func newTestStore() *Store {
	store := NewStore(storage.NewMemory())
	tick := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return store
}

func record(title string) payload.Record {
	return payload.Record{ContentHash: "ab12", Title: title, Authors: "a"}
}

func TestJournalLifecycle(t *testing.T) {
	store := newTestStore()

	id, err := store.Begin(record("paper"), "rAuthor")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	entry, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.State != StatePending || entry.Account != "rAuthor" || entry.ContentHash != "ab12" {
		t.Fatalf("unexpected pending entry: %+v", entry)
	}

	if err := store.SetTxRef(id, "TX1"); err != nil {
		t.Fatalf("SetTxRef failed: %v", err)
	}
	err = store.Finish(id, mint.Outcome{
		Success:    true,
		Token:      &ledger.TokenEntry{TokenID: "T-1"},
		Confidence: resolver.ConfidenceExact,
		Code:       "tesSUCCESS",
	})
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	entry, err = store.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.State != StateMinted || entry.TokenID != "T-1" || entry.TxRef != "TX1" || entry.Confidence != "exact" {
		t.Fatalf("unexpected minted entry: %+v", entry)
	}
	if !entry.UpdatedAt.After(entry.CreatedAt) {
		t.Fatalf("expected UpdatedAt after CreatedAt: %+v", entry)
	}
}

func TestJournalStates(t *testing.T) {
	cases := []struct {
		outcome  mint.Outcome
		expected State
	}{
		{mint.Outcome{Unknown: true, TxRef: "TX"}, StateUnknown},
		{mint.Outcome{Success: true, Unresolved: true}, StateUnresolved},
		{mint.Outcome{Code: "tecFAIL"}, StateRejected},
		{mint.Outcome{}, StateFailed},
	}

	store := newTestStore()
	for _, tc := range cases {
		id, err := store.Begin(record("x"), "rAuthor")
		if err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		if err := store.Finish(id, tc.outcome); err != nil {
			t.Fatalf("Finish failed: %v", err)
		}
		entry, err := store.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if entry.State != tc.expected {
			t.Fatalf("outcome %+v: expected %s, got %s", tc.outcome, tc.expected, entry.State)
		}
	}

	outstanding, err := store.Outstanding()
	if err != nil {
		t.Fatalf("Outstanding failed: %v", err)
	}
	if len(outstanding) != 2 || outstanding[0].State != StateUnknown || outstanding[1].State != StateUnresolved {
		t.Fatalf("unexpected outstanding entries: %+v", outstanding)
	}

	all, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != len(cases) {
		t.Fatalf("expected %d entries, got %d", len(cases), len(all))
	}
}

func TestJournalMarkReconciled(t *testing.T) {
	store := newTestStore()
	id, err := store.Begin(record("x"), "rAuthor")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := store.MarkReconciled(id, "T-9", "exact"); err != nil {
		t.Fatalf("MarkReconciled failed: %v", err)
	}
	entry, _ := store.Get(id)
	if entry.State != StateReconciled || entry.TokenID != "T-9" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.State.NeedsReconcile() {
		t.Fatal("reconciled entries must not need reconciliation")
	}
}

func TestJournalUnknownID(t *testing.T) {
	store := newTestStore()
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.SetTxRef("missing", "TX"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJournalBadgerBackend(t *testing.T) {
	db, err := storage.NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger failed: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	id, err := store.Begin(record("badger"), "rAuthor")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	entry, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Title != "badger" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}
