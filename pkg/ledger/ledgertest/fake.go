// Package ledgertest provides an in-memory ledger.Client for tests.
package ledgertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
)

// Fake is a scriptable ledger.Client. The zero value is not usable; call
// New.
type Fake struct {
	mu sync.Mutex

	// Results are returned by SubmitAndAwaitFinality in order. When empty,
	// a success result with an empty diff is returned.
	Results []ledger.SubmitResult
	// SubmitErr, when set, is returned by SubmitAndAwaitFinality.
	SubmitErr error
	// ConnectErr, when set, is returned by Connect.
	ConnectErr error
	// AutofillErr, when set, is returned by AutofillAndSign.
	AutofillErr error
	// SubmitHook runs inside SubmitAndAwaitFinality before the result is
	// chosen; it may block on ctx.
	SubmitHook func(ctx context.Context, envelope *ledger.Envelope) error

	Tokens map[string]ledger.TokenRecord
	// Transactions are returned by FetchTransaction.
	Transactions map[string]ledger.SubmitResult

	Submitted []ledger.MintTx
	Lookups   int

	sequence uint32
	inFlight int
	// MaxInFlight records the highest number of concurrent submissions
	// observed for the same account.
	MaxInFlight int
	connected   bool
}

const SuccessCode = "tesSUCCESS"

// New creates an empty Fake.
func New() *Fake {
	return &Fake{
		Tokens:       map[string]ledger.TokenRecord{},
		Transactions: map[string]ledger.SubmitResult{},
	}
}

// AddToken stores a token record for LookupToken and ListTokens.
func (f *Fake) AddToken(record ledger.TokenRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens[record.TokenID] = record
}

func (f *Fake) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	f.connected = true
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *Fake) SuccessCode() string { return SuccessCode }

func (f *Fake) AutofillAndSign(ctx context.Context, tx ledger.MintTx, identity ledger.Identity) (*ledger.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AutofillErr != nil {
		return nil, f.AutofillErr
	}
	f.sequence++
	f.inFlight++
	if f.inFlight > f.MaxInFlight {
		f.MaxInFlight = f.inFlight
	}
	f.Submitted = append(f.Submitted, tx)
	return &ledger.Envelope{
		TxRef:    fmt.Sprintf("TX%04d", f.sequence),
		Account:  identity.Account,
		Sequence: f.sequence,
		Blob:     append([]byte(nil), tx.Payload...),
	}, nil
}

func (f *Fake) SubmitAndAwaitFinality(ctx context.Context, envelope *ledger.Envelope) (ledger.SubmitResult, error) {
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.SubmitHook != nil {
		if err := f.SubmitHook(ctx, envelope); err != nil {
			return ledger.SubmitResult{}, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return ledger.SubmitResult{}, f.SubmitErr
	}
	result := ledger.SubmitResult{Code: SuccessCode}
	if len(f.Results) > 0 {
		result = f.Results[0]
		f.Results = f.Results[1:]
	}
	if result.TxRef == "" {
		result.TxRef = envelope.TxRef
	}
	return result, nil
}

func (f *Fake) LookupToken(ctx context.Context, owner string, tokenID string) (*ledger.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lookups++
	record, ok := f.Tokens[tokenID]
	if !ok || (owner != "" && record.Owner != "" && record.Owner != owner) {
		return nil, fmt.Errorf("%s: %w", tokenID, ledger.ErrNoSuchToken)
	}
	copied := record
	copied.Payload = append([]byte(nil), record.Payload...)
	return &copied, nil
}

func (f *Fake) ListTokens(ctx context.Context, owner string) ([]ledger.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := make([]ledger.TokenRecord, 0, len(f.Tokens))
	for _, record := range f.Tokens {
		if owner == "" || record.Owner == "" || record.Owner == owner {
			records = append(records, record)
		}
	}
	return records, nil
}

func (f *Fake) FetchTransaction(ctx context.Context, txRef string) (ledger.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.Transactions[txRef]
	if !ok {
		return ledger.SubmitResult{}, fmt.Errorf("%s: %w", txRef, ledger.ErrNoSuchTransaction)
	}
	if result.TxRef == "" {
		result.TxRef = txRef
	}
	return result, nil
}

// Connected reports whether Connect succeeded and Close has not been called.
func (f *Fake) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// CreatedPage builds a diff holding one created token page.
func CreatedPage(tokenIDs ...string) ledger.StateDiff {
	return ledger.StateDiff{ledger.CreatedNode{
		LedgerEntryType: ledger.TokenPageEntryType,
		NewFields:       ledger.Fields{Tokens: entries(tokenIDs)},
	}}
}

// ModifiedPage builds a modified token page node. A nil previous list
// leaves PreviousFields absent.
func ModifiedPage(previous []string, final []string) ledger.ModifiedNode {
	node := ledger.ModifiedNode{
		LedgerEntryType: ledger.TokenPageEntryType,
		FinalFields:     ledger.Fields{Tokens: entries(final)},
	}
	if previous != nil {
		node.PreviousFields = &ledger.Fields{Tokens: entries(previous)}
	}
	return node
}

func entries(ids []string) []ledger.TokenEntry {
	tokens := make([]ledger.TokenEntry, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, ledger.TokenEntry{TokenID: id})
	}
	return tokens
}
