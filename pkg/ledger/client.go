package ledger

import (
	"context"
	"errors"
)

var (
	// ErrConnection marks failures to reach the ledger. The attempt is over
	// but may be retried by the caller.
	ErrConnection = errors.New("ledger unreachable")
	// ErrNoSuchToken is returned by LookupToken when the owner holds no token
	// with the requested identifier.
	ErrNoSuchToken = errors.New("token not found on ledger")
	// ErrNoSuchTransaction is returned by FetchTransaction when the ledger has
	// no validated transaction with the requested reference.
	ErrNoSuchTransaction = errors.New("transaction not found on ledger")
)

// MintKind is the operation kind of every transaction the builder produces.
const MintKind = "NFTokenMint"

// MintTx is the request half of a mint transaction, before sequencing and
// signing.
type MintTx struct {
	Kind         string
	Account      string
	Taxon        uint32
	Payload      []byte
	Transferable bool
	Fee          uint64
}

// Signer signs transaction bytes for one account.
type Signer interface {
	PublicKey() []byte
	Sign(message []byte) ([]byte, error)
}

// Identity is the account a transaction is submitted for and the key that
// signs for it.
type Identity struct {
	Account string
	Signer  Signer
}

// Envelope is a sequenced, signed, submittable transaction. It is owned by a
// single submission and must not be reused.
type Envelope struct {
	TxRef             string
	Account           string
	Sequence          uint32
	LastValidSequence uint32
	Blob              []byte
	Native            any
}

// SubmitResult is what the ledger reports once a transaction is final or has
// been rejected.
type SubmitResult struct {
	Code        string
	TxRef       string
	LedgerIndex uint32
	Diff        StateDiff
}

// TokenRecord is the current state of a token as read back from the ledger.
type TokenRecord struct {
	TokenID string
	Owner   string
	Issuer  string
	Taxon   uint32
	Payload []byte
}

// Client is the ledger capability used by the engine.
type Client interface {
	Connect(ctx context.Context) error
	Close() error
	// SuccessCode is the result code the ledger uses for an applied
	// transaction.
	SuccessCode() string
	AutofillAndSign(ctx context.Context, tx MintTx, identity Identity) (*Envelope, error)
	// SubmitAndAwaitFinality blocks until the transaction is final, rejected,
	// or ctx is done.
	SubmitAndAwaitFinality(ctx context.Context, envelope *Envelope) (SubmitResult, error)
	LookupToken(ctx context.Context, owner string, tokenID string) (*TokenRecord, error)
}

// TokenLister is implemented by backends that can enumerate the tokens an
// account owns.
type TokenLister interface {
	ListTokens(ctx context.Context, owner string) ([]TokenRecord, error)
}

// TxFetcher is implemented by backends that can re-read a finalized
// transaction by reference.
type TxFetcher interface {
	FetchTransaction(ctx context.Context, txRef string) (SubmitResult, error)
}
