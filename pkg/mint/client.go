package mint

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/scholarled/paper-nft-go/internal/log"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/payload"
	"github.com/scholarled/paper-nft-go/pkg/resolver"
)

// Config configures a Minter.
type Config struct {
	Client  ledger.Client
	Builder Builder
	// Logger defaults to the mint component logger.
	Logger *zerolog.Logger
	// Journal is optional.
	Journal Journal
	// Strict rejects fallback resolutions, reporting them as unresolved.
	Strict bool
}

// Minter is the submission pipeline. It is safe for concurrent use.
type Minter struct {
	client  ledger.Client
	builder Builder
	logger  zerolog.Logger
	journal Journal
	strict  bool

	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMinter creates a new Minter.
func NewMinter(config Config) (*Minter, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("ledger client is required")
	}
	logger := log.Mint
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Minter{
		client:  config.Client,
		builder: config.Builder,
		logger:  logger,
		journal: config.Journal,
		strict:  config.Strict,
		locks:   map[string]chan struct{}{},
	}, nil
}

// MintPaper builds and submits the mint transaction for a paper.
func (m *Minter) MintPaper(
	ctx context.Context,
	identity ledger.Identity,
	contentHash string,
	title string,
	authors string,
) (Outcome, error) {
	tx, record, err := m.builder.Build(identity, contentHash, title, authors)
	if err != nil {
		return Outcome{}, err
	}
	return m.submit(ctx, tx, identity, &record)
}

// Submit autofills, signs and submits tx, waits for finality and resolves
// the minted token id.
//
// Errors: a connection failure before submission is returned as is and the
// attempt may be retried. A declined transaction returns a
// *SubmissionRejectedError together with the outcome. If ctx ends while
// waiting for finality the outcome is Unknown and the error wraps
// ErrOutcomeUnknown. A successful mint whose token id cannot be recovered is
// not an error; the outcome is flagged Unresolved.
func (m *Minter) Submit(ctx context.Context, tx ledger.MintTx, identity ledger.Identity) (Outcome, error) {
	return m.submit(ctx, tx, identity, nil)
}

func (m *Minter) submit(
	ctx context.Context,
	tx ledger.MintTx,
	identity ledger.Identity,
	record *payload.Record,
) (Outcome, error) {
	if tx.Kind != ledger.MintKind {
		return Outcome{}, fmt.Errorf("unsupported transaction kind %q", tx.Kind)
	}
	if identity.Account == "" {
		identity.Account = tx.Account
	}
	if identity.Account != tx.Account {
		return Outcome{}, fmt.Errorf("identity account %s does not match transaction account %s", identity.Account, tx.Account)
	}

	unlock, err := m.lock(ctx, identity.Account)
	if err != nil {
		return Outcome{}, err
	}
	defer unlock()

	attemptID, err := m.begin(tx, identity.Account, record)
	if err != nil {
		return Outcome{}, err
	}

	logger := m.logger.With().Str("account", identity.Account).Logger()
	if attemptID != "" {
		logger = logger.With().Str("attempt", attemptID).Logger()
	}
	defer log.Timer(logger, "mint")()

	envelope, err := m.client.AutofillAndSign(ctx, tx, identity)
	if err != nil {
		m.finish(logger, attemptID, Outcome{})
		return Outcome{}, fmt.Errorf("failed to prepare mint transaction: %w", err)
	}

	logger = logger.With().Str("tx_ref", envelope.TxRef).Logger()
	if m.journal != nil && attemptID != "" {
		if err := m.journal.SetTxRef(attemptID, envelope.TxRef); err != nil {
			logger.Error().Err(err).Msg("failed to record transaction reference")
		}
	}

	logger.Debug().Uint32("sequence", envelope.Sequence).Msg("submitting mint")
	result, err := m.client.SubmitAndAwaitFinality(ctx, envelope)
	if err != nil {
		outcome := Outcome{Unknown: true, TxRef: envelope.TxRef}
		m.finish(logger, attemptID, outcome)
		logger.Warn().Err(err).Msg("mint outcome unknown; reconcile before resubmitting")
		return outcome, fmt.Errorf("%w: %s: %w", ErrOutcomeUnknown, envelope.TxRef, err)
	}

	txRef := result.TxRef
	if txRef == "" {
		txRef = envelope.TxRef
	}

	if result.Code != m.client.SuccessCode() {
		outcome := Outcome{Code: result.Code, TxRef: txRef}
		m.finish(logger, attemptID, outcome)
		logger.Error().Str("code", result.Code).Msg("mint rejected")
		return outcome, &SubmissionRejectedError{Code: result.Code, TxRef: txRef}
	}

	resolve := resolver.Resolve
	if m.strict {
		resolve = resolver.ResolveStrict
	}
	resolution, err := resolve(result.Diff)
	if err != nil {
		outcome := Outcome{Success: true, Unresolved: true, Code: result.Code, TxRef: txRef}
		m.finish(logger, attemptID, outcome)
		logger.Warn().
			Err(err).
			Int("nodes", len(result.Diff)).
			Msg("mint succeeded but token id is unresolved; reconcile, do not resubmit")
		return outcome, nil
	}

	token := resolution.Token
	outcome := Outcome{
		Success:    true,
		Token:      &token,
		Confidence: resolution.Confidence,
		Code:       result.Code,
		TxRef:      txRef,
	}
	m.finish(logger, attemptID, outcome)

	event := logger.Info()
	if resolution.Confidence != resolver.ConfidenceExact {
		event = logger.Warn()
	}
	event.
		Str("token_id", token.TokenID).
		Str("confidence", resolution.Confidence.String()).
		Msg("mint finalized")
	return outcome, nil
}

// lock acquires the per-account submission slot, giving up when ctx ends.
func (m *Minter) lock(ctx context.Context, account string) (func(), error) {
	m.mu.Lock()
	slot, ok := m.locks[account]
	if !ok {
		slot = make(chan struct{}, 1)
		m.locks[account] = slot
	}
	m.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Minter) begin(tx ledger.MintTx, account string, record *payload.Record) (string, error) {
	if m.journal == nil {
		return "", nil
	}
	if record == nil {
		decoded, err := payload.Decode(tx.Payload)
		if err != nil {
			return "", fmt.Errorf("failed to journal mint: %w", err)
		}
		record = &decoded
	}
	id, err := m.journal.Begin(*record, account)
	if err != nil {
		return "", fmt.Errorf("failed to journal mint: %w", err)
	}
	return id, nil
}

func (m *Minter) finish(logger zerolog.Logger, attemptID string, outcome Outcome) {
	if m.journal == nil || attemptID == "" {
		return
	}
	if err := m.journal.Finish(attemptID, outcome); err != nil {
		logger.Error().Err(err).Msg("failed to record mint outcome")
	}
}

// IsRetryable reports whether err from Submit or MintPaper left no trace on
// the ledger, so the same mint may be attempted again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOutcomeUnknown) {
		return false
	}
	var rejected *SubmissionRejectedError
	if errors.As(err, &rejected) {
		return false
	}
	return errors.Is(err, ledger.ErrConnection)
}
