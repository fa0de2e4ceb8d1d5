package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/scholarled/paper-nft-go/internal/log"
	"github.com/scholarled/paper-nft-go/pkg/journal"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/mint"
	"github.com/scholarled/paper-nft-go/pkg/payload"
	"github.com/scholarled/paper-nft-go/pkg/resolver"
)

// ConfidencePayload marks a token matched by its payload hash rather than by
// a state diff.
const ConfidencePayload = "payload"

// Action is what Run did with one journal entry.
type Action string

const (
	ActionReconciled Action = "reconciled"
	ActionRejected   Action = "rejected"
	ActionSkipped    Action = "skipped"
)

// Result describes one processed entry.
type Result struct {
	EntryID string `json:"entry_id"`
	TxRef   string `json:"tx_ref,omitempty"`
	Action  Action `json:"action"`
	TokenID string `json:"token_id,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Config configures a Reconciler.
type Config struct {
	Journal *journal.Store
	Client  ledger.Client
	// Owner overrides the account whose tokens are searched. Defaults to the
	// entry's account.
	Owner  string
	Logger *zerolog.Logger
}

// Reconciler matches outstanding journal entries with on-ledger tokens.
type Reconciler struct {
	journal *journal.Store
	client  ledger.Client
	owner   string
	logger  zerolog.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(config Config) (*Reconciler, error) {
	if config.Journal == nil {
		return nil, fmt.Errorf("journal is required")
	}
	if config.Client == nil {
		return nil, fmt.Errorf("ledger client is required")
	}
	logger := log.Reconcile
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Reconciler{
		journal: config.Journal,
		client:  config.Client,
		owner:   config.Owner,
		logger:  logger,
	}, nil
}

// Run processes every unresolved or unknown entry once. Entries that stay
// ambiguous are left for an operator. A transport failure stops the run.
func (r *Reconciler) Run(ctx context.Context) ([]Result, error) {
	entries, err := r.journal.Outstanding()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	claimed, err := r.claimedTokens()
	if err != nil {
		return nil, err
	}

	holdings := map[string][]ledger.TokenRecord{}
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := r.reconcile(ctx, entry, claimed, holdings)
		if err != nil {
			return results, err
		}
		if result.Action == ActionReconciled {
			claimed[result.TokenID] = struct{}{}
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Reconciler) reconcile(
	ctx context.Context,
	entry journal.Entry,
	claimed map[string]struct{},
	holdings map[string][]ledger.TokenRecord,
) (Result, error) {
	logger := r.logger.With().Str("attempt", entry.ID).Str("tx_ref", entry.TxRef).Logger()
	result := Result{EntryID: entry.ID, TxRef: entry.TxRef, Action: ActionSkipped}

	if fetcher, ok := r.client.(ledger.TxFetcher); ok && entry.TxRef != "" {
		fetched, err := fetcher.FetchTransaction(ctx, entry.TxRef)
		switch {
		case err == nil && fetched.Code != r.client.SuccessCode():
			if err := r.journal.Finish(entry.ID, mint.Outcome{Code: fetched.Code, TxRef: entry.TxRef}); err != nil {
				return result, err
			}
			logger.Info().Str("code", fetched.Code).Msg("transaction was rejected")
			result.Action = ActionRejected
			result.Detail = fetched.Code
			return result, nil
		case err == nil:
			resolution, resolveErr := resolver.Resolve(fetched.Diff)
			if resolveErr == nil {
				if _, taken := claimed[resolution.Token.TokenID]; !taken || resolution.Confidence == resolver.ConfidenceExact {
					return r.markReconciled(logger, result, resolution.Token.TokenID, resolution.Confidence.String())
				}
			}
		case errors.Is(err, ledger.ErrConnection):
			return result, err
		case errors.Is(err, ledger.ErrNoSuchTransaction):
			logger.Debug().Msg("transaction not found; matching by payload")
		default:
			logger.Warn().Err(err).Msg("failed to fetch transaction; matching by payload")
		}
	}

	lister, ok := r.client.(ledger.TokenLister)
	if !ok {
		result.Detail = "backend cannot list tokens"
		return result, nil
	}

	owner := r.owner
	if owner == "" {
		owner = entry.Account
	}
	tokens, cached := holdings[owner]
	if !cached {
		listed, err := lister.ListTokens(ctx, owner)
		if err != nil {
			return result, fmt.Errorf("failed to list tokens of %s: %w", owner, err)
		}
		tokens = listed
		holdings[owner] = tokens
	}

	matches := make([]string, 0, 1)
	for _, token := range tokens {
		if _, taken := claimed[token.TokenID]; taken {
			continue
		}
		decoded, err := payload.Decode(token.Payload)
		if err != nil {
			continue
		}
		if payload.SameHash(entry.ContentHash, decoded.ContentHash) {
			matches = append(matches, token.TokenID)
		}
	}

	switch len(matches) {
	case 1:
		return r.markReconciled(logger, result, matches[0], ConfidencePayload)
	case 0:
		result.Detail = "no unclaimed token carries the content hash"
	default:
		result.Detail = fmt.Sprintf("%d unclaimed tokens carry the content hash", len(matches))
	}
	logger.Warn().Str("content_hash", entry.ContentHash).Msg(result.Detail)
	return result, nil
}

func (r *Reconciler) markReconciled(logger zerolog.Logger, result Result, tokenID string, confidence string) (Result, error) {
	if err := r.journal.MarkReconciled(result.EntryID, tokenID, confidence); err != nil {
		return result, err
	}
	logger.Info().Str("token_id", tokenID).Str("confidence", confidence).Msg("mint reconciled")
	result.Action = ActionReconciled
	result.TokenID = tokenID
	result.Detail = confidence
	return result, nil
}

// claimedTokens returns the token ids already attributed to other attempts.
func (r *Reconciler) claimedTokens() (map[string]struct{}, error) {
	settled, err := r.journal.List(journal.StateMinted, journal.StateReconciled)
	if err != nil {
		return nil, err
	}
	claimed := make(map[string]struct{}, len(settled))
	for _, entry := range settled {
		if entry.TokenID != "" {
			claimed[entry.TokenID] = struct{}{}
		}
	}
	return claimed, nil
}
