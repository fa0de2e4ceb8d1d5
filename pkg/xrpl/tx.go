package xrpl

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
)

// AutofillAndSign fills Sequence and LastLedgerSequence from the node,
// serializes the mint and signs it with the identity's signer.
func (c *Client) AutofillAndSign(ctx context.Context, tx ledger.MintTx, identity ledger.Identity) (*ledger.Envelope, error) {
	if tx.Kind != ledger.MintKind {
		return nil, fmt.Errorf("unsupported transaction kind %q", tx.Kind)
	}
	if identity.Signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	account := tx.Account
	if account == "" {
		account = identity.Account
	}
	accountID, err := DecodeAddress(account)
	if err != nil {
		return nil, err
	}

	var info accountInfoResult
	err = c.call(ctx, "account_info", map[string]any{
		"account":      account,
		"ledger_index": "current",
	}, &info)
	if err != nil {
		if isRPCError(err, "actNotFound") {
			return nil, fmt.Errorf("account %s is not funded: %w", account, err)
		}
		return nil, err
	}

	current := info.LedgerCurrentIndex
	if current == 0 {
		var ledgerCurrent ledgerCurrentResult
		if err := c.call(ctx, "ledger_current", map[string]any{}, &ledgerCurrent); err != nil {
			return nil, err
		}
		current = ledgerCurrent.LedgerCurrentIndex
	}

	flags := uint32(0)
	if tx.Transferable {
		flags |= TfTransferable
	}

	fields := mintFields{
		Account:            accountID,
		Flags:              flags,
		Sequence:           info.AccountData.Sequence,
		LastLedgerSequence: current + c.ledgerOffset,
		Taxon:              tx.Taxon,
		Fee:                tx.Fee,
		URI:                tx.Payload,
		SigningPubKey:      identity.Signer.PublicKey(),
	}

	message, err := fields.signingPayload()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize mint: %w", err)
	}
	signature, err := identity.Signer.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign mint: %w", err)
	}
	fields.TxnSignature = signature

	blob, err := fields.serialize(true)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize signed mint: %w", err)
	}

	envelope := &ledger.Envelope{
		TxRef:             TransactionHash(blob),
		Account:           account,
		Sequence:          fields.Sequence,
		LastValidSequence: fields.LastLedgerSequence,
		Blob:              blob,
		Native:            fields,
	}
	c.logger.Debug().
		Str("account", account).
		Str("tx_ref", envelope.TxRef).
		Uint32("sequence", envelope.Sequence).
		Uint32("last_ledger_sequence", envelope.LastValidSequence).
		Msg("mint signed")
	return envelope, nil
}

// SubmitAndAwaitFinality submits the blob and polls until the transaction
// is validated or can no longer be included. Local and malformed rejections
// (tel, tem, tef) are final at submission.
func (c *Client) SubmitAndAwaitFinality(ctx context.Context, envelope *ledger.Envelope) (ledger.SubmitResult, error) {
	if envelope == nil || len(envelope.Blob) == 0 {
		return ledger.SubmitResult{}, fmt.Errorf("envelope is empty")
	}

	var submitted submitResult
	err := c.call(ctx, "submit", map[string]any{
		"tx_blob": strings.ToUpper(hex.EncodeToString(envelope.Blob)),
	}, &submitted)
	if err != nil {
		return ledger.SubmitResult{}, err
	}

	logger := c.logger.With().Str("tx_ref", envelope.TxRef).Logger()
	logger.Debug().
		Str("engine_result", submitted.EngineResult).
		Str("message", submitted.EngineResultMessage).
		Msg("submitted")

	if isFinalAtSubmit(submitted.EngineResult) {
		return ledger.SubmitResult{Code: submitted.EngineResult, TxRef: envelope.TxRef}, nil
	}

	for attempt := 0; c.maxPolls == 0 || attempt < c.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return ledger.SubmitResult{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		validatedSeq, err := c.validatedLedger(ctx)
		if err != nil {
			return ledger.SubmitResult{}, err
		}

		result, found, err := c.fetch(ctx, envelope.TxRef)
		if err != nil {
			return ledger.SubmitResult{}, err
		}
		if found {
			return result, nil
		}

		if envelope.LastValidSequence > 0 && validatedSeq > envelope.LastValidSequence {
			logger.Warn().
				Uint32("validated_ledger", validatedSeq).
				Uint32("last_ledger_sequence", envelope.LastValidSequence).
				Msg("transaction expired before validation")
			return ledger.SubmitResult{Code: CodeExpired, TxRef: envelope.TxRef}, nil
		}
	}

	return ledger.SubmitResult{}, fmt.Errorf("transaction %s not validated after %d polls", envelope.TxRef, c.maxPolls)
}

// FetchTransaction returns the result and state diff of a validated
// transaction.
func (c *Client) FetchTransaction(ctx context.Context, txRef string) (ledger.SubmitResult, error) {
	hash := strings.ToUpper(strings.TrimSpace(txRef))
	if hash == "" {
		return ledger.SubmitResult{}, fmt.Errorf("transaction hash is required")
	}
	result, found, err := c.fetch(ctx, hash)
	if err != nil {
		return ledger.SubmitResult{}, err
	}
	if !found {
		return ledger.SubmitResult{}, fmt.Errorf("%w: %s is not in a validated ledger", ledger.ErrNoSuchTransaction, hash)
	}
	return result, nil
}

// fetch reports found only for validated transactions.
func (c *Client) fetch(ctx context.Context, hash string) (ledger.SubmitResult, bool, error) {
	var tx txResult
	err := c.call(ctx, "tx", map[string]any{"transaction": hash, "binary": false}, &tx)
	if err != nil {
		if isRPCError(err, "txnNotFound") {
			return ledger.SubmitResult{}, false, nil
		}
		return ledger.SubmitResult{}, false, err
	}
	if !tx.Validated || tx.Meta == nil {
		return ledger.SubmitResult{}, false, nil
	}

	diff, err := ledger.ParseAffectedNodes(tx.Meta.AffectedNodes)
	if err != nil {
		return ledger.SubmitResult{}, false, fmt.Errorf("transaction %s: %w", hash, err)
	}
	return ledger.SubmitResult{
		Code:        tx.Meta.TransactionResult,
		TxRef:       hash,
		LedgerIndex: tx.LedgerIndex,
		Diff:        diff,
	}, true, nil
}

func (c *Client) validatedLedger(ctx context.Context) (uint32, error) {
	var info serverInfoResult
	if err := c.call(ctx, "server_info", map[string]any{}, &info); err != nil {
		return 0, err
	}
	if info.Info.ValidatedLedger == nil {
		return 0, nil
	}
	return info.Info.ValidatedLedger.Seq, nil
}

// isFinalAtSubmit reports whether a provisional engine result means the
// transaction will never be applied. tec and ter results may still land in
// a validated ledger.
func isFinalAtSubmit(code string) bool {
	return strings.HasPrefix(code, "tel") ||
		strings.HasPrefix(code, "tem") ||
		strings.HasPrefix(code, "tef")
}
