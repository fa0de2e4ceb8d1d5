package hts

import (
	"fmt"
	"math"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/payload"
)

// BuildMintTx turns a ledger mint request into an unfrozen token mint for
// one serial of collection. tx.Fee is read as tinybars and becomes the max
// transaction fee when it exceeds maxFeeHbar (DefaultMaxFeeHbar when unset).
func BuildMintTx(collection string, tx ledger.MintTx, maxFeeHbar float64, memo string) (*hedera.TokenMintTransaction, error) {
	if tx.Kind != ledger.MintKind {
		return nil, fmt.Errorf("unsupported transaction kind %q", tx.Kind)
	}
	if len(tx.Payload) == 0 {
		return nil, fmt.Errorf("payload is required")
	}
	metadata, err := fitMetadata(tx.Payload)
	if err != nil {
		return nil, err
	}

	trimmedTokenID := strings.TrimSpace(collection)
	if trimmedTokenID == "" {
		return nil, fmt.Errorf("token ID is required")
	}
	parsedTokenID, err := hedera.TokenIDFromString(trimmedTokenID)
	if err != nil {
		return nil, fmt.Errorf("invalid token ID: %w", err)
	}

	if tx.Fee > math.MaxInt64 {
		return nil, fmt.Errorf("fee %d tinybars is out of range", tx.Fee)
	}
	if maxFeeHbar <= 0 {
		maxFeeHbar = DefaultMaxFeeHbar
	}
	maxFee := hedera.NewHbar(maxFeeHbar)
	if requested := int64(tx.Fee); requested > maxFee.AsTinybar() {
		maxFee = hedera.HbarFromTinybar(requested)
	}

	transaction := hedera.NewTokenMintTransaction().
		SetTokenID(parsedTokenID).
		SetMetadata(metadata).
		SetMaxTransactionFee(maxFee)

	if strings.TrimSpace(memo) != "" {
		transaction.SetTransactionMemo(memo)
	}

	return transaction, nil
}

// fitMetadata returns payload unchanged when it fits, else its hash-only
// form. Title, authors and timestamp are dropped; verification only reads
// the hash.
func fitMetadata(data []byte) ([]byte, error) {
	if len(data) <= MaxMetadataBytes {
		return data, nil
	}
	record, err := payload.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrMetadataTooLong, len(data), MaxMetadataBytes)
	}
	compact, err := payload.Encode(payload.Record{ContentHash: record.ContentHash})
	if err != nil {
		return nil, err
	}
	if len(compact) > MaxMetadataBytes {
		return nil, fmt.Errorf("%w: hash-only payload is %d bytes", ErrMetadataTooLong, len(compact))
	}
	return compact, nil
}
