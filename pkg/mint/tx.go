package mint

import (
	"fmt"
	"strings"
	"time"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/payload"
)

const (
	// DefaultTaxon is the collection tag of academic-work tokens.
	DefaultTaxon uint32 = 0
	// DefaultFee is the network fee in the ledger's base unit (drops).
	DefaultFee uint64 = 12
)

// Builder assembles mint transactions. The zero value uses DefaultTaxon,
// DefaultFee and the system clock.
type Builder struct {
	Taxon uint32
	Fee   uint64
	Clock func() time.Time
}

// Build returns the unsigned mint transaction for a paper and the payload
// record embedded in it.
func (b Builder) Build(signer ledger.Identity, contentHash, title, authors string) (ledger.MintTx, payload.Record, error) {
	account := strings.TrimSpace(signer.Account)
	if account == "" {
		return ledger.MintTx{}, payload.Record{}, fmt.Errorf("signer account is required")
	}

	clock := b.Clock
	if clock == nil {
		clock = time.Now
	}

	record, err := payload.NewRecord(contentHash, title, authors, clock())
	if err != nil {
		return ledger.MintTx{}, payload.Record{}, err
	}
	encoded, err := payload.Encode(record)
	if err != nil {
		return ledger.MintTx{}, payload.Record{}, err
	}

	fee := b.Fee
	if fee == 0 {
		fee = DefaultFee
	}

	return ledger.MintTx{
		Kind:         ledger.MintKind,
		Account:      account,
		Taxon:        b.Taxon,
		Payload:      encoded,
		Transferable: true,
		Fee:          fee,
	}, record, nil
}
