package mint

import (
	"errors"
	"fmt"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/payload"
	"github.com/scholarled/paper-nft-go/pkg/resolver"
)

// ErrOutcomeUnknown means the transaction was signed and possibly accepted
// but the wait for finality ended before a result arrived. The mint must be
// reconciled, not retried.
var ErrOutcomeUnknown = errors.New("mint outcome unknown")

// SubmissionRejectedError is returned when the ledger declined a mint.
type SubmissionRejectedError struct {
	Code  string
	TxRef string
}

func (e *SubmissionRejectedError) Error() string {
	if e.TxRef == "" {
		return fmt.Sprintf("mint rejected with code %s", e.Code)
	}
	return fmt.Sprintf("mint %s rejected with code %s", e.TxRef, e.Code)
}

// Outcome is the classified result of one mint submission.
//
// Success with Unresolved set means the token exists on-chain but its id
// could not be recovered from the state diff. Unknown means the attempt
// ended before finality was observed.
type Outcome struct {
	Success    bool
	Unresolved bool
	Unknown    bool
	Token      *ledger.TokenEntry
	Confidence resolver.Confidence
	TxRef      string
	Code       string
}

// TokenID returns the resolved token id or an empty string.
func (o Outcome) TokenID() string {
	if o.Token == nil {
		return ""
	}
	return o.Token.TokenID
}

// Journal records mint attempts so that unresolved and unknown outcomes can
// be reconciled later.
type Journal interface {
	Begin(record payload.Record, account string) (string, error)
	SetTxRef(id string, txRef string) error
	Finish(id string, outcome Outcome) error
}
