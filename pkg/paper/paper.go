package paper

import (
	"context"
	"fmt"
	"strings"

	"github.com/scholarled/paper-nft-go/pkg/fingerprint"
	"github.com/scholarled/paper-nft-go/pkg/mint"
	"github.com/scholarled/paper-nft-go/pkg/verify"
)

// Status is the lifecycle state of a paper.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusUnderReview       Status = "under_review"
	StatusRevisionRequested Status = "revision_requested"
	StatusPublished         Status = "published"
	StatusRejected          Status = "rejected"
	// StatusMinted is set once the paper's token id is known.
	StatusMinted Status = "minted"
	// StatusMintUnresolved is set when the mint landed on-chain but its token
	// id still has to be reconciled.
	StatusMintUnresolved Status = "mint_unresolved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusUnderReview, StatusRevisionRequested, StatusPublished,
		StatusRejected, StatusMinted, StatusMintUnresolved:
		return true
	default:
		return false
	}
}

// Paper is the subset of a stored paper that minting reads and writes.
type Paper struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Abstract    string  `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Authors     string  `json:"authors" yaml:"authors"`
	ContentHash string  `json:"content_hash" yaml:"content_hash"`
	IPFSCID     string  `json:"ipfs_cid,omitempty" yaml:"ipfs_cid,omitempty"`
	TokenID     *string `json:"nft_token_id,omitempty" yaml:"nft_token_id,omitempty"`
	TxRef       *string `json:"nft_tx_hash,omitempty" yaml:"nft_tx_hash,omitempty"`
	Status      Status  `json:"status" yaml:"status"`
}

// Mintable reports whether p can be minted.
func (p Paper) Mintable() error {
	if p.TokenID != nil && strings.TrimSpace(*p.TokenID) != "" {
		return fmt.Errorf("paper %s already has token %s", p.ID, *p.TokenID)
	}
	if p.Status == StatusMintUnresolved {
		return fmt.Errorf("paper %s has an unresolved mint; reconcile before minting again", p.ID)
	}
	if _, err := fingerprint.ValidateHex(p.ContentHash); err != nil {
		return fmt.Errorf("paper %s: %w", p.ID, err)
	}
	return nil
}

// Apply records a mint outcome on p. Rejected and unknown outcomes leave
// the status unchanged; unknown outcomes still keep the transaction
// reference for reconciliation.
func Apply(p Paper, outcome mint.Outcome) Paper {
	if outcome.TxRef != "" {
		txRef := outcome.TxRef
		p.TxRef = &txRef
	}

	switch {
	case outcome.Success && outcome.Token != nil:
		tokenID := outcome.Token.TokenID
		p.TokenID = &tokenID
		p.Status = StatusMinted
	case outcome.Success:
		p.Status = StatusMintUnresolved
	}
	return p
}

// Resolve attaches a token id found by reconciliation.
func Resolve(p Paper, tokenID string) Paper {
	p.TokenID = &tokenID
	p.Status = StatusMinted
	return p
}

// Verify checks p's token against its stored content hash. A paper without
// a token is NotAssociated and no ledger read happens.
func Verify(ctx context.Context, verifier *verify.Verifier, p Paper) (verify.Verdict, error) {
	if p.TokenID == nil {
		return verify.NotAssociated{}, nil
	}
	return verifier.Verify(ctx, *p.TokenID, p.ContentHash)
}
