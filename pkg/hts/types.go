package hts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
)

const (
	// SuccessCode is the receipt status of an applied transaction.
	SuccessCode = "SUCCESS"
	// MaxMetadataBytes is the network limit on NFT metadata.
	MaxMetadataBytes = 100
	// DefaultMaxFeeHbar caps the fee of a single mint.
	DefaultMaxFeeHbar = 2.0
)

// ErrMetadataTooLong is returned when a payload does not fit in NFT
// metadata.
var ErrMetadataTooLong = errors.New("payload exceeds NFT metadata limit")

// TokenRef splits serial@tokenID.
func TokenRef(tokenID string) (string, int64, error) {
	serialPart, collection, found := strings.Cut(strings.TrimSpace(tokenID), "@")
	if !found || collection == "" {
		return "", 0, fmt.Errorf("token identifier %q is not serial@tokenID", tokenID)
	}
	serial, err := strconv.ParseInt(serialPart, 10, 64)
	if err != nil || serial <= 0 {
		return "", 0, fmt.Errorf("token identifier %q has an invalid serial", tokenID)
	}
	return collection, serial, nil
}

// FormatTokenRef joins a collection and serial into a token identifier.
func FormatTokenRef(collection string, serial int64) string {
	return strconv.FormatInt(serial, 10) + "@" + collection
}

// mintedDiff reports new serials as a created token page.
func mintedDiff(collection string, serials []int64) ledger.StateDiff {
	if len(serials) == 0 {
		return nil
	}
	tokens := make([]ledger.TokenEntry, 0, len(serials))
	for _, serial := range serials {
		tokens = append(tokens, ledger.TokenEntry{TokenID: FormatTokenRef(collection, serial)})
	}
	return ledger.StateDiff{ledger.CreatedNode{
		LedgerEntryType: ledger.TokenPageEntryType,
		LedgerIndex:     collection,
		NewFields:       ledger.Fields{Tokens: tokens},
	}}
}
