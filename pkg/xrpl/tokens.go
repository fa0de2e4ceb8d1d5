package xrpl

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
)

// LookupToken finds a token among the tokens owner holds and returns its
// decoded URI as the payload.
func (c *Client) LookupToken(ctx context.Context, owner string, tokenID string) (*ledger.TokenRecord, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, fmt.Errorf("owner account is required for XRPL token lookup")
	}
	wanted := strings.ToUpper(strings.TrimSpace(tokenID))
	if wanted == "" {
		return nil, fmt.Errorf("token ID is required")
	}

	var found *ledger.TokenRecord
	err := c.eachToken(ctx, owner, func(record ledger.TokenRecord) bool {
		if strings.ToUpper(record.TokenID) == wanted {
			found = &record
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s held by %s", ledger.ErrNoSuchToken, tokenID, owner)
	}
	return found, nil
}

// ListTokens returns every token owner holds.
func (c *Client) ListTokens(ctx context.Context, owner string) ([]ledger.TokenRecord, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, fmt.Errorf("owner account is required")
	}
	records := make([]ledger.TokenRecord, 0)
	err := c.eachToken(ctx, owner, func(record ledger.TokenRecord) bool {
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// eachToken pages through account_nfts until fn returns false or the
// marker runs out. An unfunded account holds no tokens.
func (c *Client) eachToken(ctx context.Context, owner string, fn func(ledger.TokenRecord) bool) error {
	var marker json.RawMessage
	for {
		params := map[string]any{
			"account":      owner,
			"ledger_index": "validated",
			"limit":        accountNFTsPageLimit,
		}
		if len(marker) > 0 {
			params["marker"] = marker
		}

		var page accountNFTsResult
		if err := c.call(ctx, "account_nfts", params, &page); err != nil {
			if isRPCError(err, "actNotFound") {
				return nil
			}
			return err
		}

		for _, nft := range page.AccountNFTs {
			if !fn(tokenRecord(owner, nft)) {
				return nil
			}
		}

		if len(page.Marker) == 0 || string(page.Marker) == "null" {
			return nil
		}
		marker = page.Marker
	}
}

func tokenRecord(owner string, nft accountNFT) ledger.TokenRecord {
	record := ledger.TokenRecord{
		TokenID: nft.NFTokenID,
		Owner:   owner,
		Issuer:  nft.Issuer,
		Taxon:   nft.NFTokenTaxon,
	}
	if decoded, err := hex.DecodeString(nft.URI); err == nil {
		record.Payload = decoded
	} else {
		record.Payload = []byte(nft.URI)
	}
	return record
}
