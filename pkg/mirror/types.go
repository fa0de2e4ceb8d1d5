package mirror

// TokenTypeNonFungible is the mirror node type of NFT collections.
const TokenTypeNonFungible = "NON_FUNGIBLE_UNIQUE"

type TokenInfo struct {
	TokenID           string `json:"token_id"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Type              string `json:"type"`
	TreasuryAccountID string `json:"treasury_account_id"`
	TotalSupply       string `json:"total_supply"`
	MaxSupply         string `json:"max_supply"`
	Deleted           bool   `json:"deleted"`
}

// NFT is one serial of a non-fungible HTS token.
type NFT struct {
	AccountID         string `json:"account_id"`
	CreatedTimestamp  string `json:"created_timestamp"`
	Deleted           bool   `json:"deleted"`
	Metadata          string `json:"metadata"`
	ModifiedTimestamp string `json:"modified_timestamp"`
	SerialNumber      int64  `json:"serial_number"`
	TokenID           string `json:"token_id"`
}

type nftsResponse struct {
	NFTs  []NFT `json:"nfts"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type Transaction struct {
	ChargedTxFee       int64         `json:"charged_tx_fee"`
	ConsensusTimestamp string        `json:"consensus_timestamp"`
	EntityID           *string       `json:"entity_id"`
	MaxFee             string        `json:"max_fee"`
	Name               string        `json:"name"`
	Node               string        `json:"node"`
	Result             string        `json:"result"`
	TransactionHash    string        `json:"transaction_hash"`
	TransactionID      string        `json:"transaction_id"`
	NFTTransfers       []NFTTransfer `json:"nft_transfers"`
}

// NFTTransfer is a serial movement inside a transaction. Mints have no
// sender.
type NFTTransfer struct {
	IsApproval        bool    `json:"is_approval"`
	ReceiverAccountID *string `json:"receiver_account_id"`
	SenderAccountID   *string `json:"sender_account_id"`
	SerialNumber      int64   `json:"serial_number"`
	TokenID           string  `json:"token_id"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Links        struct {
		Next string `json:"next"`
	} `json:"links"`
}
