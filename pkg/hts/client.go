package hts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
	"github.com/scholarled/paper-nft-go/internal/log"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/mirror"
	"github.com/scholarled/paper-nft-go/pkg/shared"
)

type Config struct {
	Network            string
	OperatorAccountID  string
	OperatorPrivateKey string
	// SupplyPrivateKey signs mints when the collection's supply key is not
	// the operator key.
	SupplyPrivateKey string
	TokenID          string
	MaxFeeHbar       float64
	Memo             string
	MirrorBaseURL    string
	MirrorAPIKey     string
	Logger           *zerolog.Logger
}

// Client mints serials of one NFT collection and reads them back through
// the mirror node.
type Client struct {
	hederaClient *hedera.Client
	mirrorClient *mirror.Client
	operatorID   hedera.AccountID
	operatorKey  hedera.PrivateKey
	supplyKey    hedera.PrivateKey
	collection   string
	maxFeeHbar   float64
	memo         string
	logger       zerolog.Logger
}

var (
	_ ledger.Client      = (*Client)(nil)
	_ ledger.TokenLister = (*Client)(nil)
	_ ledger.TxFetcher   = (*Client)(nil)
)

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(config.OperatorAccountID) == "" {
		return nil, fmt.Errorf("operator account ID is required")
	}
	if strings.TrimSpace(config.OperatorPrivateKey) == "" {
		return nil, fmt.Errorf("operator private key is required")
	}
	collection := strings.TrimSpace(config.TokenID)
	if collection == "" {
		return nil, fmt.Errorf("token ID is required")
	}
	if _, err := hedera.TokenIDFromString(collection); err != nil {
		return nil, fmt.Errorf("invalid token ID: %w", err)
	}

	operatorID, err := hedera.AccountIDFromString(strings.TrimSpace(config.OperatorAccountID))
	if err != nil {
		return nil, fmt.Errorf("invalid operator account ID: %w", err)
	}
	operatorKey, err := shared.ParsePrivateKey(config.OperatorPrivateKey)
	if err != nil {
		return nil, err
	}
	supplyKey := operatorKey
	if strings.TrimSpace(config.SupplyPrivateKey) != "" {
		supplyKey, err = shared.ParsePrivateKey(config.SupplyPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid supply key: %w", err)
		}
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: network,
		BaseURL: config.MirrorBaseURL,
		APIKey:  config.MirrorAPIKey,
	})
	if err != nil {
		return nil, err
	}

	hederaClient, err := shared.NewHederaClient(network)
	if err != nil {
		return nil, err
	}
	hederaClient.SetOperator(operatorID, operatorKey)

	logger := log.Ledger
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Client{
		hederaClient: hederaClient,
		mirrorClient: mirrorClient,
		operatorID:   operatorID,
		operatorKey:  operatorKey,
		supplyKey:    supplyKey,
		collection:   collection,
		maxFeeHbar:   config.MaxFeeHbar,
		memo:         strings.TrimSpace(config.Memo),
		logger:       logger.With().Str("backend", "hts").Str("token_id", collection).Logger(),
	}, nil
}

// MirrorClient returns the configured mirror node client.
func (c *Client) MirrorClient() *mirror.Client {
	return c.mirrorClient
}

// Identity returns the operator account with the supply key as signer.
func (c *Client) Identity() ledger.Identity {
	return ledger.Identity{
		Account: c.operatorID.String(),
		Signer:  &KeySigner{key: c.supplyKey},
	}
}

// Connect checks that the collection exists and is an NFT collection.
func (c *Client) Connect(ctx context.Context) error {
	token, err := c.mirrorClient.GetToken(ctx, c.collection)
	if err != nil {
		return c.mirrorError(err)
	}
	if token.Type != mirror.TokenTypeNonFungible {
		return fmt.Errorf("token %s is %s, not an NFT collection", c.collection, token.Type)
	}
	if token.Deleted {
		return fmt.Errorf("token %s is deleted", c.collection)
	}
	return nil
}

// Close releases the SDK client.
func (c *Client) Close() error {
	if c.hederaClient == nil {
		return nil
	}
	return c.hederaClient.Close()
}

func (c *Client) SuccessCode() string {
	return SuccessCode
}

// AutofillAndSign freezes a mint for the operator and adds the supply key
// signature. The operator signature is added by the SDK on execute.
func (c *Client) AutofillAndSign(ctx context.Context, tx ledger.MintTx, identity ledger.Identity) (*ledger.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if identity.Account != c.operatorID.String() {
		return nil, fmt.Errorf("account %s is not the operator %s", identity.Account, c.operatorID)
	}

	transaction, err := BuildMintTx(c.collection, tx, c.maxFeeHbar, c.memo)
	if err != nil {
		return nil, err
	}
	transaction.SetTransactionID(hedera.TransactionIDGenerate(c.operatorID))

	frozen, err := transaction.FreezeWith(c.hederaClient)
	if err != nil {
		return nil, fmt.Errorf("failed to freeze mint transaction: %w", err)
	}

	key := c.supplyKey
	if signer, ok := identity.Signer.(*KeySigner); ok {
		key = signer.key
	}
	if key.PublicKey().String() != c.operatorKey.PublicKey().String() {
		frozen = frozen.Sign(key)
	}

	blob, err := frozen.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize mint transaction: %w", err)
	}

	transactionID := frozen.GetTransactionID()
	return &ledger.Envelope{
		TxRef:   transactionID.String(),
		Account: identity.Account,
		Blob:    blob,
		Native:  frozen,
	}, nil
}

type executeResult struct {
	receipt hedera.TransactionReceipt
	err     error
}

// SubmitAndAwaitFinality executes the mint and waits for its receipt.
// Receipts are final on Hedera, so the receipt status is the result code.
func (c *Client) SubmitAndAwaitFinality(ctx context.Context, envelope *ledger.Envelope) (ledger.SubmitResult, error) {
	if envelope == nil {
		return ledger.SubmitResult{}, fmt.Errorf("envelope is required")
	}
	frozen, ok := envelope.Native.(*hedera.TokenMintTransaction)
	if !ok {
		return ledger.SubmitResult{}, fmt.Errorf("envelope %s was not produced by the HTS backend", envelope.TxRef)
	}

	done := make(chan executeResult, 1)
	go func() {
		response, err := frozen.Execute(c.hederaClient)
		if err != nil {
			done <- executeResult{err: err}
			return
		}
		receipt, err := response.GetReceipt(c.hederaClient)
		done <- executeResult{receipt: receipt, err: err}
	}()

	select {
	case <-ctx.Done():
		return ledger.SubmitResult{}, ctx.Err()
	case result := <-done:
		submitResult, err := c.submitResult(envelope.TxRef, result.receipt, result.err)
		if err == nil {
			c.logger.Debug().
				Str("tx_ref", envelope.TxRef).
				Str("code", submitResult.Code).
				Msg("mint receipt")
		}
		return submitResult, err
	}
}

func (c *Client) submitResult(txRef string, receipt hedera.TransactionReceipt, err error) (ledger.SubmitResult, error) {
	var precheckErr hedera.ErrHederaPreCheckStatus
	var receiptErr hedera.ErrHederaReceiptStatus
	switch {
	case err == nil:
	case errors.As(err, &precheckErr):
		return ledger.SubmitResult{Code: precheckErr.Status.String(), TxRef: txRef}, nil
	case errors.As(err, &receiptErr):
		return ledger.SubmitResult{Code: receiptErr.Status.String(), TxRef: txRef}, nil
	default:
		return ledger.SubmitResult{}, fmt.Errorf("%w: %w", ledger.ErrConnection, err)
	}

	result := ledger.SubmitResult{Code: receipt.Status.String(), TxRef: txRef}
	if receipt.Status == hedera.StatusSuccess {
		result.Diff = mintedDiff(c.collection, receipt.SerialNumbers)
	}
	return result, nil
}

// LookupToken reads a serial from the mirror node. owner is required.
func (c *Client) LookupToken(ctx context.Context, owner string, tokenID string) (*ledger.TokenRecord, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("owner is required")
	}
	collection, serial, err := TokenRef(tokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrNoSuchToken, err)
	}

	nft, err := c.mirrorClient.GetNFT(ctx, collection, serial)
	if errors.Is(err, mirror.ErrNotFound) {
		return nil, ledger.ErrNoSuchToken
	}
	if err != nil {
		return nil, c.mirrorError(err)
	}
	if nft.Deleted || nft.AccountID != strings.TrimSpace(owner) {
		return nil, ledger.ErrNoSuchToken
	}

	record := tokenRecord(*nft)
	return &record, nil
}

// ListTokens returns the serials of the collection the owner holds.
func (c *Client) ListTokens(ctx context.Context, owner string) ([]ledger.TokenRecord, error) {
	nfts, err := c.mirrorClient.GetAccountNFTs(ctx, owner, c.collection)
	if errors.Is(err, mirror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, c.mirrorError(err)
	}

	records := make([]ledger.TokenRecord, 0, len(nfts))
	for _, nft := range nfts {
		if nft.Deleted {
			continue
		}
		records = append(records, tokenRecord(nft))
	}
	return records, nil
}

// FetchTransaction re-reads a mint through the mirror node. New serials are
// taken from the NFT transfers that have no sender.
func (c *Client) FetchTransaction(ctx context.Context, txRef string) (ledger.SubmitResult, error) {
	transaction, err := c.mirrorClient.GetTransaction(ctx, txRef)
	if errors.Is(err, mirror.ErrNotFound) || (err == nil && transaction == nil) {
		return ledger.SubmitResult{}, fmt.Errorf("%w: %s", ledger.ErrNoSuchTransaction, txRef)
	}
	if err != nil {
		return ledger.SubmitResult{}, c.mirrorError(err)
	}

	result := ledger.SubmitResult{Code: transaction.Result, TxRef: txRef}
	if transaction.Result != SuccessCode {
		return result, nil
	}

	serials := make([]int64, 0, len(transaction.NFTTransfers))
	for _, transfer := range transaction.NFTTransfers {
		if transfer.SenderAccountID == nil && transfer.TokenID == c.collection {
			serials = append(serials, transfer.SerialNumber)
		}
	}
	result.Diff = mintedDiff(c.collection, serials)
	return result, nil
}

func (c *Client) mirrorError(err error) error {
	if errors.Is(err, mirror.ErrUnavailable) {
		return fmt.Errorf("%w: %w", ledger.ErrConnection, err)
	}
	return err
}

func tokenRecord(nft mirror.NFT) ledger.TokenRecord {
	record := ledger.TokenRecord{
		TokenID: FormatTokenRef(nft.TokenID, nft.SerialNumber),
		Owner:   nft.AccountID,
	}
	if payload, err := mirror.DecodeNFTMetadata(nft); err == nil {
		record.Payload = payload
	}
	return record
}
