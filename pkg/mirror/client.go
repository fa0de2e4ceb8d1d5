package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scholarled/paper-nft-go/pkg/shared"
)

var (
	// ErrNotFound is returned when the mirror node answers 404.
	ErrNotFound = errors.New("mirror node resource not found")
	// ErrUnavailable marks transport failures and 5xx answers.
	ErrUnavailable = errors.New("mirror node unavailable")
)

type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	headers    map[string]string
}

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		defaultURL, err := shared.HederaMirrorURL(config.Network)
		if err != nil {
			return nil, err
		}
		baseURL = defaultURL
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsedBaseURL.Scheme != "http" && parsedBaseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid mirror base URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedBaseURL.Host) == "" {
		return nil, fmt.Errorf("invalid mirror base URL: host is required")
	}
	baseURL = strings.TrimRight(parsedBaseURL.String(), "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		apiKey:     strings.TrimSpace(config.APIKey),
		headers:    headers,
	}, nil
}

// BaseURL returns the mirror node base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetToken returns token metadata.
func (c *Client) GetToken(ctx context.Context, tokenID string) (*TokenInfo, error) {
	normalizedTokenID := strings.TrimSpace(tokenID)
	if normalizedTokenID == "" {
		return nil, fmt.Errorf("token ID is required")
	}

	var token TokenInfo
	if err := c.getJSON(ctx, "/api/v1/tokens/"+url.PathEscape(normalizedTokenID), &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// GetNFT returns one serial of an NFT collection.
func (c *Client) GetNFT(ctx context.Context, tokenID string, serial int64) (*NFT, error) {
	normalizedTokenID := strings.TrimSpace(tokenID)
	if normalizedTokenID == "" {
		return nil, fmt.Errorf("token ID is required")
	}
	if serial <= 0 {
		return nil, fmt.Errorf("serial must be positive")
	}

	var nft NFT
	path := fmt.Sprintf("/api/v1/tokens/%s/nfts/%d", url.PathEscape(normalizedTokenID), serial)
	if err := c.getJSON(ctx, path, &nft); err != nil {
		return nil, err
	}
	return &nft, nil
}

// GetAccountNFTs returns the NFTs an account holds, optionally limited to
// one token. All pages are followed.
func (c *Client) GetAccountNFTs(ctx context.Context, accountID string, tokenID string) ([]NFT, error) {
	normalizedAccountID := strings.TrimSpace(accountID)
	if normalizedAccountID == "" {
		return nil, fmt.Errorf("account ID is required")
	}

	values := url.Values{}
	values.Set("limit", "100")
	if strings.TrimSpace(tokenID) != "" {
		values.Set("token.id", strings.TrimSpace(tokenID))
	}
	next := fmt.Sprintf("/api/v1/accounts/%s/nfts?%s", url.PathEscape(normalizedAccountID), values.Encode())

	result := make([]NFT, 0)
	for next != "" {
		var page nftsResponse
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		result = append(result, page.NFTs...)
		next = page.Links.Next
	}
	return result, nil
}

// DecodeNFTMetadata returns the raw metadata bytes of an NFT.
func DecodeNFTMetadata(nft NFT) ([]byte, error) {
	if strings.TrimSpace(nft.Metadata) == "" {
		return nil, fmt.Errorf("NFT metadata is empty")
	}
	return base64.StdEncoding.DecodeString(nft.Metadata)
}

// GetTransaction returns a transaction by id. SDK style ids
// (0.0.1@1700000000.123) are converted to the mirror form.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	normalized := TransactionIDForMirror(transactionID)
	if normalized == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}

	var response transactionsResponse
	path := fmt.Sprintf("/api/v1/transactions/%s", normalized)
	if err := c.getJSON(ctx, path, &response); err != nil {
		return nil, err
	}

	if len(response.Transactions) == 0 {
		return nil, nil
	}

	return &response.Transactions[0], nil
}

// TransactionIDForMirror converts 0.0.1@1700000000.123 to
// 0.0.1-1700000000-123. Other forms are returned trimmed.
func TransactionIDForMirror(transactionID string) string {
	trimmed := strings.TrimSpace(transactionID)
	account, validStart, found := strings.Cut(trimmed, "@")
	if !found {
		return trimmed
	}
	return account + "-" + strings.Replace(validStart, ".", "-", 1)
}

func (c *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	requestURL := c.resolveURL(pathOrURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Encoding", shared.AcceptEncoding)
	if c.apiKey != "" {
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer response.Body.Close()

	body, err := shared.ReadBody(response)
	if err != nil {
		return fmt.Errorf("failed to read mirror node response: %w", err)
	}

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, pathOrURL)
	}
	if response.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, response.StatusCode)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf(
			"mirror node request failed with status %d: %s",
			response.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode mirror node response: %w", err)
	}

	return nil
}

func (c *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}

	path := pathOrURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}
