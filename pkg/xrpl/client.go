package xrpl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholarled/paper-nft-go/internal/log"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/shared"
)

// Client talks to an XRPL node over JSON-RPC.
type Client struct {
	url          string
	httpClient   *http.Client
	headers      map[string]string
	pollInterval time.Duration
	maxPolls     int
	ledgerOffset uint32
	logger       zerolog.Logger
}

var (
	_ ledger.Client      = (*Client)(nil)
	_ ledger.TokenLister = (*Client)(nil)
	_ ledger.TxFetcher   = (*Client)(nil)
)

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	endpoint := strings.TrimSpace(config.URL)
	if endpoint == "" {
		defaultURL, err := shared.XRPLRPCURL(config.Network)
		if err != nil {
			return nil, err
		}
		endpoint = defaultURL
	}
	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid XRPL node URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid XRPL node URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedURL.Host) == "" {
		return nil, fmt.Errorf("invalid XRPL node URL: host is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ledgerOffset := config.LedgerOffset
	if ledgerOffset == 0 {
		ledgerOffset = DefaultLedgerOffset
	}

	logger := log.Ledger.With().Str("backend", "xrpl").Logger()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Client{
		url:          parsedURL.String(),
		httpClient:   httpClient,
		headers:      headers,
		pollInterval: pollInterval,
		maxPolls:     config.MaxPolls,
		ledgerOffset: ledgerOffset,
		logger:       logger,
	}, nil
}

// URL returns the JSON-RPC endpoint.
func (c *Client) URL() string {
	return c.url
}

// Connect checks that the node answers server_info. JSON-RPC holds no
// session, so calls made without Connect, or after Close, still work.
func (c *Client) Connect(ctx context.Context) error {
	var info serverInfoResult
	if err := c.call(ctx, "server_info", map[string]any{}, &info); err != nil {
		return err
	}

	c.logger.Debug().
		Str("url", c.url).
		Str("version", info.Info.BuildVersion).
		Str("state", info.Info.ServerState).
		Msg("connected")
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SuccessCode returns tesSUCCESS.
func (c *Client) SuccessCode() string {
	return SuccessCode
}

// call issues one JSON-RPC request. Transport failures and 5xx responses
// wrap ledger.ErrConnection; server-side errors are returned as *RPCError.
func (c *Client) call(ctx context.Context, method string, params any, target any) error {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: []any{params}})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Encoding", shared.AcceptEncoding)
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s request failed: %v", ledger.ErrConnection, method, err)
	}
	defer response.Body.Close()

	body, err := shared.ReadBody(response)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ledger.ErrConnection, method, err)
	}

	if response.StatusCode >= 500 {
		return fmt.Errorf(
			"%w: %s failed with status %d: %s",
			ledger.ErrConnection,
			method,
			response.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf(
			"%s failed with status %d: %s",
			method,
			response.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	var envelope rpcEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if len(envelope.Result) == 0 {
		return fmt.Errorf("%s response has no result", method)
	}

	var status rpcStatus
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return fmt.Errorf("failed to decode %s status: %w", method, err)
	}
	if status.Status == "error" || status.Error != "" {
		return &RPCError{
			Method:  method,
			Name:    status.Error,
			Code:    status.ErrorCode,
			Message: status.ErrorMessage,
		}
	}

	if err := json.Unmarshal(envelope.Result, target); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

func isRPCError(err error, names ...string) bool {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	for _, name := range names {
		if rpcErr.Name == name {
			return true
		}
	}
	return false
}
