package mirror

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestNewClientTestnet(t *testing.T) {
	client, err := NewClient(Config{Network: "testnet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.BaseURL() != "https://testnet.mirrornode.hedera.com" {
		t.Fatalf("unexpected baseURL: %s", client.BaseURL())
	}
}

func TestNewClientMainnet(t *testing.T) {
	client, err := NewClient(Config{Network: "mainnet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.BaseURL() != "https://mainnet-public.mirrornode.hedera.com" {
		t.Fatalf("unexpected baseURL: %s", client.BaseURL())
	}
}

func TestNewClientCustomBaseURL(t *testing.T) {
	client, err := NewClient(Config{
		Network: "testnet",
		BaseURL: "https://custom.example.com/",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.BaseURL() != "https://custom.example.com" {
		t.Fatalf("unexpected baseURL: %s", client.BaseURL())
	}
}

func TestNewClientRejectsBadInput(t *testing.T) {
	if _, err := NewClient(Config{Network: "badnet"}); err == nil {
		t.Fatal("expected error for unsupported network")
	}
	if _, err := NewClient(Config{BaseURL: "ftp://mirror.example.com"}); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}

func TestNewClientWithHTTPClient(t *testing.T) {
	customHTTP := &http.Client{}
	client, err := NewClient(Config{
		Network:    "testnet",
		HTTPClient: customHTTP,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.httpClient != customHTTP {
		t.Fatal("expected custom http client to be used")
	}
}

func TestGetNFTValidation(t *testing.T) {
	client, _ := NewClient(Config{Network: "testnet"})
	if _, err := client.GetNFT(context.Background(), " ", 1); err == nil {
		t.Fatal("expected error for empty token ID")
	}
	if _, err := client.GetNFT(context.Background(), "0.0.5", 0); err == nil {
		t.Fatal("expected error for zero serial")
	}
}

func TestGetNFTSuccess(t *testing.T) {
	metadata := base64.StdEncoding.EncodeToString([]byte(`{"h":"ab12"}`))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tokens/0.0.5/nfts/3" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(NFT{
			AccountID:    "0.0.1001",
			Metadata:     metadata,
			SerialNumber: 3,
			TokenID:      "0.0.5",
		})
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	nft, err := client.GetNFT(context.Background(), "0.0.5", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nft.AccountID != "0.0.1001" || nft.SerialNumber != 3 {
		t.Fatalf("unexpected NFT: %+v", nft)
	}
	raw, err := DecodeNFTMetadata(*nft)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if string(raw) != `{"h":"ab12"}` {
		t.Fatalf("unexpected metadata: %s", raw)
	}
}

func TestGetNFTNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"_status":{"messages":[{"message":"Not found"}]}}`))
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	_, err := client.GetNFT(context.Background(), "0.0.5", 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetNFTBrotliResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			t.Fatalf("expected br in Accept-Encoding, got %q", r.Header.Get("Accept-Encoding"))
		}
		var compressed bytes.Buffer
		writer := brotli.NewWriter(&compressed)
		json.NewEncoder(writer).Encode(NFT{TokenID: "0.0.5", SerialNumber: 1, AccountID: "0.0.7"})
		writer.Close()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "br")
		w.Write(compressed.Bytes())
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	nft, err := client.GetNFT(context.Background(), "0.0.5", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nft.AccountID != "0.0.7" {
		t.Fatalf("unexpected account: %s", nft.AccountID)
	}
}

func TestDecodeNFTMetadataEmpty(t *testing.T) {
	if _, err := DecodeNFTMetadata(NFT{Metadata: "  "}); err == nil {
		t.Fatal("expected error for empty metadata")
	}
}

func TestGetAccountNFTsPagination(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("token.id") != "0.0.5" && calls == 1 {
			t.Fatalf("expected token.id filter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		page := nftsResponse{}
		if calls == 1 {
			page.NFTs = []NFT{{TokenID: "0.0.5", SerialNumber: 1}}
			page.Links.Next = "/api/v1/accounts/0.0.1001/nfts?limit=100&serialnumber=lt:1"
		} else {
			page.NFTs = []NFT{{TokenID: "0.0.5", SerialNumber: 2}}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	nfts, err := client.GetAccountNFTs(context.Background(), "0.0.1001", "0.0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nfts) != 2 || calls != 2 {
		t.Fatalf("expected 2 NFTs over 2 calls, got %d over %d", len(nfts), calls)
	}
}

func TestGetAccountNFTsEmptyAccount(t *testing.T) {
	client, _ := NewClient(Config{Network: "testnet"})
	if _, err := client.GetAccountNFTs(context.Background(), "", ""); err == nil {
		t.Fatal("expected error for empty account ID")
	}
}

func TestTransactionIDForMirror(t *testing.T) {
	cases := map[string]string{
		"0.0.1@1700000000.123456789": "0.0.1-1700000000-123456789",
		" 0.0.1-1700000000-1 ":       "0.0.1-1700000000-1",
		"":                           "",
	}
	for input, expected := range cases {
		if got := TransactionIDForMirror(input); got != expected {
			t.Fatalf("TransactionIDForMirror(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestGetTransactionEmpty(t *testing.T) {
	client, _ := NewClient(Config{Network: "testnet"})
	_, err := client.GetTransaction(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty transaction ID")
	}
}

func TestGetTransactionSuccess(t *testing.T) {
	receiver := "0.0.1001"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transactions/0.0.1-123-456" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(transactionsResponse{
			Transactions: []Transaction{{
				TransactionID: "0.0.1-123-456",
				Name:          "TOKENMINT",
				Result:        "SUCCESS",
				NFTTransfers: []NFTTransfer{{
					ReceiverAccountID: &receiver,
					SerialNumber:      4,
					TokenID:           "0.0.5",
				}},
			}},
		})
	}))
	defer server.Close()

	client, _ := NewClient(Config{Network: "testnet", BaseURL: server.URL})
	tx, err := client.GetTransaction(context.Background(), "0.0.1@123.456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx == nil {
		t.Fatal("expected non-nil transaction")
	}
	if tx.Result != "SUCCESS" {
		t.Fatalf("expected 'SUCCESS', got %q", tx.Result)
	}
	if len(tx.NFTTransfers) != 1 || tx.NFTTransfers[0].SenderAccountID != nil {
		t.Fatalf("unexpected transfers: %+v", tx.NFTTransfers)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(transactionsResponse{Transactions: []Transaction{}})
	}))
	defer server.Close()

	client, _ := NewClient(Config{Network: "testnet", BaseURL: server.URL})
	tx, err := client.GetTransaction(context.Background(), "0.0.1@123.456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx != nil {
		t.Fatal("expected nil for not found")
	}
}

func TestGetJSONServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal error"))
	}))
	defer server.Close()

	client, _ := NewClient(Config{Network: "testnet", BaseURL: server.URL})
	_, err := client.GetNFT(context.Background(), "0.0.5", 1)
	if err == nil {
		t.Fatal("expected error for server error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGetJSONClientErrorIsNotUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"_status":{"messages":[{"message":"Invalid parameter"}]}}`))
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	_, err := client.GetNFT(context.Background(), "0.0.5", 1)
	if err == nil || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a plain status error, got %v", err)
	}
}

func TestGetTokenSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tokens/0.0.5" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TokenInfo{TokenID: "0.0.5", Type: TokenTypeNonFungible, TreasuryAccountID: "0.0.1001"})
	}))
	defer server.Close()

	client, _ := NewClient(Config{BaseURL: server.URL})
	token, err := client.GetToken(context.Background(), "0.0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.Type != TokenTypeNonFungible || token.TreasuryAccountID != "0.0.1001" {
		t.Fatalf("unexpected token: %+v", token)
	}
}

func TestGetJSONInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, _ := NewClient(Config{Network: "testnet", BaseURL: server.URL})
	_, err := client.GetNFT(context.Background(), "0.0.5", 1)
	if err == nil {
		t.Fatal("expected error for invalid JSON response")
	}
}

func TestResolveURL(t *testing.T) {
	client := &Client{baseURL: "https://example.com"}

	if url := client.resolveURL("/api/test"); url != "https://example.com/api/test" {
		t.Fatalf("unexpected URL: %s", url)
	}
	if url := client.resolveURL("api/test"); url != "https://example.com/api/test" {
		t.Fatalf("unexpected URL: %s", url)
	}
	if url := client.resolveURL("https://other.com/path"); url != "https://other.com/path" {
		t.Fatalf("unexpected URL: %s", url)
	}
}

func TestGetJSONSendsAPIKeyAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer my-key" {
			t.Fatalf("expected 'Bearer my-key', got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Custom") != "value" {
			t.Fatalf("expected X-Custom=value, got %q", r.Header.Get("X-Custom"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(NFT{TokenID: "0.0.5", SerialNumber: 1})
	}))
	defer server.Close()

	client, _ := NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "my-key",
		Headers: map[string]string{"X-Custom": "value"},
	})
	if _, err := client.GetNFT(context.Background(), "0.0.5", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
