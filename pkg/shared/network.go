package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkDevnet  = "devnet"
)

// NormalizeNetwork lower-cases and validates a network name. Empty input
// selects testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkTestnet, nil
	}

	switch normalized {
	case NetworkMainnet, NetworkTestnet, NetworkDevnet:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported network %q", network)
	}
}

// XRPLRPCURL returns the public JSON-RPC endpoint for an XRPL network.
func XRPLRPCURL(network string) (string, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return "", err
	}

	switch normalized {
	case NetworkMainnet:
		return "https://s1.ripple.com:51234/", nil
	case NetworkDevnet:
		return "https://s.devnet.rippletest.net:51234/", nil
	default:
		return "https://s.altnet.rippletest.net:51234/", nil
	}
}

// HederaMirrorURL returns the public mirror node base URL for a Hedera
// network. Devnet maps to previewnet.
func HederaMirrorURL(network string) (string, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return "", err
	}

	switch normalized {
	case NetworkMainnet:
		return "https://mainnet-public.mirrornode.hedera.com", nil
	case NetworkDevnet:
		return "https://previewnet.mirrornode.hedera.com", nil
	default:
		return "https://testnet.mirrornode.hedera.com", nil
	}
}

// NewHederaClient creates a Hedera SDK client for the network. Devnet maps
// to previewnet.
func NewHederaClient(network string) (*hedera.Client, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}

	switch normalized {
	case NetworkMainnet:
		return hedera.ClientForMainnet(), nil
	case NetworkDevnet:
		return hedera.ClientForPreviewnet(), nil
	default:
		return hedera.ClientForTestnet(), nil
	}
}
