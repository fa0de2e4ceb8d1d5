package shared

import (
	"fmt"
	"strings"
)

// SignerConfig identifies the XRPL account that mints paper tokens.
type SignerConfig struct {
	Account   string
	SecretKey string
	Network   string
	NodeURL   string
}

var (
	signerAccountKeys = []string{"XRPL_ACCOUNT", "PLATFORM_WALLET_ADDRESS", "ACCOUNT_ADDRESS"}
	signerSecretKeys  = []string{"XRPL_SECRET_KEY", "PLATFORM_WALLET_SECRET", "SECRET_KEY"}
)

// SignerConfigFromEnv loads the XRPL signer from the environment (and a .env
// file when present). The secret key is optional here so read-only commands
// can run without it; callers that sign must check it.
func SignerConfigFromEnv() (SignerConfig, error) {
	loadDotEnvIfPresent()

	network, err := NormalizeNetwork(firstNonEmptyEnv("XRPL_NETWORK", "NETWORK"))
	if err != nil {
		return SignerConfig{}, err
	}

	account := firstNonEmptyEnv(signerAccountKeys...)
	if scoped := scopedEnv(network, signerAccountKeys...); scoped != "" {
		account = scoped
	}
	secret := firstNonEmptyEnv(signerSecretKeys...)
	if scoped := scopedEnv(network, signerSecretKeys...); scoped != "" {
		secret = scoped
	}
	nodeURL := firstNonEmptyEnv("XRPL_NODE_URL")
	if scoped := scopedEnv(network, "XRPL_NODE_URL"); scoped != "" {
		nodeURL = scoped
	}

	if account == "" {
		return SignerConfig{}, fmt.Errorf("XRPL_ACCOUNT is required")
	}

	return SignerConfig{
		Account:   account,
		SecretKey: secret,
		Network:   network,
		NodeURL:   nodeURL,
	}, nil
}

// RedactSecret returns a printable form of a secret that keeps only its
// last four characters.
func RedactSecret(secret string) string {
	trimmed := strings.TrimSpace(secret)
	if len(trimmed) <= 4 {
		return strings.Repeat("*", len(trimmed))
	}
	return strings.Repeat("*", len(trimmed)-4) + trimmed[len(trimmed)-4:]
}
