package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// OperatorConfig identifies the Hedera operator (payer and supply key
// holder) used by the HTS backend.
type OperatorConfig struct {
	AccountID  string
	PrivateKey string
	Network    string
}

// OperatorConfigFromEnv loads the Hedera operator from the environment.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	loadDotEnvIfPresent()

	network, err := NormalizeNetwork(firstNonEmptyEnv("HEDERA_NETWORK", "NETWORK"))
	if err != nil {
		return OperatorConfig{}, err
	}

	accountKeys := []string{"HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID", "OPERATOR_ID"}
	privateKeys := []string{"HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY", "OPERATOR_KEY"}

	accountID := firstNonEmptyEnv(accountKeys...)
	if scoped := scopedEnv(network, accountKeys...); scoped != "" {
		accountID = scoped
	}
	privateKey := firstNonEmptyEnv(privateKeys...)
	if scoped := scopedEnv(network, privateKeys...); scoped != "" {
		privateKey = scoped
	}

	if accountID == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_ACCOUNT_ID is required")
	}
	if privateKey == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_PRIVATE_KEY is required")
	}

	return OperatorConfig{
		AccountID:  accountID,
		PrivateKey: privateKey,
		Network:    network,
	}, nil
}

// ParsePrivateKey parses a Hedera private key, trying ED25519, ECDSA and the
// generic DER form in that order.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	ed25519Key, edErr := hedera.PrivateKeyFromStringEd25519(candidate)
	if edErr == nil {
		return ed25519Key, nil
	}

	ecdsaKey, ecdsaErr := hedera.PrivateKeyFromStringECDSA(candidate)
	if ecdsaErr == nil {
		return ecdsaKey, nil
	}

	genericKey, genericErr := hedera.PrivateKeyFromString(candidate)
	if genericErr == nil {
		return genericKey, nil
	}

	return hedera.PrivateKey{}, fmt.Errorf(
		"failed to parse private key as ED25519 (%v), ECDSA (%v), or generic (%v)",
		edErr,
		ecdsaErr,
		genericErr,
	)
}
