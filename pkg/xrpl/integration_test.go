package xrpl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/scholarled/paper-nft-go/pkg/mint"
	"github.com/scholarled/paper-nft-go/pkg/shared"
	"github.com/scholarled/paper-nft-go/pkg/verify"
)

func TestXRPLIntegration_MintAndVerify(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") != "1" {
		t.Skip("set RUN_INTEGRATION=1 to run live integration tests")
	}

	signerConfig, err := shared.SignerConfigFromEnv()
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	if strings.TrimSpace(signerConfig.SecretKey) == "" {
		t.Skip("skipping integration test: XRPL_SECRET_KEY is not set")
	}
	if strings.EqualFold(signerConfig.Network, shared.NetworkMainnet) && os.Getenv("ALLOW_MAINNET_INTEGRATION") != "1" {
		t.Skip("resolved mainnet credentials; set ALLOW_MAINNET_INTEGRATION=1 to allow live mainnet writes")
	}

	client, err := NewClient(Config{
		Network: signerConfig.Network,
		URL:     signerConfig.NodeURL,
	})
	if err != nil {
		t.Fatalf("failed to initialize xrpl client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	identity, err := NewIdentity(signerConfig.Account, signerConfig.SecretKey)
	if err != nil {
		t.Fatalf("failed to build identity: %v", err)
	}

	minter, err := mint.NewMinter(mint.Config{Client: client})
	if err != nil {
		t.Fatalf("failed to initialize minter: %v", err)
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("paper-nft-go integration %d", time.Now().UnixNano())))
	contentHash := hex.EncodeToString(sum[:])

	outcome, err := minter.MintPaper(ctx, identity, contentHash, "Integration Paper", "Go SDK")
	if err != nil {
		t.Fatalf("MintPaper failed: %v", err)
	}
	if !outcome.Success || outcome.Unresolved {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	verifier, err := verify.NewVerifier(client, signerConfig.Account)
	if err != nil {
		t.Fatalf("failed to initialize verifier: %v", err)
	}
	verdict, err := verifier.Verify(ctx, outcome.TokenID(), contentHash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if _, ok := verdict.(verify.Verified); !ok {
		t.Fatalf("expected Verified verdict, got %s", verdict)
	}
}
