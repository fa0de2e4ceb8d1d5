package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scholarled/paper-nft-go/pkg/hts"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/mint"
	"github.com/scholarled/paper-nft-go/pkg/shared"
	"github.com/scholarled/paper-nft-go/pkg/xrpl"
)

// Backend is an opened ledger with the account the command acts for.
// Identity.Signer is nil for read-only commands.
type Backend struct {
	Client   ledger.Client
	Identity ledger.Identity
	Builder  mint.Builder
}

// BackendFactory opens the configured ledger. signing asks for a signer.
type BackendFactory func(ctx context.Context, opts *RootOptions, prompt io.Writer, signing bool) (*Backend, error)

func openBackend(ctx context.Context, opts *RootOptions, prompt io.Writer, signing bool) (*Backend, error) {
	switch opts.Backend {
	case BackendHTS:
		return openHTS(opts, prompt)
	default:
		return openXRPL(opts, prompt, signing)
	}
}

func openXRPL(opts *RootOptions, prompt io.Writer, signing bool) (*Backend, error) {
	file := opts.File.XRPL
	env, envErr := shared.SignerConfigFromEnv()

	network := firstNonEmpty(opts.Network, env.Network)
	account := firstNonEmpty(env.Account, file.Account)
	secret := env.SecretKey

	if signing && secret == "" {
		value, err := promptSecret(prompt, "XRPL secret key")
		if err != nil {
			return nil, err
		}
		secret = value
	}
	if account == "" && secret == "" {
		if envErr != nil {
			return nil, envErr
		}
		return nil, fmt.Errorf("XRPL_ACCOUNT is required")
	}

	client, err := xrpl.NewClient(xrpl.Config{
		Network:      network,
		URL:          firstNonEmpty(env.NodeURL, file.NodeURL),
		LedgerOffset: file.LedgerOffset,
	})
	if err != nil {
		return nil, err
	}

	identity := ledger.Identity{Account: account}
	if signing {
		identity, err = xrpl.NewIdentity(account, secret)
		if err != nil {
			return nil, err
		}
	}

	return &Backend{
		Client:   client,
		Identity: identity,
		Builder:  mint.Builder{Taxon: file.Taxon, Fee: file.Fee},
	}, nil
}

// openHTS always needs the operator key: the SDK client is built with it
// even for reads.
func openHTS(opts *RootOptions, prompt io.Writer) (*Backend, error) {
	file := opts.File.HTS
	env, envErr := shared.OperatorConfigFromEnv()

	accountID := firstNonEmpty(env.AccountID, file.OperatorID)
	if accountID == "" {
		if envErr != nil {
			return nil, envErr
		}
		return nil, fmt.Errorf("HEDERA_ACCOUNT_ID is required")
	}
	privateKey := env.PrivateKey
	if privateKey == "" {
		value, err := promptSecret(prompt, "Hedera operator key")
		if err != nil {
			return nil, err
		}
		privateKey = value
	}

	client, err := hts.NewClient(hts.Config{
		Network:            firstNonEmpty(opts.Network, env.Network),
		OperatorAccountID:  accountID,
		OperatorPrivateKey: privateKey,
		SupplyPrivateKey:   strings.TrimSpace(os.Getenv("HEDERA_SUPPLY_KEY")),
		TokenID:            firstNonEmpty(strings.TrimSpace(os.Getenv("HEDERA_TOKEN_ID")), file.TokenID),
		MaxFeeHbar:         file.MaxFeeHbar,
		Memo:               file.Memo,
		MirrorBaseURL:      file.MirrorURL,
	})
	if err != nil {
		return nil, err
	}

	return &Backend{
		Client:   client,
		Identity: client.Identity(),
	}, nil
}

// connect opens and connects the backend. The caller closes the client.
func (o *RootOptions) connect(ctx context.Context, formatter *OutputFormatter, signing bool) (*Backend, error) {
	backend, err := o.open(ctx, o, formatter.ErrWriter, signing)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, err, nil)
	}
	if err := backend.Client.Connect(ctx); err != nil {
		backend.Client.Close()
		code := ErrCodeGeneric
		if errors.Is(err, ledger.ErrConnection) {
			code = ErrCodeLedger
		}
		return nil, formatter.Fail(ExitCommandError, code, err, nil)
	}
	formatter.VerboseLog("connected to %s as %s", o.Backend, backend.Identity.Account)
	return backend, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
