package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/resolver"
)

// ResolveResult is the output of the resolve command.
type ResolveResult struct {
	TxRef      string `json:"tx_ref"`
	Code       string `json:"code"`
	TokenID    string `json:"token_id,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Source     string `json:"source,omitempty"`
}

func (r ResolveResult) String() string {
	return fmt.Sprintf("%s -> %s (%s)", r.TxRef, r.TokenID, r.Confidence)
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "resolve <tx-ref>",
		Short: "Recover the token id minted by a finalized transaction",
		Long: `Fetch a validated mint transaction and pick the minted token id out of
its state diff. Useful for mints whose id could not be resolved at submit
time.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], strict, cmd)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on fallback resolution")

	return cmd
}

func runResolve(rootOpts *RootOptions, txRef string, strict bool, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := rootOpts.formatter(cmd)

	backend, err := rootOpts.connect(ctx, formatter, false)
	if err != nil {
		return err
	}
	defer backend.Client.Close()

	fetcher, ok := backend.Client.(ledger.TxFetcher)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, fmt.Errorf("backend %s cannot fetch transactions", rootOpts.Backend), nil)
	}

	fetched, err := fetcher.FetchTransaction(ctx, txRef)
	switch {
	case errors.Is(err, ledger.ErrNoSuchTransaction):
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err, nil)
	case errors.Is(err, ledger.ErrConnection):
		return formatter.Fail(ExitCommandError, ErrCodeLedger, err, nil)
	case err != nil:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}

	result := ResolveResult{TxRef: txRef, Code: fetched.Code}
	if fetched.Code != backend.Client.SuccessCode() {
		return formatter.Fail(ExitFailure, ErrCodeRejected, fmt.Errorf("transaction failed with code %s", fetched.Code), result)
	}

	resolve := resolver.Resolve
	if strict || rootOpts.File.Strict {
		resolve = resolver.ResolveStrict
	}
	resolution, err := resolve(fetched.Diff)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeUnresolved, err, result)
	}

	result.TokenID = resolution.Token.TokenID
	result.Confidence = resolution.Confidence.String()
	result.Source = resolution.Source
	return formatter.Success(result)
}
