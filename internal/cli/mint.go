package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scholarled/paper-nft-go/pkg/fingerprint"
	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/mint"
)

// MintOptions holds mint command flags.
type MintOptions struct {
	Hash    string
	File    string
	Title   string
	Authors []string
	Strict  bool
}

// MintResult is the command output for one mint.
type MintResult struct {
	Status     string `json:"status"`
	TokenID    string `json:"token_id,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	TxRef      string `json:"tx_ref,omitempty"`
	Code       string `json:"code,omitempty"`
	Account    string `json:"account"`
}

func (r MintResult) String() string {
	switch r.Status {
	case "minted":
		return fmt.Sprintf("minted %s (%s) in %s", r.TokenID, r.Confidence, r.TxRef)
	case "unresolved":
		return fmt.Sprintf("minted in %s but the token id could not be resolved; run reconcile", r.TxRef)
	default:
		return fmt.Sprintf("%s %s %s", r.Status, r.TxRef, r.Code)
	}
}

// NewMintCommand creates the mint command.
func NewMintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MintOptions{}

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint an NFT recording a paper's content hash",
		Long: `Mint an NFT whose payload carries the paper's SHA-256 content hash,
title, authors and a timestamp, then resolve the new token id.

The hash is given with --hash or computed from --file. Attempts are written
to the journal so unresolved or interrupted mints can be reconciled.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMint(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Hash, "hash", "", "hex SHA-256 content hash")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "paper file to hash")
	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "paper title")
	cmd.Flags().StringSliceVarP(&opts.Authors, "author", "a", nil, "author (repeatable)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat fallback token resolution as unresolved")
	cmd.MarkFlagRequired("title")

	return cmd
}

func runMint(rootOpts *RootOptions, opts *MintOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := rootOpts.formatter(cmd)

	contentHash, err := mintHash(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}

	backend, err := rootOpts.connect(ctx, formatter, true)
	if err != nil {
		return err
	}
	defer backend.Client.Close()

	store, closeJournal, err := rootOpts.openJournal()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err, nil)
	}
	defer closeJournal()

	config := mint.Config{
		Client:  backend.Client,
		Builder: backend.Builder,
		Strict:  opts.Strict || rootOpts.File.Strict,
	}
	if store != nil {
		config.Journal = store
	}
	minter, err := mint.NewMinter(config)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}

	outcome, err := minter.MintPaper(ctx, backend.Identity, contentHash, opts.Title, strings.Join(opts.Authors, ", "))
	result := mintResult(backend.Identity, outcome)

	var rejected *mint.SubmissionRejectedError
	switch {
	case errors.Is(err, mint.ErrOutcomeUnknown):
		return formatter.Fail(ExitFailure, ErrCodeUnknown, err, result)
	case errors.As(err, &rejected):
		return formatter.Fail(ExitFailure, ErrCodeRejected, err, result)
	case errors.Is(err, ledger.ErrConnection):
		return formatter.Fail(ExitCommandError, ErrCodeLedger, err, result)
	case err != nil:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, result)
	}

	if err := formatter.Success(result); err != nil {
		return err
	}
	if outcome.Unresolved {
		return negativeResult(ErrCodeUnresolved)
	}
	return nil
}

func mintHash(opts *MintOptions) (string, error) {
	if opts.File == "" {
		if strings.TrimSpace(opts.Hash) == "" {
			return "", fmt.Errorf("one of --hash or --file is required")
		}
		return fingerprint.ValidateHex(opts.Hash)
	}

	f, err := os.Open(opts.File)
	if err != nil {
		return "", err
	}
	defer f.Close()

	digest, err := fingerprint.Compute(f)
	if err != nil {
		return "", err
	}
	if opts.Hash != "" {
		expected, err := fingerprint.ValidateHex(opts.Hash)
		if err != nil {
			return "", err
		}
		if expected != digest.SHA256Hex {
			return "", fmt.Errorf("--hash %s does not match %s (%s)", expected, opts.File, digest.SHA256Hex)
		}
	}
	return digest.SHA256Hex, nil
}

func mintResult(identity ledger.Identity, outcome mint.Outcome) MintResult {
	result := MintResult{
		TxRef:   outcome.TxRef,
		Code:    outcome.Code,
		Account: identity.Account,
	}
	switch {
	case outcome.Unknown:
		result.Status = "unknown"
	case outcome.Success && outcome.Unresolved:
		result.Status = "unresolved"
	case outcome.Success:
		result.Status = "minted"
		result.TokenID = outcome.TokenID()
		result.Confidence = outcome.Confidence.String()
	case outcome.Code != "":
		result.Status = "rejected"
	default:
		result.Status = "failed"
	}
	return result
}
