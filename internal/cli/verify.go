package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/verify"
)

// VerifyOptions holds verify command flags.
type VerifyOptions struct {
	Hash        string
	Owner       string
	Batch       string
	Concurrency int
}

// BatchEntry is one line of a verify batch file.
type BatchEntry struct {
	TokenID string `yaml:"token_id"`
	Hash    string `yaml:"hash"`
}

// VerifyResult is the command output for one token.
type VerifyResult struct {
	TokenID  string      `json:"token_id"`
	Verdict  verify.Kind `json:"verdict"`
	Expected string      `json:"expected,omitempty"`
	Found    string      `json:"found,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Message  string      `json:"message"`
}

func (r VerifyResult) String() string {
	return r.Message
}

// VerifyReport is the output of the verify command.
type VerifyReport struct {
	Results []VerifyResult `json:"results"`
}

func (r VerifyReport) String() string {
	lines := make([]string, 0, len(r.Results))
	for _, result := range r.Results {
		lines = append(lines, fmt.Sprintf("%-15s %s", result.Verdict, result.Message))
	}
	return strings.Join(lines, "\n")
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [token-id]",
		Short: "Check that a token's payload carries a paper's content hash",
		Long: `Look a token up on the ledger, decode its payload and compare the
recorded content hash with the expected one.

Use --batch with a YAML list of {token_id, hash} entries to verify many
tokens at once. The command exits 1 unless every token verifies.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Hash, "hash", "", "expected hex SHA-256 content hash")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "account holding the token (default: configured account)")
	cmd.Flags().StringVar(&opts.Batch, "batch", "", "YAML file of tokens to verify")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", verify.DefaultConcurrency, "parallel lookups for --batch")

	return cmd
}

func runVerify(rootOpts *RootOptions, opts *VerifyOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := rootOpts.formatter(cmd)

	requests, err := verifyRequests(opts, args)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}

	backend, err := rootOpts.connect(ctx, formatter, false)
	if err != nil {
		return err
	}
	defer backend.Client.Close()

	owner := firstNonEmpty(opts.Owner, backend.Identity.Account)
	verifier, err := verify.NewVerifier(backend.Client, owner)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}

	verdicts, err := verifier.WithConcurrency(opts.Concurrency).VerifyMany(ctx, requests)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, ledger.ErrConnection) {
			code = ErrCodeLedger
		}
		return formatter.Fail(ExitCommandError, code, err, nil)
	}

	report := VerifyReport{Results: make([]VerifyResult, 0, len(verdicts))}
	allVerified := true
	for i, verdict := range verdicts {
		report.Results = append(report.Results, verifyResult(requests[i], verdict))
		if verdict.Kind() != verify.KindVerified {
			allVerified = false
		}
	}

	if err := formatter.Success(report); err != nil {
		return err
	}
	if !allVerified {
		return negativeResult(ErrCodeVerification)
	}
	return nil
}

func verifyRequests(opts *VerifyOptions, args []string) ([]verify.Request, error) {
	if opts.Batch != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("a token id argument cannot be combined with --batch")
		}
		data, err := os.ReadFile(opts.Batch)
		if err != nil {
			return nil, err
		}
		var entries []BatchEntry
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse batch %s: %w", opts.Batch, err)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("batch %s is empty", opts.Batch)
		}
		requests := make([]verify.Request, 0, len(entries))
		for _, entry := range entries {
			requests = append(requests, verify.Request{TokenID: entry.TokenID, ExpectedHash: entry.Hash})
		}
		return requests, nil
	}

	if len(args) != 1 {
		return nil, fmt.Errorf("a token id or --batch is required")
	}
	if strings.TrimSpace(opts.Hash) == "" {
		return nil, fmt.Errorf("--hash is required")
	}
	return []verify.Request{{TokenID: args[0], ExpectedHash: opts.Hash}}, nil
}

func verifyResult(request verify.Request, verdict verify.Verdict) VerifyResult {
	result := VerifyResult{
		TokenID: request.TokenID,
		Verdict: verdict.Kind(),
		Message: verdict.String(),
	}
	switch v := verdict.(type) {
	case verify.Verified:
		result.Found = v.Record.ContentHash
	case verify.Mismatch:
		result.Expected = v.Expected
		result.Found = v.Found
	case verify.Malformed:
		result.Reason = v.Reason
	}
	return result
}
