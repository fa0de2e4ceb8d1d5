package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/reconcile"
)

// ReconcileReport is the output of the reconcile command.
type ReconcileReport struct {
	Results []reconcile.Result `json:"results"`
}

func (r ReconcileReport) String() string {
	if len(r.Results) == 0 {
		return "nothing to reconcile"
	}
	lines := make([]string, 0, len(r.Results))
	for _, result := range r.Results {
		line := fmt.Sprintf("%-10s %s %s", result.Action, result.EntryID, result.TxRef)
		if result.TokenID != "" {
			line += " -> " + result.TokenID
		}
		if result.Detail != "" {
			line += " (" + result.Detail + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Settle journaled mints whose outcome or token id is unknown",
		Long: `Walk the mint journal and settle every unresolved or unknown attempt:
re-read its transaction when the ledger supports it, otherwise match the
paper's content hash against the tokens the account holds. Attempts that
match no token or several tokens are left for an operator.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(rootOpts, owner, cmd)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "account whose tokens are searched (default: each attempt's account)")

	return cmd
}

func runReconcile(rootOpts *RootOptions, owner string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := rootOpts.formatter(cmd)

	store, closeJournal, err := rootOpts.openJournal()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err, nil)
	}
	defer closeJournal()
	if store == nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, errors.New("reconcile needs a journal; set --journal"), nil)
	}

	backend, err := rootOpts.connect(ctx, formatter, false)
	if err != nil {
		return err
	}
	defer backend.Client.Close()

	reconciler, err := reconcile.NewReconciler(reconcile.Config{
		Journal: store,
		Client:  backend.Client,
		Owner:   owner,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}

	results, err := reconciler.Run(ctx)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, ledger.ErrConnection) {
			code = ErrCodeLedger
		}
		return formatter.Fail(ExitCommandError, code, err, ReconcileReport{Results: results})
	}

	report := ReconcileReport{Results: results}
	if err := formatter.Success(report); err != nil {
		return err
	}
	for _, result := range results {
		if result.Action == reconcile.ActionSkipped {
			return negativeResult(ErrCodeUnresolved)
		}
	}
	return nil
}
