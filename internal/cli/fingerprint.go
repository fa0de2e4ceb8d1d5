package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scholarled/paper-nft-go/pkg/fingerprint"
)

// FingerprintResult is the output of the fingerprint command.
type FingerprintResult struct {
	File string `json:"file"`
	fingerprint.Fingerprint
}

func (r FingerprintResult) String() string {
	return fmt.Sprintf("file:   %s\nsha256: %s\ncid:    %s\nsize:   %d", r.File, r.SHA256Hex, r.CID, r.Size)
}

// NewFingerprintCommand creates the fingerprint command. It needs no ledger.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "fingerprint <file>",
		Short:         "Print a paper's SHA-256 content hash and CID",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			f, err := os.Open(args[0])
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
			}
			defer f.Close()

			digest, err := fingerprint.Compute(f)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
			}
			return formatter.Success(FingerprintResult{File: args[0], Fingerprint: digest})
		},
	}
}
