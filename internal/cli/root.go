package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/scholarled/paper-nft-go/internal/log"
)

// Ledger backends.
const (
	BackendXRPL = "xrpl"
	BackendHTS  = "hts"
)

// RootOptions holds global flags for all commands, merged with the config
// file before any command runs. Flags win over the file.
type RootOptions struct {
	Verbose    bool
	Format     string
	ConfigPath string
	Backend    string
	Network    string
	Journal    string
	LogLevel   string

	File FileConfig

	open BackendFactory
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the paperminter root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openBackend)
}

func newRootCommand(open BackendFactory) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "paperminter",
		Short: "Mint, resolve and verify paper NFTs",
		Long: `paperminter records the content hash of an academic paper in an NFT.

It mints the token on the XRP Ledger (or Hedera Token Service), recovers the
new token id from the finalized transaction, and later checks a token's
payload against the paper's current hash.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file (default ./"+DefaultConfigFile+" when present)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", BackendXRPL, "ledger backend (xrpl|hts)")
	cmd.PersistentFlags().StringVar(&opts.Network, "network", "", "network (mainnet|testnet|devnet)")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", ".paperminter/journal", "mint journal directory, empty to disable")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level")

	cmd.AddCommand(NewMintCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewFingerprintCommand(opts))

	return cmd
}

func (o *RootOptions) init(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	path := o.ConfigPath
	required := path != ""
	if !required {
		path = DefaultConfigFile
	}
	file, err := LoadFileConfig(path, required)
	if err != nil {
		return WrapExitError(ExitCommandError, "config", err)
	}
	o.File = file

	flags := cmd.Flags()
	if !flags.Changed("backend") && file.Backend != "" {
		o.Backend = file.Backend
	}
	if !flags.Changed("network") && file.Network != "" {
		o.Network = file.Network
	}
	if !flags.Changed("journal") && file.Journal != "" {
		o.Journal = file.Journal
	}
	if o.Backend != BackendXRPL && o.Backend != BackendHTS {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid backend %q: must be xrpl or hts", o.Backend))
	}

	level := o.LogLevel
	if !flags.Changed("log-level") && file.Log.Level != "" {
		level = file.Log.Level
	}
	if o.Verbose {
		level = "debug"
	}
	if err := log.Init(level, file.Log.JSON, file.Log.File); err != nil {
		return WrapExitError(ExitCommandError, "log", err)
	}
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
