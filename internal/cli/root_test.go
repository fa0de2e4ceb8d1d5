package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/ledger/ledgertest"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "paperminter", cmd.Use)
	assert.Contains(t, cmd.Long, "content hash")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"mint", "verify", "resolve", "reconcile", "fingerprint"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	backendFlag := cmd.PersistentFlags().Lookup("backend")
	require.NotNil(t, backendFlag)
	assert.Equal(t, BackendXRPL, backendFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	run := runCLI(t, ledgertest.New(), "", "resolve", "ABC", "--format", "yaml")
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
	assert.False(t, Reported(run.err))
}

func TestInvalidBackend(t *testing.T) {
	run := runCLI(t, ledgertest.New(), "", "resolve", "ABC", "--backend", "solana")
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestConfigFileMergesUnderFlags(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "paperminter.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
backend: hts
network: mainnet
strict: true
log:
  level: error
xrpl:
  account: rConfigured
  taxon: 7
hts:
  token_id: 0.0.5005
`), 0o600))

	fake := ledgertest.New()
	fake.Transactions["ABC"] = ledger.SubmitResult{Code: ledgertest.SuccessCode, Diff: ledgertest.CreatedPage("T-5")}

	run := runCLI(t, fake, "", "resolve", "ABC", "--config", configPath, "--network", "testnet")
	require.NoError(t, run.err)
	require.NotNil(t, run.opts)
	assert.Equal(t, BackendHTS, run.opts.Backend)
	assert.Equal(t, "testnet", run.opts.Network)
	assert.True(t, run.opts.File.Strict)
	assert.Equal(t, uint32(7), run.opts.File.XRPL.Taxon)
	assert.Equal(t, "0.0.5005", run.opts.File.HTS.TokenID)
	assert.False(t, run.signing)
}

func TestMissingExplicitConfigFile(t *testing.T) {
	run := runCLI(t, ledgertest.New(), "", "resolve", "ABC", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestConnectFailureIsReported(t *testing.T) {
	fake := ledgertest.New()
	fake.ConnectErr = ledger.ErrConnection

	run := runCLI(t, fake, "", "resolve", "ABC", "--format", "json")
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
	assert.True(t, Reported(run.err))

	response := decodeResponse(t, run.out)
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, ErrCodeLedger, response.Error.Code)
}

func TestLoadFileConfigOptional(t *testing.T) {
	config, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, config)
}

func TestLoadFileConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unterminated"), 0o600))
	_, err := LoadFileConfig(path, true)
	require.Error(t, err)
}
