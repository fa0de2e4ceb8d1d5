package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
	"github.com/scholarled/paper-nft-go/pkg/ledger/ledgertest"
	"github.com/scholarled/paper-nft-go/pkg/payload"
)

const (
	testAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	testHash    = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
)

// cliRun holds the outcome of one command execution.
type cliRun struct {
	out     string
	err     error
	opts    *RootOptions
	signing bool
}

// runCLI executes the root command against fake. The journal lives in
// journalDir; pass "" to disable it.
func runCLI(t *testing.T, fake *ledgertest.Fake, journalDir string, args ...string) cliRun {
	t.Helper()

	run := cliRun{}
	factory := func(ctx context.Context, opts *RootOptions, prompt io.Writer, signing bool) (*Backend, error) {
		run.opts = opts
		run.signing = signing
		return &Backend{Client: fake, Identity: ledger.Identity{Account: testAccount}}, nil
	}

	cmd := newRootCommand(factory)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--journal", journalDir, "--log-level", "off"))

	run.err = cmd.ExecuteContext(context.Background())
	run.out = out.String()
	return run
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response), "output: %s", out)
	return response
}

func decodeData[T any](t *testing.T, response CLIResponse) T {
	t.Helper()
	raw, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var data T
	require.NoError(t, json.Unmarshal(raw, &data))
	return data
}

func encodedPayload(t *testing.T, contentHash string) []byte {
	t.Helper()
	record, err := payload.NewRecord(contentHash, "On Hashing", "A. Author", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	encoded, err := payload.Encode(record)
	require.NoError(t, err)
	return encoded
}
