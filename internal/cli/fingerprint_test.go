package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarled/paper-nft-go/pkg/ledger/ledgertest"
)

func TestFingerprintGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, format := range []string{"text", "json"} {
		t.Run(format, func(t *testing.T) {
			run := runCLI(t, ledgertest.New(), "", "fingerprint", "testdata/paper.txt", "--format", format)
			require.NoError(t, run.err)
			assert.Nil(t, run.opts, "fingerprint must not open a ledger")
			g.Assert(t, "fingerprint_"+format, []byte(run.out))
		})
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	run := runCLI(t, ledgertest.New(), "", "fingerprint", "testdata/absent.pdf")
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}
