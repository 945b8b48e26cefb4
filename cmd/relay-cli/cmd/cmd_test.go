package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mahd-Mehn/dao-voting/internal/bootstrap"
	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/internal/chain/chaintest"
	"github.com/Mahd-Mehn/dao-voting/pkg/config"
	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	aliceAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	keyVar       = "RELAY_CLI_TEST_KEY"
)

// useNode points every relay the CLI opens at one in-memory node.
func useNode(t *testing.T) *chaintest.Node {
	t.Helper()
	var node *chaintest.Node
	prev := relayFactory
	relayFactory = func(ctx context.Context, c config.Config) (*bootstrap.Relay, error) {
		desc, err := contract.VotingDAO(c.Chain.ContractAddress)
		if err != nil {
			return nil, err
		}
		if node == nil {
			node = chaintest.NewNode(c.Chain.ChainID, desc)
		}
		client := chain.NewEthClient(node, desc, chain.Options{NonceSource: c.Chain.NonceSource, CallTimeout: time.Second})
		return bootstrap.Assemble(ctx, c, client)
	}
	t.Cleanup(func() { relayFactory = prev })
	t.Setenv(keyVar, aliceKey)

	// materialise the node so tests can inspect it before the first command
	_, err := run(t, "proposals", "count")
	require.NoError(t, err)
	return node
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProposeListAndRead(t *testing.T) {
	node := useNode(t)

	out, err := run(t, "propose", "--key-env", keyVar, "-t", "Budget 2025", "-d", "Approve annual budget")
	require.NoError(t, err)
	assert.Contains(t, out, "0x")
	assert.Equal(t, 1, node.Sent())

	_, err = run(t, "vote", "0", "--key-env", keyVar)
	require.NoError(t, err)

	out, err = run(t, "proposals", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget 2025")
	assert.Contains(t, out, "Approve annual budget")

	out, err = run(t, "proposals", "get", "0", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"vote_count": 1`)

	out, err = run(t, "proposals", "count")
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))

	out, err = run(t, "proposals", "has-voted", "0", aliceAddress)
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(out))

	_, err = run(t, "proposals", "get", "9")
	assert.True(t, errors.Is(err, errno.ErrNotFound), err)
}

func TestExecuteAndDelete(t *testing.T) {
	node := useNode(t)
	node.AddProposal("A", "a")

	_, err := run(t, "execute", "0", "--key-env", keyVar)
	require.NoError(t, err)
	_, err = run(t, "delete", "0", "--key-env", keyVar)
	require.NoError(t, err)
	assert.Equal(t, 2, node.Sent())
}

func TestWriteInputErrors(t *testing.T) {
	useNode(t)

	_, err := run(t, "vote", "first", "--key-env", keyVar)
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)

	t.Setenv("RELAY_CLI_EMPTY", "")
	_, err = run(t, "vote", "0", "--key-env", "RELAY_CLI_EMPTY")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)

	t.Setenv("RELAY_CLI_BAD", "0x1234")
	_, err = run(t, "vote", "0", "--key-env", "RELAY_CLI_BAD")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)
}

func TestCallReadOnly(t *testing.T) {
	node := useNode(t)
	node.AddProposal("A", "a")

	out, err := run(t, "call", "proposalCount")
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))

	out, err = run(t, "call", "hasVoted", aliceAddress, "0")
	require.NoError(t, err)
	assert.Equal(t, "false", strings.TrimSpace(out))

	_, err = run(t, "call", "vote", "0")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)

	_, err = run(t, "call", "proposalCount", "extra")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)
}

func TestOfflineSigningRoundTrip(t *testing.T) {
	node := useNode(t)
	dir := t.TempDir()
	unsigned := filepath.Join(dir, "unsigned.json")
	signed := filepath.Join(dir, "signed.json")

	_, err := run(t, "tx", "build", "createProposal", "Budget", "Approve", "--from", aliceAddress, "-o", unsigned)
	require.NoError(t, err)

	out, err := run(t, "tx", "sign", "-i", unsigned, "-o", signed, "--key-env", keyVar)
	require.NoError(t, err)
	assert.Contains(t, out, "createProposal")
	assert.Contains(t, out, "@ 1 gwei")
	assert.Equal(t, 0, node.Sent())

	_, err = run(t, "tx", "broadcast", "-i", signed)
	require.NoError(t, err)
	assert.Equal(t, 1, node.Sent())

	// replaying the same bytes reuses a consumed nonce
	_, err = run(t, "tx", "broadcast", "-i", signed)
	assert.True(t, errors.Is(err, errno.ErrNodeRejected), err)

	out, err = run(t, "proposals", "count")
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))
}

func TestSignRejectsWrongKey(t *testing.T) {
	useNode(t)
	dir := t.TempDir()
	unsigned := filepath.Join(dir, "unsigned.json")

	_, err := run(t, "tx", "build", "vote", "0", "--from", "0x70997970C51812dc3A010C7d01b4Ad4ad2E6E4c9", "-o", unsigned)
	require.NoError(t, err)

	_, err = run(t, "tx", "sign", "-i", unsigned, "-o", filepath.Join(dir, "signed.json"), "--key-env", keyVar)
	assert.True(t, errors.Is(err, errno.ErrKeyMismatch), err)
}

func TestKeyDerive(t *testing.T) {
	t.Setenv("RELAY_CLI_MNEMONIC", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about")

	out, err := run(t, "key", "derive", "--mnemonic-env", "RELAY_CLI_MNEMONIC", "--count", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "m/44'/60'/0'/0/0")
	assert.Contains(t, lines[0], "0x9858EfFD232B4033E47d90003D41EC34EcaEda94")
	assert.Contains(t, lines[1], "m/44'/60'/0'/0/1")

	out, err = run(t, "key", "mnemonic", "--bits", "256")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 24)
}

func TestEventsWatchNeedsPublisher(t *testing.T) {
	_, err := run(t, "events", "watch")
	assert.Error(t, err)
}

func TestKeystoreImportAndSign(t *testing.T) {
	node := useNode(t)
	file := filepath.Join(t.TempDir(), "alice.json")
	t.Setenv("RELAY_CLI_PASSWORD", "correct horse")

	out, err := run(t, "key", "import", "--key-env", keyVar, "--password-env", "RELAY_CLI_PASSWORD", "--light", "-o", file)
	require.NoError(t, err)
	assert.Contains(t, out, aliceAddress)

	_, err = run(t, "propose", "--keystore", file, "--password-env", "RELAY_CLI_PASSWORD", "-t", "T", "-d", "D")
	require.NoError(t, err)
	assert.Equal(t, 1, node.Sent())

	t.Setenv("RELAY_CLI_WRONG", "battery staple")
	_, err = run(t, "vote", "0", "--keystore", file, "--password-env", "RELAY_CLI_WRONG")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)
	assert.Equal(t, 1, node.Sent())

	_, err = run(t, "key", "import", "--key-env", keyVar, "--password-env", "RELAY_CLI_PASSWORD")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)
}
