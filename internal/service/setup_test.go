package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/internal/chain/chaintest"
	"github.com/Mahd-Mehn/dao-voting/internal/service/mq"
	"github.com/Mahd-Mehn/dao-voting/pkg/config"
	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	testChainID  = 1337
	testContract = "0x29192C5d95BF89B8Db9e4390Bb175b811277b005"

	// hardhat accounts #0 and #1
	aliceKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	aliceAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	bobKey       = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	bobAddress   = "0x70997970C51812dc3A010C7d01b4Ad4ad2E6E4c9"
)

var testTxConfig = config.TxConfig{GasPriceGwei: "1", GasLimit: 2000000}

type harness struct {
	node      *chaintest.Node
	client    chain.Client
	builder   *TxBuilder
	signer    *Signer
	submitter *Submitter
	voting    *VotingService
	reader    *ProposalReader
}

type harnessOptions struct {
	nonceSource string
	wrap        func(chain.Client) chain.Client
	submitter   []SubmitterOption
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()
	desc, err := contract.VotingDAO(testContract)
	require.NoError(t, err)

	node := chaintest.NewNode(testChainID, desc)
	var client chain.Client = chain.NewEthClient(node, desc, chain.Options{
		NonceSource: opts.nonceSource,
		CallTimeout: time.Second,
	})
	t.Cleanup(client.Close)
	if opts.wrap != nil {
		client = opts.wrap(client)
	}

	builder, err := NewTxBuilder(client, testChainID, testTxConfig)
	require.NoError(t, err)
	signer := NewSigner()
	submitter := NewSubmitter(builder, signer, client, opts.submitter...)

	return &harness{
		node:      node,
		client:    client,
		builder:   builder,
		signer:    signer,
		submitter: submitter,
		voting:    NewVotingService(submitter),
		reader:    NewProposalReader(client),
	}
}

func mustKey(t *testing.T, hexKey string) *secret.PrivateKey {
	t.Helper()
	k, err := secret.Parse(hexKey)
	require.NoError(t, err)
	return k
}

// barrierClient holds every Nonce caller until n callers have fetched a
// nonce, so they all observe the same value.
type barrierClient struct {
	chain.Client
	wg *sync.WaitGroup
}

func newBarrierClient(n int) func(chain.Client) chain.Client {
	return func(c chain.Client) chain.Client {
		wg := &sync.WaitGroup{}
		wg.Add(n)
		return &barrierClient{Client: c, wg: wg}
	}
}

func (b *barrierClient) Nonce(ctx context.Context, address common.Address) (uint64, error) {
	n, err := b.Client.Nonce(ctx, address)
	b.wg.Done()
	b.wg.Wait()
	return n, err
}

// recordingProducer captures published messages.
type recordingProducer struct {
	mu       sync.Mutex
	messages []mq.Message
	err      error
}

func (p *recordingProducer) Publish(_ context.Context, topic, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, mq.Message{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func (p *recordingProducer) all() []mq.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mq.Message(nil), p.messages...)
}
