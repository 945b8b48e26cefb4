package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Mahd-Mehn/dao-voting/pkg/config"
	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/logger"
	"github.com/Mahd-Mehn/dao-voting/pkg/monitor"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const defaultCallTimeout = 10 * time.Second

// Options tune an EthClient.
type Options struct {
	NonceSource string        // config.NonceLatest or config.NoncePending
	CallTimeout time.Duration // upper bound for every node round trip
}

// EthClient implements Client on top of a JSON-RPC backend.
type EthClient struct {
	backend     Backend
	contract    *contract.Descriptor
	nonceSource string
	callTimeout time.Duration
	log         *zap.Logger
}

var _ Client = (*EthClient)(nil)

// NewEthClient wraps backend. The client owns backend and closes it in Close.
func NewEthClient(backend Backend, desc *contract.Descriptor, opts Options) *EthClient {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.NonceSource == "" {
		opts.NonceSource = config.NonceLatest
	}
	return &EthClient{
		backend:     backend,
		contract:    desc,
		nonceSource: opts.NonceSource,
		callTimeout: opts.CallTimeout,
		log:         logger.Named("chain"),
	}
}

// Dial connects to cfg.RpcUrl and refuses to return a client for a node
// on a different chain than cfg.ChainID.
func Dial(ctx context.Context, cfg config.ChainConfig, desc *contract.Descriptor) (*EthClient, error) {
	backend, err := ethclient.DialContext(ctx, cfg.RpcUrl)
	if err != nil {
		return nil, errno.ErrNodeUnavailable.Wrapf("dial %s: %w", cfg.RpcUrl, err)
	}
	c := NewEthClient(backend, desc, Options{NonceSource: cfg.NonceSource, CallTimeout: cfg.CallTimeout})
	if err := c.VerifyChainID(ctx, big.NewInt(cfg.ChainID)); err != nil {
		c.Close()
		return nil, err
	}
	c.log.Info("Connected to node", zap.String("rpc_url", cfg.RpcUrl), zap.Int64("chain_id", cfg.ChainID))
	return c, nil
}

// VerifyChainID fails unless the node reports want.
func (c *EthClient) VerifyChainID(ctx context.Context, want *big.Int) error {
	got, err := c.ChainID(ctx)
	if err != nil {
		return err
	}
	if got.Cmp(want) != 0 {
		return fmt.Errorf("node reports chain id %s, configured %s", got, want)
	}
	return nil
}

func (c *EthClient) Contract() *contract.Descriptor {
	return c.contract
}

func (c *EthClient) ChainID(ctx context.Context) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	id, err := c.backend.ChainID(ctx)
	err = classify("chain id", err)
	monitor.ObserveNodeCall("chain_id", start, err)
	return id, err
}

func (c *EthClient) Nonce(ctx context.Context, address common.Address) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	var (
		nonce uint64
		err   error
	)
	if c.nonceSource == config.NoncePending {
		nonce, err = c.backend.PendingNonceAt(ctx, address)
	} else {
		nonce, err = c.backend.NonceAt(ctx, address, nil)
	}
	err = classify("nonce", err)
	monitor.ObserveNodeCall("nonce", start, err)
	if err != nil {
		return 0, err
	}
	return nonce, nil
}

func (c *EthClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, errno.ErrInvalidInput.Wrapf("decode raw transaction: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	err := classify("send transaction", c.backend.SendTransaction(ctx, tx))
	monitor.ObserveNodeCall("send_transaction", start, err)
	if err != nil {
		c.log.Warn("Node did not accept transaction", zap.String("tx_hash", tx.Hash().Hex()), zap.Uint64("nonce", tx.Nonce()), zap.Error(err))
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (c *EthClient) Call(ctx context.Context, spec contract.CallSpec) ([]interface{}, error) {
	data, err := c.contract.Pack(spec)
	if err != nil {
		return nil, err
	}
	if !c.contract.IsReadOnly(spec.Method) {
		return nil, errno.ErrInvalidInput.Wrapf("%s is not a read-only method", spec.Method)
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	to := c.contract.Address
	start := time.Now()
	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	err = classify("call "+spec.Method, err)
	monitor.ObserveNodeCall("call", start, err)
	if err != nil {
		return nil, err
	}
	return c.contract.Unpack(spec.Method, out)
}

func (c *EthClient) Close() {
	c.backend.Close()
}
