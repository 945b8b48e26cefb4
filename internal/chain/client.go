// Package chain talks to the remote EVM node on behalf of the relay.
package chain

import (
	"context"
	"math/big"

	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Client is the relay's only view of the node. Implementations must be
// safe for concurrent use.
type Client interface {
	// Nonce returns the transaction count used for the next transaction
	// from address.
	Nonce(ctx context.Context, address common.Address) (uint64, error)
	// SendRawTransaction forwards an RLP encoded signed transaction and
	// returns its hash once the node accepts it into the mempool.
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	// Call runs a read-only contract function and decodes its outputs.
	Call(ctx context.Context, spec contract.CallSpec) ([]interface{}, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Contract() *contract.Descriptor
	Close()
}

// Backend is the subset of *ethclient.Client the relay uses.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// ParseAddress validates a hex account address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errno.ErrInvalidInput.Wrapf("malformed address %q", s)
	}
	return common.HexToAddress(s), nil
}
