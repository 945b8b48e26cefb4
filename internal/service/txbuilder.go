package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/pkg/config"
	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/wallet/types"

	"github.com/ethereum/go-ethereum/common"
)

// TxBuilder turns a contract call into an unsigned transaction with nonce,
// gas and chain id stamped in. Gas price and limit are fixed by config and
// never estimated.
type TxBuilder struct {
	client   chain.Client
	chainID  *big.Int
	gasPrice *big.Int // wei
	gasLimit uint64
}

func NewTxBuilder(client chain.Client, chainID int64, txCfg config.TxConfig) (*TxBuilder, error) {
	wei, err := txCfg.GasPriceWei()
	if err != nil {
		return nil, err
	}
	if txCfg.GasLimit == 0 {
		return nil, fmt.Errorf("gas limit must be positive")
	}
	if chainID <= 0 {
		return nil, fmt.Errorf("chain id must be positive, got %d", chainID)
	}
	return &TxBuilder{
		client:   client,
		chainID:  big.NewInt(chainID),
		gasPrice: wei.BigInt(),
		gasLimit: txCfg.GasLimit,
	}, nil
}

// Build encodes spec, fetches the sender's nonce (one node round trip) and
// returns the transaction to sign. Encoding errors fail before any network
// call.
func (b *TxBuilder) Build(ctx context.Context, spec contract.CallSpec, sender common.Address) (*types.UnsignedTransaction, error) {
	desc := b.client.Contract()
	data, err := desc.Pack(spec)
	if err != nil {
		return nil, err
	}
	if desc.IsReadOnly(spec.Method) {
		return nil, errno.ErrInvalidInput.Wrapf("%s is read-only and needs no transaction", spec.Method)
	}

	nonce, err := b.client.Nonce(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce for %s: %w", sender.Hex(), err)
	}

	return &types.UnsignedTransaction{
		From:     sender,
		To:       desc.Address,
		Method:   spec.Method,
		Nonce:    nonce,
		GasLimit: b.gasLimit,
		GasPrice: new(big.Int).Set(b.gasPrice),
		Data:     data,
		ChainID:  new(big.Int).Set(b.chainID),
	}, nil
}
