package service

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"
	"github.com/Mahd-Mehn/dao-voting/pkg/wallet/types"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Signer produces EIP-155 signed legacy transactions. Signatures are
// RFC 6979 deterministic, so equal inputs give equal bytes and hash.
type Signer struct{}

func NewSigner() *Signer {
	return &Signer{}
}

// Sign refuses keys whose address differs from utx.From instead of
// re-addressing the transaction.
func (s *Signer) Sign(utx *types.UnsignedTransaction, key *secret.PrivateKey) (*types.SignedTransaction, error) {
	if utx == nil {
		return nil, errno.ErrInvalidInput.WithMessage("missing transaction")
	}
	if key == nil {
		return nil, errno.ErrInvalidInput.WithMessage("missing private key")
	}
	if utx.ChainID == nil || utx.ChainID.Sign() <= 0 {
		return nil, errno.ErrInvalidInput.Wrapf("transaction has no chain id")
	}
	if utx.GasPrice == nil || utx.GasPrice.Sign() < 0 {
		return nil, errno.ErrInvalidInput.Wrapf("transaction has no gas price")
	}
	if signer := key.Address(); signer != utx.From {
		return nil, errno.ErrKeyMismatch.Wrapf("key controls %s, transaction is from %s", signer.Hex(), utx.From.Hex())
	}

	to := utx.To
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    utx.Nonce,
		GasPrice: new(big.Int).Set(utx.GasPrice),
		Gas:      utx.GasLimit,
		To:       &to,
		Value:    new(big.Int),
		Data:     utx.Data,
	})

	var signed *ethtypes.Transaction
	err := key.Use(func(pk *ecdsa.PrivateKey) error {
		var err error
		signed, err = ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(utx.ChainID), pk)
		return err
	})
	if errors.Is(err, secret.ErrDestroyed) {
		return nil, errno.ErrInvalidInput.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode signed transaction: %w", err)
	}
	return &types.SignedTransaction{
		TxHash: signed.Hash().Hex(),
		RawTx:  raw,
		From:   utx.From,
		Nonce:  utx.Nonce,
	}, nil
}
