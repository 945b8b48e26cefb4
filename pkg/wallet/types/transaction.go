package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UnsignedTransaction represents a contract call waiting to be signed.
// It contains every field the signer needs, plus the method name so the
// user can verify what they are about to sign.
type UnsignedTransaction struct {
	From     common.Address `json:"from"`      // Sender Address
	To       common.Address `json:"to"`        // Contract Address
	Method   string         `json:"method"`    // Contract entry point
	Nonce    uint64         `json:"nonce"`     // Sender nonce at build time
	GasLimit uint64         `json:"gas_limit"` // Gas Limit
	GasPrice *big.Int       `json:"gas_price"` // Gas Price in Wei
	Data     hexutil.Bytes  `json:"data"`      // ABI encoded call data

	// ChainID for EIP-155 replay protection
	ChainID *big.Int `json:"chain_id"`
}

// SignedTransaction represents the result of the signing process.
type SignedTransaction struct {
	TxHash string         `json:"tx_hash"` // Transaction Hash
	RawTx  hexutil.Bytes  `json:"raw_tx"`  // RLP encoded (ready to broadcast)
	From   common.Address `json:"from"`
	Nonce  uint64         `json:"nonce"`
}
