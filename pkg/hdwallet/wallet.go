package hdwallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// EthereumPath is the BIP-44 account path for Ethereum; the address index
// is appended by DeriveAccount.
const EthereumPath = "m/44'/60'/0'/0"

// GenerateMnemonic 生成一个新的随机助记词 (BIP-39)。
// bitSize: 128 (12个单词) 或 256 (24个单词)。
func GenerateMnemonic(bitSize int) (string, error) {
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", errno.ErrInvalidInput.Wrapf("generate entropy: %v", err)
	}
	return bip39.NewMnemonic(entropy)
}

// Wallet holds a BIP-32 master key derived from a mnemonic.
type Wallet struct {
	master *hdkeychain.ExtendedKey
}

// FromMnemonic validates the mnemonic and builds the master key.
// passphrase 可选 ("第25个单词")，不需要时传空字符串。
func FromMnemonic(mnemonic, passphrase string) (*Wallet, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errno.ErrInvalidInput.WithMessage("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	defer zero(seed)

	// the network params only affect xprv serialisation, never the keys
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &Wallet{master: master}, nil
}

// DeriveAccount derives m/44'/60'/0'/0/index.
func (w *Wallet) DeriveAccount(index uint32) (*secret.PrivateKey, error) {
	return w.DerivePath(fmt.Sprintf("%s/%d", EthereumPath, index))
}

// DerivePath 解析路径并派生密钥
// 支持格式: m/44'/60'/0'/0/0 或 m/44h/60h/0h/0/0
func (w *Wallet) DerivePath(path string) (*secret.PrivateKey, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	key := w.master
	for _, idx := range indexes {
		key, err = key.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", path, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", path, err)
	}
	raw := priv.Serialize()
	defer zero(raw)
	ecdsaKey, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", path, err)
	}
	return secret.FromECDSA(ecdsaKey), nil
}

// ParsePath converts a derivation path into child indexes.
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "m")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, nil
	}

	segments := strings.Split(path, "/")
	indexes := make([]uint32, 0, len(segments))
	for _, segment := range segments {
		hardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") {
			hardened = true
			segment = segment[:len(segment)-1]
		}

		val, err := strconv.ParseUint(segment, 10, 31)
		if err != nil {
			return nil, errno.ErrInvalidInput.Wrapf("invalid path segment %q", segment)
		}
		index := uint32(val)
		if hardened {
			index += hdkeychain.HardenedKeyStart
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
