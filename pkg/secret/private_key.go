// Package secret holds per-request signing keys.
package secret

import (
	"crypto/ecdsa"
	"errors"
	"strings"
	"sync"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const redacted = "[REDACTED]"

var ErrDestroyed = errors.New("private key already destroyed")

// PrivateKey wraps an ECDSA key that lives for a single request. It renders
// as [REDACTED] through fmt, JSON and zap, and only hands out the raw key
// inside Use.
type PrivateKey struct {
	mu      sync.Mutex
	key     *ecdsa.PrivateKey
	address common.Address
}

// Parse decodes a hex private key, with or without 0x prefix.
func Parse(hexKey string) (*PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// fixed message: the decode error can quote characters of the key
		return nil, errno.ErrInvalidInput.WithMessage("invalid private key")
	}
	return FromECDSA(key), nil
}

// FromECDSA takes ownership of key.
func FromECDSA(key *ecdsa.PrivateKey) *PrivateKey {
	return &PrivateKey{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

// Address returns the account address derived from the key.
func (k *PrivateKey) Address() common.Address {
	return k.address
}

// Use calls fn with the raw key. It fails once the key is destroyed.
func (k *PrivateKey) Use(fn func(*ecdsa.PrivateKey) error) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.key == nil {
		return ErrDestroyed
	}
	return fn(k.key)
}

// Destroy zeroes the words backing the scalar and drops the reference.
// Safe to call twice.
func (k *PrivateKey) Destroy() {
	if k == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.key == nil {
		return
	}
	if k.key.D != nil {
		words := k.key.D.Bits()
		clear(words[:cap(words)])
		k.key.D.SetInt64(0)
	}
	k.key = nil
}

// Destroyed reports whether Destroy has run.
func (k *PrivateKey) Destroyed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.key == nil
}

func (k *PrivateKey) String() string { return redacted }

func (k *PrivateKey) GoString() string { return redacted }

func (k *PrivateKey) MarshalText() ([]byte, error) { return []byte(redacted), nil }
