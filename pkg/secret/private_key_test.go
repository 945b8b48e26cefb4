package secret

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// well known dev key (hardhat account #0)
const (
	devKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestParse(t *testing.T) {
	k, err := Parse(devKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(devAddress), k.Address())

	k2, err := Parse(devKey[2:])
	require.NoError(t, err)
	assert.Equal(t, k.Address(), k2.Address())
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "0x1234", "zz" + devKey[4:], devKey[:40] + "q" + devKey[41:]} {
		_, err := Parse(in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errno.ErrInvalidInput))
		assert.NotContains(t, err.Error(), devKey[4:])
		assert.NotContains(t, err.Error(), "q")
		_, msg := errno.Decode(err)
		assert.Equal(t, "invalid private key", msg)
	}
}

func TestRedaction(t *testing.T) {
	k, err := Parse(devKey)
	require.NoError(t, err)

	assert.Equal(t, redacted, fmt.Sprintf("%v", k))
	assert.Equal(t, redacted, fmt.Sprintf("%#v", k))
	assert.Equal(t, redacted, fmt.Sprintf("%s", k))

	out, err := json.Marshal(map[string]interface{}{"key": k})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"[REDACTED]"}`, string(out))

	core, logs := observer.New(zap.DebugLevel)
	zap.New(core).Info("signing", zap.Stringer("key", k), zap.Any("any", k))
	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			assert.Equal(t, redacted, fmt.Sprint(v))
		}
	}
}

func TestDestroy(t *testing.T) {
	k, err := Parse(devKey)
	require.NoError(t, err)

	var raw *ecdsa.PrivateKey
	require.NoError(t, k.Use(func(pk *ecdsa.PrivateKey) error {
		raw = pk
		return nil
	}))
	words := raw.D.Bits()
	words = words[:cap(words)]
	require.NotEmpty(t, words)

	k.Destroy()
	assert.True(t, k.Destroyed())
	assert.Zero(t, raw.D.Sign())
	for i, w := range words {
		assert.Zerof(t, w, "backing word %d survived Destroy", i)
	}

	err = k.Use(func(*ecdsa.PrivateKey) error { return nil })
	assert.ErrorIs(t, err, ErrDestroyed)

	// idempotent
	k.Destroy()
	var nilKey *PrivateKey
	nilKey.Destroy()
}
