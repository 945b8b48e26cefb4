package keystore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func encrypt(t *testing.T, password string) *EncryptedKeyJSON {
	t.Helper()
	key, err := secret.Parse(testKey)
	require.NoError(t, err)
	defer key.Destroy()

	keyJSON, err := EncryptKey(key, password, LightScryptN)
	require.NoError(t, err)
	return keyJSON
}

func TestEncryptDecryptKey(t *testing.T) {
	keyJSON := encrypt(t, "secure-password")
	assert.Equal(t, "aes-256-gcm", keyJSON.Crypto.Cipher)
	assert.Equal(t, common.HexToAddress(testAddress), keyJSON.Address)
	assert.NotContains(t, keyJSON.Crypto.CipherText, testKey[2:])

	key, err := DecryptKey(keyJSON, "secure-password")
	require.NoError(t, err)
	assert.Equal(t, testAddress, key.Address().Hex())

	_, err = DecryptKey(keyJSON, "wrong-password")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)
}

func TestEncryptDestroyedKey(t *testing.T) {
	key, err := secret.Parse(testKey)
	require.NoError(t, err)
	key.Destroy()

	_, err = EncryptKey(key, "pw", LightScryptN)
	assert.Error(t, err)
}

func TestDecryptTampered(t *testing.T) {
	keyJSON := encrypt(t, "pw")
	keyJSON.Address = common.HexToAddress("0x70997970C51812dc3A010C7d01b4Ad4ad2E6E4c9")
	_, err := DecryptKey(keyJSON, "pw")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)

	keyJSON = encrypt(t, "pw")
	keyJSON.Crypto.CipherText = "00" + keyJSON.Crypto.CipherText[2:]
	_, err = DecryptKey(keyJSON, "pw")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)

	keyJSON = encrypt(t, "pw")
	keyJSON.Crypto.KDF = "pbkdf2"
	_, err = DecryptKey(keyJSON, "pw")
	assert.True(t, errors.Is(err, errno.ErrInvalidInput), err)
}

func TestFileSaveLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "key.json")
	keyJSON := encrypt(t, "123456")
	require.NoError(t, keyJSON.SaveToFile(filename))

	loaded, err := LoadFromFile(filename)
	require.NoError(t, err)
	assert.Equal(t, keyJSON.Id, loaded.Id)

	key, err := DecryptKey(loaded, "123456")
	require.NoError(t, err)
	assert.Equal(t, testAddress, key.Address().Hex())
}
