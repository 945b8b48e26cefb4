package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"
)

// EncryptedKeyJSON 遵循 Ethereum Keystore V3 的结构风格; the payload is a
// single signing key.
type EncryptedKeyJSON struct {
	Address common.Address `json:"address"` // plaintext so the file can be matched without a password
	Crypto  CryptoJSON     `json:"crypto"`
	Id      string         `json:"id"`      // UUID
	Version int            `json:"version"` // 3
}

type CryptoJSON struct {
	Cipher       string       `json:"cipher"`       // "aes-256-gcm"
	CipherText   string       `json:"ciphertext"`   // Hex string
	CipherParams CipherParams `json:"cipherparams"` // IV
	KDF          string       `json:"kdf"`          // "scrypt"
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"` // Hex string
}

type CipherParams struct {
	IV string `json:"iv"` // Hex string
}

type KDFParams struct {
	DKLen int    `json:"dklen"` // Derived Key Length (32)
	N     int    `json:"n"`     // Scrypt N
	R     int    `json:"r"`     // Scrypt r (8)
	P     int    `json:"p"`     // Scrypt p (1)
	Salt  string `json:"salt"`  // Hex string
}

const (
	// StandardScryptN costs ~256MB and about a second per unlock.
	StandardScryptN = 1 << 18
	// LightScryptN is for throwaway devnet keys.
	LightScryptN = 1 << 12

	scryptR     = 8
	scryptP     = 1
	scryptDKLen = 32
)

// EncryptKey 将私钥使用密码加密为 JSON 结构
func EncryptKey(key *secret.PrivateKey, password string, scryptN int) (*EncryptedKeyJSON, error) {
	var plaintext []byte
	if err := key.Use(func(k *ecdsa.PrivateKey) error {
		plaintext = crypto.FromECDSA(k)
		return nil
	}); err != nil {
		return nil, err
	}
	defer zero(plaintext)

	// 1. 生成随机 Salt
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	// 2. 使用 Scrypt 派生密钥
	derivedKey, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt: %w", err)
	}
	defer zero(derivedKey)

	// 3. 使用 AES-256-GCM 加密
	gcm, err := newGCM(derivedKey)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	// 4. 计算 MAC: SHA256(derivedKey + ciphertext)
	mac := computeMAC(derivedKey, ciphertext)

	id, err := newUUID()
	if err != nil {
		return nil, err
	}

	// 5. 构造 JSON
	return &EncryptedKeyJSON{
		Address: key.Address(),
		Version: 3,
		Id:      id,
		Crypto: CryptoJSON{
			Cipher:       "aes-256-gcm",
			CipherText:   hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{IV: hex.EncodeToString(nonce)},
			KDF:          "scrypt",
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     scryptN,
				R:     scryptR,
				P:     scryptP,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
	}, nil
}

// DecryptKey 解密 Keystore JSON 获取私钥. A wrong password is InvalidInput.
func DecryptKey(keyJSON *EncryptedKeyJSON, password string) (*secret.PrivateKey, error) {
	if keyJSON.Crypto.KDF != "scrypt" || keyJSON.Crypto.Cipher != "aes-256-gcm" {
		return nil, errno.ErrInvalidInput.Wrapf("unsupported keystore %s/%s", keyJSON.Crypto.KDF, keyJSON.Crypto.Cipher)
	}

	// 1. 解析 Hex 参数
	salt, err := hex.DecodeString(keyJSON.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("invalid salt: %v", err)
	}
	nonce, err := hex.DecodeString(keyJSON.Crypto.CipherParams.IV)
	if err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("invalid iv: %v", err)
	}
	ciphertext, err := hex.DecodeString(keyJSON.Crypto.CipherText)
	if err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("invalid ciphertext: %v", err)
	}
	mac, err := hex.DecodeString(keyJSON.Crypto.MAC)
	if err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("invalid mac: %v", err)
	}

	// 2. 重新派生密钥
	p := keyJSON.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("scrypt: %v", err)
	}
	defer zero(derivedKey)

	// 3. 验证 MAC
	if subtle.ConstantTimeCompare(mac, computeMAC(derivedKey, ciphertext)) != 1 {
		return nil, errno.ErrInvalidInput.WithMessage("invalid password or corrupted keystore (MAC mismatch)")
	}

	// 4. 解密
	gcm, err := newGCM(derivedKey)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errno.ErrInvalidInput.WithMessage("invalid iv length")
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("decryption failed: %v", err)
	}
	defer zero(plaintext)

	ecdsaKey, err := crypto.ToECDSA(plaintext)
	if err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("keystore payload: %v", err)
	}
	key := secret.FromECDSA(ecdsaKey)
	if keyJSON.Address != (common.Address{}) && key.Address() != keyJSON.Address {
		key.Destroy()
		return nil, errno.ErrInvalidInput.Wrapf("keystore address %s does not match its key", keyJSON.Address.Hex())
	}
	return key, nil
}

// SaveToFile 保存到文件 (0600)
func (k *EncryptedKeyJSON) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o600)
}

// LoadFromFile 从文件加载
func LoadFromFile(filename string) (*EncryptedKeyJSON, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var k EncryptedKeyJSON
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, errno.ErrInvalidInput.Wrapf("parse keystore %s: %v", filename, err)
	}
	return &k, nil
}

// --- Helpers ---

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func computeMAC(derivedKey, ciphertext []byte) []byte {
	h := sha256.New()
	h.Write(derivedKey)
	h.Write(ciphertext)
	return h.Sum(nil)
}

func newUUID() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant 10
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:]), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
