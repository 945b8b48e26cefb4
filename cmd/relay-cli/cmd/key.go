package cmd

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/hdwallet"
	"github.com/Mahd-Mehn/dao-voting/pkg/keystore"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	mnemonicEnv   string
	passphraseEnv string
	deriveIndex   uint32
	deriveCount   uint32
	revealKeys    bool
	mnemonicBits  int
	importOut     string
	importLight   bool
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "开发用密钥工具 (BIP-39 / BIP-44)",
	Long:  `Derive throwaway accounts for local devnets. Never use these for real funds.`,
}

var keyMnemonicCmd = &cobra.Command{
	Use:   "mnemonic",
	Short: "生成一个新的随机助记词",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := hdwallet.GenerateMnemonic(mnemonicBits)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), m)
		return nil
	},
}

var keyDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "从助记词派生以太坊账户 (m/44'/60'/0'/0/i)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mnemonic, err := readSecret(mnemonicEnv, "请输入助记词: ")
		if err != nil {
			return err
		}
		passphrase := ""
		if passphraseEnv != "" {
			if passphrase, err = readSecret(passphraseEnv, ""); err != nil {
				return err
			}
		}
		wallet, err := hdwallet.FromMnemonic(mnemonic, passphrase)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i := deriveIndex; i < deriveIndex+deriveCount; i++ {
			key, err := wallet.DeriveAccount(i)
			if err != nil {
				return err
			}
			line := fmt.Sprintf("%s/%d  %s", hdwallet.EthereumPath, i, key.Address().Hex())
			if revealKeys {
				_ = key.Use(func(k *ecdsa.PrivateKey) error {
					line += "  " + hexutil.Encode(crypto.FromECDSA(k))
					return nil
				})
			}
			key.Destroy()
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var keyImportCmd = &cobra.Command{
	Use:   "import",
	Short: "将私钥加密保存为 keystore 文件",
	Long: `Encrypts a hex private key (prompt or --key-env) with a password (prompt or
--password-env) using scrypt and AES-256-GCM. Sign later with --keystore.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if importOut == "" {
			return errno.ErrInvalidInput.WithMessage("--out is required")
		}
		raw, err := readSecret(keyEnv, "请输入私钥 (hex): ")
		if err != nil {
			return err
		}
		key, err := secret.Parse(raw)
		if err != nil {
			return err
		}
		defer key.Destroy()

		password, err := readSecret(passwordEnv, "请设置密码: ")
		if err != nil {
			return err
		}
		if passwordEnv == "" {
			again, err := readSecret("", "请再次输入密码: ")
			if err != nil {
				return err
			}
			if again != password {
				return errno.ErrInvalidInput.WithMessage("passwords do not match")
			}
		}

		n := keystore.StandardScryptN
		if importLight {
			n = keystore.LightScryptN
		}
		keyJSON, err := keystore.EncryptKey(key, password, n)
		if err != nil {
			return err
		}
		if err := keyJSON.SaveToFile(importOut); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "%s -> %s", keyJSON.Address.Hex(), importOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keyMnemonicCmd, keyDeriveCmd, keyImportCmd)

	keyImportCmd.Flags().StringVarP(&importOut, "out", "o", "", "keystore file to write (mode 0600)")
	keyImportCmd.Flags().BoolVar(&importLight, "light", false, "cheap scrypt parameters, devnet keys only")

	keyMnemonicCmd.Flags().IntVar(&mnemonicBits, "bits", 128, "entropy bits: 128 (12 words) or 256 (24 words)")

	keyDeriveCmd.Flags().StringVar(&mnemonicEnv, "mnemonic-env", "", "read the mnemonic from this environment variable instead of prompting")
	keyDeriveCmd.Flags().StringVar(&passphraseEnv, "passphrase-env", "", "optional BIP-39 passphrase environment variable")
	keyDeriveCmd.Flags().Uint32Var(&deriveIndex, "index", 0, "first address index")
	keyDeriveCmd.Flags().Uint32Var(&deriveCount, "count", 1, "number of accounts")
	keyDeriveCmd.Flags().BoolVar(&revealKeys, "reveal", false, "also print private keys")
}
