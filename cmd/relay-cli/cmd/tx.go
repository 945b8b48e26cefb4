package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/internal/service"
	"github.com/Mahd-Mehn/dao-voting/pkg/wallet/types"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	txFrom        string
	txBuildOut    string
	txSignIn      string
	txSignOut     string
	txBroadcastIn string
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "离线签名流程 (build / sign / broadcast)",
	Long: `Split the write path across machines: build an unsigned transaction
online, sign it on an offline machine, then broadcast the raw bytes.`,
}

var txBuildCmd = &cobra.Command{
	Use:   "build <method> [args...]",
	Short: "构建未签名交易 (Online)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := chain.ParseAddress(txFrom)
		if err != nil {
			return err
		}
		relay, err := openRelay(cmd.Context())
		if err != nil {
			return err
		}
		defer relay.Close()

		spec, err := parseCallSpec(relay.Client.Contract(), args[0], args[1:])
		if err != nil {
			return err
		}
		utx, err := relay.Builder.Build(cmd.Context(), spec, from)
		if err != nil {
			return err
		}
		if err := writeJSONFile(txBuildOut, utx); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "未签名交易已保存到: %s (nonce %d)", txBuildOut, utx.Nonce)
		return nil
	},
}

var txSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "离线签名交易 (Offline Signing)",
	Long:  `读取未签名的交易 JSON 文件，签名，并输出已签名的交易 (Raw Tx)。不需要连接节点。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 读取未签名交易
		var utx types.UnsignedTransaction
		if err := readJSONFile(txSignIn, &utx); err != nil {
			return err
		}

		// 显示交易详情供用户确认 (Verify on Screen)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "================ 待签名交易 ================")
		fmt.Fprintf(out, "Chain ID:   %s\n", utx.ChainID)
		fmt.Fprintf(out, "From:       %s\n", utx.From.Hex())
		fmt.Fprintf(out, "Contract:   %s\n", utx.To.Hex())
		fmt.Fprintf(out, "Method:     %s\n", utx.Method)
		fmt.Fprintf(out, "Nonce:      %d\n", utx.Nonce)
		fmt.Fprintf(out, "Gas:        %d @ %s gwei\n", utx.GasLimit, gwei(utx))
		fmt.Fprintln(out, "============================================")

		// 2. 读取私钥并签名
		key, err := readKey()
		if err != nil {
			return err
		}
		defer key.Destroy()

		signed, err := service.NewSigner().Sign(&utx, key)
		if err != nil {
			return err
		}

		// 3. 输出结果
		if err := writeJSONFile(txSignOut, signed); err != nil {
			return err
		}
		success(out, "签名成功! TxHash: %s", signed.TxHash)
		fmt.Fprintf(out, "已保存到: %s\n", txSignOut)
		return nil
	},
}

var txBroadcastCmd = &cobra.Command{
	Use:   "broadcast",
	Short: "广播已签名的交易 (Online)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var signed types.SignedTransaction
		if err := readJSONFile(txBroadcastIn, &signed); err != nil {
			return err
		}
		relay, err := openRelay(cmd.Context())
		if err != nil {
			return err
		}
		defer relay.Close()

		hash, err := relay.Client.SendRawTransaction(cmd.Context(), signed.RawTx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]string{"transaction_hash": hash.Hex()})
		}
		success(cmd.OutOrStdout(), "广播成功: %s", hash.Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txBuildCmd, txSignCmd, txBroadcastCmd)

	txBuildCmd.Flags().StringVar(&txFrom, "from", "", "sender address")
	txBuildCmd.Flags().StringVarP(&txBuildOut, "output", "o", "unsigned.json", "未签名的交易文件路径")
	_ = txBuildCmd.MarkFlagRequired("from")

	txSignCmd.Flags().StringVarP(&txSignIn, "input", "i", "unsigned.json", "未签名的交易文件路径")
	txSignCmd.Flags().StringVarP(&txSignOut, "output", "o", "signed.json", "签名后的输出文件路径")

	txBroadcastCmd.Flags().StringVarP(&txBroadcastIn, "input", "i", "signed.json", "已签名的交易文件路径")
}

func gwei(utx types.UnsignedTransaction) string {
	if utx.GasPrice == nil {
		return "?"
	}
	return decimal.NewFromBigInt(utx.GasPrice, -9).String()
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("保存结果失败: %w", err)
	}
	return nil
}
