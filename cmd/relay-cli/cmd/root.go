package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Mahd-Mehn/dao-voting/internal/bootstrap"
	"github.com/Mahd-Mehn/dao-voting/pkg/config"
	"github.com/Mahd-Mehn/dao-voting/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath   string
	keyEnv       string
	keystorePath string
	passwordEnv  string
	jsonOutput   bool

	// cfg is loaded once per invocation by the root PersistentPreRunE.
	cfg *config.Config

	// relayFactory builds the pipeline; tests swap in an in-memory node.
	relayFactory = bootstrap.New
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "relay-cli",
	Short: "VotingDAO 命令行工具",
	Long: `Command line client for the VotingDAO contract. It shares the relay's
configuration (config.yaml / env) and signs locally. Keys come from an
encrypted --keystore file or the variable named by --key-env, with a
no-echo prompt as the fallback.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadFile(viper.New(), configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Init(cfg.App.Env)
		return nil
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		failure(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&keyEnv, "key-env", "", "read the private key from this environment variable instead of prompting")
	rootCmd.PersistentFlags().StringVar(&keystorePath, "keystore", "", "sign with this encrypted keystore file (see key import)")
	rootCmd.PersistentFlags().StringVar(&passwordEnv, "password-env", "", "read the keystore password from this environment variable instead of prompting")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine readable JSON")
}

// openRelay dials the configured node. Callers must Close the relay.
func openRelay(ctx context.Context) (*bootstrap.Relay, error) {
	relay, err := relayFactory(ctx, *cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Chain.RpcUrl, err)
	}
	return relay, nil
}
