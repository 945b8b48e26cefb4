package cmd

import (
	"context"

	"github.com/Mahd-Mehn/dao-voting/internal/service"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"

	"github.com/spf13/cobra"
)

var (
	proposalTitle       string
	proposalDescription string
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "创建提案 (createProposal)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(cmd, func(ctx context.Context, v *service.VotingService, key *secret.PrivateKey) (string, error) {
			return v.CreateProposal(ctx, proposalTitle, proposalDescription, key)
		})
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote <id>",
	Short: "投票 (vote)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitByIndex(cmd, args[0], (*service.VotingService).Vote)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "删除提案 (deleteProposal)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitByIndex(cmd, args[0], (*service.VotingService).DeleteProposal)
	},
}

var executeCmd = &cobra.Command{
	Use:   "execute <id>",
	Short: "执行提案 (executeProposal)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitByIndex(cmd, args[0], (*service.VotingService).ExecuteProposal)
	},
}

func init() {
	rootCmd.AddCommand(proposeCmd, voteCmd, deleteCmd, executeCmd)
	proposeCmd.Flags().StringVarP(&proposalTitle, "title", "t", "", "proposal title")
	proposeCmd.Flags().StringVarP(&proposalDescription, "description", "d", "", "proposal description")
	_ = proposeCmd.MarkFlagRequired("title")
	_ = proposeCmd.MarkFlagRequired("description")
}

type indexedWrite func(*service.VotingService, context.Context, uint64, *secret.PrivateKey) (string, error)

func submitByIndex(cmd *cobra.Command, arg string, write indexedWrite) error {
	id, err := parseIndex(arg)
	if err != nil {
		return err
	}
	return submit(cmd, func(ctx context.Context, v *service.VotingService, key *secret.PrivateKey) (string, error) {
		return write(v, ctx, id, key)
	})
}

// submit reads the key before dialing so a bad key never touches the node.
func submit(cmd *cobra.Command, write func(context.Context, *service.VotingService, *secret.PrivateKey) (string, error)) error {
	key, err := readKey()
	if err != nil {
		return err
	}
	defer key.Destroy()

	relay, err := openRelay(cmd.Context())
	if err != nil {
		return err
	}
	defer relay.Close()

	txHash, err := write(cmd.Context(), relay.Voting, key)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"transaction_hash": txHash})
	}
	success(cmd.OutOrStdout(), "交易已提交: %s", txHash)
	return nil
}
