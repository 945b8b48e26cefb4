package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/internal/model"

	"github.com/spf13/cobra"
)

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "查询提案 (read-only)",
}

var proposalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every proposal in index order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		relay, err := openRelay(cmd.Context())
		if err != nil {
			return err
		}
		defer relay.Close()

		records, err := relay.Reader.ListAll(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), records)
		}
		printProposals(cmd.OutOrStdout(), records)
		return nil
	},
}

var proposalsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		relay, err := openRelay(cmd.Context())
		if err != nil {
			return err
		}
		defer relay.Close()

		record, err := relay.Reader.GetOne(cmd.Context(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), record)
		}
		printProposals(cmd.OutOrStdout(), []model.ProposalRecord{*record})
		return nil
	},
}

var proposalsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of proposals ever created",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		relay, err := openRelay(cmd.Context())
		if err != nil {
			return err
		}
		defer relay.Close()

		n, err := relay.Reader.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var proposalsHasVotedCmd = &cobra.Command{
	Use:   "has-voted <id> <address>",
	Short: "Report whether address has voted on a proposal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		voter, err := chain.ParseAddress(args[1])
		if err != nil {
			return err
		}
		relay, err := openRelay(cmd.Context())
		if err != nil {
			return err
		}
		defer relay.Close()

		voted, err := relay.Reader.HasVoted(cmd.Context(), voter, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), voted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(proposalsCmd)
	proposalsCmd.AddCommand(proposalsListCmd, proposalsGetCmd, proposalsCountCmd, proposalsHasVotedCmd)
}

func printProposals(w io.Writer, records []model.ProposalRecord) {
	if len(records) == 0 {
		faint.Fprintln(w, "(no proposals)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tVOTES\tEXECUTED\tTITLE\tDESCRIPTION")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%d\t%t\t%s\t%s\n", r.Index, r.VoteCount, r.Executed, r.Title, r.Description)
	}
	_ = tw.Flush()
}
