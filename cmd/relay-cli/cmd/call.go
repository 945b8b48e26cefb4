package cmd

import (
	"fmt"

	"github.com/Mahd-Mehn/dao-voting/pkg/contract"

	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <method> [args...]",
	Short: "Run a read-only contract method via eth_call",
	Long: `Calls any view method of the configured contract and prints the decoded
outputs one per line. Integers accept decimal or 0x hex, addresses are hex,
bytes are 0x hex.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relay, err := openRelay(cmd.Context())
		if err != nil {
			return err
		}
		defer relay.Close()

		spec, err := parseCallSpec(relay.Client.Contract(), args[0], args[1:])
		if err != nil {
			return err
		}
		values, err := relay.Client.Call(cmd.Context(), spec)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), values)
		}
		for _, v := range values {
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}

func parseCallSpec(desc *contract.Descriptor, name string, raw []string) (contract.CallSpec, error) {
	method, err := desc.Method(name)
	if err != nil {
		return contract.CallSpec{}, err
	}
	args, err := contract.ParseArgs(method, raw)
	if err != nil {
		return contract.CallSpec{}, err
	}
	return contract.CallSpec{Method: name, Args: args}, nil
}
