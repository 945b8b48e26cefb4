package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mahd-Mehn/dao-voting/internal/bootstrap"
	"github.com/Mahd-Mehn/dao-voting/internal/event"
	"github.com/Mahd-Mehn/dao-voting/internal/service/mq"

	"github.com/spf13/cobra"
)

var (
	eventsGroup    string
	eventsConsumer string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "交易事件流",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail transaction-submitted events from Redis Streams or Kafka",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		consumer, err := bootstrap.NewConsumer(ctx, *cfg, eventsGroup, eventsConsumer)
		if err != nil {
			return err
		}
		defer consumer.Close()

		faint.Fprintf(cmd.ErrOrStderr(), "watching %s on %s (Ctrl-C to stop)\n", cfg.Events.Topic, cfg.Events.Publisher)
		return consumer.Subscribe(ctx, cfg.Events.Topic, func(msg *mq.Message) error {
			return printEvent(cmd, msg)
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsWatchCmd)

	host, _ := os.Hostname()
	eventsWatchCmd.Flags().StringVar(&eventsGroup, "group", "relay-cli", "consumer group")
	eventsWatchCmd.Flags().StringVar(&eventsConsumer, "name", "cli-"+host, "consumer name (Redis Streams)")
}

func printEvent(cmd *cobra.Command, msg *mq.Message) error {
	var ev event.TransactionSubmittedEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), ev)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %-16s nonce=%-4d from=%s tx=%s\n",
		ev.Submitted.Format("15:04:05"), ev.Method, ev.Nonce, ev.From, ev.TxHash)
	return nil
}
