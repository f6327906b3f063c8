package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/chat"
)

var sendCmd = &cobra.Command{
	Use:   "send <task-id> <message>",
	Short: "Send one message to a task without opening the chat view",
	Args:  cobra.ExactArgs(2),
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().Duration("wait", 5*time.Second, "How long to wait for the server to acknowledge the message")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}
	wait, _ := cmd.Flags().GetDuration("wait")

	ctrl := chat.NewController(chat.NewAPITransport(client), chat.Options{
		PollInterval: cfg.Chat.PollInterval(),
		Timeout:      cfg.API.Timeout(),
		DisableRetry: cfg.Chat.DisableRetry,
		Logger:       slog.Default(),
	})
	defer ctrl.Dispose()

	events := make(chan struct{}, 1)
	unsubscribe, err := ctrl.Subscribe(func() {
		select {
		case events <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	if err := ctrl.Select(args[0]); err != nil {
		return err
	}
	if err := ctrl.Send(args[1]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Message sent")

	// Give the poll loop a chance to surface the server copy so the
	// printed transcript tail reflects the acknowledged state.
	deadline := time.After(wait)
	for !acknowledged(ctrl) {
		select {
		case <-events:
		case <-deadline:
			slog.Warn("no acknowledgement before deadline", "task", args[0], "wait", wait)
			return nil
		}
	}
	for _, m := range tail(ctrl.Snapshot(), 5) {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", m.Role, m.Content)
	}
	return nil
}

// acknowledged reports whether every optimistic message has been replaced
// by its server copy.
func acknowledged(ctrl *chat.Controller) bool {
	if ctrl.Status() != chat.StatusLive {
		return false
	}
	for _, m := range ctrl.Snapshot() {
		if m.IsTemp() {
			return false
		}
	}
	return true
}

func tail(msgs []chat.Message, n int) []chat.Message {
	if len(msgs) > n {
		return msgs[len(msgs)-n:]
	}
	return msgs
}
