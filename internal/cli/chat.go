package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/chat"
	"github.com/crewdeck/crewdeck/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat <task-id>",
	Short: "Open the live chat for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}
	task, err := client.GetTask(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	ctrl := chat.NewController(chat.NewAPITransport(client), chat.Options{
		PollInterval: cfg.Chat.PollInterval(),
		Timeout:      cfg.API.Timeout(),
		DisableRetry: cfg.Chat.DisableRetry,
		Logger:       slog.Default(),
	})
	defer ctrl.Dispose()

	return tui.Run(ctrl, task.ID, task.Title)
}
