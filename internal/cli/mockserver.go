package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/api"
	"github.com/crewdeck/crewdeck/internal/config"
	"github.com/crewdeck/crewdeck/internal/mockapi"
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a local crew API with canned replies, for development",
	RunE:  runMockServer,
}

func init() {
	mockServerCmd.Flags().String("listen", "", "Listen address (overrides config)")
	mockServerCmd.Flags().Bool("seed", false, "Seed a demo agent, team, and task")
	rootCmd.AddCommand(mockServerCmd)
}

func runMockServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	listen, _ := cmd.Flags().GetString("listen")
	if listen == "" {
		listen = cfg.Mock.Listen
	}

	server := mockapi.New(mockapi.Options{
		Token:      cfg.API.Token,
		ReplyDelay: cfg.Mock.ReplyDelay(),
		Logger:     slog.Default(),
	})
	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		seedDemo(server)
	}

	httpServer := &http.Server{
		Addr:    listen,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock crew API listening", "addr", listen)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func seedDemo(server *mockapi.Server) {
	now := time.Now().UTC()
	task := api.Task{
		ID:        "demo-task",
		Title:     "Summarize the weekly report",
		Status:    api.TaskStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	server.SeedTask(task)
	server.SeedMessage(task.ID, "system", "Task created: "+task.Title)
	slog.Info("seeded demo task", "id", task.ID)
}
