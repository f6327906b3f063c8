// Package cli implements the crewdeck command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/crewdeck/crewdeck/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"                           _           _\n" +
		"   ___ _ __ _____      __ _| | ___  ___| | __\n" +
		"  / __| '__/ _ \\ \\ /\\ / / _` | |/ _ \\/ __| |/ /\n" +
		" | (__| | |  __/\\ V  V / (_| | |  __/ (__|   <\n" +
		"  \\___|_|  \\___| \\_/\\_/ \\__,_|_|\\___|\\___|_|\\_\\\n"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "crewdeck",
	Short: "crewdeck - dashboard for agents, teams, and tasks",
	Long:  color.CyanString(logo) + "\nA terminal dashboard for managing agents, teams, and tasks on a crew API,\nwith a live chat per task.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the crewdeck version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("crewdeck %s\n", version)
	},
}
