package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/dashboard"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the crew overview",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	overview, err := dashboard.NewService(client).Overview(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), overview)
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s  agents: %d  teams: %d  tasks: %d\n\n",
		bold("Crew"), overview.Stats.Agents, overview.Stats.Teams, overview.Stats.Tasks)

	if len(overview.Agents) > 0 {
		fmt.Fprintln(out, bold("Agents"))
		for _, a := range overview.Agents {
			fmt.Fprintf(out, "  %-10s %-20s %s\n", shortID(a.ID), a.Name, orDash(a.Status))
		}
		fmt.Fprintln(out)
	}
	if len(overview.Teams) > 0 {
		fmt.Fprintln(out, bold("Teams"))
		for _, t := range overview.Teams {
			fmt.Fprintf(out, "  %-10s %-20s %d agents\n", shortID(t.ID), t.Name, len(t.AgentIDs))
		}
		fmt.Fprintln(out)
	}
	if len(overview.RecentTasks) == 0 {
		fmt.Fprintln(out, "No tasks yet.")
		return nil
	}
	fmt.Fprintln(out, bold("Recent tasks"))
	for _, task := range overview.RecentTasks {
		fmt.Fprintf(out, "  %-10s %-40s %s\n", shortID(task.ID), task.Title, statusColor(task.Status))
	}
	return nil
}
