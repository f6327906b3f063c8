package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/api"
)

var (
	teamsCmd = &cobra.Command{
		Use:   "teams",
		Short: "Manage teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	teamsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE:  runTeamsList,
	}

	teamsAddCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Create a team",
		Args:  cobra.ExactArgs(1),
		RunE:  runTeamsAdd,
	}

	teamsRemoveCmd = &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a team",
		Args:  cobra.ExactArgs(1),
		RunE:  runTeamsRemove,
	}
)

func init() {
	teamsListCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	teamsAddCmd.Flags().StringSlice("agent", nil, "Agent id to include (repeatable)")
	teamsCmd.AddCommand(teamsListCmd)
	teamsCmd.AddCommand(teamsAddCmd)
	teamsCmd.AddCommand(teamsRemoveCmd)
	rootCmd.AddCommand(teamsCmd)
}

func runTeamsList(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	teams, err := client.ListTeams(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), teams)
	}
	if len(teams) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No teams yet.")
		return nil
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-20s %s\n", bold("ID"), bold("NAME"), bold("AGENTS"))
	for _, team := range teams {
		members := make([]string, len(team.AgentIDs))
		for i, id := range team.AgentIDs {
			members[i] = shortID(id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-20s %s\n",
			shortID(team.ID), team.Name, orDash(strings.Join(members, ", ")))
	}
	return nil
}

func runTeamsAdd(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	agentIDs, _ := cmd.Flags().GetStringSlice("agent")
	team, err := client.CreateTeam(cmd.Context(), api.CreateTeamRequest{
		Name:     args[0],
		AgentIDs: agentIDs,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Team %s created (%s)\n", team.Name, team.ID)
	return nil
}

func runTeamsRemove(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	if err := client.DeleteTeam(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Team %s removed\n", args[0])
	return nil
}
