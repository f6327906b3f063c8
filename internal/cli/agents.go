package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/api"
)

var (
	agentsCmd = &cobra.Command{
		Use:   "agents",
		Short: "Manage agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	agentsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List agents",
		RunE:  runAgentsList,
	}

	agentsAddCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new agent",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentsAdd,
	}

	agentsRemoveCmd = &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an agent",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentsRemove,
	}
)

func init() {
	agentsListCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	agentsAddCmd.Flags().String("role", "", "Agent role description")
	agentsAddCmd.Flags().String("model", "", "Model the agent runs on")
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsAddCmd)
	agentsCmd.AddCommand(agentsRemoveCmd)
	rootCmd.AddCommand(agentsCmd)
}

func runAgentsList(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	agents, err := client.ListAgents(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), agents)
	}
	if len(agents) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No agents registered.")
		return nil
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-20s %-16s %-20s %s\n",
		bold("ID"), bold("NAME"), bold("STATUS"), bold("MODEL"), bold("ROLE"))
	for _, a := range agents {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-20s %-16s %-20s %s\n",
			shortID(a.ID), a.Name, orDash(a.Status), orDash(a.Model), orDash(a.Role))
	}
	return nil
}

func runAgentsAdd(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	role, _ := cmd.Flags().GetString("role")
	model, _ := cmd.Flags().GetString("model")
	agent, err := client.CreateAgent(cmd.Context(), api.CreateAgentRequest{
		Name:  args[0],
		Role:  role,
		Model: model,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Agent %s created (%s)\n", agent.Name, agent.ID)
	return nil
}

func runAgentsRemove(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	if err := client.DeleteAgent(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Agent %s removed\n", args[0])
	return nil
}
