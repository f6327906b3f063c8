package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/api"
)

var (
	tasksCmd = &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	tasksListCmd = &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE:  runTasksList,
	}

	tasksAddCmd = &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksAdd,
	}

	tasksShowCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksShow,
	}

	tasksRemoveCmd = &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a task and its conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksRemove,
	}
)

func init() {
	tasksListCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	tasksShowCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	tasksAddCmd.Flags().String("description", "", "Task description")
	tasksAddCmd.Flags().String("agent", "", "Agent id to assign")
	tasksAddCmd.Flags().String("team", "", "Team id to assign")
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksShowCmd)
	tasksCmd.AddCommand(tasksRemoveCmd)
	rootCmd.AddCommand(tasksCmd)
}

func statusColor(status string) string {
	switch status {
	case api.TaskStatusRunning:
		return color.YellowString(status)
	case api.TaskStatusCompleted:
		return color.GreenString(status)
	case api.TaskStatusFailed:
		return color.RedString(status)
	default:
		return status
	}
}

func runTasksList(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	tasks, err := client.ListTasks(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks yet.")
		return nil
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-40s %-12s %s\n",
		bold("ID"), bold("TITLE"), bold("STATUS"), bold("UPDATED"))
	for _, task := range tasks {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-40s %-12s %s\n",
			shortID(task.ID), task.Title, statusColor(task.Status),
			task.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	description, _ := cmd.Flags().GetString("description")
	agentID, _ := cmd.Flags().GetString("agent")
	teamID, _ := cmd.Flags().GetString("team")
	task, err := client.CreateTask(cmd.Context(), api.CreateTaskRequest{
		Title:       args[0],
		Description: description,
		AgentID:     agentID,
		TeamID:      teamID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %q created (%s)\n", task.Title, task.ID)
	return nil
}

func runTasksShow(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	task, err := client.GetTask(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), task)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", task.ID)
	fmt.Fprintf(out, "Title:       %s\n", task.Title)
	fmt.Fprintf(out, "Status:      %s\n", statusColor(task.Status))
	fmt.Fprintf(out, "Agent:       %s\n", orDash(task.AgentID))
	fmt.Fprintf(out, "Team:        %s\n", orDash(task.TeamID))
	fmt.Fprintf(out, "Created:     %s\n", task.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated:     %s\n", task.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if task.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", task.Description)
	}
	return nil
}

func runTasksRemove(cmd *cobra.Command, args []string) error {
	_, client, err := loadClient()
	if err != nil {
		return err
	}
	if err := client.DeleteTask(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s removed\n", args[0])
	return nil
}
