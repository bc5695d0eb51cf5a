package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <category> <title...>",
	Short: "Add a task, creating its category if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var taskDoneCmd = &cobra.Command{
	Use:     "done <id...>",
	Aliases: []string{"launch"},
	Short:   "Complete tasks in one launch",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runTaskDone,
}

func init() {
	taskListCmd.Flags().StringP("category", "c", "", "only this category")
	taskListCmd.Flags().BoolP("all", "a", false, "include completed tasks")
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskDoneCmd)
	rootCmd.AddCommand(taskCmd)
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(*bodies.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *bodies.Store) error {
		t, err := st.AddTask(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		ui.New().TaskAdded(t)
		return nil
	})
}

func runTaskList(cmd *cobra.Command, _ []string) error {
	category, _ := cmd.Flags().GetString("category")
	all, _ := cmd.Flags().GetBool("all")
	return withStore(cmd, func(st *bodies.Store) error {
		tasks, err := st.ListTasks(cmd.Context(), bodies.TaskFilter{Category: category, IncludeDone: all})
		if err != nil {
			return err
		}
		ui.New().TaskList(tasks, time.Now())
		return nil
	})
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *bodies.Store) error {
		n, err := st.CompleteTasks(cmd.Context(), args...)
		if err != nil {
			return err
		}
		ui.New().Launched(n)
		return nil
	})
}
