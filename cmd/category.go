package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/ui"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"planet"},
	Short:   "Manage categories (planets)",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name...>",
	Short: "Declare categories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCategoryAdd,
}

var categoryRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a category and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryRm,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every category with its completed count",
	Args:  cobra.NoArgs,
	RunE:  runCategoryList,
}

func init() {
	categoryCmd.AddCommand(categoryAddCmd, categoryRmCmd, categoryListCmd)
	rootCmd.AddCommand(categoryCmd)
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	p := ui.New()
	return withStore(cmd, func(st *bodies.Store) error {
		for _, name := range args {
			added, err := st.AddCategory(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !added {
				p.Info(name + " already exists")
			}
		}
		return nil
	})
}

func runCategoryRm(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *bodies.Store) error {
		return st.RemoveCategory(cmd.Context(), args[0])
	})
}

func runCategoryList(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(st *bodies.Store) error {
		entries, err := st.Entries(cmd.Context())
		if err != nil {
			return err
		}
		ui.New().Categories(entries)
		return nil
	})
}
