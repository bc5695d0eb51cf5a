package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the store's categories to the planet manifest",
	Long: `Writes every category in the task database, with its completed count, to
the manifest file. A running "planit tui" watching the manifest picks the
change up immediately.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "manifest path (default from config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path := cfg.Manifest
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		path = out
	}
	return withStore(cmd, func(st *bodies.Store) error {
		entries, err := st.Entries(cmd.Context())
		if err != nil {
			return err
		}
		if err := bodies.WriteManifest(path, &bodies.Manifest{Planets: entries}); err != nil {
			return err
		}
		ui.New().Info(fmt.Sprintf("wrote %d planet(s) to %s", len(entries), path))
		return nil
	})
}
