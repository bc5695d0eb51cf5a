package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/ui"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Print the slot grid for the configured orbits",
	RunE:  runSlots,
}

func init() {
	addViewportFlags(slotsCmd)
	slotsCmd.Flags().Bool("json", false, "print JSON to stdout")
	rootCmd.AddCommand(slotsCmd)
}

func runSlots(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	vp := viewportFrom(cmd, cfg)
	eng, err := newEngine(cfg, vp, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), layoutOutput{
			Viewport:  vp,
			Anchor:    eng.Geometry().Anchor(),
			Slots:     eng.Slots(),
			Positions: eng.Positions(),
		})
	}
	ui.New().SlotTable(eng.Slots())
	return nil
}
