package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive orbit view",
	Long: `Draws every category as a planet around the sun. Drag a planet with the
mouse to move it to the nearest slot; dropping it on another planet swaps
the two. When bodies come from the manifest, edits to the file are picked
up live.`,
	RunE: runTUI,
}

func init() {
	addSourceFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

// errNoTTY is returned when the TUI is started without a terminal.
var errNoTTY = errors.New("planit tui requires a TTY (terminal)")

func runTUI(cmd *cobra.Command, _ []string) error {
	if !isStderrTTY() {
		return errNoTTY
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(cmd.Context(), cmd, cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	em := openTelemetry(cfg)
	defer em.Close()

	eng, err := newEngine(cfg, cfg.ViewportSize(), em)
	if err != nil {
		return err
	}
	defer eng.Close()

	model := tui.NewModel(eng, src, cfg.SunGeometry())
	defer model.Close()
	p := tui.NewProgram(model)

	if ms, ok := src.(bodies.ManifestSource); ok {
		w, err := bodies.NewWatcher(ms.Path)
		if err != nil {
			return fmt.Errorf("watching %s: %w", ms.Path, err)
		}
		if err := w.Start(); err != nil {
			logger.Warn("manifest watch disabled", zap.String("path", ms.Path), zap.Error(err))
			w.Close()
		} else {
			bridge := tui.NewWatchBridge(p, w.Changes)
			bridge.Start()
			defer w.Stop()
			defer bridge.Stop()
		}
	}

	return tui.Run(p)
}
