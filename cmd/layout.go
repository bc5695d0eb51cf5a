package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/layout"
	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/placement"
	"github.com/papapumpkin/planit/internal/telemetry"
	"github.com/papapumpkin/planit/internal/ui"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [body...]",
	Short: "Place bodies and print their positions",
	Long: `Places every body on the slot grid and prints the resulting slots.

Bodies are taken from the arguments, or from the body source (--from) when
none are given. With --legacy the grid-less placer is used instead: each
body gets a weighted random orbit and angle, retried until it clears the
others.`,
	RunE: runLayout,
}

func init() {
	addSourceFlags(layoutCmd)
	addViewportFlags(layoutCmd)
	layoutCmd.Flags().Bool("json", false, "print JSON to stdout")
	layoutCmd.Flags().Bool("legacy", false, "use the grid-less placer")
	layoutCmd.Flags().Uint64("seed", 0, "random seed (default from config; 0 = time)")
	rootCmd.AddCommand(layoutCmd)
}

// layoutOutput is the --json document.
type layoutOutput struct {
	Viewport   orbit.Size            `json:"viewport"`
	Anchor     orbit.Point           `json:"anchor"`
	Slots      []layout.SlotView     `json:"slots,omitempty"`
	Placements []placement.Placement `json:"placements,omitempty"`
	Positions  layout.PositionMap    `json:"positions"`
	Unplaced   []orbit.Body          `json:"unplaced,omitempty"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	legacy, _ := cmd.Flags().GetBool("legacy")
	vp := viewportFrom(cmd, cfg)

	entries, err := layoutEntries(cmd, cfg, args)
	if err != nil {
		return err
	}

	em := openTelemetry(cfg)
	defer em.Close()

	printer := ui.New()
	if legacy {
		out := legacyLayout(cfg, vp, entries, em)
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), out)
		}
		printer.LegacyPlacements(out.Placements)
		return nil
	}

	eng, err := newEngine(cfg, vp, em)
	if err != nil {
		return err
	}
	defer eng.Close()

	rep, syncErr := eng.Sync(bodies.Names(entries))
	if syncErr != nil && !errors.Is(syncErr, placement.ErrGridFull) {
		return syncErr
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), layoutOutput{
			Viewport:  vp,
			Anchor:    eng.Geometry().Anchor(),
			Slots:     eng.Slots(),
			Positions: eng.Positions(),
			Unplaced:  rep.Unplaced,
		})
	}
	printer.SyncReport(rep)
	printer.SlotTable(eng.Slots())
	return nil
}

// layoutEntries returns the bodies named on the command line, or the
// current entries of the configured source.
func layoutEntries(cmd *cobra.Command, cfg config.Config, args []string) ([]bodies.Entry, error) {
	if len(args) > 0 {
		entries := make([]bodies.Entry, len(args))
		for i, a := range args {
			entries[i] = bodies.Entry{Name: a}
		}
		return bodies.Normalize(entries), nil
	}
	src, closeSrc, err := openSource(cmd.Context(), cmd, cfg)
	if err != nil {
		return nil, err
	}
	defer closeSrc()
	entries, err := src.Entries(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("loading bodies: %w", err)
	}
	return entries, nil
}

func legacyLayout(cfg config.Config, vp orbit.Size, entries []bodies.Entry, em *telemetry.Emitter) layoutOutput {
	sized := make([]layout.Sized, len(entries))
	for i, e := range entries {
		sized[i] = layout.Sized{Body: orbit.Body(e.Name), Size: placement.PlanetSize(e.Completed)}
	}
	l := layout.NewLegacy(cfg.Placement(), placement.NewRand(cfg.Seed), layout.Options{
		Sun:       cfg.SunGeometry(),
		Viewport:  vp,
		Logger:    logger,
		Telemetry: em,
	})
	l.Sync(sized)
	return layoutOutput{
		Viewport:   vp,
		Anchor:     cfg.SunGeometry().Anchor(vp),
		Placements: l.Placements(),
		Positions:  l.Positions(),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
