package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/layout"
	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/placement"
	"github.com/papapumpkin/planit/internal/telemetry"
)

// Body source names accepted by --from.
const (
	sourceManifest = "manifest"
	sourceDB       = "db"
)

// addSourceFlags registers the flags choosing where bodies come from.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "body source: manifest or db (default: manifest if it exists)")
}

// addViewportFlags registers viewport overrides.
func addViewportFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("width", 0, "viewport width in pixels (default from config)")
	cmd.Flags().Float64("height", 0, "viewport height in pixels (default from config)")
}

func viewportFrom(cmd *cobra.Command, cfg config.Config) orbit.Size {
	vp := cfg.ViewportSize()
	if w, _ := cmd.Flags().GetFloat64("width"); w > 0 {
		vp.Width = w
	}
	if h, _ := cmd.Flags().GetFloat64("height"); h > 0 {
		vp.Height = h
	}
	return vp
}

// openSource resolves --from into a bodies.Source. The returned close
// function is never nil.
func openSource(ctx context.Context, cmd *cobra.Command, cfg config.Config) (bodies.Source, func(), error) {
	from, _ := cmd.Flags().GetString("from")
	if from == "" {
		from = sourceDB
		if _, err := os.Stat(cfg.Manifest); err == nil {
			from = sourceManifest
		}
	}
	switch from {
	case sourceManifest:
		return bodies.ManifestSource{Path: cfg.Manifest}, func() {}, nil
	case sourceDB:
		st, err := openStore(ctx, cfg)
		if err != nil {
			return nil, func() {}, err
		}
		return st, func() { st.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown --from %q (want %s or %s)", from, sourceManifest, sourceDB)
	}
}

func openStore(ctx context.Context, cfg config.Config) (*bodies.Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return bodies.OpenStore(ctx, cfg.DBPath)
}

// openTelemetry starts a session event stream. Failure only disables
// telemetry.
func openTelemetry(cfg config.Config) *telemetry.Emitter {
	if cfg.TelemetryDir == "" {
		return nil
	}
	session := telemetry.NewSessionID()
	em, err := telemetry.NewSessionEmitter(cfg.TelemetryDir, session)
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
		return nil
	}
	if err := em.Emit(telemetry.Event{Kind: telemetry.KindSessionStart}); err != nil {
		logger.Warn("telemetry emit failed", zap.Error(err))
	}
	logger.Debug("telemetry session", zap.String("session", session), zap.String("dir", cfg.TelemetryDir))
	return em
}

// newEngine builds a grid engine from cfg.
func newEngine(cfg config.Config, vp orbit.Size, em *telemetry.Emitter) (*layout.Engine, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}
	return layout.New(layout.Options{
		Table:     table,
		Sun:       cfg.SunGeometry(),
		Viewport:  vp,
		Rand:      placement.NewRand(cfg.Seed),
		Logger:    logger,
		Telemetry: em,
	})
}
