// Package config loads planit settings from viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/placement"
)

// ViewportConfig is the drawing surface size in pixels.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// SunConfig places the anchor relative to the bottom-left corner.
type SunConfig struct {
	Size         float64 `mapstructure:"size"`
	LeftOffset   float64 `mapstructure:"left_offset"`
	BottomOffset float64 `mapstructure:"bottom_offset"`
}

// OrbitConfig is one ring of the slot table. Angles are in degrees.
type OrbitConfig struct {
	Radius float64   `mapstructure:"radius"`
	Angles []float64 `mapstructure:"angles"`
}

// PresetConfig pins a body to a fixed legacy orbit radius. Name is matched
// case-sensitively; viper folds map keys, so presets are a list.
type PresetConfig struct {
	Name   string  `mapstructure:"name"`
	Radius float64 `mapstructure:"radius"`
}

// LegacyConfig tunes the grid-less placer.
type LegacyConfig struct {
	Radii       []float64      `mapstructure:"radii"`
	ArcDegrees  float64        `mapstructure:"arc_degrees"`
	Margin      float64        `mapstructure:"margin"`
	MaxAttempts int            `mapstructure:"max_attempts"`
	Presets     []PresetConfig `mapstructure:"presets"`
}

// Config holds all runtime configuration for a planit session.
// Values are populated from .planit.yaml, PLANIT_* env vars, and CLI flags.
type Config struct {
	Viewport     ViewportConfig `mapstructure:"viewport"`
	Sun          SunConfig      `mapstructure:"sun"`
	Orbits       []OrbitConfig  `mapstructure:"orbits"`
	Legacy       LegacyConfig   `mapstructure:"legacy"`
	Seed         uint64         `mapstructure:"seed"`
	Manifest     string         `mapstructure:"manifest"`
	DBPath       string         `mapstructure:"db_path"`
	TelemetryDir string         `mapstructure:"telemetry_dir"`
	Verbose      bool           `mapstructure:"verbose"`
}

// defaultOrbits mirrors orbit.DefaultTable in degrees.
func defaultOrbits() []map[string]any {
	return []map[string]any{
		{"radius": 500.0, "angles": []float64{-30, -60, 0}},
		{"radius": 750.0, "angles": []float64{-22.5, -45, -67.5, 0}},
		{"radius": 1000.0, "angles": []float64{-15, -30, -45, -60, -75}},
		{"radius": 1250.0, "angles": []float64{-22.5, -45, -67.5}},
		{"radius": 1500.0, "angles": []float64{-30, -45, -60}},
	}
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	sun := orbit.DefaultSun()
	legacy := placement.DefaultLegacyConfig()

	viper.SetDefault("viewport.width", 1280.0)
	viper.SetDefault("viewport.height", 800.0)
	viper.SetDefault("sun.size", sun.Size)
	viper.SetDefault("sun.left_offset", sun.LeftOffset)
	viper.SetDefault("sun.bottom_offset", sun.BottomOffset)
	viper.SetDefault("orbits", defaultOrbits())
	viper.SetDefault("legacy.radii", legacy.Radii)
	viper.SetDefault("legacy.arc_degrees", 15.0)
	viper.SetDefault("legacy.margin", legacy.Margin)
	viper.SetDefault("legacy.max_attempts", legacy.MaxAttempts)
	viper.SetDefault("legacy.presets", []map[string]any{
		{"name": "냥냥성", "radius": 500.0},
		{"name": "청소별", "radius": 750.0},
		{"name": "공부별", "radius": 1000.0},
	})
	viper.SetDefault("seed", 0)
	viper.SetDefault("manifest", "planets.toml")
	viper.SetDefault("db_path", ".planit/planit.db")
	viper.SetDefault("telemetry_dir", ".planit/telemetry")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Table converts the configured orbits into a validated slot table.
func (c Config) Table() (orbit.Table, error) {
	t := make(orbit.Table, len(c.Orbits))
	for i, o := range c.Orbits {
		angles := make([]float64, len(o.Angles))
		for j, deg := range o.Angles {
			angles[j] = orbit.Degrees(deg)
		}
		t[i] = orbit.Orbit{Radius: o.Radius, Angles: angles}
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("config: orbits: %w", err)
	}
	return t, nil
}

// SunGeometry returns the configured sun.
func (c Config) SunGeometry() orbit.Sun {
	return orbit.Sun{Size: c.Sun.Size, LeftOffset: c.Sun.LeftOffset, BottomOffset: c.Sun.BottomOffset}
}

// ViewportSize returns the configured viewport.
func (c Config) ViewportSize() orbit.Size {
	return orbit.Size{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// Placement converts the legacy section for placement.NewContinuous.
func (c Config) Placement() placement.LegacyConfig {
	preset := make(map[orbit.Body]float64, len(c.Legacy.Presets))
	for _, p := range c.Legacy.Presets {
		if p.Name == "" {
			continue
		}
		preset[orbit.Body(p.Name)] = p.Radius
	}
	return placement.LegacyConfig{
		Radii:       c.Legacy.Radii,
		Preset:      preset,
		Arc:         orbit.Degrees(c.Legacy.ArcDegrees),
		Margin:      c.Legacy.Margin,
		MaxAttempts: c.Legacy.MaxAttempts,
	}
}
