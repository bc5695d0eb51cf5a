package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/ui"
)

// logger is built in PersistentPreRunE; commands that run before it (or in
// tests) see the no-op logger.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "planit",
	Short: "Tasks in orbit",
	Long: `Planit lays task categories out as planets orbiting a sun.

Each category takes one of a fixed set of orbital slots; dragging a planet
in the TUI drops it on the nearest slot, swapping with whoever was there.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		zcfg := zap.NewProductionConfig()
		if viper.GetBool("verbose") {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
	RunE: runRootDefault,
}

// Execute runs the root command. Interrupts cancel the command context so
// followers such as "telemetry -f" return cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.New().Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .planit.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".planit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PLANIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// runRootDefault opens the TUI when a planet manifest exists in the cwd and
// shows help otherwise.
func runRootDefault(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Manifest); err != nil {
		return cmd.Help()
	}
	return runTUI(tuiCmd, nil)
}

// isStderrTTY reports whether stderr is attached to a terminal.
func isStderrTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
