package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/lifecycle"
	"github.com/studiowebux/beeactions/internal/logging"
	"github.com/studiowebux/beeactions/internal/state"
	"github.com/studiowebux/beeactions/internal/tui"
	"github.com/studiowebux/beeactions/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beeactions",
	Short: "Bee actions - behavioural event recorder",
	Long: `Bee actions records timestamped bee behaviours into a data container.

Run without arguments to start the recording screen. Load a shortcut preset,
press the start key, and every preset shortcut you press is stored with the
elapsed time of the scan (and the bee number when enabled).

Examples:
  beeactions                          # Start the recording screen
  beeactions record -p bees           # Record from the console with preset 'bees'
  beeactions preset list              # List the shortcut presets
  beeactions scans today.bee          # List the scans of a container
  beeactions show today.bee Scan000   # Print the events of a scan
  beeactions log                      # Print the last run's log file`,
	Version:       version.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, optionally checking for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "beeactions %s\n", version.Version)
		if !flagCheckUpdate {
			return nil
		}
		update, err := version.CheckForUpdate(cmd.Context(), version.Version)
		if err != nil {
			return err
		}
		if update.Available {
			fmt.Fprintf(out, "A newer version is available: %s (%s)\n", update.Latest, update.URL)
		} else {
			fmt.Fprintln(out, "You are running the latest version.")
		}
		return nil
	},
}

// Global flags
var (
	flagHome        string
	flagCheckUpdate bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "Application-data directory (default ~/.beeactions)")
	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "Check for a newer release")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(scansCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(versionCmd)
}

// appEnv is the configuration, logger and persisted state of one run
type appEnv struct {
	settings *config.Settings
	logger   *slog.Logger
	logFile  string
	closer   io.Closer
	state    *state.Manager
	keybinds *keybinds.Registry
}

func (e *appEnv) Close() {
	if err := e.state.Save(); err != nil {
		e.logger.Error("failed to save state", "error", err)
	}
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// setup initializes the application-data directory and opens this run's log file
func setup() (*appEnv, error) {
	if err := config.Initialize(flagHome); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.LoadSettings(config.SettingsFile)
	if err != nil {
		return nil, err
	}
	if settings.Storage.BasePath, err = config.ResolveDataPath(settings.Storage.BasePath); err != nil {
		return nil, err
	}

	logger, logFile, closer, err := logging.NewRunLogger(config.LogDir, settings.Logging.Level, settings.Logging.Format, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logging.CleanupOldLogs(logger, settings.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     config.LogDir,
		Pattern: logging.RunFilePrefix + "*.log",
		Exclude: []string{logFile},
	})

	env := &appEnv{settings: settings, logger: logger, logFile: logFile, closer: closer}

	env.state = state.NewManager(config.StateFile)
	if err := env.state.Load(); err != nil {
		logger.Warn("ignoring unreadable state file", "error", err)
	}

	env.keybinds, err = keybinds.LoadOrDefault(keybinds.ConfigPath(config.ConfigDir))
	if err != nil {
		logger.Warn("using default keybindings", "error", err)
		env.keybinds = keybinds.NewDefaultRegistry()
	}

	logger.Info("beeactions started", "version", version.Version, "home", config.ConfigDir)
	return env, nil
}

// isInteractive reports whether f is a terminal
func isInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runTUI starts the recording screen
func runTUI(cmd *cobra.Command) error {
	if !isInteractive(os.Stdin) || !isInteractive(os.Stdout) {
		return fmt.Errorf("the recording screen needs a terminal; use 'beeactions record' for console input")
	}

	env, err := setup()
	if err != nil {
		return err
	}
	defer env.Close()

	mgr := lifecycle.NewManager(lifecycle.Options{
		Settings: *env.settings,
		Logger:   env.logger,
		Controls: env.keybinds,
	})

	return tui.Run(cmd.Context(), tui.Config{
		Manager:        mgr,
		State:          env.state,
		Keybinds:       env.keybinds,
		Logger:         env.logger,
		LogFile:        env.logFile,
		PresetDir:      config.PresetDir,
		LayoutDir:      config.LayoutDir,
		Author:         env.settings.Author,
		Vocabulary:     env.settings.Actions,
		MessageTimeout: 5 * time.Second,
	})
}
