package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studiowebux/beeactions/internal/cli"
	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/preset"
	"github.com/studiowebux/beeactions/internal/types"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record events from the console",
	Long: `Record events by typing commands and shortcut keys on standard input.

Without --preset you pick a preset interactively when running in a terminal;
otherwise the last used preset is loaded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd)
	},
}

// Flags for record
var (
	flagRecordPreset    string
	flagRecordContainer string
	flagRecordAuthor    string
)

func init() {
	recordCmd.Flags().StringVarP(&flagRecordPreset, "preset", "p", "", "Preset name or file")
	recordCmd.Flags().StringVarP(&flagRecordContainer, "container", "c", "", "Container file (default: a new one for today)")
	recordCmd.Flags().StringVarP(&flagRecordAuthor, "author", "a", "", "Author written to the scan metadata")
}

// runRecord runs a console recording session
func runRecord(cmd *cobra.Command) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.Close()

	path, err := choosePreset(flagRecordPreset, env.state.LastPreset())
	if err != nil {
		return err
	}

	var p *types.Preset
	if path != "" {
		if p, err = preset.Load(path); err != nil {
			return err
		}
		if err := env.state.SetLastPreset(path); err != nil {
			env.logger.Warn("failed to remember preset", "error", err)
		}
	}

	container := flagRecordContainer
	if container != "" {
		if container, err = config.ExpandPath(container); err != nil {
			return err
		}
	}

	return cli.Record(cmd.Context(), cli.RecordOptions{
		Preset:     p,
		PresetPath: path,
		Container:  container,
		Author:     flagRecordAuthor,
		Settings:   *env.settings,
		In:         os.Stdin,
		Out:        cmd.OutOrStdout(),
		Logger:     env.logger,
		OnContainer: func(path string) {
			if err := env.state.AddRecentContainer(path); err != nil {
				env.logger.Warn("failed to remember container", "error", err)
			}
		},
	})
}

// choosePreset resolves the preset to record with
// An explicit name wins; a terminal gets the picker; otherwise the last preset is reused.
func choosePreset(name, last string) (string, error) {
	if name != "" {
		return preset.Resolve(config.PresetDir, name)
	}

	if isInteractive(os.Stdin) && isInteractive(os.Stdout) {
		entries, err := preset.List(config.PresetDir)
		if err != nil {
			return "", err
		}
		return cli.SelectPreset(entries, last)
	}

	if last == "" {
		return "", nil
	}
	if _, err := os.Stat(last); err != nil {
		fmt.Fprintf(os.Stderr, "Last preset %s is not available, recording without preset\n", last)
		return "", nil
	}
	return last, nil
}
