package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/keybinds"
	"github.com/studiowebux/beeactions/internal/preset"
	"github.com/studiowebux/beeactions/internal/types"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage shortcut presets",
}

var presetNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a shortcut preset",
	Long: `Create a shortcut preset from Action=key pairs.

Example:
  beeactions preset new bees -b Eat=e -b Landed=l -b Attack=a`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPresetNew(cmd, args[0])
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the shortcut presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPresetList(cmd)
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the shortcuts of a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPresetShow(cmd, args[0])
	},
}

var presetValidateCmd = &cobra.Command{
	Use:   "validate <name>",
	Short: "Check a preset for invalid, duplicate or reserved keys",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPresetValidate(cmd, args[0])
	},
}

// Flags for preset new
var (
	flagPresetBindings []string
	flagPresetAuthor   string
	flagPresetFormat   string
)

func init() {
	presetNewCmd.Flags().StringArrayVarP(&flagPresetBindings, "binding", "b", []string{}, "Shortcut as Action=key, can be repeated")
	presetNewCmd.Flags().StringVarP(&flagPresetAuthor, "author", "a", "", "Preset author")
	presetNewCmd.Flags().StringVarP(&flagPresetFormat, "format", "f", preset.FormatXML, "File format (xml/yaml)")

	presetCmd.AddCommand(presetNewCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetValidateCmd)
}

// parseBinding splits an Action=key pair
func parseBinding(pair string) (action, key string, err error) {
	action, key, ok := strings.Cut(pair, "=")
	action = strings.TrimSpace(action)
	if !ok || action == "" || key == "" {
		return "", "", fmt.Errorf("invalid binding %q (expected Action=key)", pair)
	}
	return action, keybinds.ShortcutKey(key), nil
}

// buildPreset creates a preset from Action=key pairs
func buildPreset(name, author string, pairs []string) (*types.Preset, error) {
	p := types.NewPreset(name, author)
	for _, pair := range pairs {
		action, key, err := parseBinding(pair)
		if err != nil {
			return nil, err
		}
		p.AddBinding(action, key)
	}
	return p, nil
}

func runPresetNew(cmd *cobra.Command, name string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.Close()

	author := flagPresetAuthor
	if author == "" {
		author = env.settings.Author
	}
	p, err := buildPreset(name, author, flagPresetBindings)
	if err != nil {
		return err
	}

	result := preset.Validate(p, keybinds.NewValidator(env.keybinds))
	if result.HasErrors() {
		return fmt.Errorf("preset is invalid:\n%s", result.String())
	}

	if existing, err := preset.Resolve(config.PresetDir, name); err == nil {
		return fmt.Errorf("preset %s already exists at %s", name, existing)
	} else if !errors.Is(err, preset.ErrNotFound) {
		return err
	}

	var path string
	switch strings.ToLower(flagPresetFormat) {
	case preset.FormatXML:
		path, err = preset.Save(p, config.PresetDir)
	case preset.FormatYAML, "yml":
		path = filepath.Join(config.PresetDir, name+".yaml")
		err = preset.SaveAs(p, path)
	default:
		return fmt.Errorf("unsupported preset format %q", flagPresetFormat)
	}
	if err != nil {
		return err
	}

	env.logger.Info("preset created", "path", path, "bindings", len(p.Actions))
	out := cmd.OutOrStdout()
	if result.HasWarnings() {
		fmt.Fprint(out, result.String())
	}
	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}

func runPresetList(cmd *cobra.Command) error {
	if err := config.Initialize(flagHome); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	entries, err := preset.List(config.PresetDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No presets in %s\n", config.PresetDir)
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		shortcuts := "?"
		if p, err := preset.Load(e.Path); err == nil {
			shortcuts = fmt.Sprint(len(p.Actions))
		}
		rows = append(rows, []string{e.Name, e.Format, shortcuts, e.Path})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Name", "Format", "Shortcuts", "Path"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func runPresetShow(cmd *cobra.Command, name string) error {
	if err := config.Initialize(flagHome); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	path, err := preset.Resolve(config.PresetDir, name)
	if err != nil {
		return err
	}
	p, err := preset.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Preset:  %s\n", p.Filename)
	fmt.Fprintf(out, "Author:  %s\n", p.Author)
	fmt.Fprintf(out, "File:    %s\n", path)
	if p.SavingOptions.BasePath != "" {
		fmt.Fprintf(out, "Data:    %s\n", p.SavingOptions.BasePath)
	}

	rows := make([][]string, 0, len(p.Actions))
	for i, b := range p.Actions {
		enabled := "yes"
		if !b.Enabled {
			enabled = "no"
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), b.Key, b.Action, enabled})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Key", "Action", "Enabled"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func runPresetValidate(cmd *cobra.Command, name string) error {
	if err := config.Initialize(flagHome); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	path, err := preset.Resolve(config.PresetDir, name)
	if err != nil {
		return err
	}
	p, err := preset.Load(path)
	if err != nil {
		return err
	}

	controls, err := keybinds.LoadOrDefault(keybinds.ConfigPath(config.ConfigDir))
	if err != nil {
		return err
	}
	result := preset.Validate(p, keybinds.NewValidator(controls))
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(result.String(), "\n"))
	if result.HasErrors() {
		return fmt.Errorf("preset %s has %d error(s)", p.Filename, len(result.Errors))
	}
	return nil
}
