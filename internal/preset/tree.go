package preset

import (
	"fmt"
	"strconv"

	"github.com/studiowebux/beeactions/internal/paramtree"
	"github.com/studiowebux/beeactions/internal/types"
)

// Tree returns the parameter tree of a preset
func Tree(p *types.Preset) *paramtree.Node {
	actions := paramtree.Group("actions", "Actions")
	for i, b := range p.Actions {
		actions.Add(paramtree.Group(
			fmt.Sprintf("action%02d", i),
			fmt.Sprintf("Action %02d", i),
			paramtree.String("id", "Id", b.ID).Hide(),
			&paramtree.Node{Name: "action", Title: "Action:", Type: paramtree.TypeList, Value: b.Action, Visible: true},
			paramtree.String("shortcut", "Shortcut:", b.Key),
			paramtree.Bool("enabled", "Enabled:", b.Enabled),
		))
	}

	return paramtree.Group("preset", "Preset",
		paramtree.String("filename", "Filename:", p.Filename),
		paramtree.String("author", "Author:", p.Author),
		SavingOptionsTree(p.SavingOptions),
		actions,
	)
}

// SavingOptionsTree returns the parameter tree of the saving options
// Hidden options are always present, with visible="0"
func SavingOptionsTree(o types.SavingOptions) *paramtree.Node {
	return paramtree.Group("saving_options", "Saving options",
		paramtree.String("base_path", "Base path:", o.BasePath),
		paramtree.String("base_name", "Base name:", o.BaseName),
		paramtree.String("scan_prefix", "Scan prefix:", o.ScanPrefix),
		paramtree.Bool("do_save", "Do save:", o.DoSave).Hide(),
		paramtree.String("custom_name", "Custom name:", o.CustomName).Hide(),
		paramtree.String("current_file", "Current file:", o.CurrentFile).Hide().ReadOnly(),
		paramtree.String("current_scan_name", "Current scan:", o.CurrentScanName).Hide().ReadOnly(),
		paramtree.String("current_scan_path", "Current scan path:", o.CurrentScanPath).Hide().ReadOnly(),
	)
}

// FromTree builds a preset from its parameter tree
func FromTree(root *paramtree.Node) (*types.Preset, error) {
	if root == nil || root.Name != "preset" {
		return nil, fmt.Errorf("not a preset tree")
	}

	p := types.NewPreset(root.StringAt("filename"), root.StringAt("author"))

	if opts, ok := root.Child("saving_options"); ok {
		p.SavingOptions = types.SavingOptions{
			BasePath:        opts.StringAt("base_path"),
			BaseName:        opts.StringAt("base_name"),
			ScanPrefix:      opts.StringAt("scan_prefix"),
			DoSave:          opts.BoolAt(true, "do_save"),
			CustomName:      opts.StringAt("custom_name"),
			CurrentFile:     opts.StringAt("current_file"),
			CurrentScanName: opts.StringAt("current_scan_name"),
			CurrentScanPath: opts.StringAt("current_scan_path"),
		}
		defaults := types.DefaultSavingOptions()
		if p.SavingOptions.BaseName == "" {
			p.SavingOptions.BaseName = defaults.BaseName
		}
		if p.SavingOptions.ScanPrefix == "" {
			p.SavingOptions.ScanPrefix = defaults.ScanPrefix
		}
	}

	if actions, ok := root.Child("actions"); ok {
		for _, row := range actions.Children {
			enabled := true
			if c, ok := row.Child("enabled"); ok {
				b, err := strconv.ParseBool(c.Value)
				if err != nil {
					return nil, fmt.Errorf("%s: invalid enabled value %q", row.Name, c.Value)
				}
				enabled = b
			}
			p.Actions = append(p.Actions, types.Binding{
				ID:      row.StringAt("id"),
				Action:  row.StringAt("action"),
				Key:     row.StringAt("shortcut"),
				Enabled: enabled,
			})
		}
	}

	return p, nil
}

func encodeXML(p *types.Preset) ([]byte, error) {
	return paramtree.Marshal(Tree(p))
}

func decodeXML(data []byte) (*types.Preset, error) {
	root, err := paramtree.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return FromTree(root)
}
