package configloader

import "github.com/yaklabco/treewrite/pkg/config"

// merge overlays override on base and returns the result. It is used for
// configs built from command-line flags, where only set values are non-zero:
//   - Strings and integers overwrite base when non-zero
//   - Booleans overwrite base only when true
//
// Config files are layered by decoding onto the previous result instead, so
// they can switch booleans off.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Format.IndentStyle != "" {
		result.Format.IndentStyle = override.Format.IndentStyle
	}
	if override.Format.IndentWidth != 0 {
		result.Format.IndentWidth = override.Format.IndentWidth
	}
	if override.Format.TabWidth != 0 {
		result.Format.TabWidth = override.Format.TabWidth
	}
	if override.Format.LineEnding != "" {
		result.Format.LineEnding = override.Format.LineEnding
	}
	if override.Output.Color != "" {
		result.Output.Color = override.Output.Color
	}
	if override.Output.DiffContext != 0 {
		result.Output.DiffContext = override.Output.DiffContext
	}
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}

	if override.Write {
		result.Write = true
	}
	if override.ShowDiff {
		result.ShowDiff = true
	}
	if override.ShowEdits {
		result.ShowEdits = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}

	return &result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
