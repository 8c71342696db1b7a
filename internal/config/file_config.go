package config

// FileConfig represents the raw contents of a mirage config file.
// All fields are pointers to distinguish "not set" from "set to zero/false".
type FileConfig struct {
	// Global settings
	Home    *string `toml:"home,omitempty" yaml:"home,omitempty"`
	NoColor *bool   `toml:"no_color,omitempty" yaml:"no_color,omitempty"`
	Verbose *bool   `toml:"verbose,omitempty" yaml:"verbose,omitempty"`

	// Build settings
	Profile     *string  `toml:"profile,omitempty" yaml:"profile,omitempty"` // "debug" or "release"
	ProjectDir  *string  `toml:"project_dir,omitempty" yaml:"project_dir,omitempty"`
	Package     *string  `toml:"package,omitempty" yaml:"package,omitempty"`
	BuildTool   *string  `toml:"build_tool,omitempty" yaml:"build_tool,omitempty"`
	BuildArgs   []string `toml:"build_args,omitempty" yaml:"build_args,omitempty"`
	ReleaseArgs []string `toml:"release_args,omitempty" yaml:"release_args,omitempty"`

	// Loading settings
	Loader       *string `toml:"loader,omitempty" yaml:"loader,omitempty"` // "shared" or "process"
	ArtifactName *string `toml:"artifact_name,omitempty" yaml:"artifact_name,omitempty"`
	Symbol       *string `toml:"symbol,omitempty" yaml:"symbol,omitempty"`

	// Watch settings
	WatchPath     *string `toml:"watch_path,omitempty" yaml:"watch_path,omitempty"`
	WatchMode     *string `toml:"watch_mode,omitempty" yaml:"watch_mode,omitempty"` // "poll" or "notify"
	WatchInterval *string `toml:"watch_interval,omitempty" yaml:"watch_interval,omitempty"`

	History *bool `toml:"history,omitempty" yaml:"history,omitempty"`
}

// IsEmpty returns true if no configuration values are set.
func (f *FileConfig) IsEmpty() bool {
	return f.Home == nil &&
		f.NoColor == nil &&
		f.Verbose == nil &&
		f.Profile == nil &&
		f.ProjectDir == nil &&
		f.Package == nil &&
		f.BuildTool == nil &&
		f.BuildArgs == nil &&
		f.ReleaseArgs == nil &&
		f.Loader == nil &&
		f.ArtifactName == nil &&
		f.Symbol == nil &&
		f.WatchPath == nil &&
		f.WatchMode == nil &&
		f.WatchInterval == nil &&
		f.History == nil
}

// knownKeys lists every key FileConfig understands, for unknown-key warnings.
var knownKeys = map[string]bool{
	"home":           true,
	"no_color":       true,
	"verbose":        true,
	"profile":        true,
	"project_dir":    true,
	"package":        true,
	"build_tool":     true,
	"build_args":     true,
	"release_args":   true,
	"loader":         true,
	"artifact_name":  true,
	"symbol":         true,
	"watch_path":     true,
	"watch_mode":     true,
	"watch_interval": true,
	"history":        true,
}

// mergeFileConfig merges src into dst. Non-nil values in src overwrite dst.
func mergeFileConfig(dst, src *FileConfig) {
	if src.Home != nil {
		dst.Home = src.Home
	}
	if src.NoColor != nil {
		dst.NoColor = src.NoColor
	}
	if src.Verbose != nil {
		dst.Verbose = src.Verbose
	}
	if src.Profile != nil {
		dst.Profile = src.Profile
	}
	if src.ProjectDir != nil {
		dst.ProjectDir = src.ProjectDir
	}
	if src.Package != nil {
		dst.Package = src.Package
	}
	if src.BuildTool != nil {
		dst.BuildTool = src.BuildTool
	}
	if src.BuildArgs != nil {
		dst.BuildArgs = src.BuildArgs
	}
	if src.ReleaseArgs != nil {
		dst.ReleaseArgs = src.ReleaseArgs
	}
	if src.Loader != nil {
		dst.Loader = src.Loader
	}
	if src.ArtifactName != nil {
		dst.ArtifactName = src.ArtifactName
	}
	if src.Symbol != nil {
		dst.Symbol = src.Symbol
	}
	if src.WatchPath != nil {
		dst.WatchPath = src.WatchPath
	}
	if src.WatchMode != nil {
		dst.WatchMode = src.WatchMode
	}
	if src.WatchInterval != nil {
		dst.WatchInterval = src.WatchInterval
	}
	if src.History != nil {
		dst.History = src.History
	}
}
