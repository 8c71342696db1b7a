package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/artifact"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/builder"
)

// Default values that are not owned by another package.
const (
	DefaultLoader        = "shared"
	DefaultProjectDir    = "."
	DefaultPackage       = "."
	DefaultBuildTool     = "go"
	DefaultArtifactName  = "mirage"
	DefaultSymbol        = "DynFunc"
	DefaultWatchPath     = "main.go"
	DefaultWatchMode     = "poll"
	DefaultWatchInterval = 2 * time.Second
)

// EffectiveConfig represents the final merged configuration after applying priority chain.
type EffectiveConfig struct {
	// Global settings
	Home    StringValue
	NoColor BoolValue
	Verbose BoolValue

	// Build settings
	Profile     StringValue
	ProjectDir  StringValue
	Package     StringValue
	BuildTool   StringValue
	BuildArgs   StringsValue
	ReleaseArgs StringsValue

	// Loading settings
	Loader       StringValue
	ArtifactName StringValue
	Symbol       StringValue

	// Watch settings
	WatchPath     StringValue
	WatchMode     StringValue
	WatchInterval DurationValue

	History BoolValue

	// Metadata
	ConfigFilePath string // Path to the highest priority config file (empty if none)
}

// NewEffectiveConfig creates a new EffectiveConfig with default values.
// The profile default is the one compiled into the binary.
func NewEffectiveConfig(defaultHomeDir string) *EffectiveConfig {
	return &EffectiveConfig{
		Home:          NewStringValue(defaultHomeDir),
		NoColor:       NewBoolValue(false),
		Verbose:       NewBoolValue(false),
		Profile:       NewStringValue(builder.DefaultProfile.String()),
		ProjectDir:    NewStringValue(DefaultProjectDir),
		Package:       NewStringValue(DefaultPackage),
		BuildTool:     NewStringValue(DefaultBuildTool),
		BuildArgs:     NewStringsValue(builder.DefaultArgs(artifact.KindShared)...),
		ReleaseArgs:   NewStringsValue(builder.DefaultReleaseArgs(artifact.KindShared)...),
		Loader:        NewStringValue(DefaultLoader),
		ArtifactName:  NewStringValue(DefaultArtifactName),
		Symbol:        NewStringValue(DefaultSymbol),
		WatchPath:     NewStringValue(DefaultWatchPath),
		WatchMode:     NewStringValue(DefaultWatchMode),
		WatchInterval: NewDurationValue(DefaultWatchInterval),
		History:       NewBoolValue(true),
	}
}

// ApplyFileConfig applies every value set in fc.
func (c *EffectiveConfig) ApplyFileConfig(fc *FileConfig, path string) error {
	if fc == nil {
		return nil
	}
	c.ConfigFilePath = path

	setString(&c.Home, fc.Home)
	setBool(&c.NoColor, fc.NoColor)
	setBool(&c.Verbose, fc.Verbose)
	setString(&c.Profile, fc.Profile)
	setString(&c.ProjectDir, fc.ProjectDir)
	setString(&c.Package, fc.Package)
	setString(&c.BuildTool, fc.BuildTool)
	setString(&c.Loader, fc.Loader)
	setString(&c.ArtifactName, fc.ArtifactName)
	setString(&c.Symbol, fc.Symbol)
	setString(&c.WatchPath, fc.WatchPath)
	setString(&c.WatchMode, fc.WatchMode)
	setBool(&c.History, fc.History)

	if fc.BuildArgs != nil {
		c.BuildArgs = StringsValue{Value: fc.BuildArgs, Source: SourceConfigFile}
	}
	if fc.ReleaseArgs != nil {
		c.ReleaseArgs = StringsValue{Value: fc.ReleaseArgs, Source: SourceConfigFile}
	}
	if fc.WatchInterval != nil {
		d, err := time.ParseDuration(*fc.WatchInterval)
		if err != nil {
			return fmt.Errorf("invalid watch_interval: %w", err)
		}
		c.WatchInterval = DurationValue{Value: d, Source: SourceConfigFile}
	}

	c.syncBuildArgs()
	return nil
}

// ApplyEnv applies MIRAGE_HOME, MIRAGE_PROFILE, MIRAGE_LOADER and NO_COLOR.
// Values already set by a flag are left alone by ApplyFlags, which runs last.
func (c *EffectiveConfig) ApplyEnv(getenv func(string) string) {
	if v := getenv("MIRAGE_HOME"); v != "" {
		c.Home = StringValue{Value: v, Source: SourceEnvironment}
	}
	if v := getenv("MIRAGE_PROFILE"); v != "" {
		c.Profile = StringValue{Value: strings.ToLower(v), Source: SourceEnvironment}
	}
	if v := getenv("MIRAGE_LOADER"); v != "" {
		c.Loader = StringValue{Value: strings.ToLower(v), Source: SourceEnvironment}
		c.syncBuildArgs()
	}
	if getenv("NO_COLOR") != "" {
		c.NoColor = BoolValue{Value: true, Source: SourceEnvironment}
	}
}

// syncBuildArgs keeps the default build and release arguments in step with
// the loader kind until the user configures them explicitly.
func (c *EffectiveConfig) syncBuildArgs() {
	kind, err := artifact.ParseKind(c.Loader.Value)
	if err != nil {
		return // reported by Validate
	}
	if c.BuildArgs.Source == SourceDefault {
		c.BuildArgs.Value = builder.DefaultArgs(kind)
	}
	if c.ReleaseArgs.Source == SourceDefault {
		c.ReleaseArgs.Value = builder.DefaultReleaseArgs(kind)
	}
}

// WatchFile returns the watched file, resolved against the project directory
// when relative.
func (c *EffectiveConfig) WatchFile() string {
	if filepath.IsAbs(c.WatchPath.Value) {
		return c.WatchPath.Value
	}
	return filepath.Join(c.ProjectDir.Value, c.WatchPath.Value)
}

// ToTable writes the configuration as a formatted table.
func (c *EffectiveConfig) ToTable(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	fmt.Fprintf(tw, "home\t%s\t%s\n", c.Home.Value, c.Home.Source)
	fmt.Fprintf(tw, "no_color\t%t\t%s\n", c.NoColor.Value, c.NoColor.Source)
	fmt.Fprintf(tw, "verbose\t%t\t%s\n", c.Verbose.Value, c.Verbose.Source)
	fmt.Fprintf(tw, "profile\t%s\t%s\n", c.Profile.Value, c.Profile.Source)
	fmt.Fprintf(tw, "project_dir\t%s\t%s\n", c.ProjectDir.Value, c.ProjectDir.Source)
	fmt.Fprintf(tw, "package\t%s\t%s\n", c.Package.Value, c.Package.Source)
	fmt.Fprintf(tw, "build_tool\t%s\t%s\n", c.BuildTool.Value, c.BuildTool.Source)
	fmt.Fprintf(tw, "build_args\t%s\t%s\n", strings.Join(c.BuildArgs.Value, " "), c.BuildArgs.Source)
	fmt.Fprintf(tw, "release_args\t%s\t%s\n", strings.Join(c.ReleaseArgs.Value, " "), c.ReleaseArgs.Source)
	fmt.Fprintf(tw, "loader\t%s\t%s\n", c.Loader.Value, c.Loader.Source)
	fmt.Fprintf(tw, "artifact_name\t%s\t%s\n", c.ArtifactName.Value, c.ArtifactName.Source)
	fmt.Fprintf(tw, "symbol\t%s\t%s\n", c.Symbol.Value, c.Symbol.Source)
	fmt.Fprintf(tw, "watch_path\t%s\t%s\n", c.WatchPath.Value, c.WatchPath.Source)
	fmt.Fprintf(tw, "watch_mode\t%s\t%s\n", c.WatchMode.Value, c.WatchMode.Source)
	fmt.Fprintf(tw, "watch_interval\t%s\t%s\n", c.WatchInterval.Value, c.WatchInterval.Source)
	fmt.Fprintf(tw, "history\t%t\t%s\n", c.History.Value, c.History.Source)
	tw.Flush()
}

func setString(dst *StringValue, v *string) {
	if v != nil {
		*dst = StringValue{Value: *v, Source: SourceConfigFile}
	}
}

func setBool(dst *BoolValue, v *bool) {
	if v != nil {
		*dst = BoolValue{Value: *v, Source: SourceConfigFile}
	}
}
