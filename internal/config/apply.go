package config

import "github.com/spf13/cobra"

// FlagValues carries the parsed values of the global and run flags.
type FlagValues struct {
	Home    string
	NoColor bool
	Verbose bool
	Release bool
}

// ApplyFlags applies values for flags that were explicitly set on the command
// line. Flags have the highest priority: default < config file < env < flag.
func (c *EffectiveConfig) ApplyFlags(cmd *cobra.Command, f FlagValues) {
	flags := cmd.Flags()

	if flags.Changed("home") {
		c.Home = StringValue{Value: f.Home, Source: SourceFlag}
	}
	if flags.Changed("no-color") {
		c.NoColor = BoolValue{Value: f.NoColor, Source: SourceFlag}
	}
	if flags.Changed("verbose") {
		c.Verbose = BoolValue{Value: f.Verbose, Source: SourceFlag}
	}
	if flags.Lookup("release") != nil && flags.Changed("release") {
		profile := "debug"
		if f.Release {
			profile = "release"
		}
		c.Profile = StringValue{Value: profile, Source: SourceFlag}
	}
}
