package config

import (
	"fmt"
	"time"
)

func validProfile(v string) bool   { return v == "debug" || v == "release" }
func validLoader(v string) bool    { return v == "shared" || v == "process" }
func validWatchMode(v string) bool { return v == "poll" || v == "notify" }

// Validate validates the EffectiveConfig values.
func (c *EffectiveConfig) Validate() error {
	if !validProfile(c.Profile.Value) {
		return fmt.Errorf("invalid profile: %s (must be 'debug' or 'release')", c.Profile.Value)
	}
	if !validLoader(c.Loader.Value) {
		return fmt.Errorf("invalid loader: %s (must be 'shared' or 'process')", c.Loader.Value)
	}
	if !validWatchMode(c.WatchMode.Value) {
		return fmt.Errorf("invalid watch_mode: %s (must be 'poll' or 'notify')", c.WatchMode.Value)
	}
	if c.WatchInterval.Value <= 0 {
		return fmt.Errorf("invalid watch_interval: %s (must be positive)", c.WatchInterval.Value)
	}
	if c.BuildTool.Value == "" {
		return fmt.Errorf("build_tool must not be empty")
	}
	if len(c.BuildArgs.Value) == 0 {
		return fmt.Errorf("build_args must not be empty")
	}
	if c.ArtifactName.Value == "" {
		return fmt.Errorf("artifact_name must not be empty")
	}
	if c.Symbol.Value == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	return nil
}

// ValidateFileConfig validates the FileConfig values before merging.
// This is called when loading config files to provide early error messages.
func ValidateFileConfig(cfg *FileConfig) error {
	if cfg == nil {
		return nil
	}

	if cfg.Profile != nil && !validProfile(*cfg.Profile) {
		return fmt.Errorf("invalid profile in config file: %s (must be 'debug' or 'release')", *cfg.Profile)
	}
	if cfg.Loader != nil && !validLoader(*cfg.Loader) {
		return fmt.Errorf("invalid loader in config file: %s (must be 'shared' or 'process')", *cfg.Loader)
	}
	if cfg.WatchMode != nil && !validWatchMode(*cfg.WatchMode) {
		return fmt.Errorf("invalid watch_mode in config file: %s (must be 'poll' or 'notify')", *cfg.WatchMode)
	}
	if cfg.WatchInterval != nil {
		d, err := time.ParseDuration(*cfg.WatchInterval)
		if err != nil {
			return fmt.Errorf("invalid watch_interval in config file: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid watch_interval in config file: %s (must be positive)", *cfg.WatchInterval)
		}
	}
	if cfg.BuildArgs != nil && len(cfg.BuildArgs) == 0 {
		return fmt.Errorf("build_args in config file must not be empty")
	}

	return nil
}
