package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/altuslabsxyz/mirage/internal/paths"
)

// ConfigWriter handles writing the project config file (mirage.toml).
type ConfigWriter struct {
	dir string
}

// NewConfigWriter creates a new ConfigWriter for the given project directory.
func NewConfigWriter(dir string) *ConfigWriter {
	return &ConfigWriter{dir: dir}
}

// Path returns the full path to mirage.toml in the project directory.
func (w *ConfigWriter) Path() string {
	return filepath.Join(w.dir, paths.ProjectConfigFile)
}

// Exists returns true if mirage.toml already exists.
func (w *ConfigWriter) Exists() bool {
	return paths.Exists(w.Path())
}

// Write saves the FileConfig to mirage.toml. Unset fields are omitted.
func (w *ConfigWriter) Write(cfg *FileConfig) error {
	if err := paths.EnsureDir(w.dir); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.dir, err)
	}

	body, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# mirage configuration file\n")
	buf.WriteString("# Priority: default < config file < environment < CLI flag\n")
	buf.WriteString("# Placeholders in build_args: {artifact} {package} {cycle} {sources}\n\n")
	buf.Write(body)

	if err := os.WriteFile(w.Path(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
