// Package paths provides centralized path management for mirage.
package paths

import (
	"os"
	"path/filepath"
)

// Directory constants relative to home directory.
const (
	StagingDir = "staging"
	SourcesDir = "sources"
)

// File name constants.
const (
	ConfigFile        = "config.toml"
	ProjectConfigFile = "mirage.toml"
	HistoryFile       = "history.db"
)

const DefaultHomeDirName = ".mirage"

// DefaultHomeDir returns $HOME/.mirage or falls back to current directory.
func DefaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultHomeDirName
	}
	return filepath.Join(home, DefaultHomeDirName)
}

func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, ConfigFile)
}

func HistoryPath(homeDir string) string {
	return filepath.Join(homeDir, HistoryFile)
}

// StagingPath returns the directory shared artifacts are copied into before
// they are opened.
func StagingPath(homeDir string) string {
	return filepath.Join(homeDir, StagingDir)
}

// SourcesPath returns the directory package sources are staged in for
// shared builds.
func SourcesPath(homeDir string) string {
	return filepath.Join(homeDir, SourcesDir)
}

// Exists checks if a path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsFile checks if a path is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnsureDir creates a directory and its parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
