package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/history"
	"github.com/altuslabsxyz/mirage/internal/paths"
)

// setupCLI isolates a command run from the user's home and project files.
func setupCLI(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(project))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{"MIRAGE_HOME", "MIRAGE_PROFILE", "MIRAGE_LOADER"} {
		t.Setenv(key, "")
	}
	t.Setenv("NO_COLOR", "1")
	return home, project
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// tableRow returns the whitespace-separated fields of the row for key.
func tableRow(t *testing.T, table, key string) []string {
	t.Helper()
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == key {
			return fields
		}
	}
	t.Fatalf("no row %q in:\n%s", key, table)
	return nil
}

func TestConfigShow_Priority(t *testing.T) {
	home, project := setupCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, paths.ProjectConfigFile),
		[]byte("loader = \"process\"\nprofile = \"debug\"\n"), 0644))
	t.Setenv("MIRAGE_PROFILE", "release")

	out, err := execute(t, "config", "show", "--home", home)
	require.NoError(t, err)

	assert.Equal(t, []string{"loader", "process", "config", "file"}, tableRow(t, out, "loader"))
	assert.Equal(t, []string{"profile", "release", "environment"}, tableRow(t, out, "profile"))
	assert.Equal(t, []string{"home", home, "flag"}, tableRow(t, out, "home"))
	assert.Equal(t, []string{"build_args", "build", "-o", "{artifact}", "{package}", "default"}, tableRow(t, out, "build_args"))
	assert.Contains(t, out, "Config file: "+paths.ProjectConfigFile)
}

func TestConfigShow_NoConfigFile(t *testing.T) {
	home, _ := setupCLI(t)

	out, err := execute(t, "config", "show", "--home", home)
	require.NoError(t, err)
	assert.Equal(t, []string{"loader", "shared", "default"}, tableRow(t, out, "loader"))
	assert.Contains(t, out, "No config file loaded")
}

func TestConfig_InvalidValue(t *testing.T) {
	home, project := setupCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, paths.ProjectConfigFile),
		[]byte("watch_mode = \"inotify\"\n"), 0644))

	_, err := execute(t, "config", "show", "--home", home)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid watch_mode")
}

func TestConfig_YAMLFile(t *testing.T) {
	home, project := setupCLI(t)
	path := filepath.Join(project, "mirage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: Reload\nwatch_interval: 500ms\n"), 0644))

	out, err := execute(t, "config", "show", "--home", home, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"symbol", "Reload", "config", "file"}, tableRow(t, out, "symbol"))
	assert.Equal(t, []string{"watch_interval", "500ms", "config", "file"}, tableRow(t, out, "watch_interval"))
}

func TestInit_WritesProjectConfig(t *testing.T) {
	home, project := setupCLI(t)

	_, err := execute(t, "init", "--yes", "--home", home)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(project, paths.ProjectConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `loader = 'shared'`)
	assert.Contains(t, string(data), `symbol = 'DynFunc'`)
	assert.NotContains(t, string(data), "home")

	_, err = execute(t, "init", "--yes", "--home", home)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "init", "--yes", "--force", "--home", home)
	require.NoError(t, err)

	// The written file is read back as the project config.
	out, err := execute(t, "config", "show", "--home", home)
	require.NoError(t, err)
	assert.Equal(t, []string{"symbol", "DynFunc", "config", "file"}, tableRow(t, out, "symbol"))
}

func TestHistory_Empty(t *testing.T) {
	home, _ := setupCLI(t)

	out, err := execute(t, "history", "--home", home)
	require.NoError(t, err)
	assert.Contains(t, out, "No cycles recorded")
}

func TestHistory_ListsCycles(t *testing.T) {
	home, _ := setupCLI(t)

	store, err := history.NewBoltStore(paths.HistoryPath(home))
	require.NoError(t, err)
	start := time.Now().Add(-time.Minute)
	for i, outcome := range []history.Outcome{history.OutcomeOK, history.OutcomeEntryFailed, history.OutcomeOK} {
		require.NoError(t, store.Record(context.Background(), &history.Cycle{
			StartedAt:  start.Add(time.Duration(i) * time.Second),
			FinishedAt: start.Add(time.Duration(i)*time.Second + 100*time.Millisecond),
			Profile:    "debug",
			Attempts:   1,
			Outcome:    outcome,
			Message:    "bad config\nmore detail",
		}))
	}
	require.NoError(t, store.Close())

	out, err := execute(t, "history", "--home", home, "--limit", "2", "--json")
	require.NoError(t, err)
	var cycles []history.Cycle
	require.NoError(t, json.Unmarshal([]byte(out), &cycles))
	require.Len(t, cycles, 2)
	assert.Equal(t, history.OutcomeOK, cycles[0].Outcome)
	assert.Equal(t, history.OutcomeEntryFailed, cycles[1].Outcome)

	out, err = execute(t, "history", "--home", home)
	require.NoError(t, err)
	assert.Contains(t, out, "OUTCOME")
	assert.Contains(t, out, "entry_failed")
	assert.Contains(t, out, "bad config ...")
	assert.NotContains(t, out, "more detail")
}

func TestVersion_JSON(t *testing.T) {
	home, _ := setupCLI(t)

	out, err := execute(t, "version", "--json", "--home", home)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), out)
}

func TestVersion_Text(t *testing.T) {
	home, _ := setupCLI(t)

	out, err := execute(t, "version", "--home", home)
	require.NoError(t, err)
	assert.Contains(t, out, "GitVersion")
}

func TestRun_RejectsArgs(t *testing.T) {
	home, _ := setupCLI(t)

	_, err := execute(t, "run", "extra", "--home", home)
	assert.Error(t, err)
}

func TestDoctor_MissingTool(t *testing.T) {
	home, project := setupCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, paths.ProjectConfigFile),
		[]byte("build_tool = \"mirage-test-missing-tool\"\nloader = \"process\"\n"), 0644))

	out, err := execute(t, "doctor", "--home", home)
	require.Error(t, err)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "Install it or set build_tool")
}
