package executor

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunCapturesStreamsSeparately(t *testing.T) {
	requireShell(t)

	res, err := NewOSCommandExecutor().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo out; echo 'syntax error on line 4' >&2; exit 3"},
	})
	require.NoError(t, err)

	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "syntax error on line 4\n", string(res.Stderr))
	assert.Equal(t, "exit status 3", res.Status)
}

func TestRunSuccessInDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	res, err := NewOSCommandExecutor().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "pwd; echo $MIRAGE_TEST_VALUE"},
		Dir:  dir,
		Env:  []string{"MIRAGE_TEST_VALUE=42"},
	})
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Contains(t, string(res.Stdout), "42")
	assert.Empty(t, res.Stderr)
}

func TestRunLaunchFailure(t *testing.T) {
	_, err := NewOSCommandExecutor().Run(context.Background(), Command{
		Name: "mirage-build-tool-that-does-not-exist",
	})

	var launchErr *LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.Equal(t, "mirage-build-tool-that-does-not-exist", launchErr.Name)
}

func TestRunCanceled(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOSCommandExecutor().Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
	assert.ErrorIs(t, err, context.Canceled)
}
