package plugin

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/artifact"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/builder"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/executor"
	"github.com/altuslabsxyz/mirage/internal/output"
	"github.com/altuslabsxyz/mirage/internal/prereq"
	"github.com/altuslabsxyz/mirage/pkg/hotreload"
)

// TestSharedLoaderOpensRebuiltPlugins builds examples/hello with the default
// shared arguments several times into the same artifact path and loads every
// build into this process, like consecutive reload cycles do.
func TestSharedLoaderOpensRebuiltPlugins(t *testing.T) {
	if testing.Short() {
		t.Skip("builds Go plugins")
	}
	if raceEnabled || testing.CoverMode() != "" {
		t.Skip("plugins must be compiled like the test binary")
	}

	root, err := filepath.Abs(filepath.Join("..", "..", ".."))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cmdExec := executor.NewOSCommandExecutor()
	if _, err := prereq.NewChecker("go", root, artifact.KindShared, cmdExec).Check(ctx); err != nil {
		t.Skipf("cannot build Go plugins here: %v", err)
	}
	t.Setenv("HELLO_FAIL", "")

	var buf bytes.Buffer
	logger := output.NewLoggerWithWriters(&buf, &buf)
	inv := builder.NewInvoker(builder.Options{
		Tool:        "go",
		Dir:         root,
		BaseArgs:    builder.DefaultArgs(artifact.KindShared),
		ReleaseArgs: builder.DefaultReleaseArgs(artifact.KindShared),
		StagingDir:  filepath.Join(t.TempDir(), "sources"),
	}, cmdExec, logger)
	loader := NewSharedLoader(filepath.Join(t.TempDir(), "staging"), logger)
	artifactPath := filepath.Join(t.TempDir(), artifact.FileName(artifact.KindShared, "hello"))

	// The first two cycles build identical sources.
	profiles := []builder.Profile{builder.Debug, builder.Debug, builder.Release}
	for n, profile := range profiles {
		res, err := inv.Build(ctx, builder.Request{
			Profile:  profile,
			Artifact: artifactPath,
			Package:  "./examples/hello",
			CycleID:  uuid.NewString(),
		})
		require.NoError(t, err)
		require.True(t, res.Success, "cycle %d (%s) build failed: %s", n, profile, res.Stderr)

		err = With(loader, artifactPath, func(m Module) error {
			fn, err := m.Lookup(hotreload.DefaultSymbol)
			if err != nil {
				return err
			}
			return fn()
		})
		require.NoError(t, err, "cycle %d (%s)", n, profile)
	}
}
