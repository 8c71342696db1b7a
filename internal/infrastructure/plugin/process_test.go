package plugin

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/mirage/pkg/hotreload"
)

const serveArtifactEnv = "MIRAGE_TEST_SERVE_ARTIFACT"

// TestMain lets the test binary act as a process artifact when re-executed
// by the process loader tests.
func TestMain(m *testing.M) {
	if os.Getenv(serveArtifactEnv) == "1" {
		hotreload.Serve(hotreload.Symbols{
			hotreload.DefaultSymbol: func() error { return nil },
			"Broken":                func() error { return errors.New("bad config") },
		})
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func newTestProcessLoader() *ProcessLoader {
	return NewProcessLoader(
		WithLogger(hclog.NewNullLogger()),
		WithOutput(io.Discard, io.Discard),
	)
}

func TestProcessLoaderMissingArtifact(t *testing.T) {
	_, err := newTestProcessLoader().Open(filepath.Join(t.TempDir(), "mirage-plugin"))
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestProcessLoaderRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a child process")
	}
	t.Setenv(serveArtifactEnv, "1")

	self, err := os.Executable()
	require.NoError(t, err)

	m, err := newTestProcessLoader().Open(self)
	require.NoError(t, err)
	defer m.Close()

	fn, err := m.Lookup(hotreload.DefaultSymbol)
	require.NoError(t, err)
	assert.NoError(t, fn())

	broken, err := m.Lookup("Broken")
	require.NoError(t, err)
	assert.EqualError(t, broken(), "bad config")

	_, err = m.Lookup("Missing")
	assert.ErrorIs(t, err, ErrSymbolNotFound)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.ErrorIs(t, fn(), ErrModuleClosed)

	_, err = m.Lookup(hotreload.DefaultSymbol)
	assert.ErrorIs(t, err, ErrModuleClosed)
}

func TestProcessLoaderHandshakeFailure(t *testing.T) {
	if testing.Short() || runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell child process")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "mirage-plugin")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho not-a-plugin\n"), 0755))

	_, err := newTestProcessLoader().Open(script)
	var pErr *PluginError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "connect", pErr.Op)
}
