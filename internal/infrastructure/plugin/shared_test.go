package plugin

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	goplugin "plugin"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/mirage/internal/output"
)

type fakeTable map[string]goplugin.Symbol

func (f fakeTable) Lookup(name string) (goplugin.Symbol, error) {
	sym, ok := f[name]
	if !ok {
		return nil, errors.New("plugin: symbol " + name + " not found")
	}
	return sym, nil
}

func newTestSharedLoader(t *testing.T, table fakeTable) (*SharedLoader, string, *[]string) {
	t.Helper()
	var buf bytes.Buffer
	staging := t.TempDir()
	l := NewSharedLoader(staging, output.NewLoggerWithWriters(&buf, &buf))

	var opened []string
	l.open = func(path string) (symbolTable, error) {
		opened = append(opened, path)
		return table, nil
	}
	return l, staging, &opened
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libmirage.so")
	require.NoError(t, os.WriteFile(path, []byte("ELF"), 0755))
	return path
}

func TestSharedLoaderMissingArtifact(t *testing.T) {
	l, _, opened := newTestSharedLoader(t, fakeTable{})

	_, err := l.Open(filepath.Join(t.TempDir(), "libmirage.so"))
	assert.ErrorIs(t, err, ErrArtifactNotFound)
	var pErr *PluginError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "stat", pErr.Op)
	assert.Empty(t, *opened)
}

func TestSharedLoaderStagesUniqueCopies(t *testing.T) {
	l, staging, opened := newTestSharedLoader(t, fakeTable{})
	path := writeArtifact(t)

	first, err := l.Open(path)
	require.NoError(t, err)
	second, err := l.Open(path)
	require.NoError(t, err)

	require.Len(t, *opened, 2)
	assert.NotEqual(t, (*opened)[0], (*opened)[1])
	for _, p := range *opened {
		assert.Equal(t, "libmirage.so", filepath.Base(p))
		rel, err := filepath.Rel(staging, p)
		require.NoError(t, err)
		assert.NotContains(t, rel, "..")
		assert.FileExists(t, p)
	}
	assert.Equal(t, path, first.Path())

	require.NoError(t, first.Close())
	assert.NoFileExists(t, (*opened)[0])
	assert.FileExists(t, (*opened)[1])
	require.NoError(t, second.Close())
}

func TestSharedModuleLookup(t *testing.T) {
	entry := func() error { return errors.New("bad config") }
	variable := func() error { return nil }
	l, _, _ := newTestSharedLoader(t, fakeTable{
		"DynFunc":  entry,
		"DynVar":   &variable,
		"Wrong":    func(int) error { return nil },
		"Constant": 42,
	})

	m, err := l.Open(writeArtifact(t))
	require.NoError(t, err)
	defer m.Close()

	fn, err := m.Lookup("DynFunc")
	require.NoError(t, err)
	assert.EqualError(t, fn(), "bad config")

	fn, err = m.Lookup("DynVar")
	require.NoError(t, err)
	assert.NoError(t, fn())

	for _, name := range []string{"Wrong", "Constant"} {
		_, err = m.Lookup(name)
		assert.ErrorIs(t, err, ErrSymbolMismatch, name)
	}

	_, err = m.Lookup("Missing")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
	var symErr *SymbolError
	require.ErrorAs(t, err, &symErr)
	assert.Equal(t, "Missing", symErr.Symbol)
}

func TestSharedModuleCloseIsIdempotent(t *testing.T) {
	l, _, _ := newTestSharedLoader(t, fakeTable{"DynFunc": func() error { return nil }})

	m, err := l.Open(writeArtifact(t))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = m.Lookup("DynFunc")
	assert.ErrorIs(t, err, ErrModuleClosed)
}

func TestSharedLoaderOpenFailureCleansStaging(t *testing.T) {
	var buf bytes.Buffer
	staging := t.TempDir()
	l := NewSharedLoader(staging, output.NewLoggerWithWriters(&buf, &buf))
	l.open = func(string) (symbolTable, error) {
		return nil, errors.New("plugin was built with a different version of package")
	}

	_, err := l.Open(writeArtifact(t))
	var pErr *PluginError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "open", pErr.Op)

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSharedLoaderRejectsMalformedArtifact(t *testing.T) {
	var buf bytes.Buffer
	l := NewSharedLoader(t.TempDir(), output.NewLoggerWithWriters(&buf, &buf))

	_, err := l.Open(writeArtifact(t))
	var pErr *PluginError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "open", pErr.Op)
}
