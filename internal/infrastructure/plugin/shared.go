package plugin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	goplugin "plugin"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/altuslabsxyz/mirage/internal/output"
	"github.com/altuslabsxyz/mirage/pkg/hotreload"
)

// symbolTable is the part of *plugin.Plugin a shared module needs.
type symbolTable interface {
	Lookup(name string) (goplugin.Symbol, error)
}

func openGoPlugin(path string) (symbolTable, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SharedLoader opens Go plugins in-process.
//
// plugin.Open caches by file path, so every Open copies the artifact to a
// fresh staging directory first; otherwise a rebuilt artifact at the same
// path would resolve to the previously loaded code. The Go runtime cannot
// unmap a plugin: Close removes the staged copy and invalidates the handle,
// but the code stays mapped until the supervisor exits.
type SharedLoader struct {
	stagingDir string
	logger     output.LoggerInterface
	open       func(path string) (symbolTable, error)
}

// NewSharedLoader creates a SharedLoader staging copies under stagingDir.
func NewSharedLoader(stagingDir string, logger output.LoggerInterface) *SharedLoader {
	if logger == nil {
		logger = output.DefaultLogger
	}
	return &SharedLoader{
		stagingDir: stagingDir,
		logger:     logger,
		open:       openGoPlugin,
	}
}

// Open stages and opens the artifact at path.
func (l *SharedLoader) Open(path string) (Module, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &PluginError{Op: "stat", Path: path, Err: ErrArtifactNotFound}
		}
		return nil, &PluginError{Op: "stat", Path: path, Err: err}
	}

	dir := filepath.Join(l.stagingDir, uuid.NewString())
	staged := filepath.Join(dir, filepath.Base(path))
	if err := stageCopy(path, staged); err != nil {
		os.RemoveAll(dir)
		return nil, &PluginError{Op: "stage", Path: path, Err: err}
	}
	l.logger.Debug("Staged %s as %s", path, staged)

	table, err := l.open(staged)
	if err != nil {
		os.RemoveAll(dir)
		return nil, &PluginError{Op: "open", Path: path, Err: err}
	}

	return &sharedModule{
		path:      path,
		stagedDir: dir,
		table:     table,
	}, nil
}

func stageCopy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type sharedModule struct {
	path      string
	stagedDir string
	table     symbolTable

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (m *sharedModule) Path() string {
	return m.path
}

func (m *sharedModule) Lookup(symbol string) (hotreload.Func, error) {
	if m.closed.Load() {
		return nil, &SymbolError{Symbol: symbol, Err: ErrModuleClosed}
	}

	sym, err := m.table.Lookup(symbol)
	if err != nil {
		return nil, &SymbolError{Symbol: symbol, Err: fmt.Errorf("%w: %v", ErrSymbolNotFound, err)}
	}

	switch fn := sym.(type) {
	case func() error:
		return fn, nil
	case *func() error:
		// exported variable of the entry type
		if fn != nil && *fn != nil {
			return *fn, nil
		}
	}
	return nil, &SymbolError{
		Symbol: symbol,
		Err:    fmt.Errorf("%w: got %T, want func() error", ErrSymbolMismatch, sym),
	}
}

func (m *sharedModule) Close() error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		m.table = nil
		m.closeErr = os.RemoveAll(m.stagedDir)
	})
	return m.closeErr
}
