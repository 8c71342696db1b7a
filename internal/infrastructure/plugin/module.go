// Package plugin loads built artifacts and resolves their entry points.
//
// Two loaders satisfy the same contract:
//
//	SharedLoader   Go plugin (-buildmode=plugin) opened in-process
//	ProcessLoader  executable served over hashicorp/go-plugin net/rpc
//
// A Module is owned by a single reload cycle. Use With to guarantee it is
// closed on every exit path.
package plugin

import (
	"errors"
	"fmt"

	"github.com/altuslabsxyz/mirage/pkg/hotreload"
)

var (
	// ErrArtifactNotFound is returned when the artifact path does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrSymbolNotFound is returned when the artifact does not export the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrSymbolMismatch is returned when the symbol is not a func() error.
	ErrSymbolMismatch = errors.New("symbol has unexpected type")

	// ErrModuleClosed is returned when using a module after Close.
	ErrModuleClosed = errors.New("module closed")
)

// Module is a loaded artifact.
type Module interface {
	// Path returns the artifact path the module was opened from.
	Path() string
	// Lookup resolves an entry point. The returned function must not be
	// called after Close.
	Lookup(symbol string) (hotreload.Func, error)
	// Close releases the module. It is safe to call more than once; the
	// underlying release happens exactly once.
	Close() error
}

// Loader opens artifacts.
type Loader interface {
	Open(path string) (Module, error)
}

// PluginError provides detailed error information for loader operations.
type PluginError struct {
	Op   string // Operation that failed (e.g., "stat", "open", "connect")
	Path string // Artifact path
	Err  error  // Underlying error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("artifact %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// SymbolError is returned when an entry point cannot be resolved.
type SymbolError struct {
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}
