// Package artifact computes where the build is expected to leave the
// dynamically loaded artifact.
package artifact

import (
	"os"
	"path/filepath"
)

// ExtensionFor returns the dynamic library extension used on goos.
func ExtensionFor(goos string) string {
	switch goos {
	case "darwin", "ios":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// ExecutableSuffixFor returns the executable file suffix used on goos.
func ExecutableSuffixFor(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

// FileName returns the artifact file name for the platform mirage was
// compiled for: lib<name><ext> for shared artifacts, <name>-plugin<suffix>
// for process artifacts.
func FileName(kind Kind, name string) string {
	if kind == KindProcess {
		return name + "-plugin" + ExecutableSuffix
	}
	return "lib" + name + SharedLibraryExt
}

// FileNameFor is FileName for an arbitrary target operating system.
func FileNameFor(goos string, kind Kind, name string) string {
	if kind == KindProcess {
		return name + "-plugin" + ExecutableSuffixFor(goos)
	}
	return "lib" + name + ExtensionFor(goos)
}

// Locator resolves the artifact path next to the running executable.
type Locator struct {
	name       string
	kind       Kind
	executable func() (string, error)
}

// NewLocator creates a Locator for the named artifact.
func NewLocator(name string, kind Kind) *Locator {
	return &Locator{
		name:       name,
		kind:       kind,
		executable: os.Executable,
	}
}

// Locate returns <dir of running executable>/<FileName>. It is resolved
// fresh on every call.
func (l *Locator) Locate() (string, error) {
	exe, err := l.executable()
	if err != nil {
		return "", &LocateError{Op: "resolve executable", Err: err}
	}

	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", &LocateError{Op: "resolve symlinks", Err: err}
	}

	return filepath.Join(filepath.Dir(resolved), FileName(l.kind, l.name)), nil
}
