//go:build windows

package artifact

const (
	SharedLibraryExt = ".dll"
	ExecutableSuffix = ".exe"
)
