//go:build darwin

package artifact

const (
	SharedLibraryExt = ".dylib"
	ExecutableSuffix = ""
)
