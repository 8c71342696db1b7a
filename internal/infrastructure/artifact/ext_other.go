//go:build !darwin && !windows

package artifact

// Linux and the BSDs share the ELF naming convention.
const (
	SharedLibraryExt = ".so"
	ExecutableSuffix = ""
)
