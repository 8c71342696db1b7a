//go:build release

package builder

// DefaultProfile is the profile compiled into this binary.
const DefaultProfile = Release
