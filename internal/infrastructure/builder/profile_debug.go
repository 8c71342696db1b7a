//go:build !release

package builder

// DefaultProfile is the profile compiled into this binary. Build with
// `-tags release` to default to Release.
const DefaultProfile = Debug
