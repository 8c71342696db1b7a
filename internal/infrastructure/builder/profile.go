package builder

import (
	"fmt"
	"strings"
)

// Profile selects the argument set passed to the build tool.
type Profile int

const (
	Debug Profile = iota
	Release
)

func (p Profile) String() string {
	switch p {
	case Release:
		return "release"
	default:
		return "debug"
	}
}

// ParseProfile parses "debug" or "release" (case-insensitive).
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(s) {
	case "debug":
		return Debug, nil
	case "release":
		return Release, nil
	default:
		return Debug, fmt.Errorf("unknown build profile %q (must be 'debug' or 'release')", s)
	}
}

// Args returns the argument list for the profile. Debug uses base as is.
// Release inserts the release arguments directly after the subcommand
// (base[0]) so that tools which require flags before positional arguments,
// like `go build`, still accept them. With base ["build"] and release
// ["--release"] the result is ["build", "--release"].
func (p Profile) Args(base, release []string) []string {
	if p != Release || len(base) == 0 {
		return append([]string(nil), base...)
	}
	args := make([]string, 0, len(base)+len(release))
	args = append(args, base[0])
	args = append(args, release...)
	args = append(args, base[1:]...)
	return args
}
