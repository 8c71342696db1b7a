package artifact

import "fmt"

// Kind selects how a built artifact is loaded, which also decides its file name.
type Kind string

const (
	// KindShared is a Go plugin (shared object) opened in-process.
	KindShared Kind = "shared"
	// KindProcess is an executable serving its entry points over go-plugin.
	KindProcess Kind = "process"
)

// ParseKind parses a loader kind from configuration.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindShared, KindProcess:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown loader kind %q (must be 'shared' or 'process')", s)
	}
}

func (k Kind) String() string {
	return string(k)
}
