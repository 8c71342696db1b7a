package reload

import "fmt"

// Fatal stages.
const (
	StageLocate = "locate"
	StageBuild  = "build"
	StageLoad   = "load"
	StageSymbol = "symbol"
	StageWatch  = "watch"
)

// FatalError is a failure that retrying cannot fix: the executable path
// cannot be resolved, the build tool cannot be launched, or a successfully
// built artifact cannot be loaded or does not export the entry point.
type FatalError struct {
	Stage string
	Err   error
}

var stageFailures = map[string]string{
	StageLocate: "failed to locate artifact",
	StageBuild:  "failed to run build tool",
	StageLoad:   "failed to load artifact",
	StageSymbol: "failed to resolve entry point",
	StageWatch:  "failed to watch for changes",
}

func (e *FatalError) Error() string {
	if msg, ok := stageFailures[e.Stage]; ok {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// EntryError is returned when the entry point reports a failure or panics.
type EntryError struct {
	Symbol  string
	Message string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Symbol, e.Message)
}
