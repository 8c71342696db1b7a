package builder

import "fmt"

// BuilderError is returned when builder operations fail.
type BuilderError struct {
	Operation string
	Message   string
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("builder %s failed: %s", e.Operation, e.Message)
}
