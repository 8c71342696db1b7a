package artifact

import "fmt"

// LocateError is returned when the artifact path cannot be derived from the
// running executable. It indicates a broken host environment.
type LocateError struct {
	Op  string
	Err error
}

func (e *LocateError) Error() string {
	return fmt.Sprintf("locate artifact: %s: %v", e.Op, e.Err)
}

func (e *LocateError) Unwrap() error {
	return e.Err
}
