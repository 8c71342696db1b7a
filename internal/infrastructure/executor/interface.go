package executor

import (
	"context"
	"fmt"
)

// CommandExecutor abstracts command execution for testing.
// This interface allows the build invoker to run the external build tool
// while remaining testable through fakes.
type CommandExecutor interface {
	// Run starts the command, waits for it to exit and returns its exit
	// status with stdout and stderr captured separately and in full.
	//
	// A command that runs and exits non-zero is not an error: the Result
	// carries the exit code. The error is reserved for commands that could
	// not be started (*LaunchError) and for context cancellation.
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Command describes a process to run.
type Command struct {
	Name string   // Command name or path (e.g. "go")
	Args []string // Arguments, not including Name
	Dir  string   // Working directory; empty means the current directory
	Env  []string // Extra KEY=VALUE entries appended to the inherited environment
}

func (c Command) String() string {
	return fmt.Sprintf("%s %v", c.Name, c.Args)
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Status   string // e.g. "exit status 1"
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// LaunchError is returned when a command cannot be started at all, as
// opposed to running and failing.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
