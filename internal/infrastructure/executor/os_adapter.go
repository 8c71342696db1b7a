package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// OSCommandExecutor implements CommandExecutor using os/exec package.
// This is the production adapter that executes real system commands.
type OSCommandExecutor struct{}

// NewOSCommandExecutor creates a new command executor using the real OS exec package.
func NewOSCommandExecutor() *OSCommandExecutor {
	return &OSCommandExecutor{}
}

// Run executes the command with exec.CommandContext, buffering both output
// streams. Cancelling ctx kills the process and returns ctx.Err().
func (e *OSCommandExecutor) Run(ctx context.Context, cmd Command) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &LaunchError{Name: cmd.Name, Err: err}
	}

	err := c.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}

	return &Result{
		ExitCode: c.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Status:   c.ProcessState.String(),
	}, nil
}
