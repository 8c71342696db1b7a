package output

import (
	"errors"
	"io"
	"sync"
)

// ErrAlreadyInitialized is returned by Init after the first successful call.
var ErrAlreadyInitialized = errors.New("logger already initialized")

// Options configures the process-wide DefaultLogger.
type Options struct {
	Out     io.Writer // nil keeps stdout
	ErrOut  io.Writer // nil keeps stderr
	NoColor bool
	Verbose bool
}

var initOnce sync.Once

// Init configures DefaultLogger. It may be called once per process; later
// calls leave the logger untouched and return ErrAlreadyInitialized.
func Init(opts Options) error {
	err := ErrAlreadyInitialized
	initOnce.Do(func() {
		if opts.Out != nil {
			DefaultLogger.out = opts.Out
		}
		if opts.ErrOut != nil {
			DefaultLogger.errOut = opts.ErrOut
		}
		DefaultLogger.SetNoColor(opts.NoColor)
		DefaultLogger.SetVerbose(opts.Verbose)
		err = nil
	})
	return err
}
