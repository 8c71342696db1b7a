// Package reload drives the build, load, run and wait cycle.
package reload

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/builder"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/history"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/plugin"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/watcher"
	"github.com/altuslabsxyz/mirage/internal/output"
	"github.com/altuslabsxyz/mirage/pkg/hotreload"
)

// Builder runs one build.
type Builder interface {
	Build(ctx context.Context, req builder.Request) (*builder.BuildResult, error)
}

// Locator resolves the artifact path.
type Locator interface {
	Locate() (string, error)
}

// Recorder persists finished cycles.
type Recorder interface {
	Record(ctx context.Context, c *history.Cycle) error
}

// Config holds the per-run settings of a Driver. It is fixed once the Driver
// is constructed.
type Config struct {
	Profile   builder.Profile
	Package   string
	Symbol    string
	WatchPath string
}

// Driver sequences build, load, invoke and unload, and waits for source
// changes after a failed build.
type Driver struct {
	cfg      Config
	builder  Builder
	locator  Locator
	loader   plugin.Loader
	watcher  watcher.Watcher
	logger   output.LoggerInterface
	recorder Recorder

	observers []StateObserver
	baseline  func(path string) time.Time
	now       func() time.Time
}

// Option is a functional option for configuring a Driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(logger output.LoggerInterface) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithStateObserver registers fn for state transitions.
func WithStateObserver(fn StateObserver) Option {
	return func(d *Driver) {
		d.observers = append(d.observers, fn)
	}
}

// WithRecorder records every finished cycle.
func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		d.recorder = r
	}
}

// NewDriver creates a Driver.
func NewDriver(cfg Config, b Builder, loc Locator, loader plugin.Loader, w watcher.Watcher, opts ...Option) *Driver {
	d := &Driver{
		cfg:      cfg,
		builder:  b,
		locator:  loc,
		loader:   loader,
		watcher:  w,
		logger:   output.DefaultLogger,
		baseline: watcher.Baseline,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cfg.Symbol == "" {
		d.cfg.Symbol = hotreload.DefaultSymbol
	}
	return d
}

// Run repeats reload cycles. After each completed cycle it waits for the
// watched file to change before building again. It returns on the first
// fatal error or when ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	for {
		baseline, err := d.runOnce(ctx)
		if err != nil {
			return err
		}

		d.setState(StateWaiting)
		d.logger.Info("Waiting for changes to %s", d.cfg.WatchPath)
		if err := d.wait(ctx, baseline); err != nil {
			return err
		}
	}
}

// RunOnce performs a single reload cycle: build until a build succeeds
// (waiting for a change after each failure), then load, invoke and unload
// the artifact.
//
// An entry point failure is logged and ends the cycle normally. Fatal
// failures are returned as *FatalError without being logged; cancellation
// returns ctx.Err().
func (d *Driver) RunOnce(ctx context.Context) error {
	_, err := d.runOnce(ctx)
	return err
}

// runOnce returns the modification time of the watched file taken when the
// successful build started. Edits saved during that build are newer and
// start the next cycle.
func (d *Driver) runOnce(ctx context.Context) (time.Time, error) {
	cycle := &history.Cycle{
		ID:        uuid.New(),
		StartedAt: d.now(),
		Profile:   d.cfg.Profile.String(),
	}

	outcome, baseline, err := d.cycle(ctx, cycle)

	cycle.FinishedAt = d.now()
	cycle.Outcome = outcome
	if err != nil {
		cycle.Message = err.Error()
	}
	d.record(ctx, cycle)

	return baseline, err
}

func (d *Driver) cycle(ctx context.Context, cycle *history.Cycle) (history.Outcome, time.Time, error) {
	for {
		d.setState(StateBuilding)
		cycle.Attempts++
		started := d.baseline(d.cfg.WatchPath)

		path, err := d.locator.Locate()
		if err != nil {
			return history.OutcomeFatal, started, &FatalError{Stage: StageLocate, Err: err}
		}
		cycle.Artifact = path

		d.logger.Info("Building %s (%s)", d.cfg.Package, d.cfg.Profile)
		res, err := d.builder.Build(ctx, builder.Request{
			Profile:  d.cfg.Profile,
			Artifact: path,
			Package:  d.cfg.Package,
			CycleID:  cycle.ID.String(),
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return history.OutcomeCanceled, started, ctxErr
			}
			return history.OutcomeFatal, started, &FatalError{Stage: StageBuild, Err: err}
		}

		if res.Success {
			d.logger.Debug("Build finished in %s", res.Duration.Round(time.Millisecond))
			d.setState(StateLoadedRunReported)
			outcome, err := d.loadAndRun(path, cycle)
			return outcome, started, err
		}

		d.reportBuildFailure(res)

		baseline := d.baseline(d.cfg.WatchPath)
		d.setState(StateWaiting)
		d.logger.Info("Waiting for changes to %s", d.cfg.WatchPath)
		if err := d.wait(ctx, baseline); err != nil {
			if ctx.Err() != nil {
				return history.OutcomeCanceled, started, err
			}
			return history.OutcomeFatal, started, err
		}
	}
}

func (d *Driver) wait(ctx context.Context, baseline time.Time) error {
	if err := d.watcher.Wait(ctx, d.cfg.WatchPath, baseline); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &FatalError{Stage: StageWatch, Err: err}
	}
	return nil
}

func (d *Driver) loadAndRun(path string, cycle *history.Cycle) (history.Outcome, error) {
	err := plugin.With(d.loader, path, func(m plugin.Module) error {
		return InvokeEntry(m, d.cfg.Symbol)
	})

	var entryErr *EntryError
	var symErr *plugin.SymbolError
	switch {
	case err == nil:
		d.logger.Success("%s completed", d.cfg.Symbol)
		return history.OutcomeOK, nil
	case errors.As(err, &entryErr):
		d.logger.Error("%s", entryErr.Error())
		cycle.Message = entryErr.Message
		return history.OutcomeEntryFailed, nil
	case errors.As(err, &symErr):
		return history.OutcomeFatal, &FatalError{Stage: StageSymbol, Err: err}
	default:
		return history.OutcomeFatal, &FatalError{Stage: StageLoad, Err: err}
	}
}

func (d *Driver) reportBuildFailure(res *builder.BuildResult) {
	d.logger.Error("Build failed: %s", res.Status)
	if out := strings.TrimRight(string(res.Stdout), "\n"); out != "" {
		d.logger.Error("stdout:\n%s", out)
	}
	if out := strings.TrimRight(string(res.Stderr), "\n"); out != "" {
		d.logger.Error("stderr:\n%s", out)
	}
}

func (d *Driver) record(ctx context.Context, cycle *history.Cycle) {
	if d.recorder == nil {
		return
	}
	// A cancelled cycle is still worth recording.
	if err := d.recorder.Record(context.WithoutCancel(ctx), cycle); err != nil {
		d.logger.Warn("Failed to record cycle %s: %v", cycle.ID, err)
	}
}

func (d *Driver) setState(s State) {
	for _, fn := range d.observers {
		fn(s)
	}
}
