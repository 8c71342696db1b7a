// Package di wires infrastructure implementations from the effective
// configuration.
package di

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/altuslabsxyz/mirage/internal/application/reload"
	"github.com/altuslabsxyz/mirage/internal/config"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/artifact"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/builder"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/executor"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/history"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/plugin"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/watcher"
	"github.com/altuslabsxyz/mirage/internal/output"
	"github.com/altuslabsxyz/mirage/internal/paths"
	"github.com/altuslabsxyz/mirage/internal/prereq"
)

// InfrastructureFactory creates infrastructure implementations.
type InfrastructureFactory struct {
	cfg      *config.EffectiveConfig
	logger   *output.Logger
	executor executor.CommandExecutor
}

// NewInfrastructureFactory creates a new infrastructure factory.
func NewInfrastructureFactory(cfg *config.EffectiveConfig, logger *output.Logger) *InfrastructureFactory {
	if logger == nil {
		logger = output.DefaultLogger
	}
	return &InfrastructureFactory{
		cfg:      cfg,
		logger:   logger,
		executor: executor.NewOSCommandExecutor(),
	}
}

// WithExecutor replaces the command executor used by the build invoker.
func (f *InfrastructureFactory) WithExecutor(exec executor.CommandExecutor) *InfrastructureFactory {
	f.executor = exec
	return f
}

func (f *InfrastructureFactory) kind() (artifact.Kind, error) {
	return artifact.ParseKind(f.cfg.Loader.Value)
}

// CreateLocator creates the artifact locator.
func (f *InfrastructureFactory) CreateLocator() (*artifact.Locator, error) {
	kind, err := f.kind()
	if err != nil {
		return nil, err
	}
	return artifact.NewLocator(f.cfg.ArtifactName.Value, kind), nil
}

// CreateBuilder creates the build invoker.
func (f *InfrastructureFactory) CreateBuilder() *builder.Invoker {
	return builder.NewInvoker(builder.Options{
		Tool:        f.cfg.BuildTool.Value,
		Dir:         f.cfg.ProjectDir.Value,
		BaseArgs:    f.cfg.BuildArgs.Value,
		ReleaseArgs: f.cfg.ReleaseArgs.Value,
		StagingDir:  paths.SourcesPath(f.cfg.Home.Value),
	}, f.executor, f.logger)
}

// CreateLoader creates the module loader for the configured kind. Staged
// copies left by a previous run are removed first.
func (f *InfrastructureFactory) CreateLoader() (plugin.Loader, error) {
	kind, err := f.kind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case artifact.KindProcess:
		level := hclog.Warn
		if f.logger.IsVerbose() {
			level = hclog.Debug
		}
		return plugin.NewProcessLoader(
			plugin.WithLogger(hclog.New(&hclog.LoggerOptions{
				Name:   "mirage-loader",
				Level:  level,
				Output: f.logger.ErrWriter(),
			})),
			plugin.WithOutput(f.logger.Writer(), f.logger.ErrWriter()),
		), nil
	default:
		staging := paths.StagingPath(f.cfg.Home.Value)
		if err := os.RemoveAll(staging); err != nil {
			f.logger.Warn("Failed to clean staging directory %s: %v", staging, err)
		}
		return plugin.NewSharedLoader(staging, f.logger), nil
	}
}

// CreatePrereqChecker creates the checker for the configured build tool and
// loader.
func (f *InfrastructureFactory) CreatePrereqChecker() (*prereq.Checker, error) {
	kind, err := f.kind()
	if err != nil {
		return nil, err
	}
	profile, err := builder.ParseProfile(f.cfg.Profile.Value)
	if err != nil {
		return nil, err
	}
	args := profile.Args(f.cfg.BuildArgs.Value, f.cfg.ReleaseArgs.Value)
	return prereq.NewChecker(f.cfg.BuildTool.Value, f.cfg.ProjectDir.Value, kind, f.executor).WithBuildArgs(args), nil
}

// CreateWatcher creates the change watcher for watch_mode.
func (f *InfrastructureFactory) CreateWatcher() watcher.Watcher {
	switch f.cfg.WatchMode.Value {
	case "notify":
		return watcher.NewNotifyWatcher(f.cfg.WatchInterval.Value, f.logger)
	default:
		return watcher.NewPollWatcher(f.cfg.WatchInterval.Value)
	}
}

// CreateHistoryStore opens the history database under home.
func (f *InfrastructureFactory) CreateHistoryStore() (*history.BoltStore, error) {
	if err := paths.EnsureDir(f.cfg.Home.Value); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return history.NewBoltStore(paths.HistoryPath(f.cfg.Home.Value))
}

// CreateDriver wires a reload driver. The returned cleanup closes the
// history store and removes staged artifacts; call it once the driver is
// done.
func (f *InfrastructureFactory) CreateDriver(opts ...reload.Option) (*reload.Driver, func(), error) {
	profile, err := builder.ParseProfile(f.cfg.Profile.Value)
	if err != nil {
		return nil, nil, err
	}
	locator, err := f.CreateLocator()
	if err != nil {
		return nil, nil, err
	}
	loader, err := f.CreateLoader()
	if err != nil {
		return nil, nil, err
	}

	cleanups := []func(){
		func() { os.RemoveAll(paths.StagingPath(f.cfg.Home.Value)) },
	}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	driverOpts := []reload.Option{
		reload.WithLogger(f.logger),
		reload.WithStateObserver(func(s reload.State) {
			f.logger.Debug("State: %s", s)
		}),
	}
	if f.cfg.History.Value {
		store, err := f.CreateHistoryStore()
		if err != nil {
			f.logger.Warn("History disabled: %v", err)
		} else {
			driverOpts = append(driverOpts, reload.WithRecorder(store))
			cleanups = append(cleanups, func() { store.Close() })
		}
	}
	driverOpts = append(driverOpts, opts...)

	driver := reload.NewDriver(reload.Config{
		Profile:   profile,
		Package:   f.cfg.Package.Value,
		Symbol:    f.cfg.Symbol.Value,
		WatchPath: f.cfg.WatchFile(),
	}, f.CreateBuilder(), locator, loader, f.CreateWatcher(), driverOpts...)

	return driver, cleanup, nil
}
