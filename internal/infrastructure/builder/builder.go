// Package builder runs the external build tool that produces the artifact.
package builder

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/artifact"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/executor"
	"github.com/altuslabsxyz/mirage/internal/output"
)

// Placeholders substituted in build arguments for every build.
const (
	PlaceholderArtifact = "{artifact}"
	PlaceholderPackage  = "{package}"
	PlaceholderCycle    = "{cycle}"
	// PlaceholderSources must be a whole argument. It expands to the
	// package's Go files staged for the cycle, see stageSources.
	PlaceholderSources = "{sources}"
)

// DefaultArgs returns the default `go` arguments for the artifact kind.
//
// Shared artifacts are built from the staged source files rather than the
// package path. The go command derives the plugin path of a file list from
// the file contents, and the staged copy carries the cycle ID, so every
// cycle yields a plugin the runtime has not loaded yet.
func DefaultArgs(kind artifact.Kind) []string {
	if kind == artifact.KindProcess {
		return []string{"build", "-o", PlaceholderArtifact, PlaceholderPackage}
	}
	return []string{"build", "-buildmode=plugin", "-o", PlaceholderArtifact, PlaceholderSources}
}

// DefaultReleaseArgs returns the arguments inserted after the subcommand for
// Release builds. Shared artifacts only get linker flags: anything that
// changes how packages compile (-trimpath, -gcflags, -race) makes the
// runtime reject the plugin as built from a different version of a package
// the host also links.
func DefaultReleaseArgs(kind artifact.Kind) []string {
	if kind == artifact.KindProcess {
		return []string{"-trimpath", "-ldflags=-s -w"}
	}
	return []string{"-ldflags=-w"}
}

// Request describes one build attempt.
type Request struct {
	Profile  Profile
	Artifact string // expected artifact path, substituted for {artifact}
	Package  string // package to build, substituted for {package}
	CycleID  string // unique per cycle, substituted for {cycle}

	// Sources replaces {sources}. Build fills it in when the arguments
	// use the placeholder.
	Sources []string
}

// BuildResult contains the outcome of a build that ran to completion.
type BuildResult struct {
	Success  bool
	ExitCode int
	Status   string
	Stdout   []byte
	Stderr   []byte
	Args     []string
	Duration time.Duration
}

// Options configures an Invoker.
type Options struct {
	Tool        string   // build tool binary, e.g. "go" or "cargo"
	Dir         string   // working directory for the build
	BaseArgs    []string // Debug argument list
	ReleaseArgs []string // extra arguments for Release
	StagingDir  string   // parent of the per-cycle {sources} copies
}

// Invoker runs the build tool with the profile's argument set.
type Invoker struct {
	opts     Options
	executor executor.CommandExecutor
	logger   output.LoggerInterface
}

// NewInvoker creates a new Invoker.
func NewInvoker(opts Options, exec executor.CommandExecutor, logger output.LoggerInterface) *Invoker {
	if exec == nil {
		exec = executor.NewOSCommandExecutor()
	}
	if logger == nil {
		logger = output.DefaultLogger
	}
	return &Invoker{
		opts:     opts,
		executor: exec,
		logger:   logger,
	}
}

// Args returns the fully substituted argument list for req.
func (i *Invoker) Args(req Request) []string {
	replacer := strings.NewReplacer(
		PlaceholderArtifact, req.Artifact,
		PlaceholderPackage, req.Package,
		PlaceholderCycle, req.CycleID,
	)

	profileArgs := req.Profile.Args(i.opts.BaseArgs, i.opts.ReleaseArgs)
	args := make([]string, 0, len(profileArgs)+len(req.Sources))
	for _, arg := range profileArgs {
		if arg == PlaceholderSources {
			args = append(args, req.Sources...)
			continue
		}
		args = append(args, replacer.Replace(arg))
	}
	return args
}

func (i *Invoker) usesSources() bool {
	for _, arg := range i.opts.BaseArgs {
		if arg == PlaceholderSources {
			return true
		}
	}
	return false
}

// Build runs the build tool and waits for it to exit.
//
// When the arguments use {sources}, the package is staged under
// StagingDir for the duration of the build.
//
// A build that runs and fails returns a BuildResult with Success false and a
// nil error. An error is returned only when the tool cannot be launched
// (*executor.LaunchError) or ctx is cancelled.
func (i *Invoker) Build(ctx context.Context, req Request) (*BuildResult, error) {
	if i.opts.Tool == "" || len(i.opts.BaseArgs) == 0 {
		return nil, &BuilderError{Operation: "build", Message: "no build tool or arguments configured"}
	}

	if i.usesSources() {
		dir, sources, err := i.stage(req)
		if dir != "" {
			defer os.RemoveAll(dir)
		}
		if err != nil {
			// Usually a broken package clause; the user fixes it like any
			// other build error.
			return &BuildResult{
				Success:  false,
				ExitCode: -1,
				Status:   "failed to stage sources",
				Stderr:   []byte(err.Error() + "\n"),
			}, nil
		}
		req.Sources = sources
	}

	args := i.Args(req)
	i.logger.Debug("Running %s %s", i.opts.Tool, strings.Join(args, " "))

	start := time.Now()
	res, err := i.executor.Run(ctx, executor.Command{
		Name: i.opts.Tool,
		Args: args,
		Dir:  i.opts.Dir,
	})
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		Success:  res.Success(),
		ExitCode: res.ExitCode,
		Status:   res.Status,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Args:     args,
		Duration: time.Since(start),
	}, nil
}
