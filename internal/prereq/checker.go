// Package prereq checks that the build tool can produce artifacts the
// configured loader can open.
package prereq

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/artifact"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/executor"
)

// PrereqResult contains the result of a prerequisite check.
type PrereqResult struct {
	Name       string `json:"name"`
	Required   bool   `json:"required"`
	Found      bool   `json:"found"`
	Version    string `json:"version,omitempty"`
	Path       string `json:"path,omitempty"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// pluginPlatforms are the GOOS values the plugin package supports.
var pluginPlatforms = map[string]bool{
	"linux":   true,
	"darwin":  true,
	"freebsd": true,
}

// Checker performs prerequisite checks.
type Checker struct {
	tool     string
	dir      string
	kind     artifact.Kind
	executor executor.CommandExecutor

	buildArgs []string

	goos         string
	hostVersion  string
	hostTrimpath bool
	lookPath     func(file string) (string, error)

	results []PrereqResult
}

// NewChecker creates a new prerequisite Checker for the build tool run in dir.
func NewChecker(tool, dir string, kind artifact.Kind, cmdExec executor.CommandExecutor) *Checker {
	if cmdExec == nil {
		cmdExec = executor.NewOSCommandExecutor()
	}
	return &Checker{
		tool:        tool,
		dir:         dir,
		kind:        kind,
		executor:    cmdExec,
		goos:         runtime.GOOS,
		hostVersion:  runtime.Version(),
		hostTrimpath: builtWithTrimpath(),
		lookPath:     exec.LookPath,
	}
}

// WithBuildArgs sets the build arguments of the active profile. For shared
// artifacts they are checked for flags the host was not built with.
func (c *Checker) WithBuildArgs(args []string) *Checker {
	c.buildArgs = args
	return c
}

// Check performs all prerequisite checks and returns the results. The error
// names the first required check that failed.
func (c *Checker) Check(ctx context.Context) ([]PrereqResult, error) {
	c.results = make([]PrereqResult, 0)

	found := c.checkTool()
	if c.kind == artifact.KindShared {
		c.checkPluginPlatform()
		if found && c.isGoTool() {
			c.checkGoVersion(ctx)
			c.checkCgo(ctx)
			if c.buildArgs != nil {
				c.checkTrimpath()
			}
		}
	}

	for _, result := range c.results {
		if result.Required && !result.Found {
			return c.results, fmt.Errorf("prerequisite not met: %s - %s", result.Name, result.Message)
		}
	}
	return c.results, nil
}

// Results returns the check results.
func (c *Checker) Results() []PrereqResult {
	return c.results
}

// AllPassed returns true if all checks passed.
func (c *Checker) AllPassed() bool {
	for _, result := range c.results {
		if !result.Found {
			return false
		}
	}
	return true
}

func (c *Checker) isGoTool() bool {
	name := strings.TrimSuffix(filepath.Base(c.tool), ".exe")
	return name == "go"
}

func (c *Checker) checkTool() bool {
	result := PrereqResult{
		Name:     "build tool",
		Required: true,
	}

	path, err := c.lookPath(c.tool)
	if err != nil {
		result.Message = fmt.Sprintf("%s is not installed", c.tool)
		result.Suggestion = "Install it or set build_tool in mirage.toml"
		c.results = append(c.results, result)
		return false
	}

	result.Found = true
	result.Path = path
	result.Message = fmt.Sprintf("%s is available", c.tool)
	c.results = append(c.results, result)
	return true
}

func (c *Checker) checkPluginPlatform() {
	result := PrereqResult{
		Name:     "plugin support",
		Required: true,
		Version:  c.goos,
	}

	if !pluginPlatforms[c.goos] {
		result.Message = fmt.Sprintf("Go plugins are not supported on %s", c.goos)
		result.Suggestion = `Set loader = "process" in mirage.toml`
		c.results = append(c.results, result)
		return
	}

	result.Found = true
	result.Message = fmt.Sprintf("Go plugins are supported on %s", c.goos)
	c.results = append(c.results, result)
}

// checkGoVersion requires the project's toolchain to match the one mirage was
// built with; the runtime refuses plugins built by any other version.
func (c *Checker) checkGoVersion(ctx context.Context) {
	result := PrereqResult{
		Name:     "go toolchain",
		Required: true,
	}

	toolVersion, err := c.goEnv(ctx, "GOVERSION")
	if err != nil {
		result.Message = fmt.Sprintf("Failed to get Go version: %v", err)
		c.results = append(c.results, result)
		return
	}
	result.Version = strings.TrimPrefix(toolVersion, "go")

	if !sameGoVersion(toolVersion, c.hostVersion) {
		result.Message = fmt.Sprintf("project builds with %s but mirage was built with %s", toolVersion, c.hostVersion)
		result.Suggestion = fmt.Sprintf("Reinstall mirage with %s, or set toolchain in go.mod", toolVersion)
		c.results = append(c.results, result)
		return
	}

	result.Found = true
	result.Message = fmt.Sprintf("Go %s matches mirage", result.Version)
	c.results = append(c.results, result)
}

func (c *Checker) checkCgo(ctx context.Context) {
	result := PrereqResult{
		Name:     "cgo",
		Required: true,
	}

	enabled, err := c.goEnv(ctx, "CGO_ENABLED")
	if err != nil {
		result.Message = fmt.Sprintf("Failed to read CGO_ENABLED: %v", err)
		c.results = append(c.results, result)
		return
	}

	if enabled != "1" {
		result.Message = "-buildmode=plugin requires cgo"
		result.Suggestion = "Set CGO_ENABLED=1 and install a C compiler"
		c.results = append(c.results, result)
		return
	}

	result.Found = true
	result.Message = "cgo is enabled"
	c.results = append(c.results, result)
}

// checkTrimpath requires plugin builds to agree with the host on -trimpath,
// which changes the hash of every package, the runtime included.
func (c *Checker) checkTrimpath() {
	result := PrereqResult{
		Name:     "trimpath",
		Required: true,
	}

	trimmed := hasTrimpath(c.buildArgs)
	switch {
	case trimmed && !c.hostTrimpath:
		result.Message = "build arguments use -trimpath but mirage was built without it"
		result.Suggestion = "Remove -trimpath from build_args and release_args"
	case !trimmed && c.hostTrimpath:
		result.Message = "mirage was built with -trimpath but the build arguments do not use it"
		result.Suggestion = "Add -trimpath to build_args, or reinstall mirage without it"
	default:
		result.Found = true
		result.Message = "-trimpath matches mirage"
	}
	c.results = append(c.results, result)
}

func hasTrimpath(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-trimpath", "--trimpath", "-trimpath=true", "--trimpath=true":
			return true
		}
	}
	return false
}

func builtWithTrimpath() bool {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return false
	}
	for _, s := range info.Settings {
		if s.Key == "-trimpath" {
			return s.Value == "true"
		}
	}
	return false
}

func (c *Checker) goEnv(ctx context.Context, key string) (string, error) {
	res, err := c.executor.Run(ctx, executor.Command{
		Name: c.tool,
		Args: []string{"env", key},
		Dir:  c.dir,
	})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", fmt.Errorf("%s env %s: %s", c.tool, key, strings.TrimSpace(string(res.Stderr)))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// sameGoVersion compares two Go release strings such as "go1.25.5". Versions
// the semver parser rejects (devel builds) must match exactly.
func sameGoVersion(a, b string) bool {
	va, errA := version.NewVersion(strings.TrimPrefix(a, "go"))
	vb, errB := version.NewVersion(strings.TrimPrefix(b, "go"))
	if errA != nil || errB != nil {
		return a == b
	}
	return va.Equal(vb)
}
