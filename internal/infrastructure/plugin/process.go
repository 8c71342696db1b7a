package plugin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/altuslabsxyz/mirage/pkg/hotreload"
)

// ProcessLoader runs the artifact as a go-plugin child process. Unlike a
// shared module, closing a process module really unloads it: the child is
// killed.
type ProcessLoader struct {
	logger hclog.Logger
	stdout io.Writer
	stderr io.Writer
}

// ProcessOption is a functional option for configuring a ProcessLoader.
type ProcessOption func(*ProcessLoader)

// WithLogger sets the go-plugin client logger.
func WithLogger(logger hclog.Logger) ProcessOption {
	return func(l *ProcessLoader) {
		l.logger = logger
	}
}

// WithOutput sets where the artifact's own stdout and stderr are copied.
func WithOutput(stdout, stderr io.Writer) ProcessOption {
	return func(l *ProcessLoader) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// NewProcessLoader creates a ProcessLoader with optional configuration.
func NewProcessLoader(opts ...ProcessOption) *ProcessLoader {
	l := &ProcessLoader{
		logger: hclog.New(&hclog.LoggerOptions{Name: "mirage-loader", Level: hclog.Warn}),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open starts the artifact and connects to its entry service. Every failure
// path kills the child before returning.
func (l *ProcessLoader) Open(path string) (Module, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &PluginError{Op: "stat", Path: path, Err: ErrArtifactNotFound}
		}
		return nil, &PluginError{Op: "stat", Path: path, Err: err}
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: hotreload.Handshake,
		Plugins: map[string]goplugin.Plugin{
			hotreload.PluginName: &hotreload.EntryPlugin{},
		},
		Cmd:              exec.Command(path),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           l.logger,
		SyncStdout:       l.stdout,
		SyncStderr:       l.stderr,
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, &PluginError{Op: "connect", Path: path, Err: err}
	}

	raw, err := rpcClient.Dispense(hotreload.PluginName)
	if err != nil {
		client.Kill()
		return nil, &PluginError{Op: "dispense", Path: path, Err: err}
	}

	svc, ok := raw.(hotreload.EntryService)
	if !ok {
		client.Kill()
		return nil, &PluginError{
			Op:   "type-assertion",
			Path: path,
			Err:  fmt.Errorf("%T does not implement hotreload.EntryService", raw),
		}
	}

	return &processModule{
		path:   path,
		client: client,
		svc:    svc,
	}, nil
}

type processModule struct {
	path   string
	client *goplugin.Client
	svc    hotreload.EntryService

	closed    atomic.Bool
	closeOnce sync.Once
}

func (m *processModule) Path() string {
	return m.path
}

func (m *processModule) Lookup(symbol string) (hotreload.Func, error) {
	if m.closed.Load() {
		return nil, &SymbolError{Symbol: symbol, Err: ErrModuleClosed}
	}

	ok, err := m.svc.Has(symbol)
	if err != nil {
		return nil, &SymbolError{Symbol: symbol, Err: err}
	}
	if !ok {
		return nil, &SymbolError{Symbol: symbol, Err: ErrSymbolNotFound}
	}

	return func() error {
		if m.closed.Load() {
			return ErrModuleClosed
		}
		resp, err := m.svc.Call(symbol)
		if err != nil {
			return fmt.Errorf("call %s: %w", symbol, err)
		}
		if resp.Missing {
			return ErrSymbolNotFound
		}
		if resp.Failed {
			return errors.New(resp.Message)
		}
		return nil
	}, nil
}

func (m *processModule) Close() error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		m.client.Kill()
	})
	return nil
}
