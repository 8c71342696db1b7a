package reload

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/builder"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/history"
	"github.com/altuslabsxyz/mirage/internal/infrastructure/plugin"
	"github.com/altuslabsxyz/mirage/pkg/hotreload"
)

type buildStep struct {
	res *builder.BuildResult
	err error
}

func passed() buildStep {
	return buildStep{res: &builder.BuildResult{Success: true, Status: "exit status 0"}}
}

func failed(stderr string) buildStep {
	return buildStep{res: &builder.BuildResult{
		Success:  false,
		ExitCode: 1,
		Status:   "exit status 1",
		Stderr:   []byte(stderr),
	}}
}

type fakeBuilder struct {
	steps    []buildStep
	requests []builder.Request
}

func (b *fakeBuilder) Build(ctx context.Context, req builder.Request) (*builder.BuildResult, error) {
	b.requests = append(b.requests, req)
	n := len(b.requests) - 1
	if n >= len(b.steps) {
		n = len(b.steps) - 1
	}
	return b.steps[n].res, b.steps[n].err
}

type fakeLocator struct {
	path string
	err  error
}

func (l *fakeLocator) Locate() (string, error) {
	return l.path, l.err
}

type fakeModule struct {
	symbols map[string]hotreload.Func
	closed  bool
	closes  int
}

func (m *fakeModule) Path() string { return "/bin/libmirage.so" }

func (m *fakeModule) Lookup(symbol string) (hotreload.Func, error) {
	if m.closed {
		return nil, &plugin.SymbolError{Symbol: symbol, Err: plugin.ErrModuleClosed}
	}
	fn, ok := m.symbols[symbol]
	if !ok {
		return nil, &plugin.SymbolError{Symbol: symbol, Err: plugin.ErrSymbolNotFound}
	}
	return fn, nil
}

func (m *fakeModule) Close() error {
	m.closed = true
	m.closes++
	return nil
}

type fakeLoader struct {
	module  *fakeModule
	openErr error
	opened  []string
}

func (l *fakeLoader) Open(path string) (plugin.Module, error) {
	l.opened = append(l.opened, path)
	if l.openErr != nil {
		return nil, l.openErr
	}
	l.module.closed = false
	return l.module, nil
}

type waitCall struct {
	path     string
	baseline time.Time
}

// fakeWatcher returns immediately, or blocks until ctx is done once its
// budget of returns is spent.
type fakeWatcher struct {
	mu      sync.Mutex
	returns int
	err     error
	calls   []waitCall
}

func (w *fakeWatcher) Wait(ctx context.Context, path string, baseline time.Time) error {
	w.mu.Lock()
	w.calls = append(w.calls, waitCall{path: path, baseline: baseline})
	if w.err != nil {
		w.mu.Unlock()
		return w.err
	}
	if w.returns > 0 {
		w.returns--
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	<-ctx.Done()
	return ctx.Err()
}

func (w *fakeWatcher) waitCalls() []waitCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]waitCall(nil), w.calls...)
}

type fakeRecorder struct {
	mu     sync.Mutex
	cycles []history.Cycle
	err    error
}

func (r *fakeRecorder) Record(ctx context.Context, c *history.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.cycles = append(r.cycles, *c)
	return nil
}

var errBadConfig = errors.New("bad config")
