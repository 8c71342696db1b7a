package hotreload

import (
	"fmt"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// EntryService is what the host receives when it dispenses PluginName.
type EntryService interface {
	// Has reports whether the artifact exports name.
	Has(name string) (bool, error)
	// Call invokes name. A transport failure is returned as error; the
	// entry point's own outcome is in the response.
	Call(name string) (*CallResponse, error)
}

// CallResponse carries the outcome of an entry point call.
type CallResponse struct {
	Missing bool   // no such symbol
	Failed  bool   // the entry point returned an error or panicked
	Message string // error message when Failed
}

// EntryPlugin is the plugin.Plugin implementation for entry services over
// net/rpc.
type EntryPlugin struct {
	Symbols Symbols
}

var _ plugin.Plugin = (*EntryPlugin)(nil)

// Server returns the RPC server for the artifact side.
func (p *EntryPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &RPCServer{Symbols: p.Symbols}, nil
}

// Client returns the RPC client for the host side.
func (p *EntryPlugin) Client(_ *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// RPCServer runs inside the artifact process.
type RPCServer struct {
	Symbols Symbols
}

// Has reports whether name is exported.
func (s *RPCServer) Has(name string, resp *bool) error {
	_, ok := s.Symbols[name]
	*resp = ok
	return nil
}

// Call runs the named entry point. Panics are recovered and reported as a
// failed call so the artifact process keeps serving.
func (s *RPCServer) Call(name string, resp *CallResponse) error {
	fn, ok := s.Symbols[name]
	if !ok || fn == nil {
		resp.Missing = true
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			resp.Failed = true
			resp.Message = fmt.Sprintf("panic: %v", r)
		}
	}()

	if err := fn(); err != nil {
		resp.Failed = true
		resp.Message = err.Error()
	}
	return nil
}

// RPCClient is the host-side EntryService.
type RPCClient struct {
	client *rpc.Client
}

var _ EntryService = (*RPCClient)(nil)

// Has asks the artifact whether name is exported.
func (c *RPCClient) Has(name string) (bool, error) {
	var ok bool
	if err := c.client.Call("Plugin.Has", name, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Call invokes name in the artifact.
func (c *RPCClient) Call(name string) (*CallResponse, error) {
	var resp CallResponse
	if err := c.client.Call("Plugin.Call", name, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
