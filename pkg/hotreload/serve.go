package hotreload

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

// PluginName is the name the entry service is dispensed under.
const PluginName = "entry"

// Handshake is the handshake configuration shared by mirage and process
// artifacts. A mismatch makes the artifact exit instead of serving.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "MIRAGE_PLUGIN",
	MagicCookieValue: "entry_v1",
}

// Serve starts the artifact's plugin server with the given symbols.
// This function blocks and should be called from main().
func Serve(symbols Symbols) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &EntryPlugin{Symbols: symbols},
		},
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "mirage-artifact",
			Level:  hclog.Warn,
			Output: os.Stderr,
		}),
	})
}
