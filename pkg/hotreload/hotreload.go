// Package hotreload is imported by artifacts that mirage reloads.
//
// A shared artifact is a `package main` built with -buildmode=plugin that
// exports the entry point as a package-level function:
//
//	package main
//
//	func DynFunc() error {
//	    return nil
//	}
//
// A process artifact is an ordinary executable that serves the same
// functions over go-plugin:
//
//	func main() {
//	    hotreload.Serve(hotreload.Symbols{hotreload.DefaultSymbol: DynFunc})
//	}
//
// Both forms can live in one file; the plugin build mode ignores main.
package hotreload

// DefaultSymbol is the entry point name mirage resolves unless configured
// otherwise.
const DefaultSymbol = "DynFunc"

// Func is the entry point signature. A nil error is success; a non-nil
// error is reported by the supervisor with its message.
type Func = func() error

// Symbols maps exported entry point names to their implementation.
type Symbols map[string]Func
