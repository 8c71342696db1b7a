package reload

import (
	"fmt"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/plugin"
)

// InvokeEntry resolves symbol in m and calls it.
//
// It returns nil on success, *EntryError when the entry point returns an
// error or panics, and the loader's *plugin.SymbolError when the symbol
// cannot be resolved. The function is never called after m is closed
// because the caller owns m for the duration of the call.
func InvokeEntry(m plugin.Module, symbol string) (err error) {
	fn, err := m.Lookup(symbol)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = &EntryError{Symbol: symbol, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if ferr := fn(); ferr != nil {
		return &EntryError{Symbol: symbol, Message: ferr.Error()}
	}
	return nil
}
