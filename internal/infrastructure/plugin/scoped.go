package plugin

// With opens path, runs fn with the module and closes it afterwards,
// whether fn returns normally, fails or panics. A close error is returned
// only when fn succeeded.
func With(loader Loader, path string, fn func(Module) error) (err error) {
	m, err := loader.Open(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = &PluginError{Op: "close", Path: path, Err: cerr}
		}
	}()

	return fn(m)
}
