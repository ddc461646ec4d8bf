package autostart

// FakeRegistrar is a test double that tracks the enabled flag in
// memory.
type FakeRegistrar struct {
	// EnableError and DisableError, if set, are returned by the
	// corresponding calls.
	EnableError  error
	DisableError error

	// IsEnabled is the current registration state.
	IsEnabled bool

	// Enables and Disables count the calls made.
	Enables  int
	Disables int
}

func (f *FakeRegistrar) Enable() error {
	f.Enables++
	if f.EnableError != nil {
		return f.EnableError
	}
	f.IsEnabled = true
	return nil
}

func (f *FakeRegistrar) Disable() error {
	f.Disables++
	if f.DisableError != nil {
		return f.DisableError
	}
	f.IsEnabled = false
	return nil
}

func (f *FakeRegistrar) Enabled() (bool, error) {
	return f.IsEnabled, nil
}
