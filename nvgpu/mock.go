package nvgpu

// MockProvider serves canned devices for testing.
type MockProvider struct {
	Devs    []Device
	InitErr error
	DevsErr error
}

var _ Provider = (*MockProvider)(nil)

func (p *MockProvider) Init() error {
	return p.InitErr
}

func (p *MockProvider) Shutdown() error {
	return nil
}

func (p *MockProvider) Devices() ([]Device, error) {
	if p.DevsErr != nil {
		return nil, p.DevsErr
	}
	return p.Devs, nil
}
