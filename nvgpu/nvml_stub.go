//go:build nonvml

package nvgpu

import "fmt"

// NVMLProvider stub, used when building without the NVIDIA libraries.
type NVMLProvider struct{}

var _ Provider = (*NVMLProvider)(nil)

func NewNVMLProvider() *NVMLProvider {
	return &NVMLProvider{}
}

func (p *NVMLProvider) Init() error {
	return fmt.Errorf("NVML not available (built with nonvml tag)")
}

func (p *NVMLProvider) Shutdown() error {
	return nil
}

func (p *NVMLProvider) Devices() ([]Device, error) {
	return nil, fmt.Errorf("NVML not available")
}
