//go:build !nonvml

package nvgpu

import (
	"fmt"
	"os"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/adamnv/gpuvis/trace/nvtrc"
)

// NVMLProvider enumerates GPUs through the NVIDIA management library.
type NVMLProvider struct{}

var _ Provider = (*NVMLProvider)(nil)

func NewNVMLProvider() *NVMLProvider {
	return &NVMLProvider{}
}

func (p *NVMLProvider) Init() error {
	ret := nvml.Init()
	if ret != nvml.SUCCESS {
		return fmt.Errorf("NVML init failed: %v", nvml.ErrorString(ret))
	}
	return nil
}

func (p *NVMLProvider) Shutdown() error {
	ret := nvml.Shutdown()
	if ret != nvml.SUCCESS {
		return fmt.Errorf("NVML shutdown failed: %v", nvml.ErrorString(ret))
	}
	return nil
}

func (p *NVMLProvider) Devices() ([]Device, error) {
	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("failed to get device count: %v", nvml.ErrorString(ret))
	}

	devs := make([]Device, 0, count)
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			// Skip devices we can't get a handle for
			continue
		}

		name, _ := device.GetName()
		dev := Device{
			Name:       name,
			TraceError: traceError(device),
		}
		if uuid, ret := device.GetUUID(); ret == nvml.SUCCESS {
			if parsed, err := ParseUUID(uuid); err == nil {
				dev.UUID = parsed
			}
		}
		devs = append(devs, dev)
	}
	return devs, nil
}

// traceError mirrors the capability probe of the capture driver: hardware
// context-switch trace needs a Volta-or-newer GPU and a privileged process.
func traceError(device nvml.Device) nvtrc.TraceError {
	arch, ret := device.GetArchitecture()
	if ret != nvml.SUCCESS || arch == nvml.DEVICE_ARCH_UNKNOWN {
		return nvtrc.TraceErrorUnknown
	}
	if arch < nvml.DEVICE_ARCH_VOLTA {
		return nvtrc.TraceErrorUnsupportedGPU
	}
	if os.Geteuid() != 0 {
		return nvtrc.TraceErrorNeedRoot
	}
	return nvtrc.TraceErrorNone
}
