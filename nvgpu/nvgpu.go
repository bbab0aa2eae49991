// Package nvgpu enumerates the NVIDIA GPUs of the local machine and
// prepares nvtrc captures describing them.
package nvgpu

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/adamnv/gpuvis/trace/nvtrc"
)

// Device is one enumerated GPU.
type Device struct {
	UUID       nvtrc.UUID
	Name       string
	TraceError nvtrc.TraceError
}

// Provider abstracts GPU enumeration so code can run without a driver.
type Provider interface {
	// Init initializes the provider.
	Init() error
	// Shutdown cleanly shuts down the provider.
	Shutdown() error
	// Devices enumerates the GPUs the provider can see.
	Devices() ([]Device, error)
}

// Snapshot enumerates p's devices and returns a capture holding one
// descriptor per device and no records. The CPU sync counters span the
// enumeration in microseconds; the GPU counters stay zero, a degenerate
// window that converters collapse to the window's end.
func Snapshot(p Provider) (*nvtrc.FileData, error) {
	start := time.Now().UnixMicro()
	devs, err := p.Devices()
	if err != nil {
		return nil, err
	}
	end := time.Now().UnixMicro()

	fd := &nvtrc.FileData{
		Devices: make([]nvtrc.DeviceDesc, len(devs)),
		Records: make([][]nvtrc.Record, len(devs)),
	}
	for i, dev := range devs {
		desc := nvtrc.DeviceDesc{
			UUID:              dev.UUID,
			TraceError:        dev.TraceError,
			CPUTimestampStart: start,
			CPUTimestampEnd:   end,
		}
		desc.SetName(dev.Name)
		fd.Devices[i] = desc
	}
	return fd, nil
}

// ParseUUID parses the textual device UUID NVML reports, accepting and
// discarding the GPU- and MIG- prefixes.
func ParseUUID(s string) (nvtrc.UUID, error) {
	var u nvtrc.UUID
	s = strings.TrimPrefix(s, "GPU-")
	s = strings.TrimPrefix(s, "MIG-")
	s = strings.ReplaceAll(s, "-", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("couldn't parse device UUID: %w", err)
	}
	if len(b) != len(u) {
		return u, fmt.Errorf("device UUID has %d bytes, want %d", len(b), len(u))
	}
	copy(u[:], b)
	return u, nil
}
