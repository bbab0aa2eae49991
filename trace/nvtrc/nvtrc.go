// Package nvtrc reads and writes nvtrc01 GPU context-switch captures.
//
// A capture is a magic header followed by length-prefixed arrays: one array
// of device descriptors, then one array of context-switch records per
// device, in descriptor order. Each array states the producer's per-element
// byte width next to its element count; readers skip trailing bytes that a
// newer producer appended and reject captures whose elements are narrower
// than the structs in this package. All integers are little-endian.
package nvtrc

import "fmt"

// nvtrc01Magic identifies the nvtrc01 format family.
var nvtrc01Magic = [8]byte{'n', 'v', 't', 'r', 'c', '0', '1', 0}

// Wire widths of the current structs. The format only ever appends fields,
// it never reorders or removes them.
const (
	deviceDescSize = 288
	recordSize     = 24
	nameSize       = 239
)

// TraceError reports whether a device was able to capture context-switch
// events, and if not, why.
type TraceError uint8

const (
	TraceErrorNone              TraceError = 0
	TraceErrorUnsupportedGPU    TraceError = 1
	TraceErrorUnsupportedDriver TraceError = 2
	TraceErrorNeedRoot          TraceError = 3
	TraceErrorUnknown           TraceError = 255
)

func (e TraceError) String() string {
	switch e {
	case TraceErrorNone:
		return "None"
	case TraceErrorUnsupportedGPU:
		return "UnsupportedGPU"
	case TraceErrorUnsupportedDriver:
		return "UnsupportedDriver"
	case TraceErrorNeedRoot:
		return "NeedRoot"
	case TraceErrorUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("TraceError(%d)", uint8(e))
	}
}

// Category classifies records. Values this package doesn't know survive
// decoding untouched; they come from producers newer than this reader.
type Category uint16

const (
	CategoryInvalid          Category = 0
	CategoryGPUContextSwitch Category = 1
)

func (c Category) String() string {
	switch c {
	case CategoryInvalid:
		return "Invalid"
	case CategoryGPUContextSwitch:
		return "GPUContextSwitch"
	default:
		return fmt.Sprintf("Category(%d)", uint16(c))
	}
}

// RecordType says what happened in a record of the context-switch category.
type RecordType uint16

const (
	RecordTypeInvalid            RecordType = 0
	RecordTypeContextSwitchedIn  RecordType = 1
	RecordTypeContextSwitchedOut RecordType = 2
)

func (t RecordType) String() string {
	switch t {
	case RecordTypeInvalid:
		return "Invalid"
	case RecordTypeContextSwitchedIn:
		return "ContextSwitchedIn"
	case RecordTypeContextSwitchedOut:
		return "ContextSwitchedOut"
	default:
		return fmt.Sprintf("RecordType(%d)", uint16(t))
	}
}

// UUID identifies a physical GPU. It matches the device UUID that Vulkan
// reports in VkPhysicalDeviceIDProperties.
type UUID [16]byte

func (u UUID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// DeviceDesc describes one GPU that was present during a capture. The four
// counters form two sync points, one at either end of the capture window:
// matching CPU and GPU clock readings taken at the same instant. On x86 the
// CPU counter is RDTSC, the GPU counter is the device's globaltimer.
type DeviceDesc struct {
	UUID              UUID
	Name              string // truncated to 238 bytes on encode
	TraceError        TraceError
	CPUTimestampStart int64
	GPUTimestampStart int64
	CPUTimestampEnd   int64
	GPUTimestampEnd   int64
}

// SetName stores name, silently truncating it to the 238 bytes the on-disk
// field can hold.
func (d *DeviceDesc) SetName(name string) {
	if len(name) > nameSize-1 {
		name = name[:nameSize-1]
	}
	d.Name = name
}

// Record is one hardware context-switch event. Timestamp is a reading of
// the device's GPU clock; use the device's Converter to map it onto the CPU
// clock.
type Record struct {
	Category      Category
	Type          RecordType
	PID           uint32
	Timestamp     int64
	ContextHandle uint64
}

// FileData is a fully decoded capture.
type FileData struct {
	Devices []DeviceDesc
	// Records holds each device's events in capture order, indexed like
	// Devices. Records are not time-ordered across devices.
	Records [][]Record
}
