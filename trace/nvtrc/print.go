package nvtrc

import (
	"fmt"
	"io"
)

// message is the capability line PrettyPrint shows for an error code.
func (e TraceError) message() string {
	switch e {
	case TraceErrorNone:
		return "yes"
	case TraceErrorUnsupportedGPU:
		return "no -- unsupported GPU (requires Volta, Turing, or newer)"
	case TraceErrorUnsupportedDriver:
		return "no -- driver is missing required support, try a newer version"
	case TraceErrorNeedRoot:
		return "no -- process must be running as root/admin to use this feature"
	default:
		return "no -- internal error encountered"
	}
}

// PrettyPrint renders a decoded capture as human-readable text: the device
// descriptors, the per-device records, or both.
func PrettyPrint(w io.Writer, fd *FileData, showDevices, showRecords bool) {
	if showDevices {
		for d := range fd.Devices {
			desc := &fd.Devices[d]
			fmt.Fprintf(w, "Device %d:\n", d)
			fmt.Fprintf(w, "\tName: %s\n", desc.Name)
			fmt.Fprintf(w, "\tUUID: {%s}\n", desc.UUID)
			fmt.Fprintf(w, "\tSupports GPU context-switch trace: %s\n", desc.TraceError.message())
			fmt.Fprintf(w, "\tTimestamps for synchronization (raw values, in hex):\n")
			fmt.Fprintf(w, "\t  CPU start: %x GPU start: %x\n", uint64(desc.CPUTimestampStart), uint64(desc.GPUTimestampStart))
			fmt.Fprintf(w, "\t  CPU end:   %x GPU end:   %x\n", uint64(desc.CPUTimestampEnd), uint64(desc.GPUTimestampEnd))
		}
	}
	if showRecords {
		for d, records := range fd.Records {
			fmt.Fprintf(w, "Device %d records:\n", d)
			for i := range records {
				rec := &records[i]
				var typ string
				switch rec.Type {
				case RecordTypeContextSwitchedIn:
					typ = "Context Start"
				case RecordTypeContextSwitchedOut:
					typ = "Context Stop"
				default:
					typ = "<Other>"
				}
				fmt.Fprintf(w, "\tTimestamp: 0x%016x | Event: %-13s | PID: %-10d | ContextID: 0x%08x\n",
					uint64(rec.Timestamp), typ, rec.PID, rec.ContextHandle)
			}
		}
	}
}
