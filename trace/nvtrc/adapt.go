package nvtrc

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/adamnv/gpuvis/trace"
)

// AdaptTrace re-expresses a decoded capture as generic trace events, one
// per record, emitted device by device in capture order. Callers that want
// a global time order sort afterwards. Record timestamps are mapped onto
// the CPU clock with each device's converter, or passed through when raw is
// set. The returned Info labels the capture with its device names and uses
// the earliest CPU-domain window start as the timeline origin.
//
// AdaptTrace doesn't fail: records of unknown type become events with a
// placeholder name.
func AdaptTrace(fd *FileData, file string, pool trace.Interner, raw bool, emit func(trace.Event)) trace.Info {
	minStart := int64(math.MaxInt64)
	var label strings.Builder
	for i := range fd.Devices {
		if i > 0 {
			label.WriteString("&")
		}
		label.WriteString("nvgpu(")
		label.WriteString(fd.Devices[i].Name)
		label.WriteString(")")
		minStart = min(minStart, fd.Devices[i].CPUTimestampStart)
	}
	info := trace.Info{
		Label:          label.String(),
		File:           file,
		CPUs:           0,
		MinTs:          trace.Timestamp(minStart),
		UsecTimestamps: true,
	}

	comm := pool.Intern("(event_comm)")
	system := pool.Intern("nvcontext")
	userComm := pool.Intern("(event_usercomm)")
	for i := range fd.Devices {
		conv := fd.Devices[i].Converter()
		for _, rec := range fd.Records[i] {
			ts := rec.Timestamp
			if !raw {
				ts = conv.Convert(ts)
			}
			emit(trace.Event{
				ID:       trace.InvalidID,
				PID:      rec.PID,
				CPU:      0,
				Ts:       trace.Timestamp(ts),
				Comm:     comm,
				System:   system,
				Name:     pool.Intern("(event_name:" + rec.Type.String() + ")"),
				UserComm: userComm,
				Flags:    trace.FlagAutogenColor,
				Seqno:    0,
				GraphRow: 0,
				CRTC:     -1,
				Color:    0,
				Duration: trace.UnsetDuration,
			})
		}
	}
	return info
}

// ReadTrace loads the capture at path and adapts it, reporting each device
// and its record count on stderr.
func ReadTrace(path string, pool trace.Interner, emit func(trace.Event)) (trace.Info, error) {
	fd, err := ReadFile(path)
	if err != nil {
		return trace.Info{}, err
	}
	for i := range fd.Devices {
		fmt.Fprintf(os.Stderr, "nvtrc: %s: GPU device #%d is %s\n", path, i+1, fd.Devices[i].Name)
		fmt.Fprintf(os.Stderr, "nvtrc: %s: GPU device #%d has %d records\n", path, i+1, len(fd.Records[i]))
	}
	return AdaptTrace(fd, path, pool, false, emit), nil
}
