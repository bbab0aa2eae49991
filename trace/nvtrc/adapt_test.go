package nvtrc

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/adamnv/gpuvis/trace"
)

func collectEvents(fd *FileData, pool trace.Interner, raw bool) ([]trace.Event, trace.Info) {
	var evs []trace.Event
	info := AdaptTrace(fd, "test.nvtrc", pool, raw, func(ev trace.Event) {
		evs = append(evs, ev)
	})
	return evs, info
}

func TestAdaptTrace(t *testing.T) {
	fd := sampleFileData()
	var pool trace.StringPool
	evs, info := collectEvents(fd, &pool, false)

	if info.Label != "nvgpu(NVIDIA GeForce RTX 2080)&nvgpu(NVIDIA T4)" {
		t.Errorf("got label %q", info.Label)
	}
	if info.File != "test.nvtrc" {
		t.Errorf("got file %q, want %q", info.File, "test.nvtrc")
	}
	if info.MinTs != 5_000_000 {
		t.Errorf("got timeline origin %d, want the earliest CPU window start 5000000", info.MinTs)
	}
	if !info.UsecTimestamps {
		t.Error("adapted timestamps must be flagged as microseconds")
	}
	if info.CPUs != 0 {
		t.Errorf("got %d CPUs, want 0", info.CPUs)
	}

	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	// The sample's GPU window [1000,2000] spans CPU [5000000,5000010].
	if evs[0].Ts != 5_000_000 || evs[1].Ts != 5_000_010 {
		t.Errorf("got timestamps %d and %d, want 5000000 and 5000010", evs[0].Ts, evs[1].Ts)
	}
	if got := pool.Lookup(evs[0].Name); got != "(event_name:ContextSwitchedIn)" {
		t.Errorf("got event name %q", got)
	}
	if got := pool.Lookup(evs[1].Name); got != "(event_name:ContextSwitchedOut)" {
		t.Errorf("got event name %q", got)
	}
	if got := pool.Lookup(evs[0].System); got != "nvcontext" {
		t.Errorf("got event system %q", got)
	}
	if got := pool.Lookup(evs[0].Comm); got != "(event_comm)" {
		t.Errorf("got event comm %q", got)
	}
	if got := pool.Lookup(evs[0].UserComm); got != "(event_usercomm)" {
		t.Errorf("got event usercomm %q", got)
	}

	for i, ev := range evs {
		if ev.PID != 4242 {
			t.Errorf("event %d has PID %d, want 4242", i, ev.PID)
		}
		if ev.ID != trace.InvalidID {
			t.Errorf("event %d has ID %d, want InvalidID", i, ev.ID)
		}
		if ev.Duration != trace.UnsetDuration {
			t.Errorf("event %d has duration %d, want UnsetDuration", i, ev.Duration)
		}
		if ev.CRTC != -1 {
			t.Errorf("event %d has CRTC %d, want -1", i, ev.CRTC)
		}
		if ev.Flags != trace.FlagAutogenColor {
			t.Errorf("event %d has flags %v, want FlagAutogenColor", i, ev.Flags)
		}
		if ev.CPU != 0 || ev.Seqno != 0 || ev.GraphRow != 0 || ev.Color != 0 {
			t.Errorf("event %d has nonzero defaults: %+v", i, ev)
		}
	}
}

func TestAdaptTraceRaw(t *testing.T) {
	var pool trace.StringPool
	evs, _ := collectEvents(sampleFileData(), &pool, true)
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if evs[0].Ts != 1000 || evs[1].Ts != 2000 {
		t.Errorf("got timestamps %d and %d, want the raw GPU values 1000 and 2000", evs[0].Ts, evs[1].Ts)
	}
}

func TestAdaptTraceUnknownType(t *testing.T) {
	fd := sampleFileData()
	fd.Records[0] = []Record{{Category: CategoryGPUContextSwitch, Type: RecordType(7), PID: 1}}
	var pool trace.StringPool
	evs, _ := collectEvents(fd, &pool, false)
	if len(evs) != 1 {
		t.Fatalf("got %d events, want 1", len(evs))
	}
	if got := pool.Lookup(evs[0].Name); got != "(event_name:RecordType(7))" {
		t.Errorf("unknown record type got event name %q", got)
	}
}

func TestAdaptTraceEmpty(t *testing.T) {
	var pool trace.StringPool
	evs, info := collectEvents(&FileData{}, &pool, false)
	if len(evs) != 0 {
		t.Fatalf("got %d events from an empty capture", len(evs))
	}
	if info.Label != "" {
		t.Errorf("got label %q from an empty capture", info.Label)
	}
	if info.MinTs != math.MaxInt64 {
		t.Errorf("got timeline origin %d, want MaxInt64 when no device sets one", info.MinTs)
	}
}

func TestReadTrace(t *testing.T) {
	fd := sampleFileData()
	path := filepath.Join(t.TempDir(), "capture.nvtrc")
	if err := WriteFile(path, fd); err != nil {
		t.Fatalf("failed to write capture: %v", err)
	}

	var pool trace.StringPool
	var evs []trace.Event
	info, err := ReadTrace(path, &pool, func(ev trace.Event) {
		evs = append(evs, ev)
	})
	if err != nil {
		t.Fatalf("failed to read capture: %v", err)
	}
	if info.File != path {
		t.Errorf("got file %q, want %q", info.File, path)
	}
	if len(evs) != 2 {
		t.Errorf("got %d events, want 2", len(evs))
	}

	if _, err := ReadTrace(filepath.Join(t.TempDir(), "missing.nvtrc"), &pool, func(trace.Event) {}); err == nil {
		t.Error("reading a missing capture didn't fail")
	}
}
