// Package trace defines the generic event model that format importers
// produce and the timeline consumer ingests: one Event per source record,
// one Info per loaded capture, and a pool for the strings events share.
package trace

import "math"

// Timestamp is a point in time on the consumer's timeline. Whether values
// are microseconds or nanoseconds is reported by Info.UsecTimestamps.
type Timestamp int64

// InvalidID marks event IDs that haven't been assigned by the consumer yet.
const InvalidID = ^uint32(0)

// UnsetDuration marks events whose duration isn't known.
const UnsetDuration int64 = math.MaxInt64

type EventFlags uint32

const (
	// FlagAutogenColor has the consumer derive the event's color from its
	// name instead of using Event.Color.
	FlagAutogenColor EventFlags = 1 << iota
)

// Event is one record on the timeline. Importers populate every field;
// fields their source format doesn't carry get the documented unset values.
type Event struct {
	ID       uint32    // index assigned by the consumer, InvalidID until then
	PID      uint32    // process the event belongs to
	CPU      uint32    // logical CPU, 0 when the source has no CPU notion
	Ts       Timestamp // when the event happened
	Comm     StringID  // command of the emitting task
	System   StringID  // subsystem the event belongs to
	Name     StringID  // event name, unique per kind of event
	UserComm StringID  // command of the task on whose behalf the event fired
	Flags    EventFlags
	Seqno    uint32 // 0 when the source has no sequence numbers
	GraphRow uint32 // 0 lets the consumer assign rows
	CRTC     int32  // display controller, -1 when not a display event
	Color    uint32 // 0 selects the consumer's default
	Duration int64  // UnsetDuration when not known
}

// Info summarizes one loaded capture.
type Info struct {
	Label string    // human-readable description of the capture's origin
	File  string    // path the capture was loaded from
	CPUs  uint32    // number of CPUs, 0 when not applicable
	MinTs Timestamp // earliest timestamp, the timeline's origin
	// UsecTimestamps reports that timestamps are in microseconds rather
	// than nanoseconds.
	UsecTimestamps bool
}
