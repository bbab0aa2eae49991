package nvtrc

import "math"

// TimestampConverter maps timestamps from one clock domain onto another by
// offsetting from a sync point and scaling by the ratio of the two clocks'
// rates.
//
// The offset-then-scale order keeps the scaled value small enough for the
// 53-bit double mantissa: with clocks near 1 GHz the scaling error stays
// around a nanosecond per week of distance from the sync point. Accuracy
// is best near the sync point, and captures are usually inspected near
// their end, so converters anchor there.
type TimestampConverter struct {
	DstAtSyncPoint int64
	SrcAtSyncPoint int64
	Scale          float64
}

// NewTimestampConverter builds a converter from matching clock readings
// taken at both ends of a capture window. The conversion is anchored at the
// end. A zero-length source window yields scale 0, collapsing every
// timestamp to dstEnd.
//
// When merging multiple captures onto one timeline, don't convert each
// capture separately: keep timestamps in the source domain, build a single
// converter per device from the earliest start and latest end across all
// captures, and convert after merging.
func NewTimestampConverter(srcStart, srcEnd, dstStart, dstEnd int64) TimestampConverter {
	var scale float64
	if srcEnd != srcStart {
		scale = float64(dstEnd-dstStart) / float64(srcEnd-srcStart)
	}
	return TimestampConverter{
		DstAtSyncPoint: dstEnd,
		SrcAtSyncPoint: srcEnd,
		Scale:          scale,
	}
}

// Convert maps a source-domain timestamp onto the destination domain,
// rounding to the nearest destination tick.
func (c TimestampConverter) Convert(src int64) int64 {
	return c.DstAtSyncPoint + int64(math.Round(c.Scale*float64(src-c.SrcAtSyncPoint)))
}

// Converter returns the device's GPU-to-CPU clock converter, built from the
// sync points at either end of its capture window.
func (d *DeviceDesc) Converter() TimestampConverter {
	return NewTimestampConverter(d.GPUTimestampStart, d.GPUTimestampEnd, d.CPUTimestampStart, d.CPUTimestampEnd)
}
