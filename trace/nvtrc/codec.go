package nvtrc

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"golang.org/x/exp/slices"
)

var (
	// ErrBadMagic means the input doesn't start with the nvtrc01 magic and
	// isn't this format at all.
	ErrBadMagic = errors.New("not an nvtrc capture")
	// ErrOlderVersion means the capture's elements are narrower than the
	// structs in this package, i.e. the file predates fields we expect.
	ErrOlderVersion = errors.New("file has older version than expected")
)

// maxPrealloc caps allocations based on untrusted element counts. A corrupt
// count has to hit a short read before it costs more than this many
// elements of memory.
const maxPrealloc = 1 << 16

type decoder struct {
	r       io.Reader
	scratch [8]byte
}

func (d *decoder) bytes(b []byte) error {
	_, err := io.ReadFull(d.r, b)
	return err
}

func (d *decoder) u8(dst *uint8) error {
	if err := d.bytes(d.scratch[:1]); err != nil {
		return err
	}
	*dst = d.scratch[0]
	return nil
}

func (d *decoder) u16(dsts ...*uint16) error {
	for _, dst := range dsts {
		if err := d.bytes(d.scratch[:2]); err != nil {
			return err
		}
		*dst = binary.LittleEndian.Uint16(d.scratch[:2])
	}
	return nil
}

func (d *decoder) u32(dsts ...*uint32) error {
	for _, dst := range dsts {
		if err := d.bytes(d.scratch[:4]); err != nil {
			return err
		}
		*dst = binary.LittleEndian.Uint32(d.scratch[:4])
	}
	return nil
}

func (d *decoder) u64(dsts ...*uint64) error {
	for _, dst := range dsts {
		if err := d.bytes(d.scratch[:8]); err != nil {
			return err
		}
		*dst = binary.LittleEndian.Uint64(d.scratch[:8])
	}
	return nil
}

func (d *decoder) i32(dsts ...*int32) error {
	for _, dst := range dsts {
		var v uint32
		if err := d.u32(&v); err != nil {
			return err
		}
		*dst = int32(v)
	}
	return nil
}

func (d *decoder) i64(dsts ...*int64) error {
	for _, dst := range dsts {
		var v uint64
		if err := d.u64(&v); err != nil {
			return err
		}
		*dst = int64(v)
	}
	return nil
}

func (d *decoder) skip(n int64) error {
	_, err := io.CopyN(io.Discard, d.r, n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// arrayHeader reads an array's framing and checks the producer's element
// width against ours. It returns the element count and the number of
// trailing bytes to skip per element.
func (d *decoder) arrayHeader(width int32) (count, extra int32, err error) {
	var elemSize int32
	if err := d.i32(&count, &elemSize); err != nil {
		return 0, 0, fmt.Errorf("couldn't read array header: %w", err)
	}
	if count < 0 {
		return 0, 0, fmt.Errorf("array header has negative count %d", count)
	}
	if elemSize < width {
		// Could attempt to upconvert old captures, but for now simply fail.
		return 0, 0, fmt.Errorf("%w: element size %d, need %d", ErrOlderVersion, elemSize, width)
	}
	return count, elemSize - width, nil
}

func readArray[T any](d *decoder, width int32, elem func(*decoder, *T) error) ([]T, error) {
	count, extra, err := d.arrayHeader(width)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, min(int(count), maxPrealloc))
	for i := int32(0); i < count; i++ {
		out = slices.Grow(out, 1)[:len(out)+1]
		if err := elem(d, &out[len(out)-1]); err != nil {
			return nil, err
		}
		if extra > 0 {
			if err := d.skip(int64(extra)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// cstring returns b up to the first NUL.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i != -1 {
		b = b[:i]
	}
	return string(b)
}

func (d *decoder) deviceDesc(desc *DeviceDesc) error {
	if err := d.bytes(desc.UUID[:]); err != nil {
		return err
	}
	var name [nameSize]byte
	if err := d.bytes(name[:]); err != nil {
		return err
	}
	desc.Name = cstring(name[:])
	var traceError uint8
	if err := d.u8(&traceError); err != nil {
		return err
	}
	desc.TraceError = TraceError(traceError)
	return d.i64(&desc.CPUTimestampStart, &desc.GPUTimestampStart, &desc.CPUTimestampEnd, &desc.GPUTimestampEnd)
}

func (d *decoder) record(rec *Record) error {
	var category, typ uint16
	if err := d.u16(&category, &typ); err != nil {
		return err
	}
	rec.Category = Category(category)
	rec.Type = RecordType(typ)
	if err := d.u32(&rec.PID); err != nil {
		return err
	}
	if err := d.i64(&rec.Timestamp); err != nil {
		return err
	}
	return d.u64(&rec.ContextHandle)
}

// Decode parses a capture from r. It returns either a fully populated
// FileData or an error, never a partial result.
func Decode(r io.Reader) (*FileData, error) {
	d := &decoder{r: r}
	var magic [8]byte
	if err := d.bytes(magic[:]); err != nil {
		return nil, fmt.Errorf("couldn't read file header: %w", err)
	}
	if magic != nvtrc01Magic {
		return nil, ErrBadMagic
	}

	fd := new(FileData)
	var err error
	fd.Devices, err = readArray(d, deviceDescSize, (*decoder).deviceDesc)
	if err != nil {
		return nil, fmt.Errorf("couldn't read device descriptors: %w", err)
	}
	fd.Records = make([][]Record, len(fd.Devices))
	for i := range fd.Records {
		fd.Records[i], err = readArray(d, recordSize, (*decoder).record)
		if err != nil {
			return nil, fmt.Errorf("couldn't read records of device %d: %w", i, err)
		}
	}
	return fd, nil
}

type encoder struct {
	w       io.Writer
	scratch [8]byte
}

func (e *encoder) bytes(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

func (e *encoder) u8(v uint8) error {
	e.scratch[0] = v
	return e.bytes(e.scratch[:1])
}

func (e *encoder) u16(vs ...uint16) error {
	for _, v := range vs {
		binary.LittleEndian.PutUint16(e.scratch[:2], v)
		if err := e.bytes(e.scratch[:2]); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) u32(vs ...uint32) error {
	for _, v := range vs {
		binary.LittleEndian.PutUint32(e.scratch[:4], v)
		if err := e.bytes(e.scratch[:4]); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) u64(vs ...uint64) error {
	for _, v := range vs {
		binary.LittleEndian.PutUint64(e.scratch[:8], v)
		if err := e.bytes(e.scratch[:8]); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) i32(vs ...int32) error {
	for _, v := range vs {
		if err := e.u32(uint32(v)); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) i64(vs ...int64) error {
	for _, v := range vs {
		if err := e.u64(uint64(v)); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) arrayHeader(count int, width int32) error {
	return e.i32(int32(count), width)
}

func (e *encoder) deviceDesc(d *DeviceDesc) error {
	if err := e.bytes(d.UUID[:]); err != nil {
		return err
	}
	// Overlong names are silently truncated; the final byte stays NUL.
	var name [nameSize]byte
	copy(name[:nameSize-1], d.Name)
	if err := e.bytes(name[:]); err != nil {
		return err
	}
	if err := e.u8(uint8(d.TraceError)); err != nil {
		return err
	}
	return e.i64(d.CPUTimestampStart, d.GPUTimestampStart, d.CPUTimestampEnd, d.GPUTimestampEnd)
}

func (e *encoder) record(rec *Record) error {
	if err := e.u16(uint16(rec.Category), uint16(rec.Type)); err != nil {
		return err
	}
	if err := e.u32(rec.PID); err != nil {
		return err
	}
	if err := e.i64(rec.Timestamp); err != nil {
		return err
	}
	return e.u64(rec.ContextHandle)
}

// Encode writes fd to w in the current format version.
func Encode(w io.Writer, fd *FileData) error {
	if len(fd.Records) != len(fd.Devices) {
		return fmt.Errorf("have %d devices but %d record arrays", len(fd.Devices), len(fd.Records))
	}
	e := &encoder{w: w}
	if err := e.bytes(nvtrc01Magic[:]); err != nil {
		return err
	}
	if err := e.arrayHeader(len(fd.Devices), deviceDescSize); err != nil {
		return err
	}
	for i := range fd.Devices {
		if err := e.deviceDesc(&fd.Devices[i]); err != nil {
			return err
		}
	}
	for _, recs := range fd.Records {
		if err := e.arrayHeader(len(recs), recordSize); err != nil {
			return err
		}
		for i := range recs {
			if err := e.record(&recs[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// snappyMagic is the stream identifier chunk that opens snappy's framing
// format.
var snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")

// ReadFile decodes the capture at path. Snappy-framed captures are
// decompressed transparently.
func ReadFile(path string) (*FileData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	br := bufio.NewReader(f)
	if hdr, err := br.Peek(len(snappyMagic)); err == nil && bytes.Equal(hdr, snappyMagic) {
		return Decode(snappy.NewReader(br))
	}
	return Decode(br)
}

// WriteFile encodes fd to a new file at path.
func WriteFile(path string, fd *FileData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := Encode(bw, fd); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
