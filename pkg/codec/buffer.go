package codec

import (
	"encoding/binary"
	"math"
)

// MaxPacketSize is the upper bound of an encoded packet.
const MaxPacketSize = 256

// Writer appends big-endian values into a bounded buffer.
// Once an append would exceed the bound, the writer is marked as
// overflowed and all further appends are ignored. Overflowed packets
// must be dropped, never truncated.
type Writer struct {
	buf      []byte
	limit    int
	overflow bool
}

// NewWriter creates a Writer bounded to MaxPacketSize.
func NewWriter() *Writer {
	return NewWriterSize(MaxPacketSize)
}

// NewWriterSize creates a Writer with a custom bound.
func NewWriterSize(limit int) *Writer {
	return &Writer{buf: make([]byte, 0, limit), limit: limit}
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes encoded.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Overflowed indicates some append didn't fit.
func (w *Writer) Overflowed() bool {
	return w.overflow
}

func (w *Writer) reserve(n int) []byte {
	if w.overflow || len(w.buf)+n > w.limit {
		w.overflow = true
		return nil
	}
	l := len(w.buf)
	w.buf = w.buf[:l+n]
	return w.buf[l:]
}

// AppendUint8 appends a single byte.
func (w *Writer) AppendUint8(v uint8) *Writer {
	if b := w.reserve(1); b != nil {
		b[0] = v
	}
	return w
}

// AppendBool appends a byte 1 for true, 0 for false.
func (w *Writer) AppendBool(v bool) *Writer {
	if v {
		return w.AppendUint8(1)
	}
	return w.AppendUint8(0)
}

// AppendBytes appends raw bytes. Either all bytes fit or none is written.
func (w *Writer) AppendBytes(p []byte) *Writer {
	if b := w.reserve(len(p)); b != nil {
		copy(b, p)
	}
	return w
}

// AppendUint16 appends a big-endian uint16.
func (w *Writer) AppendUint16(v uint16) *Writer {
	if b := w.reserve(2); b != nil {
		binary.BigEndian.PutUint16(b, v)
	}
	return w
}

// AppendInt16 appends a big-endian two's-complement int16.
func (w *Writer) AppendInt16(v int16) *Writer {
	return w.AppendUint16(uint16(v))
}

// AppendUint32 appends a big-endian uint32.
func (w *Writer) AppendUint32(v uint32) *Writer {
	if b := w.reserve(4); b != nil {
		binary.BigEndian.PutUint32(b, v)
	}
	return w
}

// AppendInt32 appends a big-endian two's-complement int32.
func (w *Writer) AppendInt32(v int32) *Writer {
	return w.AppendUint32(uint32(v))
}

// AppendScaled16 appends round(v*scale) as int16, saturating at the
// int16 range.
func (w *Writer) AppendScaled16(v, scale float64) *Writer {
	return w.AppendInt16(int16(clampRound(v*scale, math.MinInt16, math.MaxInt16)))
}

// AppendScaled32 appends round(v*scale) as int32, saturating at the
// int32 range.
func (w *Writer) AppendScaled32(v, scale float64) *Writer {
	return w.AppendInt32(int32(clampRound(v*scale, math.MinInt32, math.MaxInt32)))
}

func clampRound(v, lo, hi float64) float64 {
	switch v = math.Round(v); {
	case math.IsNaN(v):
		return 0
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// Reader reads big-endian values from a byte slice.
// Reading past the end sets a sticky ErrShortBuffer and yields zero values.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader creates a Reader.
func NewReader(p []byte) *Reader {
	return &Reader{buf: p}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of bytes not consumed.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Rest consumes and returns all remaining bytes.
func (r *Reader) Rest() []byte {
	p := r.buf[r.pos:]
	r.pos = len(r.buf)
	return p
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.err = ErrShortBuffer
		r.pos = len(r.buf)
		return nil
	}
	p := r.buf[r.pos : r.pos+n]
	r.pos += n
	return p
}

// Uint8 reads a byte.
func (r *Reader) Uint8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

// Bool reads a byte as boolean, any non-zero value is true.
func (r *Reader) Bool() bool {
	return r.Uint8() != 0
}

// Uint16 reads a big-endian uint16.
func (r *Reader) Uint16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

// Int16 reads a big-endian int16.
func (r *Reader) Int16() int16 {
	return int16(r.Uint16())
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

// Int32 reads a big-endian int32.
func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

// Scaled16 reads an int16 and divides it by scale.
func (r *Reader) Scaled16(scale float64) float64 {
	return float64(r.Int16()) / scale
}

// Scaled32 reads an int32 and divides it by scale.
func (r *Reader) Scaled32(scale float64) float64 {
	return float64(r.Int32()) / scale
}
