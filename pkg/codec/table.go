package codec

import "math"

// Kind is the storage kind of a field.
type Kind int

// Field kinds.
const (
	KindUint8 Kind = iota
	KindBool
	KindInt32
	KindUint32
	KindFloat
)

// Size returns the number of bytes the kind occupies in persistent form.
func (k Kind) Size() int {
	switch k {
	case KindUint8, KindBool:
		return 1
	case KindInt32, KindUint32:
		return 4
	case KindFloat:
		return 8
	}
	return 0
}

// Field describes a single member of a record of type T.
// Float fields are transmitted as int32 of round(value*Scale) and
// persisted as their IEEE-754 bits. Integer fields are transmitted
// and persisted at their natural width.
type Field[T any] struct {
	Name    string
	Kind    Kind
	Scale   float64
	Wire    bool
	Default float64

	get func(*T) float64
	set func(*T, float64)
}

// Get reads the field from rec.
func (f Field[T]) Get(rec *T) float64 {
	return f.get(rec)
}

// Set writes the field in rec.
func (f Field[T]) Set(rec *T, v float64) {
	f.set(rec, v)
}

// PersistOnly excludes the field from wire encoding.
func (f Field[T]) PersistOnly() Field[T] {
	f.Wire = false
	return f
}

// Float defines a floating point field transmitted with scale.
func Float[T any](name string, scale, def float64, ref func(*T) *float64) Field[T] {
	return Field[T]{
		Name: name, Kind: KindFloat, Scale: scale, Wire: true, Default: def,
		get: func(rec *T) float64 { return *ref(rec) },
		set: func(rec *T, v float64) { *ref(rec) = v },
	}
}

// Enum defines a single byte field.
func Enum[T any, E ~uint8](name string, def E, ref func(*T) *E) Field[T] {
	return Field[T]{
		Name: name, Kind: KindUint8, Wire: true, Default: float64(def),
		get: func(rec *T) float64 { return float64(*ref(rec)) },
		set: func(rec *T, v float64) { *ref(rec) = E(v) },
	}
}

// Bool defines a boolean field encoded as a single byte.
func Bool[T any](name string, def bool, ref func(*T) *bool) Field[T] {
	f := Field[T]{
		Name: name, Kind: KindBool, Wire: true,
		get: func(rec *T) float64 {
			if *ref(rec) {
				return 1
			}
			return 0
		},
		set: func(rec *T, v float64) { *ref(rec) = v != 0 },
	}
	if def {
		f.Default = 1
	}
	return f
}

// Int32 defines a raw signed 32-bit field.
func Int32[T any](name string, def int32, ref func(*T) *int32) Field[T] {
	return Field[T]{
		Name: name, Kind: KindInt32, Wire: true, Default: float64(def),
		get: func(rec *T) float64 { return float64(*ref(rec)) },
		set: func(rec *T, v float64) { *ref(rec) = int32(v) },
	}
}

// Uint32 defines a raw unsigned 32-bit field.
func Uint32[T any](name string, def uint32, ref func(*T) *uint32) Field[T] {
	return Field[T]{
		Name: name, Kind: KindUint32, Wire: true, Default: float64(def),
		get: func(rec *T) float64 { return float64(*ref(rec)) },
		set: func(rec *T, v float64) { *ref(rec) = uint32(v) },
	}
}

// Table is the ordered list of fields of a record. The order is the wire
// order and the persistent layout order.
type Table[T any] []Field[T]

// Defaults returns a record with all fields set to their defaults.
func (t Table[T]) Defaults() T {
	var rec T
	for _, f := range t {
		f.set(&rec, f.Default)
	}
	return rec
}

// Lookup finds a field by name.
func (t Table[T]) Lookup(name string) (Field[T], bool) {
	for _, f := range t {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// WireSize returns the encoded size of the wire fields.
func (t Table[T]) WireSize() (n int) {
	for _, f := range t {
		if f.Wire {
			n += f.Kind.Size()
			if f.Kind == KindFloat {
				n -= 4
			}
		}
	}
	return
}

// EncodeWire appends the wire fields of rec to w.
func (t Table[T]) EncodeWire(w *Writer, rec *T) {
	for _, f := range t {
		if !f.Wire {
			continue
		}
		v := f.get(rec)
		switch f.Kind {
		case KindUint8, KindBool:
			w.AppendUint8(uint8(v))
		case KindInt32:
			w.AppendInt32(int32(v))
		case KindUint32:
			w.AppendUint32(uint32(v))
		case KindFloat:
			w.AppendScaled32(v, f.Scale)
		}
	}
}

// DecodeWire reads the wire fields from r into rec. Fields not on the wire
// are left untouched. The returned error is the reader's error, in which
// case rec is partially updated and must be discarded.
func (t Table[T]) DecodeWire(r *Reader, rec *T) error {
	for _, f := range t {
		if !f.Wire {
			continue
		}
		switch f.Kind {
		case KindUint8, KindBool:
			f.set(rec, float64(r.Uint8()))
		case KindInt32:
			f.set(rec, float64(r.Int32()))
		case KindUint32:
			f.set(rec, float64(r.Uint32()))
		case KindFloat:
			f.set(rec, r.Scaled32(f.Scale))
		}
	}
	return r.Err()
}

// PersistSize returns the number of bytes of the persistent layout.
func (t Table[T]) PersistSize() (n int) {
	for _, f := range t {
		n += f.Kind.Size()
	}
	return
}

// Slots returns the number of 16-bit slots needed to persist a record.
func (t Table[T]) Slots() int {
	return (t.PersistSize() + 1) / 2
}

// Pack serializes rec into 16-bit slots, each holding a big-endian byte pair.
func (t Table[T]) Pack(rec *T) []uint16 {
	n := t.Slots()
	w := NewWriterSize(n * 2)
	for _, f := range t {
		v := f.get(rec)
		switch f.Kind {
		case KindUint8, KindBool:
			w.AppendUint8(uint8(v))
		case KindInt32:
			w.AppendInt32(int32(v))
		case KindUint32:
			w.AppendUint32(uint32(v))
		case KindFloat:
			bits := math.Float64bits(v)
			w.AppendUint32(uint32(bits >> 32)).AppendUint32(uint32(bits))
		}
	}
	b := w.Bytes()
	b = b[:cap(b)]
	slots := make([]uint16, n)
	for i := range slots {
		slots[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return slots
}

// Unpack restores rec from slots produced by Pack.
func (t Table[T]) Unpack(slots []uint16, rec *T) error {
	b := make([]byte, len(slots)*2)
	for i, s := range slots {
		b[2*i], b[2*i+1] = byte(s>>8), byte(s)
	}
	r := NewReader(b)
	for _, f := range t {
		switch f.Kind {
		case KindUint8, KindBool:
			f.set(rec, float64(r.Uint8()))
		case KindInt32:
			f.set(rec, float64(r.Int32()))
		case KindUint32:
			f.set(rec, float64(r.Uint32()))
		case KindFloat:
			hi, lo := r.Uint32(), r.Uint32()
			f.set(rec, math.Float64frombits(uint64(hi)<<32|uint64(lo)))
		}
	}
	return r.Err()
}
