package msgs

import (
	"errors"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
)

// ErrEmptyEnvelope indicates an envelope without packet.
var ErrEmptyEnvelope = errors.New("empty envelope")

// Envelope wraps a single command packet, see envelope.proto.
type Envelope struct {
	Packet      []byte `protobuf:"bytes,1,opt,name=packet,proto3" json:"packet,omitempty"`
	Sequence    uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	TimestampNs int64  `protobuf:"varint,3,opt,name=timestamp_ns,json=timestampNs,proto3" json:"timestamp_ns,omitempty"`
}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Envelope) ProtoMessage() {}

// Timestamp returns the send time.
func (m *Envelope) Timestamp() time.Time {
	return time.Unix(0, m.TimestampNs)
}

// Encode serializes the envelope.
func (m *Envelope) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeEnvelope parses a serialized envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	m := &Envelope{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if len(m.Packet) == 0 {
		return nil, ErrEmptyEnvelope
	}
	return m, nil
}

// Sealer wraps packets with increasing sequence numbers.
type Sealer struct {
	Now func() time.Time

	seq  uint32
	lock sync.Mutex
}

// Seal wraps a packet and serializes the envelope.
func (s *Sealer) Seal(pkt []byte) ([]byte, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	s.lock.Lock()
	s.seq++
	m := &Envelope{Packet: pkt, Sequence: s.seq, TimestampNs: now().UnixNano()}
	s.lock.Unlock()
	return m.Encode()
}

// Tracker detects gaps in the sequence numbers from a single sender.
type Tracker struct {
	last  uint32
	valid bool
}

// Track records the envelope and returns the number of envelopes missed
// before it. A sequence that doesn't advance restarts tracking.
func (t *Tracker) Track(m *Envelope) (missed uint32) {
	if t.valid && m.Sequence > t.last {
		missed = m.Sequence - t.last - 1
	}
	t.last, t.valid = m.Sequence, true
	return
}
