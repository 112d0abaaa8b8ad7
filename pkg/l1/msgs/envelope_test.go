package msgs

import (
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeWireFormat(t *testing.T) {
	m := &Envelope{Packet: []byte{4}, Sequence: 2, TimestampNs: 3}
	data, err := proto.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x01, 0x04, 0x10, 0x02, 0x18, 0x03}, data)

	decoded, err := DecodeEnvelope(data)
	require.NoError(t, err)
	require.Equal(t, []byte{4}, decoded.Packet)
	require.Equal(t, uint32(2), decoded.Sequence)
	require.Equal(t, int64(3), decoded.TimestampNs)
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	_, err := DecodeEnvelope([]byte{0x10, 0x02})
	require.Equal(t, ErrEmptyEnvelope, err)
	_, err = DecodeEnvelope([]byte{0x0a, 0x05, 0x01})
	require.Error(t, err)
}

func TestSealer(t *testing.T) {
	at := time.Unix(100, 5)
	s := &Sealer{Now: func() time.Time { return at }}
	for n := uint32(1); n <= 3; n++ {
		data, err := s.Seal([]byte{0x15, byte(n)})
		require.NoError(t, err)
		m, err := DecodeEnvelope(data)
		require.NoError(t, err)
		require.Equal(t, n, m.Sequence)
		require.Equal(t, []byte{0x15, byte(n)}, m.Packet)
		require.True(t, at.Equal(m.Timestamp()))
	}
}

func TestTracker(t *testing.T) {
	var tr Tracker
	require.Zero(t, tr.Track(&Envelope{Sequence: 5}))
	require.Zero(t, tr.Track(&Envelope{Sequence: 6}))
	require.Equal(t, uint32(2), tr.Track(&Envelope{Sequence: 9}))
	require.Zero(t, tr.Track(&Envelope{Sequence: 1}))
	require.Zero(t, tr.Track(&Envelope{Sequence: 2}))
}
