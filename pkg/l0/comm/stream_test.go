package comm

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type chanReadWriter struct {
	readCh  <-chan byte
	writeCh chan byte
	doneCh  <-chan struct{}
}

func (c *chanReadWriter) Read(p []byte) (int, error) {
	select {
	case b := <-c.readCh:
		p[0] = b
		return 1, nil
	case <-c.doneCh:
		return 0, nil
	}
}

func (c *chanReadWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		c.writeCh <- b
	}
	return len(p), nil
}

type streamTestEnv struct {
	t       *testing.T
	readCh  chan byte
	writeCh chan byte
	doneCh  chan struct{}
	stream  *Stream
}

func newStreamTestEnv(t *testing.T) *streamTestEnv {
	env := &streamTestEnv{
		t:       t,
		readCh:  make(chan byte, 512),
		writeCh: make(chan byte, 512),
		doneCh:  make(chan struct{}),
	}
	fifo := NewFIFO(&chanReadWriter{readCh: env.readCh, writeCh: env.writeCh, doneCh: env.doneCh})
	fifo.seq = PacketSeq(1)
	fifo.ReadTimeout = true
	env.stream = NewStream(fifo)
	return env
}

func (e *streamTestEnv) run() func() {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- e.stream.Run(ctx) }()
	return func() {
		cancel()
		close(e.doneCh)
		require.Equal(e.t, context.Canceled, <-errCh)
	}
}

func (e *streamTestEnv) inject(p ...byte) {
	for _, b := range p {
		e.readCh <- b
	}
}

func (e *streamTestEnv) expect(p ...byte) {
	for n, b := range p {
		select {
		case actual := <-e.writeCh:
			require.Equalf(e.t, b, actual, "byte %d mismatch", n)
		case <-time.After(time.Second):
			e.t.Fatalf("expect byte %d timeout", n)
		}
	}
}

func (e *streamTestEnv) expectState(state SyncState) {
	for {
		select {
		case actual := <-e.stream.StateChan():
			if actual == state {
				return
			}
		case <-time.After(time.Second):
			e.t.Fatalf("expect state %x timeout", state)
		}
	}
}

func (e *streamTestEnv) sync() {
	e.expect(syncREQ, 1)
	e.inject(syncACK, 1)
	e.expectState(SyncStateReady)
}

func TestStream(t *testing.T) {
	env := newStreamTestEnv(t)
	stop := env.run()
	env.sync()

	require.NoError(t, env.stream.WritePacket([]byte{4}))
	env.expect((&Packet{Seq: 1, Data: []byte{4}}).Bytes()...)
	require.NoError(t, env.stream.WritePacket([]byte{5, 0, 0, 0x13, 0x88}))
	env.expect((&Packet{Seq: 2, Data: []byte{5, 0, 0, 0x13, 0x88}}).Bytes()...)

	env.inject((&Packet{Seq: 1, Data: []byte{4}}).Bytes()...)
	env.inject((&Packet{Seq: 2, Data: []byte{21, 'p', 'i', 'n', 'g'}}).Bytes()...)
	pkt, err := env.stream.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{4}, pkt)
	pkt, err = env.stream.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{21, 'p', 'i', 'n', 'g'}, pkt)

	stop()
	_, err = env.stream.ReadPacket()
	require.Equal(t, io.EOF, err)
}

func TestStreamResyncOnCorruption(t *testing.T) {
	env := newStreamTestEnv(t)
	defer env.run()()
	env.sync()

	frame := (&Packet{Seq: 1, Data: []byte{4, 1, 2}}).Bytes()
	frame[3] ^= 0xff
	env.inject(frame...)
	env.expect(syncREQ, 1)
	require.Equal(t, ErrNotReady, env.stream.WritePacket([]byte{4}))

	env.inject(syncACK, 7)
	env.expectState(SyncStateReady)
	env.inject((&Packet{Seq: 7, Data: []byte{4, 1, 2}}).Bytes()...)
	pkt, err := env.stream.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{4, 1, 2}, pkt)
}
