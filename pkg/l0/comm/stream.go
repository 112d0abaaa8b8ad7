package comm

import (
	"context"
	"io"
)

// Stream provides packet read/write over FIFO.
type Stream struct {
	fifo     *FIFO
	packetCh chan []byte
	stateCh  chan SyncState
}

// NewStream creates a Stream and wraps the fifo.
func NewStream(fifo *FIFO) *Stream {
	s := &Stream{
		fifo:     fifo,
		packetCh: make(chan []byte, 16),
		stateCh:  make(chan SyncState, 1),
	}
	s.fifo.Handler = s
	s.fifo.Notifier = StateChangedFunc(func(ctx context.Context, state SyncState) {
		select {
		case <-s.stateCh:
		default:
		}
		s.stateCh <- state
	})
	return s
}

// FIFO gets wrapped FIFO.
func (s *Stream) FIFO() *FIFO {
	return s.fifo
}

// StateChan retrieves the chan reporting the latest state.
func (s *Stream) StateChan() <-chan SyncState {
	return s.stateCh
}

// ReadPacket implements PacketReader.
func (s *Stream) ReadPacket() ([]byte, error) {
	data, ok := <-s.packetCh
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

// WritePacket implements PacketWriter.
func (s *Stream) WritePacket(data []byte) error {
	return s.fifo.SendPacket(data)
}

// HandlePacket implements PacketHandler.
func (s *Stream) HandlePacket(ctx context.Context, pkt *Packet) {
	select {
	case s.packetCh <- pkt.Data:
	case <-ctx.Done():
	}
}

// Run wraps FIFO.Run to implement Runnable. Pending reads return io.EOF
// once it returns.
func (s *Stream) Run(ctx context.Context) error {
	defer close(s.packetCh)
	return s.fifo.Run(ctx)
}
