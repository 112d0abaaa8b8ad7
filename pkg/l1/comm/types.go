package comm

import "context"

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// PacketHandler handles a packet received from a Pipe.
type PacketHandler interface {
	HandlePacket(ctx context.Context, pipe *Pipe, pkt []byte) error
}

// HandlePacketFunc is func form of PacketHandler.
type HandlePacketFunc func(context.Context, *Pipe, []byte) error

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, pipe *Pipe, pkt []byte) error {
	return f(ctx, pipe, pkt)
}
