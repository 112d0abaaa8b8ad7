package comm

import "errors"

var (
	// ErrNotReady indicates the FIFO is not ready for communication.
	ErrNotReady = errors.New("not ready")
	// ErrEmptyPacket indicates a packet without any data.
	ErrEmptyPacket = errors.New("empty packet")
	// ErrPacketTooLarge indicates the packet data exceeds MaxDataLen.
	ErrPacketTooLarge = errors.New("packet too large")
)
