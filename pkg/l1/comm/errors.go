package comm

import "errors"

var (
	// ErrNoReply indicates no reply received before the command expires.
	ErrNoReply = errors.New("no reply")
	// ErrClosed indicates the connection is closed.
	ErrClosed = errors.New("connection closed")
	// ErrEmptyPacket indicates a packet without opcode.
	ErrEmptyPacket = errors.New("empty packet")
)
