package comm

import (
	"io"
	"time"
)

// MaxDataLen is the max number of data bytes in a frame.
const MaxDataLen = 256

// PacketSeq defines the type of packet sequence number.
type PacketSeq byte

// NewPacketSeq creates a randome packet sequence number.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return PacketSeq(n)
}

// IsValid checks if it's a valid sequence number.
func (s PacketSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// Packet contains the information of a parsed frame.
type Packet struct {
	Seq  PacketSeq
	Data []byte
}

// Validate checks the data length fits in a frame.
func (p *Packet) Validate() error {
	switch l := len(p.Data); {
	case l == 0:
		return ErrEmptyPacket
	case l > MaxDataLen:
		return ErrPacketTooLarge
	}
	return nil
}

// Bytes returns the encoded frame. The packet must be valid.
func (p *Packet) Bytes() []byte {
	b := make([]byte, 0, len(p.Data)+4)
	b = append(b, byte(p.Seq), byte(len(p.Data)-1))
	b = append(b, p.Data...)
	crc := CRC16(b[1:])
	return append(b, byte(crc>>8), byte(crc))
}

// WriteTo writes the encoded frame.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	n, err := w.Write(p.Bytes())
	return int64(n), err
}
