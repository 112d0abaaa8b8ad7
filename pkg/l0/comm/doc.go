// Package comm provides L0 protocol support.
package comm

// L0 protocol is communicated between the motor controller and a host
// over a peer-to-peer byte stream (e.g. serial port or TCP).
//
// Peers synchronize with a sequence handshake: a syncREQ followed by the
// sender's next sequence number, answered by a syncACK with the peer's.
// Once synchronized, each frame is
//
//	seq, len-1, data[len], crc_hi, crc_lo
//
// where data is a complete command packet (opcode followed by payload) of
// 1 to 256 bytes, and the CRC16-CCITT covers the length byte and data.
// A sequence or CRC mismatch restarts the handshake.
