// Package codec implements the fixed-point big-endian encoding used by
// the packet protocol, together with field tables describing how
// configuration records map to the wire and to persistent slots.
//
// Real-valued quantities travel as integers of round(value*scale), using
// two's-complement for signed values, most significant byte first.
package codec
