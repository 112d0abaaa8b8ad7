// Package msgs provides the envelope carrying command packets over
// message brokers.
package msgs

// Packets relayed through a broker lose the ordering and integrity
// guarantees of the L0 link. Each one is wrapped in an Envelope with a
// per-sender sequence number and the send time, so consumers can detect
// drops and reordering.
//
// Producer: device and host bridges
// Consumer: device dispatcher, host shell and monitors
