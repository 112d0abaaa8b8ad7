package l1

import (
	"context"
)

// DeviceRef is a reference to a motor controller.
type DeviceRef struct {
	// Type is the device type, e.g. "bldc".
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is valid.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// DeviceMeta provides metadata for a device.
type DeviceMeta struct {
	Description string            `json:"description,omitempty"`
	Firmware    string            `json:"firmware,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// DeviceInfo provides information of a device.
type DeviceInfo struct {
	Ref  DeviceRef
	Meta DeviceMeta
}

// Connector is used by hosts to reach devices registered with a broker.
type Connector interface {
	// Discover enumerates registered devices.
	Discover(context.Context) ([]DeviceInfo, error)
	// Connect connects to the specified device.
	Connect(context.Context, DeviceRef) (DeviceConn, error)
}

// DeviceConn is the host side connection to a device.
type DeviceConn interface {
	// DoCommand sends a packet and expects a reply with the same opcode.
	DoCommand(pkt []byte) CommandFuture
	// Send sends a packet expecting no reply.
	Send(pkt []byte) error
	// Close disconnects.
	Close() error
}

// Result represents the reply of a command.
type Result struct {
	Packet []byte
	Err    error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
