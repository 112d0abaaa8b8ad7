// Package serial opens serial ports for L0 links.
package serial

import (
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate of the motor controller UART.
const DefaultBaudRate = 115200

// DefaultReadTimeout bounds a single Read so the FIFO can handle timers.
const DefaultReadTimeout = 20 * time.Millisecond

// Options describes the serial connection parameters.
type Options struct {
	BaudRate    int
	Parity      string
	StopBits    int
	ReadTimeout time.Duration
}

// Normalize validates the options and applies defaults.
func (o Options) Normalize() (Options, error) {
	if o.BaudRate <= 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.StopBits == 0 {
		o.StopBits = 1
	}
	if o.StopBits != 1 && o.StopBits != 2 {
		return o, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", o.StopBits)
	}
	switch parity := strings.ToUpper(strings.TrimSpace(o.Parity)); parity {
	case "", "N", "NONE":
		o.Parity = "N"
	case "E", "EVEN":
		o.Parity = "E"
	case "O", "ODD":
		o.Parity = "O"
	default:
		return o, fmt.Errorf("unsupported parity %q: expected N, E, or O", o.Parity)
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	return o, nil
}

// Mode converts the options for opening a port.
func (o Options) Mode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	mode := &serial.Mode{BaudRate: opts.BaudRate, DataBits: 8, StopBits: serial.OneStopBit}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}
	return mode, nil
}

// Open opens the port with a read timeout. Read returns 0 bytes without
// error when the timeout expires.
func Open(path string, opts Options) (serial.Port, error) {
	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}
	opts, _ = opts.Normalize()
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := port.SetReadTimeout(opts.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}
	return port, nil
}

// Ports lists the serial ports available.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
