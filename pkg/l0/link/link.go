// Package link opens L0 links to the motor controller.
package link

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/l0/comm"
	"github.com/robotalks/bldc.go/pkg/l0/serial"
)

// DialTimeout bounds TCP connection setup.
const DialTimeout = 5 * time.Second

// Conn is an L0 link over a byte stream. It implements PacketReadWriter
// and Runnable.
type Conn struct {
	*comm.Stream
	closer io.Closer
}

// NewConn wraps a byte stream. Set readTimeout if Read returns 0 bytes
// periodically rather than blocking.
func NewConn(rwc io.ReadWriteCloser, readTimeout bool) *Conn {
	fifo := comm.NewFIFO(rwc)
	fifo.ReadTimeout = readTimeout
	return &Conn{Stream: comm.NewStream(fifo), closer: rwc}
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	glog.V(1).Infof("link closed: %+v", c.FIFO().Stats())
	return c.closer.Close()
}

// Target is a parsed link address.
type Target struct {
	Scheme  string
	Address string
}

// String implements fmt.Stringer.
func (t Target) String() string {
	return t.Scheme + ":" + t.Address
}

// ParseTarget parses "serial:<path>" or "tcp:<host:port>". A bare path
// means a serial port.
func ParseTarget(s string) (Target, error) {
	scheme, addr := "serial", s
	if n := strings.Index(s, ":"); n > 0 && !strings.HasPrefix(s, "/") {
		scheme, addr = s[:n], s[n+1:]
	}
	switch scheme {
	case "serial", "tcp":
	default:
		return Target{}, fmt.Errorf("unknown link scheme %q", scheme)
	}
	if addr == "" {
		return Target{}, fmt.Errorf("missing address in %q", s)
	}
	return Target{Scheme: scheme, Address: addr}, nil
}

// Open connects to the target.
func Open(target string, opts serial.Options) (*Conn, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	if t.Scheme == "tcp" {
		conn, err := net.DialTimeout("tcp", t.Address, DialTimeout)
		if err != nil {
			return nil, err
		}
		return NewConn(conn, false), nil
	}
	port, err := serial.Open(t.Address, opts)
	if err != nil {
		return nil, err
	}
	return NewConn(port, true), nil
}

// Listener accepts L0 links over TCP.
type Listener struct {
	net.Listener
}

// Listen listens on a TCP address.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{Listener: ln}, nil
}

// AcceptConn waits for the next link.
func (l *Listener) AcceptConn() (*Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(conn, false), nil
}
