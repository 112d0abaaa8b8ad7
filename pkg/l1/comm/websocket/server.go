package websocket

import (
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/bldc.go/pkg/l1/comm"
)

// DefaultPath is the HTTP path serving websocket connections.
const DefaultPath = "/bldc"

// Listener accepts websocket connections. It implements comm.Acceptor.
type Listener struct {
	ln      net.Listener
	server  *http.Server
	connCh  chan *serverConn
	doneCh  chan struct{}
	closeMu sync.Once
}

type serverConn struct {
	*ReadWriter
	closedCh chan struct{}
	once     sync.Once
}

func (c *serverConn) Close() error {
	c.once.Do(func() { close(c.closedCh) })
	return c.ReadWriter.Close()
}

// Listen serves websocket connections on addr at path.
func Listen(addr, path string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = DefaultPath
	}
	l := &Listener{
		ln:     ln,
		connCh: make(chan *serverConn),
		doneCh: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(l.handle))
	l.server = &http.Server{Handler: mux}
	go func() {
		if err := l.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			glog.Errorf("websocket server: %v", err)
		}
	}()
	return l, nil
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept implements comm.Acceptor.
func (l *Listener) Accept() (comm.PacketReadWriter, error) {
	select {
	case conn := <-l.connCh:
		return conn, nil
	case <-l.doneCh:
		return nil, comm.ErrClosed
	}
}

// Close implements comm.Acceptor.
func (l *Listener) Close() error {
	l.closeMu.Do(func() { close(l.doneCh) })
	return l.server.Close()
}

func (l *Listener) handle(ws *websocket.Conn) {
	conn := &serverConn{ReadWriter: New(ws), closedCh: make(chan struct{})}
	select {
	case l.connCh <- conn:
	case <-l.doneCh:
		return
	}
	select {
	case <-conn.closedCh:
	case <-l.doneCh:
	}
}
