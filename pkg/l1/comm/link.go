package comm

import (
	"github.com/robotalks/bldc.go/pkg/l0/link"
)

// LinkAcceptor accepts L0 links over TCP.
type LinkAcceptor struct {
	*link.Listener
}

// ListenLink listens for L0 links on a TCP address.
func ListenLink(addr string) (*LinkAcceptor, error) {
	ln, err := link.Listen(addr)
	if err != nil {
		return nil, err
	}
	return &LinkAcceptor{Listener: ln}, nil
}

// Accept implements Acceptor.
func (a *LinkAcceptor) Accept() (PacketReadWriter, error) {
	return a.AcceptConn()
}
