package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/bldc.go/pkg/framework"
)

// Pipe is a bi-directional pipe for packets.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    PacketHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// SendPacket sends a single packet. It implements commands.Sink.
func (p *Pipe) SendPacket(pkt []byte) error {
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run implements Runnable. The ReadWriter is closed when Run returns.
func (p *Pipe) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, p, func() error {
		for {
			pkt, err := p.ReadWriter.ReadPacket()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			if len(pkt) == 0 {
				glog.V(3).Info("ignore empty packet")
				continue
			}
			if h := p.Handler; h != nil {
				if err = h.HandlePacket(ctx, p, pkt); err != nil {
					return err
				}
			}
		}
	})
}

// Close implements Closer.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	if adder, ok := p.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(p)
}
