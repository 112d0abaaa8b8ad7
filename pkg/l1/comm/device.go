package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/commands"
	fx "github.com/robotalks/bldc.go/pkg/framework"
)

// PostToLoop posts packets to the Loop for the Dispatcher, replying
// through the receiving Pipe.
var PostToLoop = HandlePacketFunc(func(ctx context.Context, pipe *Pipe, pkt []byte) error {
	commands.PostPacket(ctx, pipe, pkt)
	return nil
})

// NewDevicePipe creates a Pipe delivering packets to the Dispatcher.
func NewDevicePipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw, Handler: PostToLoop}
}

// Acceptor accepts packet connections.
type Acceptor interface {
	Accept() (PacketReadWriter, error)
	Close() error
}

// Server runs a device Pipe for every accepted connection.
type Server struct {
	Name     string
	Acceptor Acceptor
	Handler  PacketHandler
}

// NewServer creates a Server posting packets to the Dispatcher.
func NewServer(name string, acceptor Acceptor) *Server {
	return &Server{Name: name, Acceptor: acceptor, Handler: PostToLoop}
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	return fx.RunWithContextCloser(ctx, s.Acceptor, func() error {
		for {
			rw, err := s.Acceptor.Accept()
			if err != nil {
				return err
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.serve(ctx, rw)
			}()
		}
	})
}

func (s *Server) serve(ctx context.Context, rw PacketReadWriter) {
	glog.Infof("%s: connection accepted", s.Name)
	runner := fx.NewRunnerWith(ctx)
	if runnable, ok := rw.(fx.Runnable); ok {
		runner.Go(runnable)
	}
	runner.Go(&Pipe{ReadWriter: rw, Handler: s.Handler})
	if err := runner.Wait(); err != nil {
		glog.Warningf("%s: connection closed: %v", s.Name, err)
		return
	}
	glog.Infof("%s: connection closed", s.Name)
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun(s.Name, s))
}
