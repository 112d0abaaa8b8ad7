package comm

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bldc.go/pkg/commands"
	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/l1"
)

type chanReadWriter struct {
	inCh   chan []byte
	outCh  chan []byte
	doneCh chan struct{}
	once   sync.Once
}

func newChanReadWriter() *chanReadWriter {
	return &chanReadWriter{
		inCh:   make(chan []byte, 16),
		outCh:  make(chan []byte, 16),
		doneCh: make(chan struct{}),
	}
}

func (c *chanReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-c.inCh:
		return pkt, nil
	case <-c.doneCh:
		return nil, io.EOF
	}
}

func (c *chanReadWriter) Close() error {
	c.once.Do(func() { close(c.doneCh) })
	return nil
}

func (c *chanReadWriter) WritePacket(pkt []byte) error {
	c.outCh <- pkt
	return nil
}

func expectOut(t *testing.T, ch <-chan []byte, expect ...byte) {
	select {
	case pkt := <-ch:
		require.Equal(t, expect, pkt)
	case <-time.After(time.Second):
		t.Fatal("expect packet timeout")
	}
}

func expectResult(t *testing.T, f l1.CommandFuture) l1.Result {
	select {
	case res := <-f.ResultChan():
		return res
	case <-time.After(time.Second):
		t.Fatal("expect result timeout")
	}
	return l1.Result{}
}

func runLoop(t *testing.T, adders ...fx.LoopAdder) func() {
	loop := fx.NewLoop()
	loop.Interval = 10 * time.Millisecond
	loop.Add(adders...)
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(doneCh)
	}()
	return func() {
		cancel()
		<-doneCh
	}
}

type eventCollector chan []byte

func (c eventCollector) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			if msg, ok := mctx.CurrentMessage().(*EventMsg); ok {
				mctx.MessageTaken()
				c <- msg.Packet
			}
		}))
		return nil
	}))
}

func TestConnReplyMatching(t *testing.T) {
	rw := newChanReadWriter()
	conn := NewConn(rw)
	events := make(eventCollector, 4)
	stop := runLoop(t, conn, events)
	defer stop()

	f1 := conn.DoCommand([]byte{4})
	f2 := conn.DoCommand([]byte{14})
	f3 := conn.DoCommand([]byte{4})
	expectOut(t, rw.outCh, 4)
	expectOut(t, rw.outCh, 14)
	expectOut(t, rw.outCh, 4)
	require.Equal(t, 3, conn.Pending())

	rw.inCh <- []byte{14, 1}
	require.Equal(t, l1.Result{Packet: []byte{14, 1}}, expectResult(t, f2))
	rw.inCh <- []byte{4, 2}
	require.Equal(t, l1.Result{Packet: []byte{4, 2}}, expectResult(t, f1))
	rw.inCh <- []byte{21, 'h', 'i'}
	expectOut(t, events, 21, 'h', 'i')
	rw.inCh <- []byte{4, 3}
	require.Equal(t, l1.Result{Packet: []byte{4, 3}}, expectResult(t, f3))
	require.Zero(t, conn.Pending())
}

func TestConnSend(t *testing.T) {
	rw := newChanReadWriter()
	conn := NewConn(rw)
	require.NoError(t, conn.Send([]byte{5, 0, 0, 0x13, 0x88}))
	expectOut(t, rw.outCh, 5, 0, 0, 0x13, 0x88)
	require.Equal(t, ErrEmptyPacket, conn.Send(nil))
	require.Equal(t, ErrEmptyPacket, expectResult(t, conn.DoCommand(nil)).Err)
	require.Zero(t, conn.Pending())
}

func TestConnExpire(t *testing.T) {
	rw := newChanReadWriter()
	conn := NewConn(rw)
	now := time.Unix(1000, 0)
	conn.now = func() time.Time { return now }
	f1 := conn.DoCommand([]byte{4})
	now = now.Add(500 * time.Millisecond)
	f2 := conn.DoCommand([]byte{14})

	conn.expire(now.Add(600 * time.Millisecond))
	require.Equal(t, ErrNoReply, expectResult(t, f1).Err)
	require.Equal(t, 1, conn.Pending())

	require.NoError(t, conn.Close())
	require.Equal(t, ErrClosed, expectResult(t, f2).Err)
}

type chanAcceptor struct {
	connCh chan PacketReadWriter
	doneCh chan struct{}
}

func (a *chanAcceptor) Accept() (PacketReadWriter, error) {
	select {
	case rw := <-a.connCh:
		return rw, nil
	case <-a.doneCh:
		return nil, ErrClosed
	}
}

func (a *chanAcceptor) Close() error {
	close(a.doneCh)
	return nil
}

type echoDevice struct{}

func (echoDevice) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			if msg, ok := mctx.CurrentMessage().(*commands.PacketMsg); ok {
				mctx.MessageTaken()
				msg.Sink.SendPacket(msg.Data)
			}
		}))
		return nil
	}))
}

func TestServer(t *testing.T) {
	acceptor := &chanAcceptor{connCh: make(chan PacketReadWriter), doneCh: make(chan struct{})}
	stop := runLoop(t, NewServer("test", acceptor), echoDevice{})

	rw1, rw2 := newChanReadWriter(), newChanReadWriter()
	acceptor.connCh <- rw1
	acceptor.connCh <- rw2
	rw1.inCh <- []byte{4}
	expectOut(t, rw1.outCh, 4)
	rw2.inCh <- []byte{31}
	expectOut(t, rw2.outCh, 31)
	stop()
}
