package comm

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/l1"
)

// DefaultCommandExpiration is the default expiration expecting a reply.
const DefaultCommandExpiration = 1 * time.Second

// EventMsg is an unsolicited packet from the device.
type EventMsg struct {
	Packet []byte
}

// NewMessage implements Message.
func (m *EventMsg) NewMessage() fx.Message { return &EventMsg{} }

// Conn implements l1.DeviceConn using Pipe. A reply is matched to the
// earliest pending command with the same opcode. Other packets are
// posted to the Loop as EventMsg.
type Conn struct {
	Expiration time.Duration

	pipe     Pipe
	commands list.List
	lock     sync.Mutex
	now      func() time.Time
}

// NewConn creates a Conn.
func NewConn(rw PacketReadWriter) *Conn {
	c := &Conn{}
	c.Init(rw)
	return c
}

// Init initializes Conn with defaults.
func (c *Conn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = HandlePacketFunc(c.handlePacket)
	c.now = time.Now
}

// DoCommand implements DeviceConn.
func (c *Conn) DoCommand(pkt []byte) l1.CommandFuture {
	f := &commandFuture{result: make(chan l1.Result, 1)}
	if len(pkt) == 0 {
		f.complete(l1.Result{Err: ErrEmptyPacket})
		return f
	}
	f.opcode = pkt[0]
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.pipe.SendPacket(pkt); err != nil {
		f.complete(l1.Result{Err: err})
		return f
	}
	f.expireAt = c.now().Add(c.Expiration)
	c.commands.PushBack(f)
	return f
}

// Send implements DeviceConn.
func (c *Conn) Send(pkt []byte) error {
	if len(pkt) == 0 {
		return ErrEmptyPacket
	}
	return c.pipe.SendPacket(pkt)
}

// Close implements DeviceConn. Pending commands fail with ErrClosed.
func (c *Conn) Close() error {
	c.lock.Lock()
	for c.commands.Len() > 0 {
		f := c.commands.Remove(c.commands.Front()).(*commandFuture)
		f.complete(l1.Result{Err: ErrClosed})
	}
	c.lock.Unlock()
	return c.pipe.Close()
}

// Pending returns the number of commands waiting for replies.
func (c *Conn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.commands.Len()
}

// AddToLoop implements LoopAdder.
func (c *Conn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *Conn) handlePacket(ctx context.Context, _ *Pipe, pkt []byte) error {
	if f := c.match(pkt[0]); f != nil {
		f.complete(l1.Result{Packet: pkt})
		return nil
	}
	glog.V(3).Infof("event opcode %d, %d bytes", pkt[0], len(pkt)-1)
	loopCtl := fx.LoopCtlFrom(ctx)
	loopCtl.PostMessage(&EventMsg{Packet: pkt})
	loopCtl.TriggerNext()
	return nil
}

func (c *Conn) match(opcode byte) *commandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	for elem := c.commands.Front(); elem != nil; elem = elem.Next() {
		if f := elem.Value.(*commandFuture); f.opcode == opcode {
			c.commands.Remove(elem)
			return f
		}
	}
	return nil
}

func (c *Conn) purgeExpired(cc fx.ControlContext) error {
	c.expire(c.now())
	return nil
}

func (c *Conn) expire(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.commands.Len() > 0 {
		elem := c.commands.Front()
		f := elem.Value.(*commandFuture)
		if f.expireAt.After(now) {
			break
		}
		c.commands.Remove(elem)
		f.complete(l1.Result{Err: ErrNoReply})
	}
}

type commandFuture struct {
	opcode   byte
	expireAt time.Time
	result   chan l1.Result
}

func (f *commandFuture) complete(res l1.Result) {
	f.result <- res
	close(f.result)
}

func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}
