package commands

import (
	"context"

	fx "github.com/robotalks/bldc.go/pkg/framework"
)

// PacketMsg carries an inbound packet through the Loop.
type PacketMsg struct {
	Data []byte
	Sink Sink
}

// NewMessage implements Message.
func (m *PacketMsg) NewMessage() fx.Message {
	return &PacketMsg{}
}

// PostPacket queues an inbound packet to the Loop running ctx and wakes it up.
func PostPacket(ctx context.Context, sink Sink, data []byte) {
	loopCtl := fx.LoopCtlFrom(ctx)
	loopCtl.PostMessage(&PacketMsg{Data: data, Sink: sink})
	loopCtl.TriggerNext()
}

// Control implements Controller, processing queued packets in order.
func (d *Dispatcher) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if msg, ok := mctx.CurrentMessage().(*PacketMsg); ok {
			mctx.MessageTaken()
			d.HandlePacket(msg.Sink, msg.Data)
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (d *Dispatcher) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, d)
}
