package mqtt

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"

	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/l1"
	"github.com/robotalks/bldc.go/pkg/l1/comm"
)

// Device registers a motor controller with the broker and relays its
// command packets to the Dispatcher.
type Device struct {
	Queue *Queue
	Info  l1.DeviceInfo

	topics   Topics
	metaJSON []byte
	pipe     *comm.Pipe
}

// NewDevice creates a Device.
func NewDevice(brokerURL string, info l1.DeviceInfo) (*Device, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, qos, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	topics := TopicsFor(info.Ref)
	opts.SetBinaryWill(topicPrefix+topics.Meta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("bldc:" + info.Ref.Name())
	}
	d := &Device{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		topics:   topics,
		metaJSON: meta,
	}
	d.Queue.QoS = qos
	d.Queue.OnConnect = func(*Queue) { d.publishMeta(d.metaJSON) }
	d.pipe = comm.NewDevicePipe(NewPacketReadWriter(d.Queue).ForDevice(info.Ref))
	return d, nil
}

// SendPacket implements commands.Sink, broadcasting to all hosts.
func (d *Device) SendPacket(pkt []byte) error {
	return d.pipe.SendPacket(pkt)
}

// AddToLoop implements LoopAdder.
func (d *Device) AddToLoop(loop *fx.Loop) {
	loop.Add(d.pipe)
	loop.AddRunnable(fx.NamedRun("mqtt", d))
}

// Run implements Runnable.
func (d *Device) Run(ctx context.Context) error {
	token := d.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	<-ctx.Done()
	d.publishMeta(nil).Wait()
	d.Queue.Close()
	return ctx.Err()
}

func (d *Device) publishMeta(meta []byte) paho.Token {
	return d.Queue.PubWith(d.topics.Meta, meta, 1, true)
}
