package mqtt

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/l1"
	"github.com/robotalks/bldc.go/pkg/l1/msgs"
)

// ReadWriter implements PacketReadWriter, carrying each packet in an
// Envelope.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	sealer   msgs.Sealer
	tracker  msgs.Tracker
	packetCh chan []byte
	doneCh   chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		doneCh:   make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForHost subscribes to device messages and publishes commands.
func (p *ReadWriter) ForHost(ref l1.DeviceRef) *ReadWriter {
	topics := TopicsFor(ref)
	return p.WithTopics(topics.Msg, topics.Cmd)
}

// ForDevice subscribes to commands and publishes device messages.
func (p *ReadWriter) ForDevice(ref l1.DeviceRef) *ReadWriter {
	topics := TopicsFor(ref)
	return p.WithTopics(topics.Cmd, topics.Msg)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.doneCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	payload, err := p.sealer.Seal(pkt)
	if err != nil {
		return err
	}
	token := p.Queue.Pub(p.PubTopic, payload)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	defer sub.Close()
	defer close(p.doneCh)
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(topic string, payload []byte) {
	env, err := msgs.DecodeEnvelope(payload)
	if err != nil {
		glog.V(2).Infof("drop invalid envelope on %q: %v", topic, err)
		return
	}
	if missed := p.tracker.Track(env); missed > 0 {
		glog.Warningf("%d packets missed on %q", missed, topic)
	}
	select {
	case p.packetCh <- env.Packet:
	case <-p.doneCh:
	}
}
