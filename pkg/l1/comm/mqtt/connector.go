package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/l1"
	"github.com/robotalks/bldc.go/pkg/l1/comm"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	brokerURL string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, _, err := ClientOptionsFromURL(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, brokerURL: brokerURL}, nil
}

// Discover implements Connector, collecting retained metadata.
func (c *Connector) Discover(ctx context.Context) (res []l1.DeviceInfo, err error) {
	q, err := NewQueueFromURL(c.brokerURL)
	if err != nil {
		return nil, err
	}
	token := q.Connect()
	token.Wait()
	if err = token.Error(); err != nil {
		return nil, err
	}
	defer q.Close()

	resCh := make(chan l1.DeviceInfo, 1)
	doneCh := make(chan struct{})
	defer close(doneCh)
	sub := q.Sub(MetaPattern, Handler(func(topic string, payload []byte) {
		info, ok := parseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case resCh <- info:
		case <-doneCh:
		}
	}))
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur <= 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

func parseMeta(topic string, payload []byte) (info l1.DeviceInfo, ok bool) {
	ref, kind, ok := ParseTopic(topic)
	if !ok || kind != "meta" || len(payload) == 0 {
		return info, false
	}
	info.Ref = ref
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.V(2).Infof("invalid meta of %s: %v", ref.Name(), err)
	}
	return info, true
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.DeviceRef) (l1.DeviceConn, error) {
	q, err := NewQueueFromURL(c.brokerURL)
	if err != nil {
		return nil, err
	}
	conn := &DeviceConn{Queue: q}
	conn.Init(NewPacketReadWriter(q).ForHost(ref))
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return conn, nil
}

// DeviceConn implements DeviceConn using MQTT.
type DeviceConn struct {
	comm.Conn
	Queue *Queue
}

// Close implements DeviceConn.
func (c *DeviceConn) Close() error {
	c.Conn.Close()
	return c.Queue.Close()
}
