package main

import (
	"flag"
	"log"
	"sync"

	"github.com/robotalks/bldc.go/pkg/commands"
	"github.com/robotalks/bldc.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/bldc.go/pkg/l1/env/host"
	"github.com/robotalks/bldc.go/pkg/l1/msgs"
)

//go-build: CGO_ENABLED=0

type monitor struct {
	lock     sync.Mutex
	trackers map[string]*msgs.Tracker
}

func (m *monitor) track(topic string, env *msgs.Envelope) uint32 {
	m.lock.Lock()
	defer m.lock.Unlock()
	t := m.trackers[topic]
	if t == nil {
		t = &msgs.Tracker{}
		m.trackers[topic] = t
	}
	return t.Track(env)
}

func (m *monitor) handle(topic string, payload []byte) {
	_, kind, ok := mqtt.ParseTopic(topic)
	if !ok {
		return
	}
	if kind == "meta" {
		log.Printf("%s: %s", topic, string(payload))
		return
	}
	env, err := msgs.DecodeEnvelope(payload)
	if err != nil {
		log.Printf("%s: bad envelope: %v", topic, err)
		return
	}
	if missed := m.track(topic, env); missed > 0 {
		log.Printf("%s: %d packets missed", topic, missed)
	}
	log.Printf("%s: #%d %s", topic, env.Sequence, commands.FormatPacket(env.Packet))
}

func init() {
	host.SetupFlags()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(host.NewConfig().RegistryURL)
	if err != nil {
		log.Fatalln(err)
	}
	m := &monitor{trackers: make(map[string]*msgs.Tracker)}
	q.Sub("#", m.handle)
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
