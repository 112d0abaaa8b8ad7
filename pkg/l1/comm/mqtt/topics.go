package mqtt

import (
	"strings"

	"github.com/robotalks/bldc.go/pkg/l1"
)

// Topics are the topics of a device relative to the queue prefix.
type Topics struct {
	// Cmd carries packets from hosts to the device.
	Cmd string
	// Msg carries packets from the device to hosts.
	Msg string
	// Meta holds the retained device metadata.
	Meta string
}

// MetaPattern matches the meta topics of all devices.
const MetaPattern = "+/+/meta"

// TopicsFor returns the topics of a device.
func TopicsFor(ref l1.DeviceRef) Topics {
	prefix := ref.Name()
	return Topics{Cmd: prefix + "/cmd", Msg: prefix + "/msg", Meta: prefix + "/meta"}
}

// ParseTopic extracts the device and the topic kind from a topic
// relative to the queue prefix.
func ParseTopic(topic string) (ref l1.DeviceRef, kind string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 {
		return
	}
	ref = l1.DeviceRef{Type: items[0], ID: items[1]}
	return ref, items[2], ref.IsValid()
}

// MatchTopic matches topic with pattern.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for i, token := range tokensP {
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if i >= len(tokensT) {
			return false
		}
		if token != "+" && token != tokensT[i] {
			return false
		}
	}
	return len(tokensP) == len(tokensT)
}
