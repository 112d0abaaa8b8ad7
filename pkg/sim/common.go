package sim

import (
	"sync"

	"github.com/robotalks/bldc.go/pkg/mcpwm"
)

// FaultCaster provides a subscriber and implements
// listener to cast notifications.
type FaultCaster struct {
	lock      sync.RWMutex
	listeners []FaultListener
}

// SubscribeFaults implements FaultSubscriber.
func (c *FaultCaster) SubscribeFaults(ln FaultListener) {
	c.lock.Lock()
	c.listeners = append(c.listeners, ln)
	c.lock.Unlock()
}

// RecordFault implements FaultListener.
func (c *FaultCaster) RecordFault(code mcpwm.FaultCode) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	for _, ln := range c.listeners {
		ln.RecordFault(code)
	}
}
