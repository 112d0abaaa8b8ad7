package eeprom

import "sync"

// Memory is an in-memory Storage. Reads and writes can be made to fail
// at specific addresses.
type Memory struct {
	lock      sync.RWMutex
	vars      map[uint16]uint16
	failRead  map[uint16]bool
	failWrite map[uint16]bool
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		vars:      make(map[uint16]uint16),
		failRead:  make(map[uint16]bool),
		failWrite: make(map[uint16]bool),
	}
}

// FailReadAt makes reading addr fail.
func (m *Memory) FailReadAt(addr uint16) *Memory {
	m.lock.Lock()
	m.failRead[addr] = true
	m.lock.Unlock()
	return m
}

// FailWriteAt makes writing addr fail.
func (m *Memory) FailWriteAt(addr uint16) *Memory {
	m.lock.Lock()
	m.failWrite[addr] = true
	m.lock.Unlock()
	return m
}

// ClearFailures removes all injected failures.
func (m *Memory) ClearFailures() {
	m.lock.Lock()
	m.failRead = make(map[uint16]bool)
	m.failWrite = make(map[uint16]bool)
	m.lock.Unlock()
}

// ReadVariable implements Storage.
func (m *Memory) ReadVariable(addr uint16) (uint16, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.failRead[addr] {
		return 0, &AccessError{Op: "read", Addr: addr}
	}
	v, ok := m.vars[addr]
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

// WriteVariable implements Storage.
func (m *Memory) WriteVariable(addr, value uint16) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.failWrite[addr] {
		return &AccessError{Op: "write", Addr: addr}
	}
	m.vars[addr] = value
	return nil
}

// Len returns the number of variables written.
func (m *Memory) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.vars)
}
