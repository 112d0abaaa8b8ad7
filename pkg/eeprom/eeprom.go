// Package eeprom provides the persistent variable storage used for
// configuration records. A variable is a 16-bit value addressed by a
// 16-bit virtual address.
package eeprom

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the variable was never written.
	ErrNotFound = errors.New("variable not found")
)

// Storage reads and writes 16-bit variables.
type Storage interface {
	ReadVariable(addr uint16) (uint16, error)
	WriteVariable(addr, value uint16) error
}

// AccessError is returned by an injected failure.
type AccessError struct {
	Op   string
	Addr uint16
}

// Error implements error.
func (e *AccessError) Error() string {
	return fmt.Sprintf("%s variable %d failed", e.Op, e.Addr)
}
