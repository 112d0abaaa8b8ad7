// Package app holds the active application configuration and the latest
// values decoded from the input devices.
package app

import (
	"sync"

	"github.com/robotalks/bldc.go/pkg/conf"
)

// App is the application state.
type App struct {
	lock        sync.RWMutex
	conf        conf.AppConfig
	decodedPPM  float64
	decodedChuk float64
	onChange    []func(conf.AppConfig)
}

// New creates an App with the given configuration.
func New(c conf.AppConfig) *App {
	return &App{conf: c}
}

// Configuration returns the active configuration.
func (a *App) Configuration() conf.AppConfig {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.conf
}

// SetConfiguration replaces the active configuration.
func (a *App) SetConfiguration(c conf.AppConfig) {
	a.lock.Lock()
	a.conf = c
	handlers := a.onChange
	a.lock.Unlock()
	for _, fn := range handlers {
		fn(c)
	}
}

// OnChange registers a func invoked after the configuration changes.
func (a *App) OnChange(fn func(conf.AppConfig)) {
	a.lock.Lock()
	a.onChange = append(a.onChange, fn)
	a.lock.Unlock()
}

// PPMDecoder returns the decoder of the servo pulse input.
func (a *App) PPMDecoder() Decoder {
	return decoderFunc(func() float64 {
		a.lock.RLock()
		defer a.lock.RUnlock()
		return a.decodedPPM
	})
}

// ChukDecoder returns the decoder of the nunchuk input.
func (a *App) ChukDecoder() Decoder {
	return decoderFunc(func() float64 {
		a.lock.RLock()
		defer a.lock.RUnlock()
		return a.decodedChuk
	})
}

// SetDecodedPPM records the latest servo pulse value in [-1, 1].
func (a *App) SetDecodedPPM(v float64) {
	a.lock.Lock()
	a.decodedPPM = v
	a.lock.Unlock()
}

// SetDecodedChuk records the latest nunchuk value in [-1, 1].
func (a *App) SetDecodedChuk(v float64) {
	a.lock.Lock()
	a.decodedChuk = v
	a.lock.Unlock()
}

// Decoder provides a decoded input value.
type Decoder interface {
	Decoded() float64
}

type decoderFunc func() float64

func (f decoderFunc) Decoded() float64 {
	return f()
}
