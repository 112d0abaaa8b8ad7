package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultSyncTimeout is the time waiting for the peer during sync or
// within a frame.
const DefaultSyncTimeout = 100 * time.Millisecond

// PacketHandler is called when a packet is received.
type PacketHandler interface {
	HandlePacket(context.Context, *Packet)
}

// HandlePacketFunc is func type of PacketHandler.
type HandlePacketFunc func(context.Context, *Packet)

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, pkt *Packet) {
	f(ctx, pkt)
}

// StateNotifier is called when packet stream state changed.
type StateNotifier interface {
	StateChanged(context.Context, SyncState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, SyncState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state SyncState) {
	f(ctx, state)
}

// Stats counts link activity.
type Stats struct {
	Sent     uint64
	Received uint64
	Corrupt  uint64
	Resyncs  uint64
}

// FIFO sends and receives frames over a byte stream.
type FIFO struct {
	ReadWriter  io.ReadWriter
	Handler     PacketHandler
	Notifier    StateNotifier
	Timeout     time.Duration
	ReadTimeout bool // set to true if ReadWriter already supports timeout with Read

	seq   PacketSeq
	state SyncState
	stats Stats
	lock  sync.RWMutex

	syncTimer <-chan time.Time
	parser    Parser
}

// NewFIFO creates a FIFO.
func NewFIFO(rw io.ReadWriter) *FIFO {
	return &FIFO{
		ReadWriter: rw,
		Timeout:    DefaultSyncTimeout,
		seq:        NewPacketSeq(),
	}
}

// State gets the state.
func (f *FIFO) State() SyncState {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.state
}

// Stats returns a snapshot of the counters.
func (f *FIFO) Stats() Stats {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.stats
}

// Send sends a packet. It fails with ErrNotReady until the link is synchronized.
func (f *FIFO) Send(pkt *Packet) error {
	if err := pkt.Validate(); err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.state.IsReady() {
		return ErrNotReady
	}
	pkt.Seq = f.seq
	if _, err := pkt.WriteTo(f.ReadWriter); err != nil {
		return err
	}
	f.seq = f.seq.Next()
	f.stats.Sent++
	return nil
}

// SendPacket sends data in a single frame.
func (f *FIFO) SendPacket(data []byte) error {
	return f.Send(&Packet{Data: data})
}

// Run processes the FIFO in the background.
func (f *FIFO) Run(ctx context.Context) error {
	if err := f.apply(ctx, f.parser.Reset()); err != nil {
		return err
	}
	if f.ReadTimeout {
		return f.runPolling(ctx)
	}
	return f.runStreaming(ctx)
}

// runPolling reads inline, a read timeout drives the parser timeout.
func (f *FIFO) runPolling(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		var pr ParseResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.syncTimer:
			pr = f.parser.Timeout()
		default:
			n, err := f.ReadWriter.Read(buf)
			switch {
			case err != nil && !os.IsTimeout(err):
				return err
			case err != nil || n == 0:
				pr = f.parser.Timeout()
			default:
				pr = f.parser.Parse(buf[0])
			}
		}
		if err := f.apply(ctx, pr); err != nil {
			return err
		}
	}
}

// runStreaming reads in a separate goroutine for readers without timeout.
func (f *FIFO) runStreaming(ctx context.Context) error {
	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go f.readLoop(subCtx, byteCh, errCh)
	for {
		var pr ParseResult
		select {
		case b := <-byteCh:
			pr = f.parser.Parse(b)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-f.syncTimer:
			pr = f.parser.Timeout()
		}
		if err := f.apply(ctx, pr); err != nil {
			return err
		}
	}
}

func (f *FIFO) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		_, err := f.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

func (f *FIFO) apply(ctx context.Context, pr ParseResult) (err error) {
	var notifier StateNotifier
	f.lock.Lock()
	if f.state != pr.State {
		f.state = pr.State
		notifier = f.Notifier
	}
	if pr.Corrupt {
		f.stats.Corrupt++
		glog.V(1).Info("drop corrupted frame, resync")
	}
	if pr.Packet != nil {
		f.stats.Received++
	}
	if pr.Sync == syncREQ {
		f.stats.Resyncs++
	}
	if pr.Sync != 0 {
		_, err = f.ReadWriter.Write([]byte{pr.Sync, byte(f.seq)})
	}
	f.lock.Unlock()
	if err != nil {
		return
	}

	f.updateTimer(pr)
	if notifier != nil {
		glog.V(2).Infof("link state %#x", pr.State)
		notifier.StateChanged(ctx, pr.State)
	}
	if pr.Packet != nil {
		if h := f.Handler; h != nil {
			h.HandlePacket(ctx, pr.Packet)
		}
	}
	return
}

func (f *FIFO) updateTimer(pr ParseResult) {
	if f.ReadTimeout {
		// the read timeout paces the parser, only a pending sync
		// request needs its own timer.
		if pr.Sync == syncREQ {
			f.syncTimer = time.After(f.Timeout)
		} else {
			f.syncTimer = nil
		}
		return
	}
	switch pr.WhatAboutTimer() {
	case TimerRestart:
		f.syncTimer = time.After(f.Timeout)
	case TimerStop:
		f.syncTimer = nil
	}
}
