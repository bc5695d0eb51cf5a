package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/planit/internal/bodies"
)

// sender is the part of *tea.Program a bridge needs.
type sender interface {
	Send(msg tea.Msg)
}

// WatchBridge forwards manifest snapshots from a bodies.Watcher into the
// program as MsgEntries. It runs until the watcher's channel closes or Stop
// is called.
type WatchBridge struct {
	program  sender
	changes  <-chan bodies.Snapshot
	done     chan struct{}
	exited    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewWatchBridge creates a bridge from changes to p.
func NewWatchBridge(p sender, changes <-chan bodies.Snapshot) *WatchBridge {
	return &WatchBridge{
		program: p,
		changes: changes,
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Start begins forwarding in a background goroutine. Calls after the first,
// or after Stop, do nothing.
func (b *WatchBridge) Start() {
	b.startOnce.Do(func() { go b.loop() })
}

// Stop signals the forwarding goroutine to exit and waits for it. It is
// safe to call multiple times, and before Start.
func (b *WatchBridge) Stop() {
	b.stopOnce.Do(func() { close(b.done) })
	b.startOnce.Do(func() { close(b.exited) })
	<-b.exited
}

func (b *WatchBridge) loop() {
	defer close(b.exited)
	for {
		select {
		case <-b.done:
			return
		case snap, ok := <-b.changes:
			if !ok {
				return
			}
			b.program.Send(MsgEntries{Entries: snap.Entries, Err: snap.Err})
		}
	}
}
