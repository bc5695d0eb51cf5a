// Package notify provides a small typed publish/subscribe registry. Listeners
// run synchronously on the goroutine that calls Notify.
package notify

import "sync"

type listener[T any] struct {
	id uint64
	fn func(T)
}

// Notifier fans a value out to every subscribed listener. The zero value is
// ready to use.
type Notifier[T any] struct {
	mu        sync.Mutex
	listeners []listener[T]
	nextID    uint64
}

// Subscribe registers fn and returns a function that removes it. The returned
// function is idempotent and may be called from inside a listener.
func (n *Notifier[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, listener[T]{id: id, fn: fn})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notifier[T]) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.listeners {
		if n.listeners[i].id == id {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return
		}
	}
}

// Notify calls every listener with v, in subscription order. The listener set
// is snapshotted first, so subscribing or unsubscribing during dispatch takes
// effect from the next Notify.
func (n *Notifier[T]) Notify(v T) {
	n.mu.Lock()
	snapshot := make([]listener[T], len(n.listeners))
	copy(snapshot, n.listeners)
	n.mu.Unlock()

	for _, l := range snapshot {
		l.fn(v)
	}
}

// Len returns the number of registered listeners.
func (n *Notifier[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
