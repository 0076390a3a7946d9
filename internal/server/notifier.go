package server

import (
	"sync"

	"github.com/leapstack-labs/sqla2lint/internal/engine"
)

// Notifier fans watch reports out to every subscribed event stream.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan *engine.Report]struct{}
}

// NewNotifier creates a notifier with no listeners.
func NewNotifier() *Notifier {
	return &Notifier{
		listeners: make(map[chan *engine.Report]struct{}),
	}
}

// Subscribe returns a channel receiving broadcast reports. The caller must
// call Unsubscribe when done.
func (n *Notifier) Subscribe() chan *engine.Report {
	ch := make(chan *engine.Report, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan *engine.Report) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends report to all listeners. A listener that has not drained
// its previous report misses this one.
func (n *Notifier) Broadcast(report *engine.Report) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- report:
		default:
		}
	}
}

// Len returns the number of listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
