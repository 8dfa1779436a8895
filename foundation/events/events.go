// Package events fans out messages to registered subscribers. The node uses
// it to forward chain activity to websocket clients.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is the number of messages a subscriber can fall behind
// before messages are dropped for it.
const messageBuffer = 100

type subscriber struct {
	ch      chan string
	dropped int
}

// Events maintains the set of subscribers by unique id.
type Events struct {
	mu   sync.Mutex
	subs map[string]*subscriber
}

// New constructs an empty set of subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]*subscriber),
	}
}

// Shutdown closes and removes every subscriber.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.subs {
		delete(evt.subs, id)
		close(sub.ch)
	}
}

// Acquire registers a subscriber under the id and returns the channel its
// messages are delivered on. Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if sub, exists := evt.subs[id]; exists {
		return sub.ch
	}

	sub := subscriber{
		ch: make(chan string, messageBuffer),
	}
	evt.subs[id] = &sub

	return sub.ch
}

// Release closes and removes the subscriber. It returns the number of
// messages the subscriber missed because it fell behind.
func (evt *Events) Release(id string) (int, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.subs[id]
	if !exists {
		return 0, fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.subs, id)
	close(sub.ch)

	return sub.dropped, nil
}

// Send delivers the message to every subscriber without blocking. A
// subscriber with a full buffer misses the message. It returns the number
// of subscribers the message was delivered to.
func (evt *Events) Send(s string) int {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	var sent int
	for _, sub := range evt.subs {
		select {
		case sub.ch <- s:
			sent++
		default:
			sub.dropped++
		}
	}

	return sent
}

// Count returns the number of subscribers.
func (evt *Events) Count() int {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	return len(evt.subs)
}
