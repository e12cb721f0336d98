// Package events is the notification bus triggers are broadcast on.
//
// Listeners subscribe to a name such as "global:saved" or "p1:closed"
// and receive the trigger's data as the detail payload. Dispatch calls
// listeners synchronously, in subscription order.
package events

import (
	"encoding/json"
	"sync"
)

// Event is one broadcast notification.
type Event struct {
	Name   string
	Detail json.RawMessage
}

// Handler receives events.
type Handler func(Event)

// Bus is a named publish/subscribe bus. The zero value is ready to use.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]listener
}

type listener struct {
	id uint64
	fn Handler
}

// Subscribe registers fn for name and returns a function removing it.
func (b *Bus) Subscribe(name string, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[string][]listener)
	}
	b.nextID++
	id := b.nextID
	b.listeners[name] = append(b.listeners[name], listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *Bus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.listeners[name]
	for i, l := range ls {
		if l.id == id {
			b.listeners[name] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(b.listeners[name]) == 0 {
		delete(b.listeners, name)
	}
}

// Dispatch delivers an event to every listener of name and returns how
// many received it.
func (b *Bus) Dispatch(name string, detail json.RawMessage) int {
	b.mu.RLock()
	ls := append([]listener(nil), b.listeners[name]...)
	b.mu.RUnlock()

	ev := Event{Name: name, Detail: detail}
	for _, l := range ls {
		l.fn(ev)
	}
	return len(ls)
}

// Listeners returns the number of listeners subscribed to name.
func (b *Bus) Listeners(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name])
}
