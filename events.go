package mic

import (
	"sync"
	"time"
)

// Event names a notification raised on the audio stream
type Event string

const (
	EventSilence     Event = "silence"
	EventSound       Event = "sound"
	EventStart       Event = "startComplete"
	EventStop        Event = "stopComplete"
	EventPause       Event = "pauseComplete"
	EventResume      Event = "resumeComplete"
	EventProcessExit Event = "audioProcessExitComplete"
	EventError       Event = "error"
)

// Notification is delivered to every handler subscribed to its Event
type Notification struct {
	Event   Event
	Err     error  // set for EventError only
	Session string // capture session that raised it, empty outside a session
	Time    time.Time
}

// Handler receives notifications. Handlers run on the goroutine that raised
// the event: control calls for lifecycle events, the stdout pump for
// silence/sound/exit events.
type Handler func(n Notification)

type subscription struct {
	id uint64
	fn Handler
}

// emitter is a small named-notification registry
type emitter struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Event][]subscription
}

// On registers h for ev and returns a function that removes it
func (e *emitter) On(ev Event, h Handler) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.subs == nil {
		e.subs = make(map[Event][]subscription)
	}
	e.nextID++
	id := e.nextID
	e.subs[ev] = append(e.subs[ev], subscription{id: id, fn: h})

	return func() { e.off(ev, id) }
}

// ListenerCount returns the number of handlers registered for ev
func (e *emitter) ListenerCount(ev Event) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[ev])
}

func (e *emitter) off(ev Event, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subs[ev]
	for i, s := range subs {
		if s.id == id {
			e.subs[ev] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// emit calls the handlers of n.Event in registration order. The handler list
// is copied first so handlers may subscribe or unsubscribe.
func (e *emitter) emit(n Notification) {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}

	e.mu.RLock()
	subs := append([]subscription(nil), e.subs[n.Event]...)
	e.mu.RUnlock()

	for _, s := range subs {
		s.fn(n)
	}
}
