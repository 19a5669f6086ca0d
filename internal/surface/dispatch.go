package surface

import "sync"

// ListenerID identifies a registered handler.
type ListenerID uint64

type listener struct {
	id      ListenerID
	handler Handler
	removed bool
}

// Dispatcher is a Target that runs capture-phase handlers before normal ones,
// each group in registration order, until a handler stops propagation.
type Dispatcher struct {
	mu      sync.Mutex
	next    ListenerID
	capture map[EventKind][]*listener
	bubble  map[EventKind][]*listener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		capture: make(map[EventKind][]*listener),
		bubble:  make(map[EventKind][]*listener),
	}
}

// On registers h for kind in the normal phase.
func (d *Dispatcher) On(kind EventKind, h Handler) ListenerID {
	return d.add(d.bubble, kind, h)
}

// OnCapture registers h for kind in the capture phase.
func (d *Dispatcher) OnCapture(kind EventKind, h Handler) ListenerID {
	return d.add(d.capture, kind, h)
}

func (d *Dispatcher) add(phase map[EventKind][]*listener, kind EventKind, h Handler) ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	phase[kind] = append(phase[kind], &listener{id: d.next, handler: h})
	return d.next
}

// Off removes a handler. Unknown ids are ignored.
func (d *Dispatcher) Off(kind EventKind, id ListenerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, phase := range []map[EventKind][]*listener{d.capture, d.bubble} {
		list := phase[kind]
		for i, l := range list {
			if l.id == id {
				l.removed = true
				phase[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Count returns the number of registered handlers across all kinds.
func (d *Dispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, list := range d.capture {
		n += len(list)
	}
	for _, list := range d.bubble {
		n += len(list)
	}
	return n
}

// Dispatch delivers ev to the registered handlers. Handlers removed while the
// event is being delivered are skipped.
func (d *Dispatcher) Dispatch(ev *Event) {
	d.mu.Lock()
	snapshot := make([]*listener, 0, len(d.capture[ev.Kind])+len(d.bubble[ev.Kind]))
	snapshot = append(snapshot, d.capture[ev.Kind]...)
	snapshot = append(snapshot, d.bubble[ev.Kind]...)
	d.mu.Unlock()

	for _, l := range snapshot {
		if ev.Stopped() {
			return
		}
		d.mu.Lock()
		removed := l.removed
		d.mu.Unlock()
		if removed {
			continue
		}
		l.handler(ev)
	}
}
