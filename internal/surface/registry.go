package surface

type registration struct {
	target Target
	kind   EventKind
	id     ListenerID
}

// Registry records every handler added through it so they can all be removed
// with a single call.
type Registry struct {
	entries []registration
}

// Add registers h on target and records it.
func (r *Registry) Add(target Target, kind EventKind, h Handler) {
	id := target.On(kind, h)
	r.entries = append(r.entries, registration{target: target, kind: kind, id: id})
}

// AddCapture registers h on target in the capture phase and records it.
func (r *Registry) AddCapture(target Target, kind EventKind, h Handler) {
	id := target.OnCapture(kind, h)
	r.entries = append(r.entries, registration{target: target, kind: kind, id: id})
}

// RemoveAll unregisters every recorded handler and returns how many there were.
// Calling it again is a no-op.
func (r *Registry) RemoveAll() int {
	n := len(r.entries)
	for _, e := range r.entries {
		e.target.Off(e.kind, e.id)
	}
	r.entries = nil
	return n
}

// Len returns the number of live registrations.
func (r *Registry) Len() int {
	return len(r.entries)
}
