// Package surface defines what the editor needs from the map it draws on:
// projection, hit testing, GeoJSON sources, interaction toggles and scoped
// event targets. It also provides the pieces shared by every implementation
// (event dispatch, scene, viewport, clocks) and an in-memory surface.
package surface

import (
	"time"

	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
)

// EventKind identifies pointer, keyboard and page events.
type EventKind int

const (
	EventClick EventKind = iota
	EventDoubleClick
	EventMouseDown
	EventMouseMove
	EventMouseUp
	EventKeyDown
	EventKeyUp
	EventVisibilityChange
	EventBeforeUnload
)

// String returns the DOM-style name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventClick:
		return "click"
	case EventDoubleClick:
		return "dblclick"
	case EventMouseDown:
		return "mousedown"
	case EventMouseMove:
		return "mousemove"
	case EventMouseUp:
		return "mouseup"
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	case EventVisibilityChange:
		return "visibilitychange"
	case EventBeforeUnload:
		return "beforeunload"
	default:
		return "unknown"
	}
}

// IsPointer reports whether the kind carries a screen position.
func (k EventKind) IsPointer() bool {
	return k <= EventMouseUp
}

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Has reports whether all bits of m2 are set.
func (m Modifier) Has(m2 Modifier) bool {
	return m&m2 == m2
}

// Key names a keyboard key. Letters use their lower-case rune.
type Key string

const (
	KeyEscape    Key = "Escape"
	KeyEnter     Key = "Enter"
	KeyBackspace Key = "Backspace"
	KeyDelete    Key = "Delete"
	KeySpace     Key = "Space"
)

// Event is a single input event delivered to handlers.
type Event struct {
	Kind      EventKind
	Point     geometry.Point2D // canvas pixels
	LngLat    orb.Point
	Button    Button
	Modifiers Modifier
	Key       Key
	Hidden    bool // visibilitychange: page hidden
	Time      time.Time

	stopped bool
}

// StopPropagation prevents handlers registered after the current one, and
// targets further up, from seeing the event.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Handler receives events from a Target.
type Handler func(ev *Event)
