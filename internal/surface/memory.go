package surface

import (
	"time"

	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Memory is a headless Surface. Input is injected with the Click, MouseDown,
// KeyDown and similar helpers and time only moves through its ManualClock.
type Memory struct {
	*Scene

	viewport     Viewport
	canvas       *Dispatcher
	document     *Dispatcher
	interactions Interactions
	cursor       Cursor
	clock        *ManualClock
	modifiers    Modifier
}

// NewMemory creates a 800x600 surface centred on 0,0 at zoom 16.
func NewMemory() *Memory {
	return &Memory{
		Scene:        NewScene(),
		viewport:     NewViewport(orb.Point{0, 0}, 16, 800, 600),
		canvas:       NewDispatcher(),
		document:     NewDispatcher(),
		interactions: NewInteractions(),
		clock:        NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

// SetViewport replaces the projection used by Project and Unproject.
func (m *Memory) SetViewport(v Viewport) { m.viewport = v }

// Viewport returns the current projection.
func (m *Memory) Viewport() Viewport { return m.viewport }

func (m *Memory) Project(p orb.Point) geometry.Point2D   { return m.viewport.Project(p) }
func (m *Memory) Unproject(p geometry.Point2D) orb.Point { return m.viewport.Unproject(p) }

// QueryRenderedFeatures hit-tests the scene through the current viewport.
func (m *Memory) QueryRenderedFeatures(p geometry.Point2D, radius float64, layers []string) []*geojson.Feature {
	return m.Scene.Query(m.Project, p, radius, layers)
}

func (m *Memory) Interactions() Interactions { return m.interactions }
func (m *Memory) Canvas() Target             { return m.canvas }
func (m *Memory) Document() Target           { return m.document }
func (m *Memory) SetCursor(c Cursor)         { m.cursor = c }
func (m *Memory) Clock() Clock               { return m.clock }

// Cursor returns the last cursor set.
func (m *Memory) Cursor() Cursor { return m.cursor }

// ManualClock returns the clock driving timers on this surface.
func (m *Memory) ManualClock() *ManualClock { return m.clock }

// CanvasListeners returns the number of handlers registered on the canvas.
func (m *Memory) CanvasListeners() int { return m.canvas.Count() }

// DocumentListeners returns the number of handlers registered on the document.
func (m *Memory) DocumentListeners() int { return m.document.Count() }

// Hold sets the modifiers reported with subsequent pointer events.
func (m *Memory) Hold(mods Modifier) { m.modifiers = mods }

// Release clears held modifiers.
func (m *Memory) Release() { m.modifiers = 0 }

func (m *Memory) pointer(kind EventKind, p geometry.Point2D) *Event {
	return &Event{
		Kind:      kind,
		Point:     p,
		LngLat:    m.Unproject(p),
		Button:    ButtonLeft,
		Modifiers: m.modifiers,
		Time:      m.clock.Now(),
	}
}

// Fire delivers ev to the canvas and, unless stopped there, to the document.
func (m *Memory) Fire(ev *Event) {
	m.canvas.Dispatch(ev)
	if ev.Stopped() {
		return
	}
	m.document.Dispatch(ev)
}

func (m *Memory) Click(p geometry.Point2D)       { m.Fire(m.pointer(EventClick, p)) }
func (m *Memory) DoubleClick(p geometry.Point2D) { m.Fire(m.pointer(EventDoubleClick, p)) }
func (m *Memory) MouseDown(p geometry.Point2D)   { m.Fire(m.pointer(EventMouseDown, p)) }
func (m *Memory) MouseMove(p geometry.Point2D)   { m.Fire(m.pointer(EventMouseMove, p)) }
func (m *Memory) MouseUp(p geometry.Point2D)     { m.Fire(m.pointer(EventMouseUp, p)) }

// ClickAt clicks at the screen position of a world coordinate.
func (m *Memory) ClickAt(p orb.Point) { m.Click(m.Project(p)) }

// KeyDown delivers a key press.
func (m *Memory) KeyDown(k Key) {
	m.Fire(&Event{Kind: EventKeyDown, Key: k, Modifiers: m.modifiers, Time: m.clock.Now()})
}

// Hide reports the page as hidden to document listeners.
func (m *Memory) Hide() {
	m.document.Dispatch(&Event{Kind: EventVisibilityChange, Hidden: true, Time: m.clock.Now()})
}

// Unload reports the page being closed to document listeners.
func (m *Memory) Unload() {
	m.document.Dispatch(&Event{Kind: EventBeforeUnload, Time: m.clock.Now()})
}

// Advance moves the clock forward, firing due timers.
func (m *Memory) Advance(d time.Duration) { m.clock.Advance(d) }
