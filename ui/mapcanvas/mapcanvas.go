// Package mapcanvas provides the map widget the editor draws on. It renders
// the scene with pan and zoom and translates fyne input into editor events.
package mapcanvas

import (
	"image"
	"strings"
	"sync"
	"time"

	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	zoomStep          = 0.5 // levels per wheel notch
	doubleClickWindow = 300 * time.Millisecond
	doubleClickSlop   = 4 // pixels
)

// MapCanvas is a fyne widget implementing surface.Surface.
type MapCanvas struct {
	widget.BaseWidget
	*surface.Scene

	mu       sync.Mutex
	viewport surface.Viewport
	cursor   surface.Cursor

	canvas       *surface.Dispatcher
	document     *surface.Dispatcher
	interactions surface.Interactions
	clock        surface.Clock

	// Pointer state
	modifiers surface.Modifier
	pressed   bool
	lastPos   geometry.Point2D
	lastTap   time.Time
	lastTapAt geometry.Point2D

	raster *fynecanvas.Raster

	onViewChange func(v surface.Viewport)
	onPointer    func(p orb.Point)
}

var (
	_ surface.Surface    = (*MapCanvas)(nil)
	_ desktop.Mouseable  = (*MapCanvas)(nil)
	_ desktop.Hoverable  = (*MapCanvas)(nil)
	_ desktop.Keyable    = (*MapCanvas)(nil)
	_ desktop.Cursorable = (*MapCanvas)(nil)
	_ fyne.Tappable      = (*MapCanvas)(nil)
	_ fyne.Draggable     = (*MapCanvas)(nil)
	_ fyne.Scrollable    = (*MapCanvas)(nil)
)

// New creates a map canvas centred on center at the given zoom.
func New(center orb.Point, zoom float64) *MapCanvas {
	m := &MapCanvas{
		Scene:        surface.NewScene(),
		viewport:     surface.NewViewport(center, zoom, 800, 600),
		canvas:       surface.NewDispatcher(),
		document:     surface.NewDispatcher(),
		interactions: surface.NewInteractions(),
		clock:        surface.SystemClock(),
	}
	m.raster = fynecanvas.NewRaster(m.draw)
	m.raster.ScaleMode = fynecanvas.ImageScalePixels
	m.ExtendBaseWidget(m)
	m.Scene.OnChange(m.Refresh)
	return m
}

func (m *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.raster)
}

func (m *MapCanvas) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// Resize keeps the viewport size in step with the widget.
func (m *MapCanvas) Resize(size fyne.Size) {
	m.mu.Lock()
	m.viewport.Width = float64(size.Width)
	m.viewport.Height = float64(size.Height)
	m.mu.Unlock()
	m.BaseWidget.Resize(size)
}

// OnViewChange sets a callback run after every pan or zoom.
func (m *MapCanvas) OnViewChange(f func(v surface.Viewport)) { m.onViewChange = f }

// OnPointer sets a callback receiving the world position under the pointer.
func (m *MapCanvas) OnPointer(f func(p orb.Point)) { m.onPointer = f }

// Viewport returns the current view.
func (m *MapCanvas) Viewport() surface.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// SetView moves the map to center and zoom.
func (m *MapCanvas) SetView(center orb.Point, zoom float64) {
	m.mu.Lock()
	m.viewport = surface.NewViewport(center, zoom, m.viewport.Width, m.viewport.Height)
	v := m.viewport
	m.mu.Unlock()
	m.viewChanged(v)
}

// FitBounds centres the map on b at the deepest zoom that shows all of it.
func (m *MapCanvas) FitBounds(b orb.Bound) {
	v := m.Viewport()
	v.Center = b.Center()
	for z := 22.0; z > 0; z-- {
		v.Zoom = z
		tl, br := v.Project(orb.Point{b.Min[0], b.Max[1]}), v.Project(orb.Point{b.Max[0], b.Min[1]})
		if tl.X >= 0 && tl.Y >= 0 && br.X <= v.Width && br.Y <= v.Height {
			break
		}
	}
	m.SetView(v.Center, v.Zoom)
}

func (m *MapCanvas) viewChanged(v surface.Viewport) {
	if m.onViewChange != nil {
		m.onViewChange(v)
	}
	m.Refresh()
}

// Surface

func (m *MapCanvas) Project(p orb.Point) geometry.Point2D {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport.Project(p)
}

func (m *MapCanvas) Unproject(p geometry.Point2D) orb.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport.Unproject(p)
}

func (m *MapCanvas) QueryRenderedFeatures(p geometry.Point2D, radius float64, layers []string) []*geojson.Feature {
	return m.Scene.Query(m.Project, p, radius, layers)
}

func (m *MapCanvas) Interactions() surface.Interactions { return m.interactions }
func (m *MapCanvas) Canvas() surface.Target             { return m.canvas }
func (m *MapCanvas) Document() surface.Target           { return m.document }
func (m *MapCanvas) Clock() surface.Clock               { return m.clock }

func (m *MapCanvas) SetCursor(c surface.Cursor) {
	m.mu.Lock()
	m.cursor = c
	m.mu.Unlock()
}

// Cursor implements desktop.Cursorable.
func (m *MapCanvas) Cursor() desktop.Cursor {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.cursor {
	case surface.CursorCrosshair:
		return desktop.CrosshairCursor
	case surface.CursorPointer, surface.CursorMove:
		return desktop.PointerCursor
	default:
		return desktop.DefaultCursor
	}
}

// Page lifecycle

// PageHidden tells document listeners the window went to the background.
func (m *MapCanvas) PageHidden() {
	m.document.Dispatch(&surface.Event{Kind: surface.EventVisibilityChange, Hidden: true, Time: m.clock.Now()})
}

// Unload tells document listeners the window is closing.
func (m *MapCanvas) Unload() {
	m.document.Dispatch(&surface.Event{Kind: surface.EventBeforeUnload, Time: m.clock.Now()})
}

// Input

func (m *MapCanvas) pointer(kind surface.EventKind, pos fyne.Position) *surface.Event {
	p := geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}
	m.mu.Lock()
	m.lastPos = p
	mods := m.modifiers
	m.mu.Unlock()
	return &surface.Event{
		Kind:      kind,
		Point:     p,
		LngLat:    m.Unproject(p),
		Button:    surface.ButtonLeft,
		Modifiers: mods,
		Time:      m.clock.Now(),
	}
}

// fire delivers ev to the canvas and, unless stopped there, to the document.
func (m *MapCanvas) fire(ev *surface.Event) {
	m.canvas.Dispatch(ev)
	if ev.Stopped() {
		return
	}
	m.document.Dispatch(ev)
}

func (m *MapCanvas) setModifiers(km fyne.KeyModifier) {
	m.mu.Lock()
	m.modifiers = translateModifiers(km)
	m.mu.Unlock()
}

func (m *MapCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	m.setModifiers(ev.Modifier)
	m.mu.Lock()
	m.pressed = true
	m.mu.Unlock()
	if c := fyne.CurrentApp(); c != nil {
		if fc := c.Driver().CanvasForObject(m); fc != nil {
			fc.Focus(m)
		}
	}
	m.fire(m.pointer(surface.EventMouseDown, ev.Position))
}

func (m *MapCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	m.release(ev.Position)
}

// release fires the mouseup for the current press once.
func (m *MapCanvas) release(pos fyne.Position) {
	m.mu.Lock()
	wasPressed := m.pressed
	m.pressed = false
	m.mu.Unlock()
	if wasPressed {
		m.fire(m.pointer(surface.EventMouseUp, pos))
	}
}

func (m *MapCanvas) MouseIn(ev *desktop.MouseEvent) {}
func (m *MapCanvas) MouseOut()                      {}

func (m *MapCanvas) MouseMoved(ev *desktop.MouseEvent) {
	m.setModifiers(ev.Modifier)
	e := m.pointer(surface.EventMouseMove, ev.Position)
	m.fire(e)
	if m.onPointer != nil {
		m.onPointer(e.LngLat)
	}
}

// Tapped fires a click, followed by a dblclick when it closely follows the
// previous click.
func (m *MapCanvas) Tapped(ev *fyne.PointEvent) {
	click := m.pointer(surface.EventClick, ev.Position)
	m.fire(click)

	m.mu.Lock()
	double := !m.lastTap.IsZero() &&
		click.Time.Sub(m.lastTap) <= doubleClickWindow &&
		click.Point.Distance(m.lastTapAt) <= doubleClickSlop
	if double {
		m.lastTap = time.Time{}
	} else {
		m.lastTap = click.Time
		m.lastTapAt = click.Point
	}
	m.mu.Unlock()
	if !double {
		return
	}

	dbl := m.pointer(surface.EventDoubleClick, ev.Position)
	m.fire(dbl)
	if !dbl.Stopped() && m.interactions.DoubleClickZoom.IsEnabled() {
		m.zoomAround(1, dbl.Point)
	}
}

func (m *MapCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if !m.interactions.ScrollZoom.IsEnabled() || ev.Scrolled.DY == 0 {
		return
	}
	delta := zoomStep
	if ev.Scrolled.DY < 0 {
		delta = -zoomStep
	}
	m.zoomAround(delta, geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)})
}

// Dragged reports the pointer movement to listeners first, so a tool can
// claim the gesture by disabling drag pan, then pans if still allowed.
func (m *MapCanvas) Dragged(ev *fyne.DragEvent) {
	m.fire(m.pointer(surface.EventMouseMove, ev.Position))
	if !m.interactions.DragPan.IsEnabled() {
		return
	}
	m.mu.Lock()
	m.viewport = m.viewport.Pan(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
	v := m.viewport
	m.mu.Unlock()
	m.viewChanged(v)
}

func (m *MapCanvas) DragEnd() {
	m.mu.Lock()
	p := m.lastPos
	m.mu.Unlock()
	m.release(fyne.NewPos(float32(p.X), float32(p.Y)))
}

func (m *MapCanvas) zoomAround(delta float64, anchor geometry.Point2D) {
	m.mu.Lock()
	m.viewport = m.viewport.ZoomAround(delta, anchor)
	v := m.viewport
	m.mu.Unlock()
	m.viewChanged(v)
}

// Keyboard

func (m *MapCanvas) FocusGained()                {}
func (m *MapCanvas) FocusLost()                  {}
func (m *MapCanvas) TypedRune(r rune)            {}
func (m *MapCanvas) TypedKey(ev *fyne.KeyEvent)  {}
func (m *MapCanvas) KeyUp(ev *fyne.KeyEvent)     { m.fireKey(surface.EventKeyUp, ev.Name) }
func (m *MapCanvas) KeyDown(ev *fyne.KeyEvent)   { m.fireKey(surface.EventKeyDown, ev.Name) }
func (m *MapCanvas) HandleKey(name fyne.KeyName) { m.fireKey(surface.EventKeyDown, name) }

func (m *MapCanvas) fireKey(kind surface.EventKind, name fyne.KeyName) {
	k, ok := translateKey(name)
	if !ok {
		return
	}
	m.mu.Lock()
	mods := m.modifiers
	m.mu.Unlock()
	m.fire(&surface.Event{Kind: kind, Key: k, Modifiers: mods, Time: m.clock.Now()})
}

func translateKey(name fyne.KeyName) (surface.Key, bool) {
	switch name {
	case fyne.KeyEscape:
		return surface.KeyEscape, true
	case fyne.KeyReturn, fyne.KeyEnter:
		return surface.KeyEnter, true
	case fyne.KeyBackspace:
		return surface.KeyBackspace, true
	case fyne.KeyDelete:
		return surface.KeyDelete, true
	case fyne.KeySpace:
		return surface.KeySpace, true
	}
	if len(name) == 1 {
		return surface.Key(strings.ToLower(string(name))), true
	}
	return "", false
}

func translateModifiers(km fyne.KeyModifier) surface.Modifier {
	var m surface.Modifier
	if km&fyne.KeyModifierShift != 0 {
		m |= surface.ModShift
	}
	if km&fyne.KeyModifierControl != 0 {
		m |= surface.ModCtrl
	}
	if km&fyne.KeyModifierAlt != 0 {
		m |= surface.ModAlt
	}
	if km&fyne.KeyModifierSuper != 0 {
		m |= surface.ModSuper
	}
	return m
}

// Rendering

func (m *MapCanvas) draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v := m.Viewport()
	scale := 1.0
	if v.Width > 0 {
		scale = float64(w) / v.Width
	}
	RenderScene(img, m.Scene, func(p orb.Point) geometry.Point2D {
		s := v.Project(p)
		return geometry.Point2D{X: s.X * scale, Y: s.Y * scale}
	})
	return img
}
