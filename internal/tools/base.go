package tools

import (
	"fmt"

	"vector-editor/internal/features"
	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
)

// base holds the lifecycle, key routing and coordinate accumulation shared by
// every tool. Concrete tools embed it and pass themselves to activate so the
// registered handlers reach their overrides.
type base struct {
	env    Env
	kind   ToolType
	cursor surface.Cursor

	active    bool
	drawing   bool
	coords    []orb.Point
	listeners surface.Registry

	// Drawing tools turn off double-click zoom while active.
	holdDoubleClickZoom bool
	zoomWasEnabled      bool

	// Called by reset to clear tool-owned staged features.
	onReset func()
}

func newBase(env Env, kind ToolType, cursor surface.Cursor) base {
	env.Config = env.Config.WithDefaults()
	return base{env: env, kind: kind, cursor: cursor}
}

func (b *base) Type() ToolType { return b.kind }
func (b *base) IsActive() bool { return b.active }
func (b *base) config() Config { return b.env.Config }
func (b *base) cb() Callbacks  { return b.env.Callbacks }

// State returns a copy of the drawing progress.
func (b *base) State() DrawingState {
	coords := make([]orb.Point, len(b.coords))
	copy(coords, b.coords)
	return DrawingState{IsActive: b.active, IsDrawing: b.drawing, Coordinates: coords}
}

// activate subscribes self to canvas events. Calling it while active is a no-op.
func (b *base) activate(self Tool) bool {
	if b.active {
		return false
	}
	b.active = true

	canvas := b.env.Surface.Canvas()
	b.listeners.Add(canvas, surface.EventClick, self.OnClick)
	b.listeners.Add(canvas, surface.EventDoubleClick, self.OnDoubleClick)
	b.listeners.Add(canvas, surface.EventMouseDown, self.OnMouseDown)
	b.listeners.Add(canvas, surface.EventMouseMove, self.OnMouseMove)
	b.listeners.Add(canvas, surface.EventMouseUp, self.OnMouseUp)
	b.listeners.Add(canvas, surface.EventKeyDown, self.OnKeyDown)

	if b.holdDoubleClickZoom {
		dbl := b.env.Surface.Interactions().DoubleClickZoom
		b.zoomWasEnabled = dbl.IsEnabled()
		dbl.Disable()
	}
	b.env.Surface.SetCursor(b.cursor)
	return true
}

// deactivate removes every subscription and discards progress. Calling it
// while inactive is a no-op.
func (b *base) deactivate() bool {
	if !b.active {
		return false
	}
	b.listeners.RemoveAll()
	b.reset()
	if b.holdDoubleClickZoom && b.zoomWasEnabled {
		b.env.Surface.Interactions().DoubleClickZoom.Enable()
	}
	b.active = false
	b.env.Surface.SetCursor(surface.CursorDefault)
	return true
}

// reset returns the tool to idle with no accumulated coordinates.
func (b *base) reset() {
	b.drawing = false
	b.coords = nil
	if b.onReset != nil {
		b.onReset()
	}
}

// cancel always resets; repeated calls are harmless.
func (b *base) cancel() {
	b.reset()
}

// handleKey applies the shared key bindings. It returns false for keys the
// tool should handle itself.
func (b *base) handleKey(self Tool, ev *surface.Event) bool {
	switch ev.Key {
	case surface.KeyEscape:
		self.Cancel()
		b.cb().Cancelled()
	case surface.KeyEnter:
		if b.drawing {
			self.FinishDrawing()
		}
	case surface.KeyBackspace, surface.KeyDelete:
		b.undo()
	default:
		return false
	}
	return true
}

// undo drops the last accumulated point.
func (b *base) undo() bool {
	if !b.config().AllowUndo || !b.drawing || len(b.coords) == 0 {
		return false
	}
	b.coords = b.coords[:len(b.coords)-1]
	return true
}

// layer returns the active layer, reporting an error when none is set.
func (b *base) layer() (string, bool) {
	id := ""
	if b.env.ActiveLayer != nil {
		id = b.env.ActiveLayer()
	}
	if id == "" {
		b.cb().Error(ErrNoActiveLayer.Error())
		return "", false
	}
	return id, true
}

// finish builds the accumulated coordinates into a feature of kind. With too
// few coordinates it reports an error and keeps the progress.
func (b *base) finish(kind geometry.Kind) bool {
	if !b.active {
		return false
	}
	if len(b.coords) < geometry.MinVertices(kind) {
		b.cb().Error(fmt.Sprintf("%s needs at least %d points", kind, geometry.MinVertices(kind)))
		return false
	}
	layerID, ok := b.layer()
	if !ok {
		return false
	}
	g, err := geometry.Build(kind, b.coords)
	if err != nil {
		b.cb().Error(err.Error())
		return false
	}
	f := features.NewFeature(g, layerID, b.env.Surface.Clock().Now())
	b.reset()
	b.cb().Complete(f)
	return true
}

// snap corrects a position through the snap engine, ignoring staged ids.
func (b *base) snap(ev *surface.Event, exclude ...string) orb.Point {
	if b.env.Snap == nil {
		return ev.LngLat
	}
	exclude = append(exclude, PointPreviewID, PointSuccessID, DraftID, PreviewID)
	return b.env.Snap.Snap(ev.Point, ev.LngLat, exclude...).Position
}

// status reports a message, appending the position when coordinates are shown.
func (b *base) status(msg string, at *orb.Point) {
	if at != nil && b.config().ShowCoordinates {
		msg = fmt.Sprintf("%s (%.6f, %.6f)", msg, at[0], at[1])
	}
	b.cb().Status(msg)
}
