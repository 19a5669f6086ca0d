package surface

import (
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Surface is the rendering collaborator the editor draws on.
type Surface interface {
	// Project converts a world position to canvas pixels.
	Project(p orb.Point) geometry.Point2D

	// Unproject converts canvas pixels to a world position.
	Unproject(p geometry.Point2D) orb.Point

	// QueryRenderedFeatures returns features drawn within radius pixels of p,
	// topmost first, restricted to the named layers (all layers when empty).
	QueryRenderedFeatures(p geometry.Point2D, radius float64, layers []string) []*geojson.Feature

	// Source returns a GeoJSON source by name.
	Source(name string) (GeoJSONSource, bool)

	// AddSource returns the named source, creating it when missing.
	AddSource(name string) GeoJSONSource

	// AddLayer adds or replaces a style layer drawn from a source.
	AddLayer(layer StyleLayer)

	Interactions() Interactions
	Canvas() Target
	Document() Target
	SetCursor(c Cursor)
	Clock() Clock
}

// GeoJSONSource is a render source replaced wholesale on every update.
type GeoJSONSource interface {
	SetData(fc *geojson.FeatureCollection) error
}

// Target delivers events of one scope (the map canvas or the whole document).
type Target interface {
	On(kind EventKind, h Handler) ListenerID
	OnCapture(kind EventKind, h Handler) ListenerID
	Off(kind EventKind, id ListenerID)
}

// Cursor is the pointer shape shown over the canvas.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCrosshair
	CursorPointer
	CursorMove
)

// Toggle is an on/off switch for a built-in map interaction.
type Toggle struct {
	enabled bool
}

// NewToggle creates an enabled toggle.
func NewToggle() *Toggle {
	return &Toggle{enabled: true}
}

func (t *Toggle) Enable()         { t.enabled = true }
func (t *Toggle) Disable()        { t.enabled = false }
func (t *Toggle) IsEnabled() bool { return t.enabled }

// Interactions groups the pan/zoom handlers that compete with editing gestures.
type Interactions struct {
	DragPan         *Toggle
	ScrollZoom      *Toggle
	DoubleClickZoom *Toggle
}

// NewInteractions returns a set with every interaction enabled.
func NewInteractions() Interactions {
	return Interactions{
		DragPan:         NewToggle(),
		ScrollZoom:      NewToggle(),
		DoubleClickZoom: NewToggle(),
	}
}

// DisablePanZoom turns off drag pan and both zoom gestures.
func (i Interactions) DisablePanZoom() {
	i.DragPan.Disable()
	i.ScrollZoom.Disable()
	i.DoubleClickZoom.Disable()
}

// EnablePanZoom turns drag pan and both zoom gestures back on.
func (i Interactions) EnablePanZoom() {
	i.DragPan.Enable()
	i.ScrollZoom.Enable()
	i.DoubleClickZoom.Enable()
}
