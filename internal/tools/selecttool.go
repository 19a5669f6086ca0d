package tools

import (
	"vector-editor/internal/features"
	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SelectState is the state of the select tool's gesture machine.
type SelectState int

const (
	SelectIdle SelectState = iota
	SelectSelecting
	SelectDragging
)

func (s SelectState) String() string {
	switch s {
	case SelectIdle:
		return "idle"
	case SelectSelecting:
		return "selecting"
	case SelectDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// selectionDrag is captured on mouse-down. originalGeometry is assigned once
// and every frame translates a fresh copy of it.
type selectionDrag struct {
	featureID        string
	startCoords      orb.Point
	startPoint       geometry.Point2D
	originalGeometry orb.Geometry
	feature          *geojson.Feature
	isDragging       bool
}

// SelectTool selects features and moves them by dragging.
type SelectTool struct {
	base

	state SelectState
	drag  *selectionDrag
}

// NewSelectTool creates an inactive select tool.
func NewSelectTool(env Env) *SelectTool {
	return &SelectTool{base: newBase(env, ToolSelect, surface.CursorPointer)}
}

// SelectState returns the current gesture state.
func (t *SelectTool) SelectState() SelectState { return t.state }

// IsDragging reports whether a drag is in flight.
func (t *SelectTool) IsDragging() bool { return t.state == SelectDragging }

func (t *SelectTool) Activate() {
	if t.activate(t) {
		t.status("Click to select, drag to move", nil)
	}
}

// Deactivate cancels a drag in flight exactly as Escape does.
func (t *SelectTool) Deactivate() {
	if !t.active {
		return
	}
	t.Cancel()
	t.deactivate()
}

func (t *SelectTool) OnClick(ev *surface.Event)       {}
func (t *SelectTool) OnDoubleClick(ev *surface.Event) {}

// OnMouseDown selects the topmost hit feature and snapshots it for a
// possible drag. A miss without modifiers clears the selection.
func (t *SelectTool) OnMouseDown(ev *surface.Event) {
	if !t.active || ev.Button != surface.ButtonLeft || t.state == SelectDragging {
		return
	}

	hit := t.hitTest(ev.Point)
	if hit == nil {
		t.state = SelectIdle
		t.drag = nil
		if !ev.Modifiers.Has(surface.ModShift) && !ev.Modifiers.Has(surface.ModCtrl) && !ev.Modifiers.Has(surface.ModSuper) {
			t.cb().Deselected()
		}
		return
	}

	id := features.ID(hit)
	t.cb().Selected(id, modeFor(ev.Modifiers))
	t.state = SelectSelecting
	t.drag = nil
	if t.config().EnableDrag {
		t.drag = &selectionDrag{
			featureID:        id,
			startCoords:      ev.LngLat,
			startPoint:       ev.Point,
			originalGeometry: orb.Clone(hit.Geometry),
			feature:          features.Clone(hit),
		}
	}
}

// OnMouseMove promotes a pending selection to a drag once the pointer has
// moved past the threshold, then translates the staged copy.
func (t *SelectTool) OnMouseMove(ev *surface.Event) {
	if !t.active || t.drag == nil {
		return
	}
	switch t.state {
	case SelectSelecting:
		if ev.Point.Distance(t.drag.startPoint) <= t.config().DragThreshold {
			return
		}
		t.startDrag()
		t.moveTo(ev.LngLat)
	case SelectDragging:
		t.moveTo(ev.LngLat)
	}
}

// OnMouseUp commits a drag with the staged geometry, or ends a plain click.
func (t *SelectTool) OnMouseUp(ev *surface.Event) {
	if !t.active {
		return
	}
	if t.state != SelectDragging {
		t.state = SelectIdle
		t.drag = nil
		return
	}

	d := t.drag
	final := d.originalGeometry
	if staged, ok := t.env.Stage.Feature(d.featureID); ok {
		final = staged.Geometry
	}
	t.env.Stage.RemoveFeature(d.featureID)
	t.endDrag()
	t.cb().DragEnd(d.featureID, final)
	t.status("Feature moved", nil)
}

// OnKeyDown cancels a drag on Escape, or clears the selection when idle.
func (t *SelectTool) OnKeyDown(ev *surface.Event) {
	if !t.active || ev.Key != surface.KeyEscape {
		return
	}
	if t.state == SelectIdle {
		t.cb().Deselected()
		return
	}
	t.Cancel()
}

// FinishDrawing does nothing; the select tool never draws.
func (t *SelectTool) FinishDrawing() {}

// Cancel discards a drag in flight and returns to idle.
func (t *SelectTool) Cancel() {
	if !t.active {
		return
	}
	if t.state == SelectDragging {
		t.env.Stage.RemoveFeature(t.drag.featureID)
		t.endDrag()
		t.cb().Cancelled()
		t.status("Move cancelled", nil)
	}
	t.state = SelectIdle
	t.drag = nil
	t.cancel()
}

func (t *SelectTool) startDrag() {
	t.state = SelectDragging
	t.drag.isDragging = true
	t.env.Surface.Interactions().DisablePanZoom()
	t.env.Surface.SetCursor(surface.CursorMove)
	t.cb().DragStart(t.drag.featureID)
}

func (t *SelectTool) endDrag() {
	t.env.Surface.Interactions().EnablePanZoom()
	t.env.Surface.SetCursor(t.cursor)
	t.state = SelectIdle
	t.drag = nil
}

// moveTo stages the original geometry translated by the offset from the
// mouse-down position.
func (t *SelectTool) moveTo(lngLat orb.Point) {
	d := t.drag
	dx := lngLat[0] - d.startCoords[0]
	dy := lngLat[1] - d.startCoords[1]
	moved := features.Clone(d.feature)
	moved.Geometry = geometry.Translate(d.originalGeometry, dx, dy)
	t.env.Stage.AddFeature(moved)
}

func (t *SelectTool) hitTest(p geometry.Point2D) *geojson.Feature {
	for _, f := range t.env.Surface.QueryRenderedFeatures(p, t.config().HitRadius, t.config().SelectableLayers) {
		id := features.ID(f)
		if id == "" || IsStagingID(id) {
			continue
		}
		if _, isHandle := f.Properties["handle"]; isHandle {
			continue
		}
		// Staged features (drafts, the feature under vertex edit) belong to
		// whoever staged them.
		if _, staged := t.env.Stage.Feature(id); staged {
			continue
		}
		return f
	}
	return nil
}

func modeFor(mods surface.Modifier) features.SelectionMode {
	switch {
	case mods.Has(surface.ModCtrl), mods.Has(surface.ModSuper):
		return features.SelectToggle
	case mods.Has(surface.ModShift):
		return features.SelectAdd
	default:
		return features.SelectReplace
	}
}
