package tools

import (
	"fmt"
	"time"

	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
)

// LineTool accumulates clicked points into a line, or into a polygon ring
// when built with NewPolygonTool.
type LineTool struct {
	base

	geomKind  geometry.Kind
	lastClick time.Time
	cursorPos orb.Point
	hasCursor bool
}

// NewLineTool creates an inactive line tool.
func NewLineTool(env Env) *LineTool {
	return newLineTool(env, ToolLine, geometry.KindLineString)
}

// NewPolygonTool creates an inactive tool drawing single-ring polygons.
func NewPolygonTool(env Env) *LineTool {
	return newLineTool(env, ToolPolygon, geometry.KindPolygon)
}

func newLineTool(env Env, kind ToolType, g geometry.Kind) *LineTool {
	t := &LineTool{base: newBase(env, kind, surface.CursorCrosshair), geomKind: g}
	t.holdDoubleClickZoom = true
	t.onReset = t.clearStaged
	return t
}

func (t *LineTool) Activate() {
	if t.activate(t) {
		t.status(fmt.Sprintf("Click to start a %s", t.kind), nil)
	}
}

func (t *LineTool) Deactivate() {
	if t.deactivate() {
		t.lastClick = time.Time{}
		t.hasCursor = false
	}
}

// OnClick starts drawing or appends a point. A click within the double-click
// window of the previous one finishes the drawing instead.
func (t *LineTool) OnClick(ev *surface.Event) {
	if !t.active || ev.Button != surface.ButtonLeft {
		return
	}
	now := ev.Time
	if now.IsZero() {
		now = t.env.Surface.Clock().Now()
	}
	pos := t.snap(ev)

	if !t.drawing {
		if _, ok := t.layer(); !ok {
			return
		}
		t.drawing = true
		t.coords = []orb.Point{pos}
		t.lastClick = now
		t.render()
		t.status("Click to add points, double-click or Enter to finish", &pos)
		return
	}

	if !t.lastClick.IsZero() && now.Sub(t.lastClick) <= t.config().DoubleClickWindow {
		t.lastClick = time.Time{}
		t.FinishDrawing()
		return
	}
	t.lastClick = now
	t.add(pos)
}

// OnDoubleClick finishes a drawing still in progress. Usually the timestamp
// check in OnClick has already finished it.
func (t *LineTool) OnDoubleClick(ev *surface.Event) {
	if !t.active || !t.drawing {
		return
	}
	t.FinishDrawing()
}

func (t *LineTool) OnMouseDown(ev *surface.Event) {}
func (t *LineTool) OnMouseUp(ev *surface.Event)   {}

// OnMouseMove tracks the cursor and refreshes the provisional preview.
func (t *LineTool) OnMouseMove(ev *surface.Event) {
	if !t.active {
		return
	}
	t.cursorPos = t.snap(ev)
	t.hasCursor = true
	if t.drawing {
		t.renderPreview()
	}
}

// OnKeyDown adds Space for keyboard point entry. Backspace cancels the draw
// once the last point is removed.
func (t *LineTool) OnKeyDown(ev *surface.Event) {
	if !t.active {
		return
	}
	switch ev.Key {
	case surface.KeySpace:
		t.addAtCursor()
	case surface.KeyBackspace, surface.KeyDelete:
		if !t.undo() {
			return
		}
		if len(t.coords) == 0 {
			t.Cancel()
			t.cb().Cancelled()
			t.status("Drawing cancelled", nil)
			return
		}
		t.render()
		t.status(fmt.Sprintf("Removed last point, %d remaining", len(t.coords)), nil)
	default:
		t.handleKey(t, ev)
	}
}

// FinishDrawing commits the accumulated points. With too few points it
// reports an error and keeps drawing.
func (t *LineTool) FinishDrawing() {
	t.finish(t.geomKind)
}

// Cancel discards the accumulated points.
func (t *LineTool) Cancel() {
	if !t.active {
		return
	}
	t.cancel()
	t.lastClick = time.Time{}
}

func (t *LineTool) addAtCursor() {
	if !t.hasCursor {
		return
	}
	if !t.drawing {
		if _, ok := t.layer(); !ok {
			return
		}
		t.drawing = true
		t.coords = []orb.Point{t.cursorPos}
		t.render()
		return
	}
	t.add(t.cursorPos)
}

// add appends pos unless the cap is reached or it is too close to the last point.
func (t *LineTool) add(pos orb.Point) {
	if limit := t.config().MaxPoints; limit > 0 && len(t.coords) >= limit {
		t.status(fmt.Sprintf("Maximum of %d points reached, press Enter to finish", limit), nil)
		return
	}
	if n := len(t.coords); n > 0 && geometry.Distance(t.coords[n-1], pos) <= t.config().MinPointSpacing {
		t.status("Point too close to the previous point", &pos)
		return
	}
	t.coords = append(t.coords, pos)
	t.render()
	t.status(fmt.Sprintf("%d points", len(t.coords)), &pos)
}

// render stages the committed points and the provisional preview.
func (t *LineTool) render() {
	switch len(t.coords) {
	case 0:
		t.env.Stage.RemoveFeature(DraftID)
	case 1:
		t.env.Stage.AddFeature(stagedFeature(DraftID, t.coords[0], map[string]interface{}{"draft": true}))
	default:
		line := make(orb.LineString, len(t.coords))
		copy(line, t.coords)
		t.env.Stage.AddFeature(stagedFeature(DraftID, line, map[string]interface{}{"draft": true}))
	}
	t.renderPreview()
}

func (t *LineTool) renderPreview() {
	if !t.hasCursor || len(t.coords) == 0 {
		t.env.Stage.RemoveFeature(PreviewID)
		return
	}
	preview := make(orb.LineString, 0, len(t.coords)+2)
	preview = append(preview, t.coords...)
	preview = append(preview, t.cursorPos)
	if t.geomKind == geometry.KindPolygon && len(t.coords) >= 2 {
		preview = append(preview, t.coords[0])
	}
	t.env.Stage.AddFeature(stagedFeature(PreviewID, preview, map[string]interface{}{
		"preview": true,
		"opacity": 0.5,
	}))
}

func (t *LineTool) clearStaged() {
	t.env.Stage.RemoveFeature(DraftID)
	t.env.Stage.RemoveFeature(PreviewID)
}
