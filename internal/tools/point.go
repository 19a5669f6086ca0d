package tools

import (
	"sync"

	"vector-editor/internal/features"
	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PointTool commits one point feature per click.
type PointTool struct {
	base

	mu    sync.Mutex
	flash surface.Timer
}

// NewPointTool creates an inactive point tool.
func NewPointTool(env Env) *PointTool {
	t := &PointTool{base: newBase(env, ToolPoint, surface.CursorCrosshair)}
	t.holdDoubleClickZoom = true
	return t
}

func (t *PointTool) Activate() {
	if t.activate(t) {
		t.status("Click to place a point", nil)
	}
}

// Deactivate also clears the preview and any pending success marker.
func (t *PointTool) Deactivate() {
	if !t.active {
		return
	}
	t.clearFlash()
	t.env.Stage.RemoveFeature(PointPreviewID)
	t.deactivate()
}

func (t *PointTool) OnClick(ev *surface.Event) {
	if !t.active || ev.Button != surface.ButtonLeft {
		return
	}
	layerID, ok := t.layer()
	if !ok {
		return
	}
	pos := t.snap(ev)

	f := features.NewFeature(pos, layerID, t.env.Surface.Clock().Now())
	t.cb().Complete(f)
	t.status("Point added", &pos)
	t.showSuccess(pos)
}

func (t *PointTool) OnDoubleClick(ev *surface.Event) {}
func (t *PointTool) OnMouseDown(ev *surface.Event)   {}
func (t *PointTool) OnMouseUp(ev *surface.Event)     {}

// OnMouseMove replaces the preview point.
func (t *PointTool) OnMouseMove(ev *surface.Event) {
	if !t.active {
		return
	}
	pos := t.snap(ev)
	t.env.Stage.AddFeature(stagedFeature(PointPreviewID, pos, map[string]interface{}{"preview": true}))
}

func (t *PointTool) OnKeyDown(ev *surface.Event) {
	if !t.active {
		return
	}
	t.handleKey(t, ev)
}

// FinishDrawing commits any accumulated point. Clicks commit directly, so
// there is normally nothing to finish.
func (t *PointTool) FinishDrawing() {
	if t.drawing {
		t.finish(geometry.KindPoint)
	}
}

// Cancel removes the preview point.
func (t *PointTool) Cancel() {
	if !t.active {
		return
	}
	t.cancel()
	t.env.Stage.RemoveFeature(PointPreviewID)
}

// showSuccess stages the success marker and schedules its removal. Staging
// and removal both happen under mu so a stale timer cannot remove a newer
// marker.
func (t *PointTool) showSuccess(pos orb.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.flash != nil {
		t.flash.Stop()
	}
	t.env.Stage.AddFeature(stagedFeature(PointSuccessID, pos, map[string]interface{}{"success": true}))

	var timer surface.Timer
	timer = t.env.Surface.Clock().AfterFunc(t.config().SuccessFlash, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.flash != timer {
			return
		}
		t.flash = nil
		t.env.Stage.RemoveFeature(PointSuccessID)
	})
	t.flash = timer
}

func (t *PointTool) clearFlash() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.flash != nil {
		t.flash.Stop()
		t.flash = nil
	}
	t.env.Stage.RemoveFeature(PointSuccessID)
}

func stagedFeature(id string, g orb.Geometry, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.ID = id
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}
