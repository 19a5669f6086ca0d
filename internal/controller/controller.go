// Package controller owns the active tool, the global drag state, the active
// layer, keyboard shortcuts and vertex editing, and mediates between the
// tools and the application.
package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"vector-editor/internal/hot"
	"vector-editor/internal/snap"
	"vector-editor/internal/surface"
	"vector-editor/internal/tools"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrMissingCallback = errors.New("missing required callback")
	ErrDragInProgress  = errors.New("cannot switch tools while dragging")
	ErrDestroyed       = errors.New("controller destroyed")
	ErrUnknownTool     = errors.New("unknown tool")
)

// DragState says whether a feature drag is in flight. The controller is its
// only writer; tools report transitions through callbacks.
type DragState struct {
	IsDragging       bool
	DraggedFeatureID string
	StartTime        time.Time
}

// Shortcuts maps keys to tools.
var Shortcuts = map[surface.Key]tools.ToolType{
	"s": tools.ToolSelect,
	"p": tools.ToolPoint,
	"l": tools.ToolLine,
	"g": tools.ToolPolygon,
}

// Controller is the composition root of the editing engine.
type Controller struct {
	surface surface.Surface
	hot     *hot.Source
	snap    *snap.Engine
	cfg     tools.Config
	cb      tools.Callbacks

	tools   map[tools.ToolType]tools.Tool
	current tools.ToolType
	layer   string
	drag    DragState

	// Feature under vertex edit, as it was before editing began.
	editing *geojson.Feature

	listeners surface.Registry
	enabled   bool
	destroyed bool
}

// New builds the controller and its tools. OnFeatureComplete and OnError are
// required.
func New(s surface.Surface, h *hot.Source, cfg tools.Config, cb tools.Callbacks) (*Controller, error) {
	if cb.OnFeatureComplete == nil {
		return nil, fmt.Errorf("%w: OnFeatureComplete", ErrMissingCallback)
	}
	if cb.OnError == nil {
		return nil, fmt.Errorf("%w: OnError", ErrMissingCallback)
	}
	cfg = cfg.WithDefaults()

	c := &Controller{
		surface: s,
		hot:     h,
		cfg:     cfg,
		cb:      cb,
		current: tools.ToolSelect,
		snap: snap.New(s, snap.Options{
			SnapToVertices: cfg.SnapToVertices,
			SnapToEdges:    cfg.SnapToEdges,
			Tolerance:      cfg.SnapTolerance,
			Layers:         cfg.SelectableLayers,
		}),
	}

	env := tools.Env{
		Surface:     s,
		Stage:       h,
		Snap:        c.snap,
		Config:      cfg,
		Callbacks:   c.toolCallbacks(),
		ActiveLayer: c.ActiveLayer,
	}
	c.tools = map[tools.ToolType]tools.Tool{
		tools.ToolSelect:  tools.NewSelectTool(env),
		tools.ToolPoint:   tools.NewPointTool(env),
		tools.ToolLine:    tools.NewLineTool(env),
		tools.ToolPolygon: tools.NewPolygonTool(env),
	}

	h.SetCallbacks(hot.Callbacks{
		OnVertexMoved:   c.onVertexMoved,
		OnVertexAdded:   c.onVertexAdded,
		OnVertexDragEnd: c.onVertexDragEnd,
		OnError:         cb.OnError,
	})
	h.SetSnap(func(screen geometry.Point2D, lngLat orb.Point, exclude ...string) orb.Point {
		return c.snap.Snap(screen, lngLat, exclude...).Position
	})
	return c, nil
}

// toolCallbacks wraps the drag and cancel callbacks so DragState is written
// here before the application sees them.
func (c *Controller) toolCallbacks() tools.Callbacks {
	cb := c.cb
	cb.OnFeatureDragStart = func(id string) {
		c.drag = DragState{IsDragging: true, DraggedFeatureID: id, StartTime: c.surface.Clock().Now()}
		c.cb.DragStart(id)
	}
	cb.OnFeatureDragEnd = func(id string, g orb.Geometry) {
		c.drag = DragState{}
		c.cb.DragEnd(id, g)
	}
	cb.OnCancel = func() {
		c.drag = DragState{}
		c.cb.Cancelled()
	}
	return cb
}

func (c *Controller) alive(op string) bool {
	if c.destroyed {
		log.Printf("Controller: %s ignored: %v", op, ErrDestroyed)
		return false
	}
	return true
}

// Enable activates the current tool and the keyboard shortcuts.
func (c *Controller) Enable() {
	if !c.alive("Enable") || c.enabled {
		return
	}
	c.enabled = true
	c.listeners.AddCapture(c.surface.Canvas(), surface.EventKeyDown, c.onKeyDown)
	c.tools[c.current].Activate()
}

// Disable cancels any drag or vertex edit, deactivates the current tool and
// removes the shortcuts.
func (c *Controller) Disable() {
	if !c.alive("Disable") || !c.enabled {
		return
	}
	c.CancelDrag()
	c.CancelVertexEdit()
	c.tools[c.current].Deactivate()
	c.listeners.RemoveAll()
	c.enabled = false
}

// IsEnabled reports whether the controller is handling input.
func (c *Controller) IsEnabled() bool { return c.enabled }

// SetTool switches the active tool. It is refused while a drag is in flight.
func (c *Controller) SetTool(t tools.ToolType) error {
	if !c.alive("SetTool") {
		return ErrDestroyed
	}
	next, ok := c.tools[t]
	if !ok {
		err := fmt.Errorf("%w: %d", ErrUnknownTool, int(t))
		c.cb.Error(err.Error())
		return err
	}
	if c.IsDragging() {
		c.cb.Error(ErrDragInProgress.Error())
		return ErrDragInProgress
	}
	if t == c.current {
		return nil
	}

	if c.enabled {
		c.tools[c.current].Deactivate()
	}
	c.current = t
	if c.enabled {
		next.Activate()
	}
	c.cb.Status(fmt.Sprintf("%s tool", t))
	return nil
}

// ToolType returns the current tool type.
func (c *Controller) ToolType() tools.ToolType { return c.current }

// Tool returns the current tool.
func (c *Controller) Tool() tools.Tool { return c.tools[c.current] }

// SetActiveLayer sets the layer new features are attached to.
func (c *Controller) SetActiveLayer(id string) {
	if !c.alive("SetActiveLayer") {
		return
	}
	c.layer = id
}

// ActiveLayer returns the layer new features are attached to.
func (c *Controller) ActiveLayer() string { return c.layer }

// DragState returns a copy of the global drag state.
func (c *Controller) DragState() DragState { return c.drag }

// IsDragging reports whether a feature or vertex drag is in flight.
func (c *Controller) IsDragging() bool {
	return c.drag.IsDragging || (!c.hot.IsDestroyed() && c.hot.IsDraggingVertex())
}

// CancelDrag cancels any drag in flight.
func (c *Controller) CancelDrag() {
	if !c.alive("CancelDrag") {
		return
	}
	if c.drag.IsDragging {
		c.tools[c.current].Cancel()
		c.drag = DragState{}
	}
	if !c.hot.IsDestroyed() && c.hot.IsDraggingVertex() {
		c.hot.EndDragVertex()
	}
}

// Destroy disables the controller and destroys the staging layer. Calling it
// again is a no-op.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.Disable()
	c.hot.Destroy()
	c.destroyed = true
}

// IsDestroyed reports whether Destroy has been called.
func (c *Controller) IsDestroyed() bool { return c.destroyed }

// onKeyDown handles shortcuts and vertex-edit keys before the active tool.
func (c *Controller) onKeyDown(ev *surface.Event) {
	if c.editing != nil {
		switch ev.Key {
		case surface.KeyEscape:
			c.CancelVertexEdit()
			ev.StopPropagation()
			return
		case surface.KeyEnter:
			c.CommitVertexEdit()
			ev.StopPropagation()
			return
		}
	}

	if ev.Modifiers.Has(surface.ModCtrl) || ev.Modifiers.Has(surface.ModAlt) || ev.Modifiers.Has(surface.ModSuper) {
		return
	}
	t, ok := Shortcuts[ev.Key]
	if !ok {
		return
	}
	ev.StopPropagation()
	if err := c.SetTool(t); err != nil {
		log.Printf("Controller: shortcut %q: %v", ev.Key, err)
	}
}
