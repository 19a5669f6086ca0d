package controller

import (
	"fmt"

	"vector-editor/internal/features"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// EditVertices stages f and shows its vertex handles. A previous edit is
// cancelled first.
func (c *Controller) EditVertices(f *geojson.Feature) error {
	if !c.alive("EditVertices") {
		return ErrDestroyed
	}
	if c.IsDragging() {
		c.cb.Error(ErrDragInProgress.Error())
		return ErrDragInProgress
	}
	id := features.ID(f)
	if id == "" || f.Geometry == nil {
		err := fmt.Errorf("cannot edit a feature without id or geometry")
		c.cb.Error(err.Error())
		return err
	}
	if _, err := geometry.KindOf(f.Geometry); err != nil {
		c.cb.Error(err.Error())
		return err
	}
	if c.editing != nil {
		c.CancelVertexEdit()
	}

	c.editing = features.Clone(f)
	c.hot.AddFeature(f)
	if err := c.hot.StartEditingVertices(id); err != nil {
		c.editing = nil
		c.hot.RemoveFeature(id)
		c.cb.Error(err.Error())
		return err
	}
	c.cb.Status("Drag a vertex to move it, click a midpoint to insert, Enter to save, Escape to cancel")
	return nil
}

// EditingFeatureID returns the feature under vertex edit, or "".
func (c *Controller) EditingFeatureID() string {
	if c.editing == nil {
		return ""
	}
	return features.ID(c.editing)
}

// CommitVertexEdit ends the edit and reports the edited feature through
// OnFeatureUpdate. Without an edit in progress it does nothing.
func (c *Controller) CommitVertexEdit() {
	if !c.alive("CommitVertexEdit") || c.editing == nil {
		return
	}
	id := features.ID(c.editing)
	staged, ok := c.hot.Feature(id)
	c.endVertexEdit(id)
	if !ok {
		c.cb.Error(fmt.Sprintf("feature %s is no longer staged", id))
		return
	}
	c.cb.Update(staged)
	c.cb.Status("Vertices saved")
}

// CancelVertexEdit discards the edit without reporting an update.
func (c *Controller) CancelVertexEdit() {
	if !c.alive("CancelVertexEdit") || c.editing == nil {
		return
	}
	c.endVertexEdit(features.ID(c.editing))
	c.cb.Cancelled()
	c.cb.Status("Vertex edit cancelled")
}

func (c *Controller) endVertexEdit(id string) {
	c.editing = nil
	if c.hot.IsDestroyed() {
		return
	}
	c.hot.StopEditingVertices()
	c.hot.RemoveFeature(id)
}

// onVertexMoved replaces the staged geometry with vertex index at pos.
func (c *Controller) onVertexMoved(id string, index int, pos orb.Point) {
	c.applyVertexEdit(id, func(g orb.Geometry) (orb.Geometry, error) {
		return geometry.MoveVertex(g, index, pos)
	})
}

// onVertexAdded inserts pos so that it becomes vertex index.
func (c *Controller) onVertexAdded(id string, index int, pos orb.Point) {
	if c.applyVertexEdit(id, func(g orb.Geometry) (orb.Geometry, error) {
		return geometry.InsertVertex(g, index, pos)
	}) {
		c.cb.Status(fmt.Sprintf("Vertex %d inserted", index))
	}
}

func (c *Controller) onVertexDragEnd(id string, index int) {
	c.cb.Status(fmt.Sprintf("Vertex %d moved", index))
}

func (c *Controller) applyVertexEdit(id string, edit func(orb.Geometry) (orb.Geometry, error)) bool {
	if c.editing == nil || features.ID(c.editing) != id {
		return false
	}
	staged, ok := c.hot.Feature(id)
	if !ok {
		return false
	}
	g, err := edit(staged.Geometry)
	if err != nil {
		c.cb.Error(err.Error())
		return false
	}
	c.hot.AddFeature(features.WithGeometry(staged, g, c.surface.Clock().Now()))
	return true
}
