package controller

import (
	"testing"

	"vector-editor/internal/surface"
	"vector-editor/internal/tools"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (fx *fixture) square() *geojson.Feature {
	a, b := fx.m.Unproject(px(100, 100)), fx.m.Unproject(px(300, 100))
	c, d := fx.m.Unproject(px(300, 300)), fx.m.Unproject(px(100, 300))
	f := geojson.NewFeature(orb.Polygon{{a, b, c, d, a}})
	f.ID = "sq"
	return f
}

func TestVertexDragThenCommit(t *testing.T) {
	fx := newFixture(t)
	fx.c.Enable()
	require.NoError(t, fx.c.EditVertices(fx.square()))
	assert.Equal(t, "sq", fx.c.EditingFeatureID())

	fx.m.MouseDown(px(300, 100))
	fx.m.MouseMove(px(350, 80))
	assert.ErrorIs(t, fx.c.SetTool(tools.ToolLine), ErrDragInProgress)
	fx.m.MouseUp(px(350, 80))

	handles := fx.h.Handles()
	require.Len(t, handles, 4)
	assert.Equal(t, fx.m.Unproject(px(350, 80)), handles[1].Position)

	fx.m.KeyDown(surface.KeyEnter)
	require.Len(t, fx.rec.updated, 1)
	poly := fx.rec.updated[0].Geometry.(orb.Polygon)
	assert.Equal(t, fx.m.Unproject(px(350, 80)), poly[0][1])
	assert.Equal(t, poly[0][0], poly[0][4])
	assert.Equal(t, "", fx.c.EditingFeatureID())
	assert.Zero(t, fx.h.Len())
}

func TestMidpointInsertThenCancel(t *testing.T) {
	fx := newFixture(t)
	fx.c.Enable()
	require.NoError(t, fx.c.EditVertices(fx.square()))

	fx.m.MouseDown(px(200, 100))
	fx.m.MouseUp(px(200, 100))
	assert.Len(t, fx.h.Handles(), 5)
	staged, ok := fx.h.Feature("sq")
	require.True(t, ok)
	assert.Len(t, staged.Geometry.(orb.Polygon)[0], 6)

	fx.m.KeyDown(surface.KeyEscape)
	assert.Empty(t, fx.rec.updated)
	assert.Equal(t, 1, fx.rec.cancels)
	assert.Zero(t, fx.h.Len())
	assert.Equal(t, tools.ToolSelect, fx.c.ToolType())
}

func TestEditVerticesRejectsBadInput(t *testing.T) {
	fx := newFixture(t)
	f := geojson.NewFeature(orb.MultiPoint{{0, 0}})
	f.ID = "mp"
	assert.Error(t, fx.c.EditVertices(f))
	assert.Error(t, fx.c.EditVertices(geojson.NewFeature(orb.Point{0, 0})))
	assert.Len(t, fx.rec.errors, 2)
	assert.Equal(t, "", fx.c.EditingFeatureID())
}

func TestDisableCancelsVertexEdit(t *testing.T) {
	fx := newFixture(t)
	fx.c.Enable()
	require.NoError(t, fx.c.EditVertices(fx.square()))
	require.NoError(t, fx.h.StartDragVertex("sq", 0))

	fx.c.Disable()
	assert.False(t, fx.h.IsDraggingVertex())
	assert.Equal(t, "", fx.c.EditingFeatureID())
	assert.Zero(t, fx.h.Len())
	assert.True(t, fx.m.Interactions().DragPan.IsEnabled())
}

func TestVertexDragAcrossFirstVertexKeepsRing(t *testing.T) {
	fx := newFixture(t)
	fx.c.Enable()
	require.NoError(t, fx.c.EditVertices(fx.square()))

	fx.m.MouseDown(px(100, 300))
	fx.m.MouseMove(px(100, 200))
	fx.m.MouseMove(px(100, 100))
	assert.Len(t, fx.h.Handles(), 4)
	fx.m.MouseMove(px(50, 350))
	fx.m.MouseUp(px(50, 350))
	fx.m.KeyDown(surface.KeyEnter)

	assert.Empty(t, fx.rec.errors)
	require.Len(t, fx.rec.updated, 1)
	ring := fx.rec.updated[0].Geometry.(orb.Polygon)[0]
	require.Len(t, ring, 5)
	assert.Equal(t, fx.m.Unproject(px(50, 350)), ring[3])
}

func TestHandleTapDoesNotReachDrawingTool(t *testing.T) {
	fx := newFixture(t)
	fx.c.Enable()
	require.NoError(t, fx.c.SetTool(tools.ToolPoint))
	fx.c.SetActiveLayer("roads")
	require.NoError(t, fx.c.EditVertices(fx.square()))

	fx.m.MouseDown(px(200, 100))
	fx.m.MouseUp(px(200, 100))
	fx.m.Click(px(200, 100))

	assert.Len(t, fx.h.Handles(), 5)
	assert.Empty(t, fx.rec.completed)
}

func TestDraggingEditedFeatureBodyKeepsEdit(t *testing.T) {
	fx := newFixture(t)
	fx.c.Enable()
	require.NoError(t, fx.c.EditVertices(fx.square()))

	fx.m.MouseDown(px(200, 200))
	fx.m.MouseMove(px(220, 200))
	fx.m.MouseUp(px(220, 200))
	assert.Zero(t, fx.rec.dragEnds)
	assert.Equal(t, "sq", fx.c.EditingFeatureID())
	assert.True(t, fx.h.Has("sq"))

	fx.m.KeyDown(surface.KeyEnter)
	assert.Empty(t, fx.rec.errors)
	assert.Len(t, fx.rec.updated, 1)
}
