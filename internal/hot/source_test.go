package hot

import (
	"errors"
	"testing"

	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moved struct {
	id    string
	index int
	pos   orb.Point
}

type recorder struct {
	moved  []moved
	added  []moved
	ended  int
	errors []string
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnVertexMoved:   func(id string, i int, p orb.Point) { r.moved = append(r.moved, moved{id, i, p}) },
		OnVertexAdded:   func(id string, i int, p orb.Point) { r.added = append(r.added, moved{id, i, p}) },
		OnVertexDragEnd: func(string, int) { r.ended++ },
		OnError:         func(msg string) { r.errors = append(r.errors, msg) },
	}
}

func px(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

func newSource(t *testing.T) (*Source, *surface.Memory, *recorder) {
	m := surface.NewMemory()
	rec := &recorder{}
	s := New(m, Options{EnableVertexInsertion: true}, rec.callbacks())
	return s, m, rec
}

// square returns a feature whose four corners sit at 100/300 px.
func square(m *surface.Memory) *geojson.Feature {
	a, b := m.Unproject(px(100, 100)), m.Unproject(px(300, 100))
	c, d := m.Unproject(px(300, 300)), m.Unproject(px(100, 300))
	f := geojson.NewFeature(orb.Polygon{{a, b, c, d, a}})
	f.ID = "sq"
	return f
}

func hotData(m *surface.Memory) *surface.SceneSource {
	return m.SceneSource("hot")
}

func TestStartEditingClosedPolygon(t *testing.T) {
	s, m, _ := newSource(t)
	s.AddFeature(square(m))
	require.NoError(t, s.StartEditingVertices("sq"))

	assert.Len(t, s.Handles(), 4)
	assert.Len(t, s.Midpoints(), 4)
	assert.Equal(t, "sq", s.EditingFeatureID())
	// feature + 4 vertices + 4 midpoints
	assert.Len(t, hotData(m).Data().Features, 9)
}

func TestHandlesForEachKind(t *testing.T) {
	s, _, _ := newSource(t)
	pt := geojson.NewFeature(orb.Point{1, 1})
	pt.ID = "pt"
	line := geojson.NewFeature(orb.LineString{{0, 0}, {1, 0}, {2, 0}})
	line.ID = "line"
	s.AddFeature(pt)
	s.AddFeature(line)

	require.NoError(t, s.StartEditingVertices("pt"))
	assert.Len(t, s.Handles(), 1)
	assert.Empty(t, s.Midpoints())

	require.NoError(t, s.StartEditingVertices("line"))
	assert.Len(t, s.Handles(), 3)
	assert.Len(t, s.Midpoints(), 2)

	assert.Error(t, s.StartEditingVertices("missing"))
}

func TestMidpointsDisabled(t *testing.T) {
	m := surface.NewMemory()
	s := New(m, Options{}, Callbacks{})
	s.AddFeature(square(m))
	require.NoError(t, s.StartEditingVertices("sq"))
	assert.Len(t, s.Handles(), 4)
	assert.Empty(t, s.Midpoints())
}

func TestEachMutationRendersOnce(t *testing.T) {
	s, m, _ := newSource(t)
	src := hotData(m)
	before := src.Updates()

	s.AddFeature(square(m))
	assert.Equal(t, before+1, src.Updates())
	require.NoError(t, s.StartEditingVertices("sq"))
	assert.Equal(t, before+2, src.Updates())
	s.RemoveFeature("sq")
	assert.Equal(t, before+3, src.Updates())
	assert.Empty(t, src.Data().Features)
	assert.Empty(t, s.Handles())
	assert.Equal(t, "", s.EditingFeatureID())
}

func TestVertexDrag(t *testing.T) {
	s, m, rec := newSource(t)
	s.AddFeature(square(m))
	require.NoError(t, s.StartEditingVertices("sq"))

	toolSawMouseDown := false
	m.Canvas().On(surface.EventMouseDown, func(*surface.Event) { toolSawMouseDown = true })

	m.MouseDown(px(300, 100))
	assert.False(t, toolSawMouseDown)
	assert.True(t, s.IsDraggingVertex())
	assert.False(t, m.Interactions().DragPan.IsEnabled())

	m.MouseMove(px(320, 90))
	require.Len(t, rec.moved, 1)
	assert.Equal(t, "sq", rec.moved[0].id)
	assert.Equal(t, 1, rec.moved[0].index)
	assert.Equal(t, m.Unproject(px(320, 90)), rec.moved[0].pos)

	m.MouseUp(px(320, 90))
	assert.False(t, s.IsDraggingVertex())
	assert.Equal(t, 1, rec.ended)
	assert.True(t, m.Interactions().DragPan.IsEnabled())

	m.MouseMove(px(330, 90))
	assert.Len(t, rec.moved, 1)
}

func TestHiddenPageEndsDrag(t *testing.T) {
	s, m, rec := newSource(t)
	s.AddFeature(square(m))
	require.NoError(t, s.StartEditingVertices("sq"))
	require.NoError(t, s.StartDragVertex("sq", 2))

	m.Hide()
	assert.False(t, s.IsDraggingVertex())
	assert.Equal(t, 1, rec.ended)
}

func TestMidpointInsertsAfterPrecedingVertex(t *testing.T) {
	s, m, rec := newSource(t)
	s.AddFeature(square(m))
	require.NoError(t, s.StartEditingVertices("sq"))

	toolSawMouseDown := false
	m.Canvas().On(surface.EventMouseDown, func(*surface.Event) { toolSawMouseDown = true })

	// Midpoint between vertex 1 (300,100) and vertex 2 (300,300).
	m.MouseDown(px(300, 200))
	require.Len(t, rec.added, 1)
	assert.Equal(t, 2, rec.added[0].index)
	assert.False(t, toolSawMouseDown)
	assert.False(t, s.IsDraggingVertex())
}

func TestMouseDownAwayFromHandlesPassesThrough(t *testing.T) {
	s, m, _ := newSource(t)
	s.AddFeature(square(m))
	require.NoError(t, s.StartEditingVertices("sq"))

	toolSawMouseDown := false
	m.Canvas().On(surface.EventMouseDown, func(*surface.Event) { toolSawMouseDown = true })
	m.MouseDown(px(200, 200))
	assert.True(t, toolSawMouseDown)
}

func TestReplacingEditedFeatureRebuildsHandles(t *testing.T) {
	s, m, _ := newSource(t)
	f := square(m)
	s.AddFeature(f)
	require.NoError(t, s.StartEditingVertices("sq"))

	g, err := geometry.InsertVertex(f.Geometry, 1, m.Unproject(px(200, 50)))
	require.NoError(t, err)
	f.Geometry = g
	s.AddFeature(f)
	assert.Len(t, s.Handles(), 5)
	assert.Len(t, s.Midpoints(), 5)
}

func TestRenderFailureIsReported(t *testing.T) {
	s, m, rec := newSource(t)
	hotData(m).FailNext(errors.New("gpu lost"))

	s.AddFeature(square(m))
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "gpu lost")
	assert.True(t, s.Has("sq"))

	s.AddFeature(square(m))
	assert.Len(t, hotData(m).Data().Features, 1)
}

func TestDestroyMakesEverythingANoOp(t *testing.T) {
	s, m, rec := newSource(t)
	s.AddFeature(square(m))
	require.NoError(t, s.StartEditingVertices("sq"))
	require.Equal(t, 3, m.CanvasListeners())
	require.Equal(t, 4, m.DocumentListeners())

	s.Destroy()
	s.Destroy()
	assert.True(t, s.IsDestroyed())
	assert.Zero(t, m.CanvasListeners())
	assert.Zero(t, m.DocumentListeners())
	updates := hotData(m).Updates()

	s.AddFeature(square(m))
	s.RemoveFeature("sq")
	assert.NoError(t, s.StartEditingVertices("sq"))
	assert.NoError(t, s.StartDragVertex("sq", 0))
	s.EndDragVertex()
	s.StopEditingVertices()
	s.Clear()
	s.SetCallbacks(Callbacks{})
	s.SetSnap(func(geometry.Point2D, orb.Point, ...string) orb.Point { return orb.Point{} })

	assert.False(t, s.Has("sq"))
	assert.Nil(t, s.Features())
	assert.Nil(t, s.Handles())
	assert.False(t, s.IsDraggingVertex())
	assert.Equal(t, updates, hotData(m).Updates())
	assert.Empty(t, rec.errors)
	assert.Zero(t, rec.ended)
	assert.NotNil(t, s.callbacks().OnError, "callbacks kept")
	assert.Nil(t, s.opts.Snap)
}

func TestBeforeUnloadDestroys(t *testing.T) {
	s, m, _ := newSource(t)
	m.Unload()
	assert.True(t, s.IsDestroyed())
	assert.Zero(t, m.DocumentListeners())
}

func TestHandleGestureKeepsClicksFromCanvas(t *testing.T) {
	s, m, rec := newSource(t)
	s.AddFeature(square(m))
	require.NoError(t, s.StartEditingVertices("sq"))
	var clicks, dblclicks int
	m.Canvas().On(surface.EventClick, func(*surface.Event) { clicks++ })
	m.Canvas().On(surface.EventDoubleClick, func(*surface.Event) { dblclicks++ })

	// Midpoint tap.
	m.MouseDown(px(200, 100))
	m.MouseUp(px(200, 100))
	m.Click(px(200, 100))
	assert.Len(t, rec.added, 1)
	assert.Zero(t, clicks)

	// Double tap on a vertex.
	for i := 0; i < 2; i++ {
		m.MouseDown(px(300, 300))
		m.MouseUp(px(300, 300))
		m.Click(px(300, 300))
	}
	m.DoubleClick(px(300, 300))
	assert.Zero(t, clicks)
	assert.Zero(t, dblclicks)

	// Away from handles the canvas sees everything.
	m.MouseDown(px(500, 500))
	m.MouseUp(px(500, 500))
	m.Click(px(500, 500))
	m.Click(px(500, 500))
	m.DoubleClick(px(500, 500))
	assert.Equal(t, 2, clicks)
	assert.Equal(t, 1, dblclicks)
}
