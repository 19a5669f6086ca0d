package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() orb.Polygon {
	return orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
}

func TestTranslateReturnsFreshCopy(t *testing.T) {
	orig := square()
	moved := Translate(orig, 0.5, -0.25).(orb.Polygon)

	assert.Equal(t, orb.Point{0.5, -0.25}, moved[0][0])
	assert.Equal(t, orb.Point{0, 0}, orig[0][0], "original must not change")
}

func TestTranslateFromOriginIsExact(t *testing.T) {
	orig := orb.LineString{{0.1, 0.2}, {0.3, 0.7}}
	var last orb.Geometry
	for i := 1; i <= 50; i++ {
		last = Translate(orig, 0.001*float64(i), 0.002*float64(i))
	}
	n := 50
	want := Translate(orig, 0.001*float64(n), 0.002*float64(n))
	assert.Equal(t, want, last)
}

func TestVerticesDropsClosingDuplicate(t *testing.T) {
	assert.Len(t, Vertices(square()), 4)
	assert.Len(t, Vertices(orb.Point{1, 2}), 1)
	assert.Len(t, Vertices(orb.LineString{{0, 0}, {1, 1}, {2, 2}}), 3)
}

func TestMidpoints(t *testing.T) {
	verts := Vertices(square())
	mids := Midpoints(verts, true)
	require.Len(t, mids, 4)
	assert.Equal(t, orb.Point{0.5, 0}, mids[0])
	assert.Equal(t, orb.Point{0, 0.5}, mids[3])

	line := []orb.Point{{0, 0}, {2, 0}, {2, 2}}
	assert.Len(t, Midpoints(line, false), 2)
	assert.Nil(t, Midpoints(line[:1], false))
}

func TestMoveVertexKeepsRingClosed(t *testing.T) {
	g, err := MoveVertex(square(), 0, orb.Point{-1, -1})
	require.NoError(t, err)
	ring := g.(orb.Polygon)[0]
	assert.Equal(t, orb.Point{-1, -1}, ring[0])
	assert.Equal(t, orb.Point{-1, -1}, ring[len(ring)-1])

	_, err = MoveVertex(square(), 4, orb.Point{})
	assert.Error(t, err)
}

func TestInsertVertex(t *testing.T) {
	g, err := InsertVertex(orb.LineString{{0, 0}, {2, 0}}, 1, orb.Point{1, 0})
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 0}, {2, 0}}, g)

	g, err = InsertVertex(square(), 4, orb.Point{0, 0.5})
	require.NoError(t, err)
	ring := g.(orb.Polygon)[0]
	assert.Len(t, ring, 6)
	assert.Equal(t, orb.Point{0, 0.5}, ring[4])

	_, err = InsertVertex(orb.Point{0, 0}, 0, orb.Point{1, 1})
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}

func TestScreenHelpers(t *testing.T) {
	sq := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.True(t, PointInPolygon(Point2D{5, 5}, sq))
	assert.False(t, PointInPolygon(Point2D{15, 5}, sq))

	assert.InDelta(t, 3.0, SegmentDistance(Point2D{5, 3}, Point2D{0, 0}, Point2D{10, 0}), 1e-9)
	c, tt := ClosestOnSegment(Point2D{-5, 1}, Point2D{0, 0}, Point2D{10, 0})
	assert.Equal(t, Point2D{0, 0}, c)
	assert.Equal(t, 0.0, tt)

	bb := BoundingBox(sq)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 10, Height: 10}, bb)
	assert.True(t, bb.Expand(2).Contains(Point2D{-1, 11}))
}

func TestMoveVertexOntoFirstKeepsVertex(t *testing.T) {
	g, err := MoveVertex(square(), 3, orb.Point{0, 0})
	require.NoError(t, err)
	ring := g.(orb.Polygon)[0]
	assert.Len(t, ring, 5)
	assert.Len(t, Vertices(g), 4)

	g, err = MoveVertex(g, 3, orb.Point{-0.5, 1.5})
	require.NoError(t, err)
	assert.Equal(t, orb.Ring{{0, 0}, {1, 0}, {1, 1}, {-0.5, 1.5}, {0, 0}}, g.(orb.Polygon)[0])

	tri := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {0, 1}, {0, 0}}}
	g, err = MoveVertex(tri, 2, orb.Point{0, 0})
	require.NoError(t, err)
	assert.Len(t, g.(orb.Polygon)[0], 4)
}
