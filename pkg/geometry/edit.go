package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Translate returns a deep copy of g moved by (dx, dy) degrees. The input is
// never modified, so repeated calls against the same original cannot drift.
func Translate(g orb.Geometry, dx, dy float64) orb.Geometry {
	shift := func(p orb.Point) orb.Point {
		return orb.Point{p[0] + dx, p[1] + dy}
	}
	switch v := g.(type) {
	case orb.Point:
		return shift(v)
	case orb.LineString:
		out := make(orb.LineString, len(v))
		for i, p := range v {
			out[i] = shift(p)
		}
		return out
	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for r, ring := range v {
			nr := make(orb.Ring, len(ring))
			for i, p := range ring {
				nr[i] = shift(p)
			}
			out[r] = nr
		}
		return out
	}
	return orb.Clone(g)
}

// Vertices returns the editable vertices of g. Polygons yield their exterior
// ring without the closing duplicate.
func Vertices(g orb.Geometry) []orb.Point {
	switch v := g.(type) {
	case orb.Point:
		return []orb.Point{v}
	case orb.LineString:
		out := make([]orb.Point, len(v))
		copy(out, v)
		return out
	case orb.Polygon:
		if len(v) == 0 {
			return nil
		}
		ring := v[0]
		if len(ring) > 1 && ring[0].Equal(ring[len(ring)-1]) {
			ring = ring[:len(ring)-1]
		}
		out := make([]orb.Point, len(ring))
		copy(out, ring)
		return out
	}
	return nil
}

// IsClosed reports whether the vertices of g wrap around.
func IsClosed(g orb.Geometry) bool {
	_, ok := g.(orb.Polygon)
	return ok
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b orb.Point) orb.Point {
	return orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

// Midpoints returns the midpoint of each adjacent vertex pair. Element i sits
// between vertex i and vertex i+1 (wrapping to 0 when closed).
func Midpoints(vertices []orb.Point, closed bool) []orb.Point {
	n := len(vertices)
	if n < 2 {
		return nil
	}
	pairs := n - 1
	if closed && n > 2 {
		pairs = n
	}
	out := make([]orb.Point, pairs)
	for i := 0; i < pairs; i++ {
		out[i] = Midpoint(vertices[i], vertices[(i+1)%n])
	}
	return out
}

// MoveVertex returns a copy of g with vertex index moved to p.
func MoveVertex(g orb.Geometry, index int, p orb.Point) (orb.Geometry, error) {
	verts := Vertices(g)
	if index < 0 || index >= len(verts) {
		return nil, fmt.Errorf("vertex %d out of range [0,%d)", index, len(verts))
	}
	verts[index] = p
	return rebuild(g, verts)
}

// InsertVertex returns a copy of g with p inserted so that it becomes vertex index.
func InsertVertex(g orb.Geometry, index int, p orb.Point) (orb.Geometry, error) {
	if _, ok := g.(orb.Point); ok {
		return nil, fmt.Errorf("%w: cannot insert into a point", ErrUnsupportedGeometry)
	}
	verts := Vertices(g)
	if index < 0 || index > len(verts) {
		return nil, fmt.Errorf("insert index %d out of range [0,%d]", index, len(verts))
	}
	out := make([]orb.Point, 0, len(verts)+1)
	out = append(out, verts[:index]...)
	out = append(out, p)
	out = append(out, verts[index:]...)
	return rebuild(g, out)
}

// rebuild assembles verts into the same kind as g, keeping polygon holes.
// verts is an open ring for polygons; a vertex that happens to equal vertex 0
// is a real vertex and is kept.
func rebuild(g orb.Geometry, verts []orb.Point) (orb.Geometry, error) {
	poly, ok := g.(orb.Polygon)
	if !ok {
		k, err := KindOf(g)
		if err != nil {
			return nil, err
		}
		return Build(k, verts)
	}
	if len(verts) < MinVertices(KindPolygon) {
		return nil, fmt.Errorf("%w: polygon needs 3, got %d", ErrTooFewVertices, len(verts))
	}
	ring := make(orb.Ring, len(verts), len(verts)+1)
	copy(ring, verts)
	ring = append(ring, verts[0])
	out := orb.Polygon{ring}
	if len(poly) > 1 {
		for _, hole := range poly[1:] {
			out = append(out, hole.Clone())
		}
	}
	return out, nil
}
