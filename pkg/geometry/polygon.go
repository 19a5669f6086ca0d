package geometry

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// PointInPolygon tests if a point is inside a polygon using ray casting.
// The ring may be open or closed.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// ClosestOnSegment returns the point on segment a-b nearest to p and the
// parameter t in [0, 1] locating it along the segment.
func ClosestOnSegment(p, a, b Point2D) (Point2D, float64) {
	ab := r2.Sub(b.Vec(), a.Vec())
	lenSq := r2.Dot(ab, ab)
	if lenSq == 0 {
		return a, 0
	}
	t := r2.Dot(r2.Sub(p.Vec(), a.Vec()), ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return FromVec(r2.Add(a.Vec(), r2.Scale(t, ab))), t
}

// SegmentDistance returns the distance in pixels from p to segment a-b.
func SegmentDistance(p, a, b Point2D) float64 {
	c, _ := ClosestOnSegment(p, a, b)
	return p.Distance(c)
}

// PolylineDistance returns the smallest distance from p to any segment of the
// polyline, or +Inf for fewer than two points.
func PolylineDistance(p Point2D, line []Point2D) float64 {
	best := inf
	for i := 0; i+1 < len(line); i++ {
		if d := SegmentDistance(p, line[i], line[i+1]); d < best {
			best = d
		}
	}
	return best
}
