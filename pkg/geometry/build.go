package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

var inf = math.Inf(1)

// ErrTooFewVertices is returned when a coordinate list cannot form the requested kind.
var ErrTooFewVertices = errors.New("too few vertices")

// ErrUnsupportedGeometry is returned for geometry types the editor does not handle.
var ErrUnsupportedGeometry = errors.New("unsupported geometry")

// Kind identifies the geometry types the editor can build.
type Kind int

const (
	KindPoint Kind = iota
	KindLineString
	KindPolygon
)

// String returns the GeoJSON type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLineString:
		return "LineString"
	case KindPolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// MinVertices returns the minimum number of distinct vertices the kind needs.
func MinVertices(k Kind) int {
	switch k {
	case KindLineString:
		return 2
	case KindPolygon:
		return 3
	default:
		return 1
	}
}

// KindOf returns the kind of an orb geometry.
func KindOf(g orb.Geometry) (Kind, error) {
	switch g.(type) {
	case orb.Point:
		return KindPoint, nil
	case orb.LineString:
		return KindLineString, nil
	case orb.Polygon:
		return KindPolygon, nil
	}
	if g == nil {
		return 0, fmt.Errorf("%w: nil", ErrUnsupportedGeometry)
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
}

// Build assembles coords into a geometry of the given kind. Polygon rings are
// closed by repeating the first coordinate unless the input is already closed.
// The input slice is never retained.
func Build(k Kind, coords []orb.Point) (orb.Geometry, error) {
	var (
		g   orb.Geometry
		err error
	)
	switch k {
	case KindPoint:
		g, err = BuildPoint(coords)
	case KindLineString:
		g, err = BuildLineString(coords)
	case KindPolygon:
		g, err = BuildPolygon(coords)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnsupportedGeometry, int(k))
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// BuildPoint returns the last coordinate as a point.
func BuildPoint(coords []orb.Point) (orb.Point, error) {
	if len(coords) < 1 {
		return orb.Point{}, fmt.Errorf("%w: point needs 1, got 0", ErrTooFewVertices)
	}
	return coords[len(coords)-1], nil
}

// BuildLineString returns a copy of coords as a line string.
func BuildLineString(coords []orb.Point) (orb.LineString, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("%w: line needs 2, got %d", ErrTooFewVertices, len(coords))
	}
	ls := make(orb.LineString, len(coords))
	copy(ls, coords)
	return ls, nil
}

// BuildPolygon returns a single-ring polygon from coords.
func BuildPolygon(coords []orb.Point) (orb.Polygon, error) {
	open := coords
	if len(open) > 1 && open[0].Equal(open[len(open)-1]) {
		open = open[:len(open)-1]
	}
	if len(open) < 3 {
		return nil, fmt.Errorf("%w: polygon needs 3, got %d", ErrTooFewVertices, len(open))
	}
	ring := make(orb.Ring, len(open), len(open)+1)
	copy(ring, open)
	ring = append(ring, open[0])
	return orb.Polygon{ring}, nil
}

// Distance returns the great-circle distance in metres between two positions.
func Distance(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b)
}
