// Package snap corrects candidate pointer positions onto nearby rendered
// vertices and edges.
package snap

import (
	"vector-editor/internal/features"
	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
)

// Kind says what a result was snapped to.
type Kind int

const (
	KindNone Kind = iota
	KindVertex
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	default:
		return "none"
	}
}

// Options controls which candidates are considered.
type Options struct {
	SnapToVertices bool
	SnapToEdges    bool
	Tolerance      float64  // pixels
	Layers         []string // render layers searched; all when empty
}

// Result is a possibly corrected position.
type Result struct {
	Position  orb.Point
	Snapped   bool
	Kind      Kind
	FeatureID string
	Distance  float64 // pixels from the input
}

// Engine snaps positions against the features rendered on a surface.
type Engine struct {
	surface surface.Surface
	opts    Options
}

// New creates an engine.
func New(s surface.Surface, opts Options) *Engine {
	return &Engine{surface: s, opts: opts}
}

// Options returns the engine options.
func (e *Engine) Options() Options { return e.opts }

// Enabled reports whether the engine can ever change a position.
func (e *Engine) Enabled() bool {
	return e.opts.Tolerance > 0 && (e.opts.SnapToVertices || e.opts.SnapToEdges)
}

type candidate struct {
	pos       orb.Point
	dist      float64
	featureID string
}

// Snap returns lngLat unchanged, or moved onto the nearest vertex within
// tolerance, or failing that the nearest edge. Features whose ID is in
// exclude are ignored.
func (e *Engine) Snap(screen geometry.Point2D, lngLat orb.Point, exclude ...string) Result {
	res := Result{Position: lngLat}
	if !e.Enabled() {
		return res
	}

	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	tol := e.opts.Tolerance
	vertex := candidate{dist: tol + 1}
	edge := candidate{dist: tol + 1}

	for _, f := range e.surface.QueryRenderedFeatures(screen, tol, e.opts.Layers) {
		id := features.ID(f)
		if skip[id] {
			continue
		}

		if e.opts.SnapToVertices {
			for _, v := range geometry.Vertices(f.Geometry) {
				if d := e.surface.Project(v).Distance(screen); d <= tol && d < vertex.dist {
					vertex = candidate{pos: v, dist: d, featureID: id}
				}
			}
		}

		if e.opts.SnapToEdges {
			for _, seg := range segments(f.Geometry) {
				a, b := e.surface.Project(seg[0]), e.surface.Project(seg[1])
				c, t := geometry.ClosestOnSegment(screen, a, b)
				if d := c.Distance(screen); d <= tol && d < edge.dist {
					edge = candidate{pos: lerp(seg[0], seg[1], t), dist: d, featureID: id}
				}
			}
		}
	}

	switch {
	case vertex.dist <= tol:
		return Result{Position: vertex.pos, Snapped: true, Kind: KindVertex, FeatureID: vertex.featureID, Distance: vertex.dist}
	case edge.dist <= tol:
		return Result{Position: edge.pos, Snapped: true, Kind: KindEdge, FeatureID: edge.featureID, Distance: edge.dist}
	}
	return res
}

func segments(g orb.Geometry) [][2]orb.Point {
	var pts []orb.Point
	switch v := g.(type) {
	case orb.LineString:
		pts = v
	case orb.Polygon:
		if len(v) == 0 {
			return nil
		}
		pts = v[0]
	default:
		return nil
	}
	out := make([][2]orb.Point, 0, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		out = append(out, [2]orb.Point{pts[i], pts[i+1]})
	}
	return out
}

func lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}
