package surface

import (
	"math"

	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	tileSize = 256.0
	minZoom  = 0.0
	maxZoom  = 22.0

	// Circumference of the Web Mercator world in metres.
	mercatorWorld = 2 * math.Pi * orb.EarthRadius
)

// Viewport maps between Web Mercator world positions and canvas pixels.
type Viewport struct {
	Center orb.Point // lon, lat
	Zoom   float64
	Width  float64 // pixels
	Height float64 // pixels
}

// NewViewport creates a viewport centred on center.
func NewViewport(center orb.Point, zoom, width, height float64) Viewport {
	return Viewport{Center: center, Zoom: clampZoom(zoom), Width: width, Height: height}
}

// PixelsPerMetre returns the Mercator scale at the current zoom.
func (v Viewport) PixelsPerMetre() float64 {
	return tileSize * math.Pow(2, v.Zoom) / mercatorWorld
}

// Project converts lon/lat to canvas pixels.
func (v Viewport) Project(p orb.Point) geometry.Point2D {
	m := project.WGS84.ToMercator(p)
	c := project.WGS84.ToMercator(v.Center)
	s := v.PixelsPerMetre()
	return geometry.Point2D{
		X: (m[0]-c[0])*s + v.Width/2,
		Y: (c[1]-m[1])*s + v.Height/2,
	}
}

// Unproject converts canvas pixels to lon/lat.
func (v Viewport) Unproject(p geometry.Point2D) orb.Point {
	c := project.WGS84.ToMercator(v.Center)
	s := v.PixelsPerMetre()
	m := orb.Point{
		c[0] + (p.X-v.Width/2)/s,
		c[1] - (p.Y-v.Height/2)/s,
	}
	return project.Mercator.ToWGS84(m)
}

// Pan returns the viewport moved so the content shifts by (dx, dy) pixels.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.Center = v.Unproject(geometry.Point2D{X: v.Width/2 - dx, Y: v.Height/2 - dy})
	return v
}

// ZoomAround returns the viewport zoomed by delta levels keeping the world
// position under anchor fixed on screen.
func (v Viewport) ZoomAround(delta float64, anchor geometry.Point2D) Viewport {
	world := v.Unproject(anchor)
	v.Zoom = clampZoom(v.Zoom + delta)
	after := v.Project(world)
	return v.Pan(anchor.X-after.X, anchor.Y-after.Y)
}

func clampZoom(z float64) float64 {
	return math.Max(minZoom, math.Min(maxZoom, z))
}
