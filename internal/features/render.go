package features

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"vector-editor/pkg/colorutil"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/image/vector"
)

// RenderOptions configures how a feature is rasterised.
type RenderOptions struct {
	Color   color.RGBA
	Width   float64 // line width, or point radius
	Opacity float64 // alpha scale, 0 = opaque
	Fill    bool    // fill polygons

	// Selection rendering
	Selected              bool
	SelectionOutlineWidth int
}

// DefaultRenderOptions returns default rendering options.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Color:                 DefaultColors[2],
		Width:                 2,
		Fill:                  true,
		SelectionOutlineWidth: 2,
	}
}

// Render draws f onto img, projecting world positions with proj.
func Render(img *image.RGBA, f *geojson.Feature, proj func(orb.Point) geometry.Point2D, opts RenderOptions) {
	if f == nil || f.Geometry == nil {
		return
	}
	c := colorutil.WithOpacity(opts.Color, opts.Opacity)

	var screen []geometry.Point2D
	switch g := f.Geometry.(type) {
	case orb.Point:
		p := proj(g)
		r := math.Max(opts.Width, 3)
		fillCircle(img, p, r, c)
		screen = []geometry.Point2D{p}
	case orb.LineString:
		screen = projectAll(proj, g)
		strokePolyline(img, screen, opts.Width, c)
	case orb.Polygon:
		if len(g) == 0 {
			return
		}
		screen = projectAll(proj, g[0])
		if opts.Fill {
			fill := 0.35
			if opts.Opacity > 0 {
				fill = opts.Opacity / 2
			}
			fillPolygon(img, screen, colorutil.WithOpacity(opts.Color, fill))
		}
		strokePolyline(img, screen, opts.Width, c)
	default:
		return
	}

	if opts.Selected {
		renderSelectionHighlight(img, screen, opts)
	}
}

// renderSelectionHighlight draws a box around the projected feature.
func renderSelectionHighlight(img *image.RGBA, pts []geometry.Point2D, opts RenderOptions) {
	b := geometry.BoundingBox(pts).Expand(float64(opts.SelectionOutlineWidth) + 3)
	for w := 0; w < opts.SelectionOutlineWidth; w++ {
		drawRect(img, int(b.X)+w, int(b.Y)+w, int(b.X+b.Width)-w, int(b.Y+b.Height)-w, SelectionColor)
	}
}

func projectAll(proj func(orb.Point) geometry.Point2D, pts []orb.Point) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = proj(p)
	}
	return out
}

func rasterize(img *image.RGBA, c color.RGBA, path func(z *vector.Rasterizer)) {
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	path(z)
	z.Draw(img, b, image.NewUniform(c), image.Point{})
}

// fillCircle fills a circle with the given color.
func fillCircle(img *image.RGBA, center geometry.Point2D, r float64, c color.RGBA) {
	const segments = 24
	rasterize(img, c, func(z *vector.Rasterizer) {
		for i := 0; i <= segments; i++ {
			a := 2 * math.Pi * float64(i) / segments
			x := float32(center.X + r*math.Cos(a))
			y := float32(center.Y + r*math.Sin(a))
			if i == 0 {
				z.MoveTo(x, y)
			} else {
				z.LineTo(x, y)
			}
		}
		z.ClosePath()
	})
}

// fillPolygon fills a closed ring.
func fillPolygon(img *image.RGBA, ring []geometry.Point2D, c color.RGBA) {
	if len(ring) < 3 {
		return
	}
	rasterize(img, c, func(z *vector.Rasterizer) {
		z.MoveTo(float32(ring[0].X), float32(ring[0].Y))
		for _, p := range ring[1:] {
			z.LineTo(float32(p.X), float32(p.Y))
		}
		z.ClosePath()
	})
}

// strokePolyline draws each segment as a quad with round joins.
func strokePolyline(img *image.RGBA, pts []geometry.Point2D, width float64, c color.RGBA) {
	half := math.Max(width, 1) / 2
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Perpendicular unit vector
		px, py := -dy/length*half, dx/length*half
		rasterize(img, c, func(z *vector.Rasterizer) {
			z.MoveTo(float32(a.X+px), float32(a.Y+py))
			z.LineTo(float32(b.X+px), float32(b.Y+py))
			z.LineTo(float32(b.X-px), float32(b.Y-py))
			z.LineTo(float32(a.X-px), float32(a.Y-py))
			z.ClosePath()
		})
		if half > 1 {
			fillCircle(img, b, half, c)
		}
	}
}

// drawRect draws a rectangle outline.
func drawRect(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	u := image.NewUniform(c)
	for _, r := range []image.Rectangle{
		image.Rect(x1, y1, x2+1, y1+1),
		image.Rect(x1, y2, x2+1, y2+1),
		image.Rect(x1, y1, x1+1, y2+1),
		image.Rect(x2, y1, x2+1, y2+1),
	} {
		draw.Draw(img, r.Intersect(img.Bounds()), u, image.Point{}, draw.Over)
	}
}
