package mapcanvas

import (
	"image"
	"image/color"
	"image/draw"

	"vector-editor/internal/features"
	"vector-editor/internal/surface"
	"vector-editor/pkg/colorutil"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Background is the map background color.
var Background = color.RGBA{0xF2, 0xEF, 0xE9, 0xFF}

// propOpacity overrides the layer opacity for one feature (previews).
const propOpacity = "opacity"

// RenderScene draws every style layer of scene, bottom first, onto img.
func RenderScene(img *image.RGBA, scene *surface.Scene, proj func(orb.Point) geometry.Point2D) {
	draw.Draw(img, img.Bounds(), &image.Uniform{Background}, image.Point{}, draw.Src)
	for _, layer := range scene.Layers() {
		for _, f := range scene.LayerFeatures(layer) {
			features.Render(img, f, proj, renderOptions(layer.Paint, f))
		}
	}
}

func renderOptions(p surface.Paint, f *geojson.Feature) features.RenderOptions {
	opts := features.RenderOptions{
		Color:                 p.Color,
		Width:                 p.Width,
		Opacity:               p.Opacity,
		Fill:                  p.Fill,
		SelectionOutlineWidth: 2,
	}
	if p.FeatureStyle {
		st := features.StyleOf(f, features.Style{Color: colorutil.Hex(p.Color), Width: p.Width})
		if c, ok := colorutil.ParseHex(st.Color); ok {
			opts.Color = c
		}
		if st.Width > 0 {
			opts.Width = st.Width
		}
	}
	if o, ok := f.Properties[propOpacity].(float64); ok {
		opts.Opacity = o
	}
	return opts
}
