package mapcanvas

import (
	"image"
	"image/color"
	"testing"

	"vector-editor/internal/features"
	"vector-editor/internal/surface"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCanvas(t *testing.T) (*MapCanvas, *[]surface.EventKind) {
	t.Helper()
	test.NewApp()
	m := New(orb.Point{0, 0}, 16)
	m.Resize(fyne.NewSize(800, 600))

	var kinds []surface.EventKind
	record := func(ev *surface.Event) { kinds = append(kinds, ev.Kind) }
	for _, k := range []surface.EventKind{
		surface.EventClick, surface.EventDoubleClick, surface.EventMouseDown,
		surface.EventMouseMove, surface.EventMouseUp, surface.EventKeyDown,
	} {
		m.Canvas().On(k, record)
	}
	return m, &kinds
}

func TestTapsSynthesizeDoubleClick(t *testing.T) {
	m, kinds := newCanvas(t)

	m.Tapped(&fyne.PointEvent{Position: fyne.NewPos(400, 300)})
	m.Tapped(&fyne.PointEvent{Position: fyne.NewPos(401, 300)})
	assert.Equal(t, []surface.EventKind{surface.EventClick, surface.EventClick, surface.EventDoubleClick}, *kinds)
	assert.Equal(t, 17.0, m.Viewport().Zoom)

	m.Interactions().DoubleClickZoom.Disable()
	m.Tapped(&fyne.PointEvent{Position: fyne.NewPos(400, 300)})
	m.Tapped(&fyne.PointEvent{Position: fyne.NewPos(400, 300)})
	assert.Equal(t, 17.0, m.Viewport().Zoom)
}

func TestDistantTapsAreSeparateClicks(t *testing.T) {
	m, kinds := newCanvas(t)
	m.Tapped(&fyne.PointEvent{Position: fyne.NewPos(100, 100)})
	m.Tapped(&fyne.PointEvent{Position: fyne.NewPos(300, 100)})
	assert.Equal(t, []surface.EventKind{surface.EventClick, surface.EventClick}, *kinds)
}

func TestDragPansUnlessClaimed(t *testing.T) {
	m, kinds := newCanvas(t)
	before := m.Viewport().Center

	m.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(400, 300)}, Button: desktop.MouseButtonPrimary})
	m.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(450, 300)}, Dragged: fyne.NewDelta(50, 0)})
	assert.Less(t, m.Viewport().Center.Lon(), before.Lon(), "content moved right, centre moved west")

	m.Canvas().On(surface.EventMouseMove, func(*surface.Event) {
		m.Interactions().DragPan.Disable()
	})
	panned := m.Viewport().Center
	m.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(500, 300)}, Dragged: fyne.NewDelta(50, 0)})
	assert.Equal(t, panned, m.Viewport().Center)

	m.DragEnd()
	m.MouseUp(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(500, 300)}, Button: desktop.MouseButtonPrimary})
	assert.Equal(t, []surface.EventKind{
		surface.EventMouseDown, surface.EventMouseMove, surface.EventMouseMove, surface.EventMouseUp,
	}, *kinds, "mouseup fires once")
}

func TestScrollZoom(t *testing.T) {
	m, _ := newCanvas(t)
	m.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(400, 300)}, Scrolled: fyne.NewDelta(0, 10)})
	assert.Equal(t, 16.5, m.Viewport().Zoom)

	m.Interactions().ScrollZoom.Disable()
	m.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -10)})
	assert.Equal(t, 16.5, m.Viewport().Zoom)
}

func TestKeysAndModifiers(t *testing.T) {
	m, kinds := newCanvas(t)
	var keys []surface.Key
	var mods []surface.Modifier
	m.Document().On(surface.EventKeyDown, func(ev *surface.Event) {
		keys = append(keys, ev.Key)
		mods = append(mods, ev.Modifiers)
	})

	m.MouseMoved(&desktop.MouseEvent{Modifier: fyne.KeyModifierShift | fyne.KeyModifierControl})
	m.KeyDown(&fyne.KeyEvent{Name: fyne.KeyReturn})
	m.KeyDown(&fyne.KeyEvent{Name: fyne.KeyL})
	m.HandleKey(fyne.KeyEscape)
	m.KeyDown(&fyne.KeyEvent{Name: fyne.KeyF1})

	assert.Equal(t, []surface.Key{surface.KeyEnter, "l", surface.KeyEscape}, keys)
	assert.Equal(t, surface.ModShift|surface.ModCtrl, mods[0])
	assert.Len(t, *kinds, 4)
}

func TestPageLifecycle(t *testing.T) {
	m, _ := newCanvas(t)
	var got []*surface.Event
	m.Document().On(surface.EventVisibilityChange, func(ev *surface.Event) { got = append(got, ev) })
	m.Document().On(surface.EventBeforeUnload, func(ev *surface.Event) { got = append(got, ev) })

	m.PageHidden()
	m.Unload()
	require.Len(t, got, 2)
	assert.True(t, got[0].Hidden)
	assert.Equal(t, surface.EventBeforeUnload, got[1].Kind)
}

func TestRenderSceneUsesFeatureStyle(t *testing.T) {
	m, _ := newCanvas(t)
	src := m.AddSource("cold")
	m.AddLayer(surface.StyleLayer{
		Name:   "points",
		Source: "cold",
		Paint:  surface.Paint{Color: features.DefaultColors[2], Width: 6, FeatureStyle: true},
	})
	f := geojson.NewFeature(orb.Point{0, 0})
	f.Properties[features.PropStyle] = features.Style{Color: "#ff0000", Width: 6}
	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	require.NoError(t, src.SetData(fc))

	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	RenderScene(img, m.Scene, m.Project)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(400, 300))
	assert.Equal(t, Background, img.RGBAAt(10, 10))
}

func TestRenderOptions(t *testing.T) {
	f := geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}})
	f.Properties["opacity"] = 0.5

	opts := renderOptions(surface.Paint{Color: features.SelectionColor, Width: 2}, f)
	assert.Equal(t, features.SelectionColor, opts.Color)
	assert.Equal(t, 0.5, opts.Opacity)

	f.Properties[features.PropStyle] = features.Style{Color: "#00ff00", Width: 4}
	opts = renderOptions(surface.Paint{Color: features.SelectionColor, Width: 2, FeatureStyle: true}, f)
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, opts.Color)
	assert.Equal(t, 4.0, opts.Width)
}
