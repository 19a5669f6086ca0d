package features

import (
	"image"
	"testing"
	"time"

	"vector-editor/pkg/geometry"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewFeature(t *testing.T) {
	f := NewFeature(orb.Point{1, 2}, "roads", now)
	_, err := uuid.Parse(ID(f))
	require.NoError(t, err)
	assert.Equal(t, "roads", LayerID(f))
	assert.Equal(t, "2024-03-01T12:00:00Z", f.Properties[PropCreatedAt])
}

func TestWithGeometryLeavesOriginal(t *testing.T) {
	f := NewFeature(orb.LineString{{0, 0}, {1, 1}}, "roads", now)
	g := WithGeometry(f, orb.LineString{{0, 0}, {2, 2}}, now.Add(time.Hour))

	assert.Equal(t, orb.LineString{{0, 0}, {1, 1}}, f.Geometry)
	assert.Equal(t, orb.LineString{{0, 0}, {2, 2}}, g.Geometry)
	assert.Equal(t, ID(f), ID(g))
	assert.Equal(t, "2024-03-01T13:00:00Z", g.Properties[PropUpdatedAt])
	assert.Equal(t, "2024-03-01T12:00:00Z", f.Properties[PropUpdatedAt])
}

func TestStyleOf(t *testing.T) {
	def := Style{Color: "#000000", Width: 2}
	f := geojson.NewFeature(orb.Point{})
	assert.Equal(t, def, StyleOf(f, def))

	f.Properties[PropStyle] = map[string]interface{}{"color": "#ff0000"}
	assert.Equal(t, Style{Color: "#ff0000", Width: 2}, StyleOf(f, def))
	assert.Equal(t, "#3cb44b", NextColorHex(9))
}

func TestSelectionModes(t *testing.T) {
	s := NewSelection()
	s.Apply("a", SelectReplace)
	s.Apply("b", SelectAdd)
	assert.Equal(t, []string{"a", "b"}, s.SelectedIDs())

	s.Apply("a", SelectToggle)
	assert.Equal(t, []string{"b"}, s.SelectedIDs())

	s.Apply("c", SelectReplace)
	assert.Equal(t, []string{"c"}, s.SelectedIDs())

	s.Clear()
	assert.Zero(t, s.Count())
}

func TestCollection(t *testing.T) {
	c := NewCollection()
	c.AddLayer(Layer{ID: "roads", Name: "Roads"})
	c.AddLayer(Layer{ID: "poi", Name: "POI"})

	a := NewFeature(orb.Point{0, 0}, "poi", now)
	b := NewFeature(orb.LineString{{0, 0}, {1, 1}}, "roads", now)
	c.Put(a)
	c.Put(b)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{ID(b)}, c.ByLayer("roads"))

	got, ok := c.Get(ID(a))
	require.True(t, ok)
	got.Geometry = orb.Point{9, 9}
	again, _ := c.Get(ID(a))
	assert.Equal(t, orb.Point{0, 0}, again.Geometry)

	assert.Len(t, c.FeatureCollection(ID(a)).Features, 1)
	c.SetLayerVisible("roads", false)
	assert.Len(t, c.FeatureCollection().Features, 1)

	assert.True(t, c.Remove(ID(a)))
	assert.False(t, c.Remove(ID(a)))
	assert.Len(t, c.Layers(), 2)
}

func TestRenderDrawsPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	proj := func(p orb.Point) geometry.Point2D { return geometry.Point2D{X: p[0], Y: p[1]} }

	f := geojson.NewFeature(orb.Polygon{{{10, 10}, {40, 10}, {40, 40}, {10, 40}, {10, 10}}})
	opts := DefaultRenderOptions()
	opts.Selected = true
	Render(img, f, proj, opts)

	assert.NotZero(t, img.RGBAAt(25, 25).A)
	assert.NotZero(t, img.RGBAAt(10, 25).A)
	assert.Zero(t, img.RGBAAt(0, 49).A)
}
