// Package features provides GeoJSON feature helpers, the in-memory mirror of
// persisted features, and the selection store.
package features

import (
	"fmt"
	"image/color"
	"time"

	"vector-editor/pkg/colorutil"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Property keys carried by every feature.
const (
	PropLayerID   = "layerId"
	PropStyle     = "style"
	PropCreatedAt = "createdAt"
	PropUpdatedAt = "updatedAt"
)

// Style is the per-feature drawing style stored under the "style" property.
type Style struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// DefaultColors provides a palette of saturated colors for layers.
var DefaultColors = []color.RGBA{
	{230, 25, 75, 255},  // Red
	{60, 180, 75, 255},  // Green
	{0, 130, 200, 255},  // Blue
	{245, 130, 48, 255}, // Orange
	{145, 30, 180, 255}, // Purple
	{70, 240, 240, 255}, // Cyan
	{240, 50, 230, 255}, // Magenta
	{128, 128, 0, 255},  // Olive
}

// SelectionColor is used to highlight selected features.
var SelectionColor = colorutil.Gold

// NextColor returns the palette color for the n-th layer.
func NextColor(n int) color.RGBA {
	return DefaultColors[n%len(DefaultColors)]
}

// NextColorHex returns NextColor(n) as #rrggbb.
func NextColorHex(n int) string {
	return colorutil.Hex(NextColor(n))
}

// NewFeature creates a feature with a fresh UUID on the given layer.
func NewFeature(g orb.Geometry, layerID string, now time.Time) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.ID = uuid.NewString()
	ts := now.UTC().Format(time.RFC3339)
	f.Properties[PropLayerID] = layerID
	f.Properties[PropCreatedAt] = ts
	f.Properties[PropUpdatedAt] = ts
	return f
}

// ID returns the feature id as a string, or "" when unset.
func ID(f *geojson.Feature) string {
	if f == nil || f.ID == nil {
		return ""
	}
	if s, ok := f.ID.(string); ok {
		return s
	}
	return fmt.Sprint(f.ID)
}

// LayerID returns the layerId property.
func LayerID(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	return f.Properties.MustString(PropLayerID, "")
}

// StyleOf returns the feature style, falling back to def.
func StyleOf(f *geojson.Feature, def Style) Style {
	if f == nil {
		return def
	}
	switch v := f.Properties[PropStyle].(type) {
	case Style:
		return v
	case map[string]interface{}:
		s := def
		if c, ok := v["color"].(string); ok {
			s.Color = c
		}
		if w, ok := v["width"].(float64); ok {
			s.Width = w
		}
		return s
	}
	return def
}

// Clone returns a deep copy of f. The geometry is cloned and properties are
// copied one level deep.
func Clone(f *geojson.Feature) *geojson.Feature {
	if f == nil {
		return nil
	}
	out := geojson.NewFeature(orb.Clone(f.Geometry))
	out.ID = f.ID
	out.Properties = f.Properties.Clone()
	if f.BBox != nil {
		out.BBox = append(geojson.BBox(nil), f.BBox...)
	}
	return out
}

// WithGeometry returns a copy of f carrying g and a fresh updatedAt stamp.
func WithGeometry(f *geojson.Feature, g orb.Geometry, now time.Time) *geojson.Feature {
	out := Clone(f)
	out.Geometry = orb.Clone(g)
	out.Properties[PropUpdatedAt] = now.UTC().Format(time.RFC3339)
	return out
}
