package hot

import (
	"fmt"

	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Handle kinds, stored in the "handle" property of rendered handle features.
const (
	HandleVertex   = "vertex"
	HandleMidpoint = "midpoint"
)

// VertexHandle marks one editable vertex of a staged feature.
type VertexHandle struct {
	Index          int
	Position       orb.Point
	OwnerFeatureID string
}

// MidpointHandle marks the insertion point between vertex Index and the next.
type MidpointHandle struct {
	Index          int
	Position       orb.Point
	OwnerFeatureID string
}

// handleSet is the side-table entry for one owner. Entries are disposed
// explicitly when the owner leaves the hot set.
type handleSet struct {
	vertices  []VertexHandle
	midpoints []MidpointHandle
}

func buildHandles(id string, g orb.Geometry, withMidpoints bool) *handleSet {
	verts := geometry.Vertices(g)
	hs := &handleSet{vertices: make([]VertexHandle, len(verts))}
	for i, v := range verts {
		hs.vertices[i] = VertexHandle{Index: i, Position: v, OwnerFeatureID: id}
	}
	if !withMidpoints {
		return hs
	}
	if _, isPoint := g.(orb.Point); isPoint {
		return hs
	}
	mids := geometry.Midpoints(verts, geometry.IsClosed(g))
	hs.midpoints = make([]MidpointHandle, len(mids))
	for i, m := range mids {
		hs.midpoints[i] = MidpointHandle{Index: i, Position: m, OwnerFeatureID: id}
	}
	return hs
}

// features renders the set as point features for the handle layers.
func (hs *handleSet) features() []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(hs.vertices)+len(hs.midpoints))
	for _, m := range hs.midpoints {
		out = append(out, handleFeature(HandleMidpoint, m.OwnerFeatureID, m.Index, m.Position))
	}
	for _, v := range hs.vertices {
		out = append(out, handleFeature(HandleVertex, v.OwnerFeatureID, v.Index, v.Position))
	}
	return out
}

func handleFeature(kind, owner string, index int, p orb.Point) *geojson.Feature {
	f := geojson.NewFeature(p)
	f.ID = fmt.Sprintf("__%s:%s:%d", kind, owner, index)
	f.Properties["handle"] = kind
	f.Properties["featureId"] = owner
	f.Properties["index"] = index
	return f
}

// parseHandle reads the handle properties back from a rendered feature.
func parseHandle(f *geojson.Feature) (kind, owner string, index int, ok bool) {
	kind, _ = f.Properties["handle"].(string)
	owner, _ = f.Properties["featureId"].(string)
	switch v := f.Properties["index"].(type) {
	case int:
		index = v
	case float64:
		index = int(v)
	default:
		return "", "", 0, false
	}
	return kind, owner, index, kind != "" && owner != ""
}
