package tools

import (
	"testing"

	"vector-editor/internal/features"
	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
)

// memStage is a map-backed Stage.
type memStage struct {
	features map[string]*geojson.Feature
	adds     int
}

func newMemStage() *memStage {
	return &memStage{features: make(map[string]*geojson.Feature)}
}

func (s *memStage) AddFeature(f *geojson.Feature) {
	s.features[features.ID(f)] = features.Clone(f)
	s.adds++
}

func (s *memStage) RemoveFeature(id string) { delete(s.features, id) }

func (s *memStage) Feature(id string) (*geojson.Feature, bool) {
	f, ok := s.features[id]
	if !ok {
		return nil, false
	}
	return features.Clone(f), true
}

// recorder collects callback invocations.
type recorder struct {
	completed  []*geojson.Feature
	selected   []string
	modes      []features.SelectionMode
	deselected int
	dragStart  []string
	dragEnd    []string
	dragGeom   []orb.Geometry
	cancels    int
	errors     []string
	statuses   []string
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnFeatureComplete: func(f *geojson.Feature) { r.completed = append(r.completed, f) },
		OnFeatureSelected: func(id string, mode features.SelectionMode) {
			r.selected = append(r.selected, id)
			r.modes = append(r.modes, mode)
		},
		OnFeaturesDeselected: func() { r.deselected++ },
		OnFeatureDragStart:   func(id string) { r.dragStart = append(r.dragStart, id) },
		OnFeatureDragEnd: func(id string, g orb.Geometry) {
			r.dragEnd = append(r.dragEnd, id)
			r.dragGeom = append(r.dragGeom, g)
		},
		OnCancel:       func() { r.cancels++ },
		OnError:        func(msg string) { r.errors = append(r.errors, msg) },
		OnStatusChange: func(msg string) { r.statuses = append(r.statuses, msg) },
	}
}

type fixture struct {
	surface *surface.Memory
	stage   *memStage
	rec     *recorder
	layer   string
	env     Env
}

func newFixture() *fixture {
	fx := &fixture{
		surface: surface.NewMemory(),
		stage:   newMemStage(),
		rec:     &recorder{},
		layer:   "roads",
	}
	fx.env = Env{
		Surface:     fx.surface,
		Stage:       fx.stage,
		Config:      DefaultConfig(),
		Callbacks:   fx.rec.callbacks(),
		ActiveLayer: func() string { return fx.layer },
	}
	return fx
}

// addCold renders f in a "cold" source drawn by layer "cold-all".
func (fx *fixture) addCold(t *testing.T, fs ...*geojson.Feature) {
	src := fx.surface.SceneSource("cold")
	fx.surface.AddLayer(surface.StyleLayer{Name: "cold-all", Source: "cold"})
	fc := geojson.NewFeatureCollection()
	for _, f := range fs {
		fc.Append(f)
	}
	require.NoError(t, src.SetData(fc))
}

func px(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }
