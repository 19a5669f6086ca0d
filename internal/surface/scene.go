package surface

import (
	"fmt"
	"image/color"
	"sync"

	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Paint describes how a style layer is drawn.
type Paint struct {
	Color   color.RGBA
	Width   float64 // line width or point radius, pixels
	Opacity float64 // 0 means fully opaque
	Fill    bool

	// Take color and width from the feature's style property when present.
	FeatureStyle bool
}

// StyleLayer draws the features of one source that pass Filter.
type StyleLayer struct {
	Name   string
	Source string
	Filter func(f *geojson.Feature) bool
	Paint  Paint
}

// Accepts reports whether the layer draws f.
func (l StyleLayer) Accepts(f *geojson.Feature) bool {
	return l.Filter == nil || l.Filter(f)
}

// GeometryFilter returns a filter accepting the given GeoJSON geometry types.
func GeometryFilter(types ...string) func(*geojson.Feature) bool {
	return func(f *geojson.Feature) bool {
		if f.Geometry == nil {
			return false
		}
		for _, t := range types {
			if f.Geometry.GeoJSONType() == t {
				return true
			}
		}
		return false
	}
}

// PropertyFilter returns a filter accepting features whose property key equals value.
func PropertyFilter(key string, value interface{}) func(*geojson.Feature) bool {
	return func(f *geojson.Feature) bool {
		return f.Properties[key] == value
	}
}

// SceneSource is an in-memory GeoJSON source.
type SceneSource struct {
	mu      sync.RWMutex
	name    string
	data    *geojson.FeatureCollection
	updates int
	failure error
	scene   *Scene
}

// SetData replaces the source contents in one step.
func (s *SceneSource) SetData(fc *geojson.FeatureCollection) error {
	s.mu.Lock()
	if s.failure != nil {
		err := s.failure
		s.failure = nil
		s.mu.Unlock()
		return fmt.Errorf("source %s: %w", s.name, err)
	}
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	s.data = fc
	s.updates++
	s.mu.Unlock()

	if s.scene != nil {
		s.scene.changed()
	}
	return nil
}

// FailNext makes the next SetData return err without changing the data.
func (s *SceneSource) FailNext(err error) {
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
}

// Data returns the current collection.
func (s *SceneSource) Data() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Updates returns how many successful SetData calls the source received.
func (s *SceneSource) Updates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates
}

// Scene holds named sources and the ordered style layers drawn from them.
type Scene struct {
	mu       sync.RWMutex
	sources  map[string]*SceneSource
	layers   []StyleLayer
	onChange func()
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{sources: make(map[string]*SceneSource)}
}

// AddSource returns the named source, creating an empty one when missing.
func (s *Scene) AddSource(name string) GeoJSONSource {
	return s.SceneSource(name)
}

// SceneSource is AddSource returning the concrete type.
func (s *Scene) SceneSource(name string) *SceneSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src, ok := s.sources[name]; ok {
		return src
	}
	src := &SceneSource{name: name, data: geojson.NewFeatureCollection(), scene: s}
	s.sources[name] = src
	return src
}

// Source returns a source by name.
func (s *Scene) Source(name string) (GeoJSONSource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[name]
	if !ok {
		return nil, false
	}
	return src, true
}

// AddLayer appends a layer, or replaces a layer with the same name in place.
func (s *Scene) AddLayer(layer StyleLayer) {
	defer s.changed()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.layers {
		if l.Name == layer.Name {
			s.layers[i] = layer
			return
		}
	}
	s.layers = append(s.layers, layer)
}

// OnChange sets a callback run after any source is updated or a layer is
// added. It is called without the scene lock held.
func (s *Scene) OnChange(f func()) {
	s.mu.Lock()
	s.onChange = f
	s.mu.Unlock()
}

func (s *Scene) changed() {
	s.mu.RLock()
	f := s.onChange
	s.mu.RUnlock()
	if f != nil {
		f()
	}
}

// Layers returns the style layers in draw order.
func (s *Scene) Layers() []StyleLayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StyleLayer, len(s.layers))
	copy(out, s.layers)
	return out
}

// LayerFeatures returns the features a layer currently draws.
func (s *Scene) LayerFeatures(layer StyleLayer) []*geojson.Feature {
	s.mu.RLock()
	src := s.sources[layer.Source]
	s.mu.RUnlock()
	if src == nil {
		return nil
	}
	var out []*geojson.Feature
	for _, f := range src.Data().Features {
		if layer.Accepts(f) {
			out = append(out, f)
		}
	}
	return out
}

// Query hit-tests the drawn features against p. Layers are searched topmost
// first and each feature is reported once.
func (s *Scene) Query(proj func(orb.Point) geometry.Point2D, p geometry.Point2D, radius float64, names []string) []*geojson.Feature {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	layers := s.Layers()
	seen := make(map[*geojson.Feature]bool)
	var hits []*geojson.Feature
	for i := len(layers) - 1; i >= 0; i-- {
		layer := layers[i]
		if len(want) > 0 && !want[layer.Name] {
			continue
		}
		feats := s.LayerFeatures(layer)
		for j := len(feats) - 1; j >= 0; j-- {
			f := feats[j]
			if seen[f] {
				continue
			}
			if HitTest(f.Geometry, proj, p, radius) {
				seen[f] = true
				hits = append(hits, f)
			}
		}
	}
	return hits
}

// HitTest reports whether geometry g, drawn through proj, lies within radius
// pixels of p. Polygons also hit when p is inside them.
func HitTest(g orb.Geometry, proj func(orb.Point) geometry.Point2D, p geometry.Point2D, radius float64) bool {
	switch v := g.(type) {
	case orb.Point:
		return proj(v).Distance(p) <= radius
	case orb.LineString:
		return geometry.PolylineDistance(p, projectAll(proj, v)) <= radius
	case orb.Polygon:
		if len(v) == 0 {
			return false
		}
		ring := projectAll(proj, v[0])
		return geometry.PointInPolygon(p, ring) || geometry.PolylineDistance(p, ring) <= radius
	}
	return false
}

func projectAll(proj func(orb.Point) geometry.Point2D, pts []orb.Point) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, pt := range pts {
		out[i] = proj(pt)
	}
	return out
}
