// Package hot implements the staging layer: features being drawn, previewed
// or edited right now, rendered apart from persisted data, together with the
// vertex and midpoint handles used for vertex editing.
package hot

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"vector-editor/internal/features"
	"vector-editor/internal/surface"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrDestroyed is logged when a method is called after Destroy.
var ErrDestroyed = errors.New("hot source destroyed")

// Render layer names.
const (
	LayerFeatures  = "hot-features"
	LayerMidpoints = "hot-midpoints"
	LayerVertices  = "hot-vertices"
)

// SnapFunc corrects a dragged vertex position. exclude holds the edited feature.
type SnapFunc func(screen geometry.Point2D, lngLat orb.Point, exclude ...string) orb.Point

// Options configures a Source.
type Options struct {
	SourceName            string  // default "hot"
	EnableVertexInsertion bool    // render midpoint handles
	HandleRadius          float64 // pixels, default 6
	Snap                  SnapFunc
}

// Callbacks report vertex editing gestures. All are optional.
type Callbacks struct {
	OnVertexMoved   func(featureID string, index int, pos orb.Point)
	OnVertexAdded   func(featureID string, index int, pos orb.Point)
	OnVertexDragEnd func(featureID string, index int)
	OnError         func(message string)
}

type vertexDrag struct {
	featureID string
	index     int
	panWasOn  bool
}

// Source is the staging layer. Every mutation re-renders the whole set with
// one SetData call; the in-memory set stays authoritative when that fails.
type Source struct {
	mu sync.Mutex

	surface surface.Surface
	render  surface.GeoJSONSource
	opts    Options
	cb      Callbacks

	features map[string]*geojson.Feature
	order    []string

	// Side table of handles keyed by owner feature ID.
	handles map[string]*handleSet
	editing string
	drag    *vertexDrag

	// A handle was pressed since the last mousedown; the click that ends the
	// gesture belongs to the handle, as does a dblclick after such a click.
	handlePressed  bool
	clickSwallowed bool

	listeners surface.Registry
	destroyed bool
}

// New creates the staging source, its render layers and its listeners.
func New(s surface.Surface, opts Options, cb Callbacks) *Source {
	if opts.SourceName == "" {
		opts.SourceName = "hot"
	}
	if opts.HandleRadius <= 0 {
		opts.HandleRadius = 6
	}
	src := &Source{
		surface:  s,
		render:   s.AddSource(opts.SourceName),
		opts:     opts,
		cb:       cb,
		features: make(map[string]*geojson.Feature),
		handles:  make(map[string]*handleSet),
	}

	isHandle := func(f *geojson.Feature) bool { _, ok := f.Properties["handle"]; return ok }
	s.AddLayer(surface.StyleLayer{
		Name:   LayerFeatures,
		Source: opts.SourceName,
		Filter: func(f *geojson.Feature) bool { return !isHandle(f) },
		Paint:  surface.Paint{Color: hotColor, Width: 3, Fill: true},
	})
	s.AddLayer(surface.StyleLayer{
		Name:   LayerMidpoints,
		Source: opts.SourceName,
		Filter: surface.PropertyFilter("handle", HandleMidpoint),
		Paint:  surface.Paint{Color: midpointColor, Width: 4},
	})
	s.AddLayer(surface.StyleLayer{
		Name:   LayerVertices,
		Source: opts.SourceName,
		Filter: surface.PropertyFilter("handle", HandleVertex),
		Paint:  surface.Paint{Color: vertexColor, Width: 6},
	})

	src.listeners.AddCapture(s.Canvas(), surface.EventMouseDown, src.onMouseDown)
	src.listeners.AddCapture(s.Canvas(), surface.EventClick, src.onClick)
	src.listeners.AddCapture(s.Canvas(), surface.EventDoubleClick, src.onDoubleClick)
	src.listeners.Add(s.Document(), surface.EventMouseMove, src.onMouseMove)
	src.listeners.Add(s.Document(), surface.EventMouseUp, src.onMouseUp)
	src.listeners.Add(s.Document(), surface.EventVisibilityChange, src.onVisibilityChange)
	src.listeners.Add(s.Document(), surface.EventBeforeUnload, src.onBeforeUnload)
	return src
}

// SetCallbacks replaces the gesture callbacks.
func (s *Source) SetCallbacks(cb Callbacks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("SetCallbacks") {
		return
	}
	s.cb = cb
}

func (s *Source) callbacks() Callbacks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cb
}

// SetSnap replaces the function used to snap dragged vertices.
func (s *Source) SetSnap(fn SnapFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("SetSnap") {
		return
	}
	s.opts.Snap = fn
}

// alive reports whether the source is usable, logging a warning otherwise.
// Callers hold s.mu.
func (s *Source) alive(op string) bool {
	if s.destroyed {
		log.Printf("HotSource: %s ignored: %v", op, ErrDestroyed)
		return false
	}
	return true
}

// AddFeature stages f, replacing any feature with the same ID. Replacing the
// feature under vertex edit rebuilds its handles.
func (s *Source) AddFeature(f *geojson.Feature) {
	id := features.ID(f)
	s.mu.Lock()
	if !s.alive("AddFeature") {
		s.mu.Unlock()
		return
	}
	if id == "" {
		s.mu.Unlock()
		s.report(fmt.Errorf("feature without id"))
		return
	}
	if _, ok := s.features[id]; !ok {
		s.order = append(s.order, id)
	}
	s.features[id] = features.Clone(f)
	if id == s.editing {
		s.handles[id] = buildHandles(id, f.Geometry, s.opts.EnableVertexInsertion)
	}
	err := s.renderLocked()
	s.mu.Unlock()
	s.report(err)
}

// RemoveFeature unstages a feature and disposes its handles.
func (s *Source) RemoveFeature(id string) {
	s.mu.Lock()
	if !s.alive("RemoveFeature") {
		s.mu.Unlock()
		return
	}
	if _, ok := s.features[id]; !ok {
		s.mu.Unlock()
		return
	}
	s.removeLocked(id)
	err := s.renderLocked()
	s.mu.Unlock()
	s.report(err)
}

func (s *Source) removeLocked(id string) {
	delete(s.features, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.handles, id)
	if s.editing == id {
		s.editing = ""
		s.endDragLocked()
	}
}

// Feature returns a copy of a staged feature.
func (s *Source) Feature(id string) (*geojson.Feature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("Feature") {
		return nil, false
	}
	f, ok := s.features[id]
	if !ok {
		return nil, false
	}
	return features.Clone(f), true
}

// Features returns copies of all staged features in insertion order.
func (s *Source) Features() []*geojson.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("Features") {
		return nil
	}
	out := make([]*geojson.Feature, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, features.Clone(s.features[id]))
	}
	return out
}

// Has reports whether id is staged.
func (s *Source) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("Has") {
		return false
	}
	_, ok := s.features[id]
	return ok
}

// Len returns the number of staged features.
func (s *Source) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("Len") {
		return 0
	}
	return len(s.features)
}

// Clear unstages everything.
func (s *Source) Clear() {
	s.mu.Lock()
	if !s.alive("Clear") {
		s.mu.Unlock()
		return
	}
	s.clearLocked()
	err := s.renderLocked()
	s.mu.Unlock()
	s.report(err)
}

func (s *Source) clearLocked() {
	s.endDragLocked()
	s.features = make(map[string]*geojson.Feature)
	s.order = nil
	s.handles = make(map[string]*handleSet)
	s.editing = ""
}

// StartEditingVertices shows vertex handles, and midpoint handles when
// insertion is enabled, for a staged feature. Handles of a previously edited
// feature are disposed.
func (s *Source) StartEditingVertices(id string) error {
	s.mu.Lock()
	if !s.alive("StartEditingVertices") {
		s.mu.Unlock()
		return nil
	}
	f, ok := s.features[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("feature %s is not staged", id)
	}
	if s.editing != "" && s.editing != id {
		delete(s.handles, s.editing)
		s.endDragLocked()
	}
	s.editing = id
	s.handles[id] = buildHandles(id, f.Geometry, s.opts.EnableVertexInsertion)
	err := s.renderLocked()
	s.mu.Unlock()
	s.report(err)
	return nil
}

// StopEditingVertices disposes the handles and ends any vertex drag.
func (s *Source) StopEditingVertices() {
	s.mu.Lock()
	if !s.alive("StopEditingVertices") {
		s.mu.Unlock()
		return
	}
	if s.editing == "" {
		s.mu.Unlock()
		return
	}
	delete(s.handles, s.editing)
	s.editing = ""
	s.endDragLocked()
	err := s.renderLocked()
	s.mu.Unlock()
	s.report(err)
}

// EditingFeatureID returns the feature whose handles are shown, or "".
func (s *Source) EditingFeatureID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("EditingFeatureID") {
		return ""
	}
	return s.editing
}

// Handles returns the vertex handles of the edited feature.
func (s *Source) Handles() []VertexHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("Handles") {
		return nil
	}
	hs := s.handles[s.editing]
	if hs == nil {
		return nil
	}
	return append([]VertexHandle(nil), hs.vertices...)
}

// Midpoints returns the midpoint handles of the edited feature.
func (s *Source) Midpoints() []MidpointHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("Midpoints") {
		return nil
	}
	hs := s.handles[s.editing]
	if hs == nil {
		return nil
	}
	return append([]MidpointHandle(nil), hs.midpoints...)
}

// StartDragVertex begins dragging vertex index of the edited feature.
func (s *Source) StartDragVertex(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("StartDragVertex") {
		return nil
	}
	return s.startDragLocked(id, index)
}

func (s *Source) startDragLocked(id string, index int) error {
	if id != s.editing {
		return fmt.Errorf("feature %s is not being edited", id)
	}
	hs := s.handles[id]
	if hs == nil || index < 0 || index >= len(hs.vertices) {
		return fmt.Errorf("vertex %d out of range", index)
	}
	pan := s.surface.Interactions().DragPan
	s.drag = &vertexDrag{featureID: id, index: index, panWasOn: pan.IsEnabled()}
	pan.Disable()
	return nil
}

// EndDragVertex finishes a vertex drag, reporting OnVertexDragEnd.
func (s *Source) EndDragVertex() {
	s.mu.Lock()
	if !s.alive("EndDragVertex") {
		s.mu.Unlock()
		return
	}
	d, cb := s.drag, s.cb
	s.endDragLocked()
	s.mu.Unlock()
	if d != nil && cb.OnVertexDragEnd != nil {
		cb.OnVertexDragEnd(d.featureID, d.index)
	}
}

func (s *Source) endDragLocked() {
	if s.drag == nil {
		return
	}
	if s.drag.panWasOn {
		s.surface.Interactions().DragPan.Enable()
	}
	s.drag = nil
}

// IsDraggingVertex reports whether a vertex drag is in flight.
func (s *Source) IsDraggingVertex() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive("IsDraggingVertex") {
		return false
	}
	return s.drag != nil
}

// Destroy removes every listener and staged feature. Later calls on the
// source log a warning and do nothing. Calling Destroy again is a no-op.
func (s *Source) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.listeners.RemoveAll()
	s.clearLocked()
	err := s.renderLocked()
	s.destroyed = true
	s.mu.Unlock()
	if err != nil {
		log.Printf("HotSource: final render failed: %v", err)
	}
}

// IsDestroyed reports whether Destroy has been called.
func (s *Source) IsDestroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// renderLocked replaces the render source with the full staged set.
func (s *Source) renderLocked() error {
	fc := geojson.NewFeatureCollection()
	for _, id := range s.order {
		fc.Append(s.features[id])
	}
	if hs := s.handles[s.editing]; hs != nil {
		fc.Features = append(fc.Features, hs.features()...)
	}
	return s.render.SetData(fc)
}

// report logs a render failure and forwards it to OnError.
func (s *Source) report(err error) {
	if err == nil {
		return
	}
	log.Printf("HotSource: render failed: %v", err)
	if cb := s.callbacks(); cb.OnError != nil {
		cb.OnError(fmt.Sprintf("failed to update staging layer: %v", err))
	}
}
