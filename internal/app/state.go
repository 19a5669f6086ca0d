// Package app holds the application state: persisted features, the
// selection, the active layer and the event bus the UI listens on.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"vector-editor/internal/controller"
	"vector-editor/internal/features"
	"vector-editor/internal/surface"
	"vector-editor/internal/tools"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Render source and layers for persisted features.
const (
	ColdSource        = "cold"
	LayerColdPolygons = "cold-polygons"
	LayerColdLines    = "cold-lines"
	LayerColdPoints   = "cold-points"
	LayerColdSelected = "cold-selected"

	propSelected = "selected"
)

// DefaultLayerName names the layer created for an empty store.
const DefaultLayerName = "Default"

var ErrNoController = errors.New("no controller attached")

// Store is the persistence the state writes committed edits to.
type Store interface {
	CreateLayer(ctx context.Context, l features.Layer) (features.Layer, error)
	Layers(ctx context.Context) ([]features.Layer, error)
	CreateFeature(ctx context.Context, f *geojson.Feature) error
	UpdateFeature(ctx context.Context, f *geojson.Feature) error
	MoveFeature(ctx context.Context, id string, g orb.Geometry) error
	DeleteFeature(ctx context.Context, id string) error
	Feature(ctx context.Context, id string) (*geojson.Feature, error)
	FeaturesByLayer(ctx context.Context, layerID string) (*geojson.FeatureCollection, error)
}

// EventType identifies different application events.
type EventType int

const (
	EventFeatureCreated   EventType = iota // *geojson.Feature
	EventFeatureUpdated                    // *geojson.Feature
	EventFeatureDeleted                    // string id
	EventSelectionChanged                  // []string ids
	EventLayerChanged                      // string active layer id
	EventStatus                            // string
	EventError                             // string
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the application state.
type State struct {
	mu sync.RWMutex

	store   Store
	surface surface.Surface
	cold    surface.GeoJSONSource
	ctrl    *controller.Controller

	Features  *features.Collection
	Selection *features.Selection

	activeLayer string

	// Hidden from the cold layers while the hot copy is shown.
	dragging string
	editing  string

	// Event listeners
	listeners map[EventType][]EventListener
}

// NewState creates the state and its cold render layers on s. Create it
// before the hot source so staged features draw above persisted ones.
func NewState(st Store, s surface.Surface) *State {
	state := &State{
		store:     st,
		surface:   s,
		cold:      s.AddSource(ColdSource),
		Features:  features.NewCollection(),
		Selection: features.NewSelection(),
		listeners: make(map[EventType][]EventListener),
	}
	s.AddLayer(surface.StyleLayer{
		Name:   LayerColdPolygons,
		Source: ColdSource,
		Filter: surface.GeometryFilter("Polygon"),
		Paint:  surface.Paint{Color: features.DefaultColors[2], Width: 2, Fill: true, FeatureStyle: true},
	})
	s.AddLayer(surface.StyleLayer{
		Name:   LayerColdLines,
		Source: ColdSource,
		Filter: surface.GeometryFilter("LineString"),
		Paint:  surface.Paint{Color: features.DefaultColors[2], Width: 3, FeatureStyle: true},
	})
	s.AddLayer(surface.StyleLayer{
		Name:   LayerColdPoints,
		Source: ColdSource,
		Filter: surface.GeometryFilter("Point"),
		Paint:  surface.Paint{Color: features.DefaultColors[2], Width: 6, FeatureStyle: true},
	})
	s.AddLayer(surface.StyleLayer{
		Name:   LayerColdSelected,
		Source: ColdSource,
		Filter: surface.PropertyFilter(propSelected, true),
		Paint:  surface.Paint{Color: features.SelectionColor, Width: 2},
	})
	return state
}

// SelectableLayers are the render layers the select tool and snapping hit.
func SelectableLayers() []string {
	return []string{LayerColdPoints, LayerColdLines, LayerColdPolygons}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// AttachController connects the editing engine. The controller must have
// been built with Callbacks().
func (s *State) AttachController(c *controller.Controller) {
	s.mu.Lock()
	s.ctrl = c
	layer := s.activeLayer
	s.mu.Unlock()
	if layer != "" {
		c.SetActiveLayer(layer)
	}
}

// Controller returns the attached controller, if any.
func (s *State) Controller() *controller.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctrl
}

// Load reads every layer and feature from the store. An empty store gets a
// default layer. The first layer becomes active.
func (s *State) Load(ctx context.Context) error {
	layers, err := s.store.Layers(ctx)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		l, err := s.store.CreateLayer(ctx, features.Layer{
			Name:  DefaultLayerName,
			Color: features.NextColorHex(0),
		})
		if err != nil {
			return err
		}
		layers = append(layers, l)
	}

	s.Features.Clear()
	for _, l := range layers {
		s.Features.AddLayer(l)
		fc, err := s.store.FeaturesByLayer(ctx, l.ID)
		if err != nil {
			return err
		}
		for _, f := range fc.Features {
			s.Features.Put(f)
		}
	}
	log.Printf("State: loaded %d features in %d layers", s.Features.Len(), len(layers))

	if s.ActiveLayer() == "" {
		if err := s.SetActiveLayer(layers[0].ID); err != nil {
			return err
		}
	}
	s.RefreshCold()
	return nil
}

// CreateLayer persists a new layer with the next palette color.
func (s *State) CreateLayer(ctx context.Context, name string) (features.Layer, error) {
	l, err := s.store.CreateLayer(ctx, features.Layer{
		Name:  name,
		Color: features.NextColorHex(len(s.Features.Layers())),
	})
	if err != nil {
		s.fail(err)
		return features.Layer{}, err
	}
	s.Features.AddLayer(l)
	s.Emit(EventLayerChanged, s.ActiveLayer())
	return l, nil
}

// SetActiveLayer selects the layer new features are drawn on.
func (s *State) SetActiveLayer(id string) error {
	if _, ok := s.Features.Layer(id); !ok {
		return fmt.Errorf("unknown layer %q", id)
	}
	s.mu.Lock()
	s.activeLayer = id
	c := s.ctrl
	s.mu.Unlock()
	if c != nil {
		c.SetActiveLayer(id)
	}
	s.Emit(EventLayerChanged, id)
	return nil
}

// ActiveLayer returns the active layer ID.
func (s *State) ActiveLayer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLayer
}

// SetLayerVisible shows or hides a layer on the map.
func (s *State) SetLayerVisible(id string, visible bool) {
	s.Features.SetLayerVisible(id, visible)
	s.RefreshCold()
}

// DeleteSelected removes every selected feature from the store. Failures are
// reported and the remaining features are still deleted.
func (s *State) DeleteSelected(ctx context.Context) int {
	ids := s.Selection.SelectedIDs()
	deleted := 0
	for _, id := range ids {
		if err := s.store.DeleteFeature(ctx, id); err != nil {
			s.fail(err)
			continue
		}
		s.Features.Remove(id)
		deleted++
		s.Emit(EventFeatureDeleted, id)
	}
	if len(ids) > 0 {
		s.Selection.Clear()
		s.Emit(EventSelectionChanged, []string{})
		s.status(fmt.Sprintf("Deleted %d feature(s)", deleted))
	}
	s.RefreshCold()
	return deleted
}

// EditSelected starts vertex editing on the single selected feature.
func (s *State) EditSelected() error {
	c := s.Controller()
	if c == nil {
		return ErrNoController
	}
	ids := s.Selection.SelectedIDs()
	if len(ids) != 1 {
		err := fmt.Errorf("select exactly one feature to edit, %d selected", len(ids))
		s.fail(err)
		return err
	}
	f, ok := s.Features.Get(ids[0])
	if !ok {
		err := fmt.Errorf("feature %s is not loaded", ids[0])
		s.fail(err)
		return err
	}
	if err := c.EditVertices(f); err != nil {
		return err
	}
	s.mu.Lock()
	s.editing = ids[0]
	s.mu.Unlock()
	s.RefreshCold()
	return nil
}

// RefreshCold pushes the visible persisted features to the cold source.
func (s *State) RefreshCold() {
	s.mu.RLock()
	exclude := []string{s.dragging, s.editing}
	s.mu.RUnlock()

	fc := s.Features.FeatureCollection(exclude...)
	for i, f := range fc.Features {
		if s.Selection.IsSelected(features.ID(f)) {
			marked := features.Clone(f)
			marked.Properties[propSelected] = true
			fc.Features[i] = marked
		}
	}
	if err := s.cold.SetData(fc); err != nil {
		log.Printf("State: cold render failed: %v", err)
		s.Emit(EventError, fmt.Sprintf("failed to update map: %v", err))
	}
}

// Callbacks returns the tool callbacks that persist committed edits and keep
// the selection in sync.
func (s *State) Callbacks() tools.Callbacks {
	ctx := context.Background()
	return tools.Callbacks{
		OnFeatureComplete: func(f *geojson.Feature) {
			s.applyLayerStyle(f)
			if err := s.store.CreateFeature(ctx, f); err != nil {
				s.fail(err)
				return
			}
			s.Features.Put(f)
			s.Emit(EventFeatureCreated, f)
			s.RefreshCold()
		},
		OnFeatureUpdate: func(f *geojson.Feature) {
			s.syncEditing()
			if err := s.store.UpdateFeature(ctx, f); err != nil {
				s.fail(err)
				s.RefreshCold()
				return
			}
			s.Features.Put(f)
			s.Emit(EventFeatureUpdated, f)
			s.RefreshCold()
		},
		OnFeatureSelected: func(id string, mode features.SelectionMode) {
			s.Selection.Apply(id, mode)
			s.Emit(EventSelectionChanged, s.Selection.SelectedIDs())
			s.RefreshCold()
		},
		OnFeaturesDeselected: func() {
			if s.Selection.Count() == 0 {
				return
			}
			s.Selection.Clear()
			s.Emit(EventSelectionChanged, []string{})
			s.RefreshCold()
		},
		OnFeatureDragStart: func(id string) {
			s.mu.Lock()
			s.dragging = id
			s.mu.Unlock()
			s.RefreshCold()
		},
		OnFeatureDragEnd: func(id string, g orb.Geometry) {
			s.mu.Lock()
			s.dragging = ""
			s.mu.Unlock()
			defer s.RefreshCold()
			if err := s.store.MoveFeature(ctx, id, g); err != nil {
				s.fail(err)
				return
			}
			f, err := s.store.Feature(ctx, id)
			if err != nil {
				s.fail(err)
				return
			}
			s.Features.Put(f)
			s.Emit(EventFeatureUpdated, f)
		},
		OnCancel: func() {
			s.mu.Lock()
			s.dragging = ""
			s.mu.Unlock()
			s.syncEditing()
			s.RefreshCold()
		},
		OnError: func(message string) {
			log.Printf("Editor: %s", message)
			if s.syncEditing() {
				s.RefreshCold()
			}
			s.Emit(EventError, message)
		},
		OnStatusChange: s.status,
	}
}

// applyLayerStyle gives a new feature its layer's color unless it already
// carries a style.
func (s *State) applyLayerStyle(f *geojson.Feature) {
	if _, ok := f.Properties[features.PropStyle]; ok {
		return
	}
	l, ok := s.Features.Layer(features.LayerID(f))
	if !ok || l.Color == "" {
		return
	}
	f.Properties[features.PropStyle] = features.Style{Color: l.Color, Width: 3}
}

// syncEditing stops hiding the edited feature once the controller has ended
// its vertex edit. A tool cancel during the edit keeps it hidden.
func (s *State) syncEditing() bool {
	c := s.Controller()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == "" || (c != nil && c.EditingFeatureID() == s.editing) {
		return false
	}
	s.editing = ""
	return true
}

func (s *State) status(msg string) {
	s.Emit(EventStatus, msg)
}

func (s *State) fail(err error) {
	log.Printf("State: %v", err)
	s.Emit(EventError, err.Error())
}
