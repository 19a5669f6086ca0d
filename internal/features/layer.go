package features

import (
	"sort"
	"sync"

	"github.com/paulmach/orb/geojson"
)

// Layer is a named grouping that owns features.
type Layer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"` // #rrggbb
}

// Collection mirrors the persisted features of every layer in memory so they
// can be rendered and looked up without a store round trip.
type Collection struct {
	mu sync.RWMutex

	// All features indexed by ID
	features map[string]*geojson.Feature

	// Insertion order, used for draw order
	order []string

	layers      map[string]*Layer
	layerOrder  []string
	hiddenLayer map[string]bool
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		features:    make(map[string]*geojson.Feature),
		order:       make([]string, 0),
		layers:      make(map[string]*Layer),
		layerOrder:  make([]string, 0),
		hiddenLayer: make(map[string]bool),
	}
}

// AddLayer adds or replaces a layer definition.
func (c *Collection) AddLayer(l Layer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.layers[l.ID]; !ok {
		c.layerOrder = append(c.layerOrder, l.ID)
	}
	c.layers[l.ID] = &l
}

// Layer returns a layer by ID.
func (c *Collection) Layer(id string) (Layer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.layers[id]
	if !ok {
		return Layer{}, false
	}
	return *l, true
}

// Layers returns all layers in the order they were added.
func (c *Collection) Layers() []Layer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Layer, 0, len(c.layerOrder))
	for _, id := range c.layerOrder {
		out = append(out, *c.layers[id])
	}
	return out
}

// SetLayerVisible shows or hides a layer's features in FeatureCollection.
func (c *Collection) SetLayerVisible(id string, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if visible {
		delete(c.hiddenLayer, id)
	} else {
		c.hiddenLayer[id] = true
	}
}

// Put inserts or replaces a feature. The collection stores a clone.
func (c *Collection) Put(f *geojson.Feature) {
	id := ID(f)
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.features[id]; !ok {
		c.order = append(c.order, id)
	}
	c.features[id] = Clone(f)
}

// Remove deletes a feature by ID.
func (c *Collection) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.features[id]; !ok {
		return false
	}
	delete(c.features, id)
	c.order = removeString(c.order, id)
	return true
}

// Get returns a clone of a feature.
func (c *Collection) Get(id string) (*geojson.Feature, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.features[id]
	if !ok {
		return nil, false
	}
	return Clone(f), true
}

// Len returns the number of features.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.features)
}

// ByLayer returns the IDs of a layer's features in draw order.
func (c *Collection) ByLayer(layerID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ids []string
	for _, id := range c.order {
		if LayerID(c.features[id]) == layerID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Clear removes all features. Layers are kept.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.features = make(map[string]*geojson.Feature)
	c.order = c.order[:0]
}

// FeatureCollection returns the visible features in draw order, excluding
// the given IDs (features currently staged for editing).
func (c *Collection) FeatureCollection(exclude ...string) *geojson.FeatureCollection {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	fc := geojson.NewFeatureCollection()
	for _, id := range c.order {
		f := c.features[id]
		if skip[id] || c.hiddenLayer[LayerID(f)] {
			continue
		}
		fc.Append(f)
	}
	return fc
}

// SortedIDs returns every feature ID in lexical order.
func (c *Collection) SortedIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.features))
	for id := range c.features {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func removeString(slice []string, s string) []string {
	for i, v := range slice {
		if v == s {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
