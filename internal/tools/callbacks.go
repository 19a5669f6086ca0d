package tools

import (
	"vector-editor/internal/features"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Callbacks connect tools to the surrounding application. Every field is
// optional at this level; the controller enforces the required ones.
type Callbacks struct {
	OnFeatureComplete    func(f *geojson.Feature)
	OnFeatureUpdate      func(f *geojson.Feature)
	OnFeatureSelected    func(id string, mode features.SelectionMode)
	OnFeaturesDeselected func()
	OnFeatureDragStart   func(id string)
	OnFeatureDragEnd     func(id string, g orb.Geometry)
	OnCancel             func()
	OnError              func(message string)
	OnStatusChange       func(message string)
}

func (c Callbacks) Complete(f *geojson.Feature) {
	if c.OnFeatureComplete != nil {
		c.OnFeatureComplete(f)
	}
}

func (c Callbacks) Update(f *geojson.Feature) {
	if c.OnFeatureUpdate != nil {
		c.OnFeatureUpdate(f)
	}
}

func (c Callbacks) Selected(id string, mode features.SelectionMode) {
	if c.OnFeatureSelected != nil {
		c.OnFeatureSelected(id, mode)
	}
}

func (c Callbacks) Deselected() {
	if c.OnFeaturesDeselected != nil {
		c.OnFeaturesDeselected()
	}
}

func (c Callbacks) DragStart(id string) {
	if c.OnFeatureDragStart != nil {
		c.OnFeatureDragStart(id)
	}
}

func (c Callbacks) DragEnd(id string, g orb.Geometry) {
	if c.OnFeatureDragEnd != nil {
		c.OnFeatureDragEnd(id, g)
	}
}

func (c Callbacks) Cancelled() {
	if c.OnCancel != nil {
		c.OnCancel()
	}
}

func (c Callbacks) Error(message string) {
	if c.OnError != nil {
		c.OnError(message)
	}
}

func (c Callbacks) Status(message string) {
	if c.OnStatusChange != nil {
		c.OnStatusChange(message)
	}
}
