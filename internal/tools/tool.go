// Package tools implements the editing tools: each turns pointer and keyboard
// events into drawing progress or selection and drag progress, and reports
// back through Callbacks.
package tools

import (
	"errors"

	"vector-editor/internal/snap"
	"vector-editor/internal/surface"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoActiveLayer is reported when a drawing tool is used with no layer set.
var ErrNoActiveLayer = errors.New("no active layer selected")

// ToolType identifies a tool.
type ToolType int

const (
	ToolSelect ToolType = iota
	ToolPoint
	ToolLine
	ToolPolygon
)

func (t ToolType) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPoint:
		return "point"
	case ToolLine:
		return "line"
	case ToolPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// ParseToolType is the inverse of ToolType.String.
func ParseToolType(s string) (ToolType, bool) {
	for _, t := range []ToolType{ToolSelect, ToolPoint, ToolLine, ToolPolygon} {
		if t.String() == s {
			return t, true
		}
	}
	return ToolSelect, false
}

// Tool is the contract every editing tool satisfies. Mutating calls on an
// inactive tool are no-ops.
type Tool interface {
	Type() ToolType

	Activate()
	Deactivate()
	IsActive() bool

	OnClick(ev *surface.Event)
	OnDoubleClick(ev *surface.Event)
	OnMouseDown(ev *surface.Event)
	OnMouseMove(ev *surface.Event)
	OnMouseUp(ev *surface.Event)
	OnKeyDown(ev *surface.Event)

	FinishDrawing()
	Cancel()
	State() DrawingState
}

// DrawingState is a snapshot of a tool's drawing progress.
type DrawingState struct {
	IsActive    bool
	IsDrawing   bool
	Coordinates []orb.Point
}

// Stage is the staging layer tools render in-progress edits into.
type Stage interface {
	AddFeature(f *geojson.Feature)
	RemoveFeature(id string)
	Feature(id string) (*geojson.Feature, bool)
}

// Env is everything a tool needs from its surroundings.
type Env struct {
	Surface     surface.Surface
	Stage       Stage
	Snap        *snap.Engine // nil disables snapping
	Config      Config
	Callbacks   Callbacks
	ActiveLayer func() string
}

// IDs of staged features owned by the drawing tools.
const (
	PointPreviewID = "__point-preview"
	PointSuccessID = "__point-success"
	DraftID        = "__draft"
	PreviewID      = "__preview"
)

// IsStagingID reports whether id belongs to a tool-owned preview feature.
func IsStagingID(id string) bool {
	return len(id) > 2 && id[:2] == "__"
}
