package tools

import "time"

// Config is the immutable tool configuration, shared by value.
type Config struct {
	SnapToVertices  bool    `yaml:"snap_to_vertices"`
	SnapToEdges     bool    `yaml:"snap_to_edges"`
	SnapTolerance   float64 `yaml:"snap_tolerance"` // pixels
	ShowCoordinates bool    `yaml:"show_coordinates"`
	AllowUndo       bool    `yaml:"allow_undo"`

	DragThreshold         float64 `yaml:"drag_threshold"` // pixels
	HitRadius             float64 `yaml:"hit_radius"`     // pixels
	EnableDrag            bool    `yaml:"enable_drag"`
	EnableVertexInsertion bool    `yaml:"enable_vertex_insertion"`

	MinPointSpacing   float64       `yaml:"min_point_spacing"` // metres
	DoubleClickWindow time.Duration `yaml:"double_click_window"`
	MaxPoints         int           `yaml:"max_points"` // 0 = unlimited
	SuccessFlash      time.Duration `yaml:"success_flash"`

	// Render layers used for hit testing and snapping; all when empty.
	SelectableLayers []string `yaml:"selectable_layers,omitempty"`
}

// DefaultConfig returns the default tool configuration.
func DefaultConfig() Config {
	return Config{
		SnapToVertices:        true,
		SnapToEdges:           true,
		SnapTolerance:         10,
		ShowCoordinates:       true,
		AllowUndo:             true,
		DragThreshold:         5,
		HitRadius:             5,
		EnableDrag:            true,
		EnableVertexInsertion: true,
		MinPointSpacing:       1,
		DoubleClickWindow:     300 * time.Millisecond,
		SuccessFlash:          600 * time.Millisecond,
	}
}

// WithDefaults fills zero-valued numeric fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.DragThreshold <= 0 {
		c.DragThreshold = d.DragThreshold
	}
	if c.HitRadius <= 0 {
		c.HitRadius = d.HitRadius
	}
	if c.MinPointSpacing <= 0 {
		c.MinPointSpacing = d.MinPointSpacing
	}
	if c.DoubleClickWindow <= 0 {
		c.DoubleClickWindow = d.DoubleClickWindow
	}
	if c.SuccessFlash <= 0 {
		c.SuccessFlash = d.SuccessFlash
	}
	if c.MaxPoints < 0 {
		c.MaxPoints = 0
	}
	return c
}
