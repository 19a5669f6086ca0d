package main

import (
	"fmt"
	"time"

	"vector-editor/internal/controller"
	"vector-editor/internal/features"
	"vector-editor/internal/hot"
	"vector-editor/internal/surface"
	"vector-editor/internal/tools"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

const (
	replaySource = "replay"
	replayLayer  = "replay-features"
)

// Script is a recorded editing session.
type Script struct {
	Layer  string       `yaml:"layer"`
	Center [2]float64   `yaml:"center"`
	Zoom   float64      `yaml:"zoom"`
	Tools  tools.Config `yaml:"tools"`
	Steps  []Step       `yaml:"steps"`
}

// Step is one input. Exactly one field is set. Positions are lng, lat.
type Step struct {
	Tool     string        `yaml:"tool,omitempty"`
	Click    *[2]float64   `yaml:"click,omitempty"`
	DblClick *[2]float64   `yaml:"dblclick,omitempty"` // click, click, dblclick
	Down     *[2]float64   `yaml:"down,omitempty"`
	Move     *[2]float64   `yaml:"move,omitempty"`
	Up       *[2]float64   `yaml:"up,omitempty"`
	Key      string        `yaml:"key,omitempty"`
	Wait     time.Duration `yaml:"wait,omitempty"`
	Hold     string        `yaml:"hold,omitempty"` // shift, ctrl or alt until release
	Edit     *int          `yaml:"edit,omitempty"` // index into produced features
	Release  bool          `yaml:"release,omitempty"`
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (Script, error) {
	s := Script{Layer: "default", Zoom: 16, Tools: tools.DefaultConfig()}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	s.Tools = s.Tools.WithDefaults()
	s.Tools.SelectableLayers = []string{replayLayer}
	return s, nil
}

// Result is what a replay produced.
type Result struct {
	Features *geojson.FeatureCollection
	Errors   []string
	Statuses []string
}

type replayer struct {
	m     *surface.Memory
	ctrl  *controller.Controller
	src   surface.GeoJSONSource
	coll  *features.Collection
	order []string
	res   Result
}

// Replay runs script against a headless surface.
func Replay(script Script) (Result, error) {
	m := surface.NewMemory()
	m.SetViewport(surface.NewViewport(orb.Point(script.Center), script.Zoom, 800, 600))

	r := &replayer{m: m, coll: features.NewCollection()}
	r.coll.AddLayer(features.Layer{ID: script.Layer, Name: script.Layer})
	r.src = m.AddSource(replaySource)
	m.AddLayer(surface.StyleLayer{
		Name:   replayLayer,
		Source: replaySource,
		Paint:  surface.Paint{Color: features.DefaultColors[0], Width: 3},
	})

	h := hot.New(m, hot.Options{EnableVertexInsertion: script.Tools.EnableVertexInsertion}, hot.Callbacks{})
	ctrl, err := controller.New(m, h, script.Tools, r.callbacks())
	if err != nil {
		return Result{}, err
	}
	r.ctrl = ctrl
	defer ctrl.Destroy()
	ctrl.SetActiveLayer(script.Layer)
	ctrl.Enable()

	for i, step := range script.Steps {
		if err := r.step(step); err != nil {
			return Result{}, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	fc := geojson.NewFeatureCollection()
	for _, id := range r.order {
		if f, ok := r.coll.Get(id); ok {
			fc.Append(f)
		}
	}
	r.res.Features = fc
	return r.res, nil
}

func (r *replayer) step(s Step) error {
	pt := func(p *[2]float64) geometry.Point2D { return r.m.Project(orb.Point(*p)) }
	switch {
	case s.Tool != "":
		t, ok := tools.ParseToolType(s.Tool)
		if !ok {
			return fmt.Errorf("unknown tool %q", s.Tool)
		}
		return r.ctrl.SetTool(t)
	case s.Click != nil:
		r.m.Click(pt(s.Click))
	case s.DblClick != nil:
		p := pt(s.DblClick)
		r.m.Click(p)
		r.m.Advance(100 * time.Millisecond)
		r.m.Click(p)
		r.m.DoubleClick(p)
	case s.Down != nil:
		r.m.MouseDown(pt(s.Down))
	case s.Move != nil:
		r.m.MouseMove(pt(s.Move))
	case s.Up != nil:
		r.m.MouseUp(pt(s.Up))
	case s.Key != "":
		r.m.KeyDown(surface.Key(s.Key))
	case s.Wait > 0:
		r.m.Advance(s.Wait)
	case s.Hold != "":
		mod, err := parseModifier(s.Hold)
		if err != nil {
			return err
		}
		r.m.Hold(mod)
	case s.Release:
		r.m.Release()
	case s.Edit != nil:
		if *s.Edit < 0 || *s.Edit >= len(r.order) {
			return fmt.Errorf("no feature %d to edit", *s.Edit)
		}
		f, _ := r.coll.Get(r.order[*s.Edit])
		return r.ctrl.EditVertices(f)
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

func (r *replayer) callbacks() tools.Callbacks {
	return tools.Callbacks{
		OnFeatureComplete: func(f *geojson.Feature) {
			r.order = append(r.order, features.ID(f))
			r.coll.Put(f)
			r.refresh()
		},
		OnFeatureUpdate: func(f *geojson.Feature) {
			r.coll.Put(f)
			r.refresh()
		},
		OnFeatureDragEnd: func(id string, g orb.Geometry) {
			if f, ok := r.coll.Get(id); ok {
				r.coll.Put(features.WithGeometry(f, g, r.m.Clock().Now()))
				r.refresh()
			}
		},
		OnError: func(msg string) {
			r.res.Errors = append(r.res.Errors, msg)
		},
		OnStatusChange: func(msg string) {
			r.res.Statuses = append(r.res.Statuses, msg)
		},
	}
}

func (r *replayer) refresh() {
	_ = r.src.SetData(r.coll.FeatureCollection())
}

func parseModifier(s string) (surface.Modifier, error) {
	switch s {
	case "shift":
		return surface.ModShift, nil
	case "ctrl":
		return surface.ModCtrl, nil
	case "alt":
		return surface.ModAlt, nil
	}
	return 0, fmt.Errorf("unknown modifier %q", s)
}
