package hot

import (
	"image/color"

	"vector-editor/internal/surface"

	"github.com/paulmach/orb"
)

var (
	hotColor      = color.RGBA{255, 140, 0, 255}
	vertexColor   = color.RGBA{255, 255, 255, 255}
	midpointColor = color.RGBA{160, 160, 160, 255}
)

// onMouseDown runs in the capture phase so a handle press never reaches the
// active tool.
func (s *Source) onMouseDown(ev *surface.Event) {
	if ev.Button != surface.ButtonLeft {
		return
	}
	s.mu.Lock()
	s.handlePressed = false
	if s.destroyed || s.editing == "" {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	hits := s.surface.QueryRenderedFeatures(ev.Point, s.opts.HandleRadius, []string{LayerVertices, LayerMidpoints})
	for _, f := range hits {
		kind, owner, index, ok := parseHandle(f)
		if !ok {
			continue
		}

		switch kind {
		case HandleVertex:
			s.mu.Lock()
			err := s.startDragLocked(owner, index)
			if err == nil {
				s.handlePressed = true
			}
			s.mu.Unlock()
			if err != nil {
				continue
			}
			ev.StopPropagation()
			return
		case HandleMidpoint:
			pos, ok := f.Geometry.(orb.Point)
			if !ok {
				continue
			}
			ev.StopPropagation()
			s.mu.Lock()
			s.handlePressed = true
			s.mu.Unlock()
			if cb := s.callbacks(); cb.OnVertexAdded != nil {
				cb.OnVertexAdded(owner, index+1, pos)
			}
			return
		}
	}
}

// onClick keeps the click ending a handle gesture away from the active tool.
func (s *Source) onClick(ev *surface.Event) {
	s.mu.Lock()
	swallow := s.handlePressed
	s.handlePressed = false
	s.clickSwallowed = swallow
	s.mu.Unlock()
	if swallow {
		ev.StopPropagation()
	}
}

func (s *Source) onDoubleClick(ev *surface.Event) {
	s.mu.Lock()
	swallow := s.clickSwallowed
	s.clickSwallowed = false
	s.mu.Unlock()
	if swallow {
		ev.StopPropagation()
	}
}

// onMouseMove reports the dragged vertex at the pointer's world position.
func (s *Source) onMouseMove(ev *surface.Event) {
	s.mu.Lock()
	d, snapFn, cb := s.drag, s.opts.Snap, s.cb
	if s.destroyed || d == nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	pos := s.surface.Unproject(ev.Point)
	if snapFn != nil {
		pos = snapFn(ev.Point, pos, d.featureID)
	}
	if cb.OnVertexMoved != nil {
		cb.OnVertexMoved(d.featureID, d.index, pos)
	}
}

func (s *Source) onMouseUp(ev *surface.Event) {
	if s.IsDestroyed() || !s.IsDraggingVertex() {
		return
	}
	s.EndDragVertex()
}

// onVisibilityChange ends a drag when the page is hidden; the mouse-up may
// never arrive.
func (s *Source) onVisibilityChange(ev *surface.Event) {
	if !ev.Hidden || s.IsDestroyed() || !s.IsDraggingVertex() {
		return
	}
	s.EndDragVertex()
}

func (s *Source) onBeforeUnload(ev *surface.Event) {
	s.Destroy()
}
