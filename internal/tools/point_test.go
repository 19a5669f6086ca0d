package tools

import (
	"sync"
	"testing"
	"time"

	"vector-editor/internal/snap"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointClickCommitsEachTime(t *testing.T) {
	fx := newFixture()
	tool := NewPointTool(fx.env)
	tool.Activate()

	fx.surface.ClickAt(orb.Point{0.001, 0.001})
	fx.surface.ClickAt(orb.Point{0.002, 0.002})

	require.Len(t, fx.rec.completed, 2)
	assert.NotEqual(t, fx.rec.completed[0].ID, fx.rec.completed[1].ID)
	assert.False(t, tool.State().IsDrawing)
	assert.Contains(t, fx.stage.features, PointSuccessID)
}

func TestPointPreviewIsReplaced(t *testing.T) {
	fx := newFixture()
	tool := NewPointTool(fx.env)
	tool.Activate()

	fx.surface.MouseMove(px(10, 10))
	fx.surface.MouseMove(px(20, 20))

	assert.Len(t, fx.stage.features, 1)
	p := fx.stage.features[PointPreviewID].Geometry.(orb.Point)
	assert.Equal(t, fx.surface.Unproject(px(20, 20)), p)
}

func TestPointSuccessFlashClearsAfterDelay(t *testing.T) {
	fx := newFixture()
	tool := NewPointTool(fx.env)
	tool.Activate()

	fx.surface.ClickAt(orb.Point{0, 0})
	fx.surface.Advance(fx.env.Config.SuccessFlash / 2)
	assert.Contains(t, fx.stage.features, PointSuccessID)

	fx.surface.Advance(fx.env.Config.SuccessFlash)
	assert.NotContains(t, fx.stage.features, PointSuccessID)
	assert.Zero(t, fx.surface.ManualClock().Pending())
}

func TestPointDeactivateClearsFlashBeforeTimer(t *testing.T) {
	fx := newFixture()
	tool := NewPointTool(fx.env)
	tool.Activate()

	fx.surface.MouseMove(px(30, 30))
	fx.surface.ClickAt(orb.Point{0, 0})
	tool.Deactivate()

	assert.Empty(t, fx.stage.features)
	assert.Zero(t, fx.surface.ManualClock().Pending())
}

func TestPointSnapsToVertex(t *testing.T) {
	fx := newFixture()
	target := fx.surface.Unproject(px(200, 200))
	f := geojson.NewFeature(orb.LineString{target, fx.surface.Unproject(px(400, 200))})
	f.ID = "existing"
	fx.addCold(t, f)
	fx.env.Snap = snap.New(fx.surface, snap.Options{SnapToVertices: true, Tolerance: 10})

	tool := NewPointTool(fx.env)
	tool.Activate()
	fx.surface.Click(px(204, 197))

	require.Len(t, fx.rec.completed, 1)
	assert.Equal(t, target, fx.rec.completed[0].Geometry)
}

// hookStage runs onRemove before each removal.
type hookStage struct {
	mu sync.Mutex
	*memStage
	onRemove func(id string)
}

func (s *hookStage) AddFeature(f *geojson.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memStage.AddFeature(f)
}

func (s *hookStage) RemoveFeature(id string) {
	if s.onRemove != nil {
		s.onRemove(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memStage.RemoveFeature(id)
}

func (s *hookStage) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.features[id]
	return ok
}

func TestPointExpiringFlashKeepsNewerMarker(t *testing.T) {
	fx := newFixture()
	stage := &hookStage{memStage: fx.stage}
	fx.env.Stage = stage
	tool := NewPointTool(fx.env)
	tool.Activate()

	fx.surface.ClickAt(orb.Point{0, 0})

	// A second point lands while the first marker's timer is removing it.
	done := make(chan struct{})
	stage.onRemove = func(id string) {
		if id != PointSuccessID {
			return
		}
		stage.onRemove = nil
		go func() {
			tool.showSuccess(orb.Point{0.001, 0.001})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(50 * time.Millisecond):
		}
	}
	fx.surface.Advance(fx.env.Config.SuccessFlash)
	<-done

	assert.True(t, stage.has(PointSuccessID))
	assert.Equal(t, 1, fx.surface.ManualClock().Pending())

	fx.surface.Advance(fx.env.Config.SuccessFlash)
	assert.False(t, stage.has(PointSuccessID))
}
