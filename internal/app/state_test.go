package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vector-editor/internal/config"
	"vector-editor/internal/controller"
	"vector-editor/internal/features"
	"vector-editor/internal/hot"
	"vector-editor/internal/store"
	"vector-editor/internal/surface"
	"vector-editor/internal/tools"
	"vector-editor/pkg/geometry"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	m     *surface.Memory
	store *store.Store
	state *State
	ctrl  *controller.Controller

	selections [][]string
	errors     []string
}

func px(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(config.Database{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "state.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := surface.NewMemory()
	state := NewState(st, m)
	fx := &fixture{m: m, store: st, state: state}
	state.On(EventSelectionChanged, func(data interface{}) {
		fx.selections = append(fx.selections, data.([]string))
	})
	state.On(EventError, func(data interface{}) {
		fx.errors = append(fx.errors, data.(string))
	})

	cfg := tools.DefaultConfig()
	cfg.SelectableLayers = SelectableLayers()
	h := hot.New(m, hot.Options{EnableVertexInsertion: true}, hot.Callbacks{})
	c, err := controller.New(m, h, cfg, state.Callbacks())
	require.NoError(t, err)
	state.AttachController(c)
	fx.ctrl = c

	require.NoError(t, state.Load(context.Background()))
	c.Enable()
	return fx
}

func (fx *fixture) cold() int {
	return len(fx.m.SceneSource(ColdSource).Data().Features)
}

func TestLoadCreatesDefaultLayer(t *testing.T) {
	fx := newFixture(t)

	layers := fx.state.Features.Layers()
	require.Len(t, layers, 1)
	assert.Equal(t, DefaultLayerName, layers[0].Name)
	assert.Equal(t, layers[0].ID, fx.state.ActiveLayer())
	assert.Equal(t, layers[0].ID, fx.ctrl.ActiveLayer())
}

func TestDrawSelectDragDelete(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	layer := fx.state.ActiveLayer()

	require.NoError(t, fx.ctrl.SetTool(tools.ToolPoint))
	fx.m.Click(px(400, 300))
	require.Equal(t, 1, fx.state.Features.Len())
	assert.Equal(t, 1, fx.cold())

	fc, err := fx.store.FeaturesByLayer(ctx, layer)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	id := features.ID(fc.Features[0])
	l, _ := fx.state.Features.Layer(layer)
	assert.Equal(t, l.Color, features.StyleOf(fc.Features[0], features.Style{}).Color)

	require.NoError(t, fx.ctrl.SetTool(tools.ToolSelect))
	fx.m.MouseDown(px(400, 300))
	require.Equal(t, [][]string{{id}}, fx.selections)
	selected := fx.m.QueryRenderedFeatures(px(400, 300), 5, []string{LayerColdSelected})
	assert.Len(t, selected, 1)

	fx.m.MouseMove(px(440, 300))
	assert.Equal(t, 0, fx.cold(), "dragged feature hidden from cold layers")
	fx.m.MouseUp(px(440, 300))
	assert.Equal(t, 1, fx.cold())

	moved, err := fx.store.Feature(ctx, id)
	require.NoError(t, err)
	want := fx.m.Unproject(px(440, 300))
	got := moved.Geometry.(orb.Point)
	assert.InDelta(t, want.Lon(), got.Lon(), 1e-9)
	assert.InDelta(t, want.Lat(), got.Lat(), 1e-9)

	assert.Equal(t, 1, fx.state.DeleteSelected(ctx))
	assert.Equal(t, 0, fx.state.Features.Len())
	assert.Equal(t, 0, fx.cold())
	_, err = fx.store.Feature(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, fx.errors)
}

func TestEditSelectedCommitsVertexEdit(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	corners := []geometry.Point2D{px(300, 200), px(500, 200), px(500, 400), px(300, 400)}
	coords := make([]orb.Point, 0, len(corners))
	for _, c := range corners {
		coords = append(coords, fx.m.Unproject(c))
	}
	poly, err := geometry.BuildPolygon(coords)
	require.NoError(t, err)
	f := features.NewFeature(poly, fx.state.ActiveLayer(), time.Now())
	require.NoError(t, fx.store.CreateFeature(ctx, f))
	require.NoError(t, fx.state.Load(ctx))
	id := features.ID(f)

	assert.Error(t, fx.state.EditSelected(), "nothing selected")

	fx.m.MouseDown(px(400, 300))
	fx.m.MouseUp(px(400, 300))
	require.True(t, fx.state.Selection.IsSelected(id))

	require.NoError(t, fx.state.EditSelected())
	assert.Equal(t, id, fx.ctrl.EditingFeatureID())
	assert.Equal(t, 0, fx.cold())

	fx.m.MouseDown(px(300, 200))
	fx.m.MouseMove(px(280, 180))
	fx.m.MouseUp(px(280, 180))
	fx.m.KeyDown(surface.KeyEnter)

	assert.Equal(t, "", fx.ctrl.EditingFeatureID())
	assert.Equal(t, 1, fx.cold())
	saved, err := fx.store.Feature(ctx, id)
	require.NoError(t, err)
	ring := saved.Geometry.(orb.Polygon)[0]
	want := fx.m.Unproject(px(280, 180))
	assert.InDelta(t, want.Lon(), ring[0].Lon(), 1e-9)
	assert.InDelta(t, want.Lat(), ring[0].Lat(), 1e-9)
	assert.Equal(t, ring[0], ring[len(ring)-1])

	recs, err := fx.store.Records(ctx, id)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, store.RecordUpdate, recs[1].Type)
}

func TestEditCancelRestoresCold(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := features.NewFeature(orb.LineString{fx.m.Unproject(px(100, 100)), fx.m.Unproject(px(300, 100))}, fx.state.ActiveLayer(), time.Now())
	require.NoError(t, fx.store.CreateFeature(ctx, f))
	require.NoError(t, fx.state.Load(ctx))

	fx.state.Selection.Select(features.ID(f))
	require.NoError(t, fx.state.EditSelected())
	assert.Equal(t, 0, fx.cold())

	fx.m.KeyDown(surface.KeyEscape)
	assert.Equal(t, 1, fx.cold())
	recs, err := fx.store.Records(ctx, features.ID(f))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestToolCancelDuringEditKeepsColdHidden(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := features.NewFeature(orb.LineString{fx.m.Unproject(px(100, 100)), fx.m.Unproject(px(300, 100))}, fx.state.ActiveLayer(), time.Now())
	require.NoError(t, fx.store.CreateFeature(ctx, f))
	require.NoError(t, fx.state.Load(ctx))

	fx.state.Selection.Select(features.ID(f))
	require.NoError(t, fx.state.EditSelected())
	require.NoError(t, fx.ctrl.SetTool(tools.ToolLine))

	// One draft point, then Backspace empties the draft and cancels the tool.
	fx.m.Click(px(500, 400))
	fx.m.KeyDown(surface.KeyBackspace)
	require.Equal(t, features.ID(f), fx.ctrl.EditingFeatureID())
	assert.Equal(t, 0, fx.cold())

	fx.m.KeyDown(surface.KeyEnter)
	assert.Equal(t, "", fx.ctrl.EditingFeatureID())
	assert.Equal(t, 1, fx.cold())
}

func TestCompleteFailureReportsError(t *testing.T) {
	fx := newFixture(t)
	// A layer the store does not know about.
	fx.state.Features.AddLayer(features.Layer{ID: "ghost", Name: "Ghost"})
	require.NoError(t, fx.state.SetActiveLayer("ghost"))

	require.NoError(t, fx.ctrl.SetTool(tools.ToolPoint))
	fx.m.Click(px(400, 300))
	assert.Equal(t, 0, fx.state.Features.Len())
	require.Len(t, fx.errors, 1)

	assert.Error(t, fx.state.SetActiveLayer("missing"))
}

func TestCreateLayerAndVisibility(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	l, err := fx.state.CreateLayer(ctx, "Parcels")
	require.NoError(t, err)
	assert.Equal(t, features.NextColorHex(1), l.Color)
	require.NoError(t, fx.state.SetActiveLayer(l.ID))

	require.NoError(t, fx.ctrl.SetTool(tools.ToolPoint))
	fx.m.Click(px(200, 200))
	assert.Equal(t, 1, fx.cold())
	fx.state.SetLayerVisible(l.ID, false)
	assert.Equal(t, 0, fx.cold())
}

func TestConfigWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zoom: 10\n"), 0644))

	w := NewConfigWatcher(path, 10*time.Millisecond)
	require.NotNil(t, w)
	assert.False(t, w.Changed())

	changed := make(chan struct{}, 1)
	w.OnChange(func() { changed <- struct{}{} })
	w.Start()
	defer w.Stop()

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("change not detected")
	}

	w.ResetBaseline()
	assert.False(t, w.Changed())
	assert.Nil(t, NewConfigWatcher(filepath.Join(t.TempDir(), "missing.yaml"), time.Second))
}
