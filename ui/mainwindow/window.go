// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"

	"vector-editor/internal/app"
	"vector-editor/internal/controller"
	"vector-editor/internal/surface"
	"vector-editor/internal/tools"
	"vector-editor/ui/mapcanvas"
	"vector-editor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/paulmach/orb"
)

var toolOrder = []tools.ToolType{tools.ToolSelect, tools.ToolPoint, tools.ToolLine, tools.ToolPolygon}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	ctrl  *controller.Controller
	prefs *prefs.Prefs

	canvas      *mapcanvas.MapCanvas
	statusBar   *widget.Label
	coordsLabel *widget.Label
	selectLabel *widget.Label
	layerSelect *widget.Select
	toolButtons map[tools.ToolType]*widget.Button

	// Layer names shown in layerSelect, mapped to IDs.
	layerIDs      map[string]string
	updatingLayer bool
}

// New creates the main window around an already wired canvas and controller.
func New(fyneApp fyne.App, state *app.State, ctrl *controller.Controller, mc *mapcanvas.MapCanvas, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Vector Editor")

	mw := &MainWindow{
		Window:      win,
		app:         fyneApp,
		state:       state,
		ctrl:        ctrl,
		prefs:       p,
		canvas:      mc,
		toolButtons: make(map[tools.ToolType]*widget.Button),
		layerIDs:    make(map[string]string),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restoreWindow()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("Ready")
	mw.coordsLabel = widget.NewLabel("")
	mw.selectLabel = widget.NewLabel("")

	toolbar := mw.createToolbar()

	bottom := container.NewBorder(nil, nil, nil,
		container.NewHBox(mw.selectLabel, mw.coordsLabel),
		mw.statusBar,
	)

	content := container.NewBorder(
		toolbar,                     // top
		container.NewPadded(bottom), // bottom
		nil,                         // left
		nil,                         // right
		mw.canvas,                   // center
	)
	mw.SetContent(content)
	mw.refreshLayers()
}

// createToolbar creates tool, layer and editing controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	toolBox := container.NewHBox()
	for _, tt := range toolOrder {
		tt := tt
		btn := widget.NewButton(toolLabel(tt), func() { mw.onSetTool(tt) })
		mw.toolButtons[tt] = btn
		toolBox.Add(btn)
	}
	mw.highlightTool(mw.ctrl.ToolType())

	mw.layerSelect = widget.NewSelect(nil, func(name string) {
		if mw.updatingLayer {
			return
		}
		if id, ok := mw.layerIDs[name]; ok {
			if err := mw.state.SetActiveLayer(id); err != nil {
				mw.statusBar.SetText(err.Error())
			}
		}
	})
	newLayerBtn := widget.NewButtonWithIcon("", theme.ContentAddIcon(), mw.onNewLayer)

	editBtn := widget.NewButton("Edit Vertices", func() {
		if err := mw.state.EditSelected(); err != nil {
			log.Printf("MainWindow: edit vertices: %v", err)
		}
	})
	saveBtn := widget.NewButtonWithIcon("", theme.ConfirmIcon(), mw.ctrl.CommitVertexEdit)
	cancelBtn := widget.NewButtonWithIcon("", theme.CancelIcon(), mw.ctrl.CancelVertexEdit)
	deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), mw.onDeleteSelected)

	zoomOutBtn := widget.NewButton("-", func() { mw.zoomBy(-1) })
	zoomInBtn := widget.NewButton("+", func() { mw.zoomBy(1) })

	return container.NewHBox(
		toolBox,
		widget.NewSeparator(),
		widget.NewLabel("Layer:"),
		mw.layerSelect,
		newLayerBtn,
		widget.NewSeparator(),
		editBtn,
		saveBtn,
		cancelBtn,
		deleteBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Reload", mw.onReload),
	)
	toolsMenu := fyne.NewMenu("Tools")
	for _, tt := range toolOrder {
		tt := tt
		toolsMenu.Items = append(toolsMenu.Items, fyne.NewMenuItem(toolLabel(tt), func() { mw.onSetTool(tt) }))
	}

	snapVertices := fyne.NewMenuItem("Snap to Vertices", nil)
	snapVertices.Checked = mw.prefs.Bool(prefs.KeySnapToVertices, true)
	snapVertices.Action = func() {
		snapVertices.Checked = !snapVertices.Checked
		mw.prefs.SetBool(prefs.KeySnapToVertices, snapVertices.Checked)
		mw.statusBar.SetText("Snapping change applies after restart")
	}
	snapEdges := fyne.NewMenuItem("Snap to Edges", nil)
	snapEdges.Checked = mw.prefs.Bool(prefs.KeySnapToEdges, true)
	snapEdges.Action = func() {
		snapEdges.Checked = !snapEdges.Checked
		mw.prefs.SetBool(prefs.KeySnapToEdges, snapEdges.Checked)
		mw.statusBar.SetText("Snapping change applies after restart")
	}
	toolsMenu.Items = append(toolsMenu.Items, fyne.NewMenuItemSeparator(), snapVertices, snapEdges)

	layerMenu := fyne.NewMenu("Layer",
		fyne.NewMenuItem("New Layer...", mw.onNewLayer),
		fyne.NewMenuItem("Hide Active Layer", func() { mw.state.SetLayerVisible(mw.state.ActiveLayer(), false) }),
		fyne.NewMenuItem("Show All Layers", func() {
			for _, l := range mw.state.Features.Layers() {
				mw.state.SetLayerVisible(l.ID, true)
			}
		}),
	)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.zoomBy(1) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.zoomBy(-1) }),
		fyne.NewMenuItem("Zoom to Layer", mw.onZoomToLayer),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, toolsMenu, layerMenu, viewMenu))
}

// setupEventHandlers connects state events to the widgets.
func (mw *MainWindow) setupEventHandlers() {
	// Tools report a status on activation, which also covers keyboard shortcuts.
	mw.state.On(app.EventStatus, func(data interface{}) {
		mw.statusBar.SetText(data.(string))
		mw.highlightTool(mw.ctrl.ToolType())
	})
	mw.state.On(app.EventError, func(data interface{}) {
		mw.statusBar.SetText("Error: " + data.(string))
	})
	mw.state.On(app.EventLayerChanged, func(data interface{}) {
		mw.refreshLayers()
		mw.prefs.SetString(prefs.KeyLastLayer, mw.state.ActiveLayer())
	})
	mw.state.On(app.EventSelectionChanged, func(data interface{}) {
		ids := data.([]string)
		if len(ids) == 0 {
			mw.selectLabel.SetText("")
			return
		}
		mw.selectLabel.SetText(fmt.Sprintf("%d selected", len(ids)))
	})

	mw.canvas.OnPointer(func(p orb.Point) {
		mw.coordsLabel.SetText(fmt.Sprintf("%.6f, %.6f", p.Lon(), p.Lat()))
	})

	mw.canvas.Document().On(surface.EventKeyDown, func(ev *surface.Event) {
		if ev.Key == surface.KeyDelete && mw.ctrl.ToolType() == tools.ToolSelect && mw.ctrl.EditingFeatureID() == "" {
			mw.onDeleteSelected()
		}
	})

	// Keys reach the map even when it does not hold focus.
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		mw.canvas.HandleKey(ev.Name)
	})

	mw.app.Lifecycle().SetOnExitedForeground(mw.canvas.PageHidden)
	mw.SetCloseIntercept(func() {
		mw.Shutdown()
		mw.Close()
	})
}

// Shutdown saves preferences and tears down the editor. The window stays open.
func (mw *MainWindow) Shutdown() {
	mw.SavePreferences()
	mw.canvas.Unload()
	mw.ctrl.Destroy()
}

func (mw *MainWindow) restoreWindow() {
	w := mw.prefs.FloatWithFallback(prefs.KeyWindowWidth, 1200)
	h := mw.prefs.FloatWithFallback(prefs.KeyWindowHeight, 800)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))

	if tt, ok := tools.ParseToolType(mw.prefs.String(prefs.KeyLastTool)); ok {
		mw.onSetTool(tt)
	}
	if id := mw.prefs.String(prefs.KeyLastLayer); id != "" {
		if _, ok := mw.state.Features.Layer(id); ok {
			_ = mw.state.SetActiveLayer(id)
		}
	}
}

// SavePreferences stores window size, tool, layer and view.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	mw.prefs.SetString(prefs.KeyLastTool, mw.ctrl.ToolType().String())
	v := mw.canvas.Viewport()
	mw.prefs.SetFloat(prefs.KeyCenterLon, v.Center.Lon())
	mw.prefs.SetFloat(prefs.KeyCenterLat, v.Center.Lat())
	mw.prefs.SetFloat(prefs.KeyZoom, v.Zoom)
	if err := mw.prefs.SaveIfChanged(); err != nil {
		log.Printf("MainWindow: save preferences: %v", err)
	}
}

func (mw *MainWindow) onSetTool(tt tools.ToolType) {
	if err := mw.ctrl.SetTool(tt); err != nil {
		return
	}
	mw.highlightTool(tt)
	mw.prefs.SetString(prefs.KeyLastTool, tt.String())
}

func (mw *MainWindow) highlightTool(active tools.ToolType) {
	for tt, btn := range mw.toolButtons {
		if tt == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

func (mw *MainWindow) refreshLayers() {
	layers := mw.state.Features.Layers()
	names := make([]string, 0, len(layers))
	mw.layerIDs = make(map[string]string, len(layers))
	active := ""
	for _, l := range layers {
		name := l.Name
		if _, dup := mw.layerIDs[name]; dup {
			name = fmt.Sprintf("%s (%s)", l.Name, l.ID)
		}
		mw.layerIDs[name] = l.ID
		names = append(names, name)
		if l.ID == mw.state.ActiveLayer() {
			active = name
		}
	}
	if mw.layerSelect == nil {
		return
	}
	mw.updatingLayer = true
	mw.layerSelect.Options = names
	mw.layerSelect.SetSelected(active)
	mw.updatingLayer = false
}

func (mw *MainWindow) onNewLayer() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Layer name")
	dialog.ShowForm("New Layer", "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			if !ok || entry.Text == "" {
				return
			}
			l, err := mw.state.CreateLayer(context.Background(), entry.Text)
			if err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			_ = mw.state.SetActiveLayer(l.ID)
		}, mw.Window)
}

func (mw *MainWindow) onDeleteSelected() {
	n := mw.state.Selection.Count()
	if n == 0 {
		mw.statusBar.SetText("Nothing selected")
		return
	}
	dialog.ShowConfirm("Delete Features",
		fmt.Sprintf("Delete %d selected feature(s)?", n),
		func(ok bool) {
			if ok {
				mw.state.DeleteSelected(context.Background())
			}
		}, mw.Window)
}

func (mw *MainWindow) onReload() {
	if err := mw.state.Load(context.Background()); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.refreshLayers()
}

func (mw *MainWindow) onZoomToLayer() {
	var b orb.Bound
	first := true
	for _, id := range mw.state.Features.ByLayer(mw.state.ActiveLayer()) {
		f, ok := mw.state.Features.Get(id)
		if !ok {
			continue
		}
		if first {
			b = f.Geometry.Bound()
			first = false
			continue
		}
		b = b.Union(f.Geometry.Bound())
	}
	if first {
		mw.statusBar.SetText("Layer is empty")
		return
	}
	mw.canvas.FitBounds(b.Pad(1e-5))
}

func (mw *MainWindow) zoomBy(delta float64) {
	v := mw.canvas.Viewport()
	mw.canvas.SetView(v.Center, v.Zoom+delta)
}

func toolLabel(tt tools.ToolType) string {
	switch tt {
	case tools.ToolSelect:
		return "Select (S)"
	case tools.ToolPoint:
		return "Point (P)"
	case tools.ToolLine:
		return "Line (L)"
	case tools.ToolPolygon:
		return "Polygon (G)"
	}
	return tt.String()
}
