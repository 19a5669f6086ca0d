package cli

import (
	"context"
	"log"
	"time"

	"vector-editor/internal/api"
	"vector-editor/internal/app"
	"vector-editor/internal/config"
	"vector-editor/internal/controller"
	"vector-editor/internal/hot"
	"vector-editor/ui/mainwindow"
	"vector-editor/ui/mapcanvas"
	"vector-editor/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"github.com/paulmach/orb"
)

const appID = "io.github.vector-editor"

type CmdEdit struct {
	global *GlobalOptions

	API string `long:"api" description:"Also serve the HTTP API on this address"`
}

func init() {
	_, err := parser.AddCommand("edit",
		"Open the editor",
		"Open the map editor window on the configured database",
		&CmdEdit{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdEdit) Execute(args []string) error {
	cfg, err := cmd.global.LoadConfig()
	if err != nil {
		return err
	}
	if cmd.API != "" {
		cfg.API.Enabled = true
		cfg.API.Listen = cmd.API
	}

	st, err := cmd.global.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	p := prefs.Load()
	applyPrefs(&cfg, p)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.EditorTheme{})

	center := orb.Point{cfg.Center[0], cfg.Center[1]}
	zoom := cfg.Zoom
	if p.FloatWithFallback(prefs.KeyZoom, -1) >= 0 {
		center = orb.Point{
			p.FloatWithFallback(prefs.KeyCenterLon, center.Lon()),
			p.FloatWithFallback(prefs.KeyCenterLat, center.Lat()),
		}
		zoom = p.FloatWithFallback(prefs.KeyZoom, zoom)
	}
	mc := mapcanvas.New(center, zoom)

	// Cold layers first so hot layers draw above them.
	state := app.NewState(st, mc)
	if len(cfg.Tools.SelectableLayers) == 0 {
		cfg.Tools.SelectableLayers = app.SelectableLayers()
	}
	h := hot.New(mc, hot.Options{EnableVertexInsertion: cfg.Tools.EnableVertexInsertion}, hot.Callbacks{})
	ctrl, err := controller.New(mc, h, cfg.Tools, state.Callbacks())
	if err != nil {
		return err
	}
	state.AttachController(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := state.Load(ctx); err != nil {
		return err
	}
	ctrl.Enable()

	win := mainwindow.New(fyneApp, state, ctrl, mc, p)

	if cfg.API.Enabled {
		handler := api.NewHandler(st)
		handler.OnChange = func(layerID string) {
			if err := state.Load(ctx); err != nil {
				log.Printf("API: reload after change to layer %s: %v", layerID, err)
				return
			}
			state.Emit(app.EventLayerChanged, layerID)
		}
		go func() {
			if err := api.Serve(ctx, cfg.API.Listen, handler); err != nil {
				log.Printf("API: %v", err)
			}
		}()
	}

	if cmd.global.Config != "" {
		setupConfigWatcher(win, cmd.global.Config)
	}

	win.ShowAndRun()
	return nil
}

// applyPrefs overrides snapping from the operator's saved preferences.
func applyPrefs(cfg *config.Config, p *prefs.Prefs) {
	cfg.Tools.SnapToVertices = p.Bool(prefs.KeySnapToVertices, cfg.Tools.SnapToVertices)
	cfg.Tools.SnapToEdges = p.Bool(prefs.KeySnapToEdges, cfg.Tools.SnapToEdges)
}

// setupConfigWatcher offers a restart when the configuration file changes.
func setupConfigWatcher(win *mainwindow.MainWindow, path string) {
	watcher := app.NewConfigWatcher(path, 2*time.Second)
	if watcher == nil {
		log.Printf("Config: unable to watch %s", path)
		return
	}

	watcher.OnChange(func() {
		log.Println("Config: file changed")
		dialog.ShowConfirm("Configuration Changed",
			"The configuration file has been updated.\nRestart now?",
			func(ok bool) {
				if !ok {
					watcher.ResetBaseline()
					watcher.Start()
					return
				}
				log.Println("Config: saving preferences before restart...")
				win.Shutdown()
				if err := app.RestartProcess(); err != nil {
					log.Printf("Config: restart failed: %v", err)
				}
			}, win.Window)
	})
	watcher.Start()
	win.SetOnClosed(watcher.Stop)
}
