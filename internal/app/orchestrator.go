// Package app wires the view state, the detector and the preview loader to
// the Gio window.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"

	"github.com/justyntemme/spotter/internal/config"
	"github.com/justyntemme/spotter/internal/debug"
	"github.com/justyntemme/spotter/internal/detect"
	"github.com/justyntemme/spotter/internal/preview"
	"github.com/justyntemme/spotter/internal/state"
	"github.com/justyntemme/spotter/internal/ui"
)

type Orchestrator struct {
	window   *app.Window
	config   *config.Manager
	owner    *state.Owner
	detector detect.Detector
	preview  *preview.Loader
	ui       *ui.Renderer
	state    ui.State
	debug    bool

	// invalidate schedules a new frame; safe to call from any goroutine.
	invalidate func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	loadMu   sync.Mutex
	loadErrs map[string]string // bitmap failures by path
}

// NewOrchestrator builds the detector from configuration and creates the window.
func NewOrchestrator(cfg *config.Manager, debug bool) (*Orchestrator, error) {
	det, err := detect.New(detectorOptions(cfg.Get().Detector))
	if err != nil {
		return nil, err
	}
	w := new(app.Window)
	o := newOrchestrator(cfg, det, w.Invalidate)
	o.window = w
	o.debug = debug
	return o, nil
}

func newOrchestrator(cfg *config.Manager, det detect.Detector, invalidate func()) *Orchestrator {
	c := cfg.Get()

	r := ui.NewRenderer()
	r.SetHotkeys(c.Hotkeys)
	r.SetDarkMode(c.UI.Theme == "dark")
	r.SetToastDuration(time.Duration(c.UI.ToastSeconds) * time.Second)
	if err := cfg.ParseError(); err != nil {
		r.SetConfigError(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		config:   cfg,
		owner:    state.NewOwner(det),
		detector: det,
		preview: preview.NewLoader(preview.Options{
			Width:     c.Preview.Width,
			Height:    c.Preview.Height,
			CacheSize: c.Preview.CacheSize,
		}),
		ui:         r,
		state:      ui.State{Index: -1},
		invalidate: invalidate,
		ctx:        ctx,
		cancel:     cancel,
		loadErrs:   make(map[string]string),
	}
}

func detectorOptions(c config.DetectorConfig) detect.Options {
	return detect.Options{
		Engine:    detect.ParseEngine(c.Engine),
		URL:       c.URL,
		ModelType: c.ModelType,
		Command:   c.Command,
		Args:      c.Args,
		Timeout:   c.Timeout(),
		Workers:   c.Workers,
		NamesFile: c.NamesFile,
		MinScore:  c.MinScore,
	}
}

// Run drives the window until it is closed. A non-empty startFolder is
// loaded before the first frame.
func (o *Orchestrator) Run(startFolder string) error {
	if o.debug {
		log.Println("Starting Spotter in DEBUG mode")
	}
	defer o.shutdown()

	c := o.config.Get()
	o.window.Option(
		app.Title("Spotter"),
		app.Size(unit.Dp(c.UI.WindowWidth), unit.Dp(c.UI.WindowHeight)),
	)

	if startFolder != "" {
		o.ui.SetPath(startFolder)
		o.handleUIEvent(ui.UIEvent{Action: ui.ActionLoadFolder, Path: startFolder})
	}

	var ops op.Ops
	for {
		switch e := o.window.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			o.refreshState()
			evt := o.ui.Layout(gtx, &o.state)
			o.handleUIEvent(evt)
			e.Frame(gtx.Ops)
		}
	}
}

// shutdown cancels a running detection and waits for it before releasing
// the detector and the preview worker.
func (o *Orchestrator) shutdown() {
	o.cancel()
	o.wg.Wait()
	o.preview.Stop()
	if c, ok := o.detector.(interface{ Close() }); ok {
		c.Close()
	}
}

func (o *Orchestrator) handleUIEvent(evt ui.UIEvent) {
	if evt.Action == ui.ActionNone {
		return
	}
	debug.Log(debug.APP, "handleUIEvent: %s path=%q", evt.Action, evt.Path)

	switch evt.Action {
	case ui.ActionLoadFolder:
		if err := o.owner.LoadFolder(evt.Path); err != nil {
			o.report(err)
		} else if evt.Path != "" {
			o.preview.Purge()
			o.clearLoadErrs()
			o.ui.ShowInfo(fmt.Sprintf("Loaded %d images", len(o.owner.Images())))
		}
	case ui.ActionDetect:
		o.startDetection()
	case ui.ActionShowImages:
		o.report(o.owner.ShowImages())
	case ui.ActionShowDetections:
		o.report(o.owner.ShowDetections())
	case ui.ActionClearOutputs:
		removed, err := o.owner.ClearOutputs()
		o.preview.Purge()
		o.clearLoadErrs()
		if err != nil {
			o.report(err)
		} else if removed {
			o.ui.ShowSuccess("Outputs cleared")
		} else {
			o.ui.ShowInfo("There are no outputs to clear")
		}
	case ui.ActionNextImage:
		o.owner.NextImage()
	case ui.ActionPrevImage:
		o.owner.PrevImage()
	case ui.ActionOpenExternal:
		if err := platformOpen(evt.Path); err != nil {
			log.Printf("Error opening file: %v", err)
			o.ui.ShowError("Could not open " + evt.Path)
		}
	case ui.ActionToggleTheme:
		dark := !o.ui.DarkMode
		o.ui.SetDarkMode(dark)
		theme := "light"
		if dark {
			theme = "dark"
		}
		if err := o.config.SetTheme(theme); err != nil {
			log.Printf("Config: failed to save theme: %v", err)
		}
	}
	o.invalidate()
}

// startDetection runs DetectObjects off the UI goroutine and reports the
// outcome with a toast.
//
// The busy flag is claimed before the goroutine starts, so any action handled
// on the next frame already sees the run as outstanding.
func (o *Orchestrator) startDetection() {
	run, err := o.owner.BeginDetection()
	if err != nil {
		o.report(err)
		return
	}
	o.ui.ShowInfo("Detecting objects...")

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		start := time.Now()
		err := run(o.ctx)
		if err != nil {
			o.report(err)
		} else {
			o.preview.Purge()
			o.clearLoadErrs()
			o.ui.ShowSuccess(fmt.Sprintf("Detection finished in %s", time.Since(start).Round(100*time.Millisecond)))
		}
		o.invalidate()
	}()
}

func (o *Orchestrator) report(err error) {
	if err == nil {
		return
	}
	msg, typ := messageFor(err)
	debug.Log(debug.APP, "report: %v", err)
	o.ui.ShowToast(msg, typ)
}

// refreshState copies the view state snapshot into the renderer state and
// asks for the current bitmap.
func (o *Orchestrator) refreshState() {
	snap := o.owner.GetSnapshot()
	o.state = ui.State{
		Folder:    snap.Folder,
		Detection: snap.Mode == state.ModeDetection,
		Count:     snap.Count,
		Index:     snap.Index,
		Current:   snap.Current,
		Labels:    snap.Labels,
		Busy:      snap.Busy,
	}
	if snap.Current == "" {
		return
	}

	if info, err := os.Stat(snap.Current); err == nil {
		o.state.Size = info.Size()
	}

	if img, ok := o.preview.Get(snap.Current); ok {
		o.state.Image = img
		return
	}
	o.loadMu.Lock()
	msg, failed := o.loadErrs[snap.Current]
	o.loadMu.Unlock()
	if failed {
		o.state.ImageErr = msg
		return
	}
	path := snap.Current
	o.preview.Request(path, func(err error) {
		if err != nil {
			o.loadMu.Lock()
			o.loadErrs[path] = err.Error()
			o.loadMu.Unlock()
		}
		o.invalidate()
	})
}

func (o *Orchestrator) clearLoadErrs() {
	o.loadMu.Lock()
	o.loadErrs = make(map[string]string)
	o.loadMu.Unlock()
}

// Main starts the application on the Gio main loop.
func Main(debug bool, configPath, startFolder string) {
	cfg := config.NewManager()
	var err error
	if configPath != "" {
		err = cfg.LoadFrom(configPath)
	} else {
		err = cfg.Load()
	}
	if err != nil {
		log.Printf("Config: %v (using defaults)", err)
	}

	go func() {
		o, err := NewOrchestrator(cfg, debug)
		if err != nil {
			log.Fatal(err)
		}
		if err := o.Run(startFolder); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
