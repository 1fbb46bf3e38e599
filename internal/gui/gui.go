// Package gui is the windowed front-end: an SDL2 window with the scene
// rendered by OpenGL under an immediate-mode control panel.
package gui

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/engine/debug"
	"github.com/Faultbox/physview/internal/engine/input"
	"github.com/Faultbox/physview/internal/engine/renderer"
	"github.com/Faultbox/physview/internal/engine/ui2d"
	"github.com/Faultbox/physview/internal/engine/window"
	"github.com/Faultbox/physview/internal/lifecycle"
	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/internal/panel"
	"github.com/Faultbox/physview/internal/viewer"
)

const (
	windowTitle   = "physview"
	screenshotDir = "screenshots"

	// Mouse pan speed relative to the camera's own keyboard pan step.
	panScale = 0.2

	// A left press that moves less than this many pixels before release
	// selects instead of rotating.
	clickSlop = 4
)

// Run opens the window and drives the viewer until the window closes or
// ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, ws *viewer.Workspace) error {
	log := logger.Named("gui")

	win, err := window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	dw, dh := win.DrawableSize()
	rcfg := renderer.DefaultConfig(dw, dh)
	rcfg.Samples = cfg.Graphics.MSAA
	scene, err := renderer.New(rcfg)
	if err != nil {
		return fmt.Errorf("scene renderer: %w", err)
	}
	defer scene.Close()
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	ww, wh := win.GetSize()
	ui, err := ui2d.NewContext(ww, wh)
	if err != nil {
		return fmt.Errorf("ui renderer: %w", err)
	}
	defer ui.Close()

	app, err := viewer.New(cfg, viewer.Options{
		Engine: ws.Engine(),
		Fetch:  ws.Fetch,
		Async:  true,
		Logger: logger.Named("viewer"),
	})
	if err != nil {
		return err
	}
	defer app.Close()
	app.Ctrl.OnModelChanged(func(c lifecycle.Context) {
		scene.Release()
		win.SetTitle(windowTitle + " - " + app.Panel.Scenes.Name(app.Panel.Params.Scene))
	})

	view := NewView(ui, app)
	view.OpenFile = func() error { return openFile(app, ws, log) }
	capture := debug.NewScreenshotCapture(screenshotDir, windowTitle)

	keys := app.Panel.Keys
	keys.Register("Open scene", panel.Chord{Key: "O", Ctrl: true}, view.OpenFile)
	keys.Register("Screenshot", panel.Chord{Key: "F12"}, func() error {
		return screenshot(scene, capture, app, log)
	})
	keys.Register("Toggle fullscreen", panel.Chord{Key: "F11"}, win.ToggleFullscreen)

	if err := app.Panel.Reload(); err != nil {
		log.Warn("initial scene failed to load", zap.Error(err))
	}

	in := input.New(ui.Input())
	var frameBudget time.Duration
	if cfg.Graphics.FPSLimit > 0 && !cfg.Graphics.VSync {
		frameBudget = time.Second / time.Duration(cfg.Graphics.FPSLimit)
	}

	var rotating, panning bool
	var dragged float32
	last := time.Now()
	for ctx.Err() == nil {
		frameStart := time.Now()
		if in.Update() {
			break
		}

		for _, e := range in.Events() {
			switch e.Type {
			case input.EventWindowResize:
				dw, dh = win.DrawableSize()
				ww, wh = win.GetSize()
				scene.Resize(dw, dh)
				ui.Resize(ww, wh)
			case input.EventKeyDown:
				keys.Dispatch(e.Chord)
			case input.EventMouseDown:
				if ui.WantsMouse() {
					continue
				}
				switch e.Button {
				case sdl.BUTTON_LEFT:
					rotating = true
					dragged = 0
				case sdl.BUTTON_RIGHT, sdl.BUTTON_MIDDLE:
					panning = true
				}
			case input.EventMouseUp:
				switch e.Button {
				case sdl.BUTTON_LEFT:
					if rotating && dragged < clickSlop {
						app.SelectAt(e.MouseX, e.MouseY, float32(ww), float32(wh))
					}
					rotating = false
				case sdl.BUTTON_RIGHT, sdl.BUTTON_MIDDLE:
					panning = false
				}
			case input.EventMouseMove:
				if rotating {
					dragged += max(e.DeltaX, -e.DeltaX) + max(e.DeltaY, -e.DeltaY)
					app.Camera.HandleDrag(e.DeltaX, e.DeltaY)
				}
				if panning {
					app.Camera.HandleMovement(e.DeltaY*panScale, -e.DeltaX*panScale, 0)
				}
			case input.EventWheel:
				if !ui.WantsMouse() {
					app.Camera.HandleZoom(e.Wheel)
				}
			}
		}

		if _, err := app.Poll(); err != nil {
			log.Warn("scene load failed", zap.Error(err))
		}

		now := time.Now()
		app.Frame(now.Sub(last).Seconds())
		last = now

		tex := scene.Render(app.Ctrl.Stage(), app.Camera)

		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(dw), int32(dh))
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		ui.Begin()
		ui.Renderer().DrawSceneTexture(0, 0, float32(ww), float32(wh), tex)
		view.Draw()
		ui.End()
		win.SwapBuffers()

		if frameBudget > 0 {
			if elapsed := time.Since(frameStart); elapsed < frameBudget {
				time.Sleep(frameBudget - elapsed)
			}
		}
	}

	log.Info("viewer stopped")
	return nil
}
