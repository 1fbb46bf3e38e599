package gui

import (
	"errors"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/engine/debug"
	"github.com/Faultbox/physview/internal/engine/renderer"
	"github.com/Faultbox/physview/internal/viewer"
)

// openFile asks for a host scene file, imports its directory into the
// workspace and loads it.
func openFile(app *viewer.App, ws *viewer.Workspace, log *zap.Logger) error {
	host, err := dialog.File().
		Filter("MuJoCo scene", "xml").
		Title("Open scene").
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	file, err := ws.Import(host)
	if err != nil {
		return err
	}
	log.Info("opening imported scene", zap.String("host", host), zap.String("file", file))
	return app.Panel.OpenFile(file)
}

// screenshot writes the last rendered scene to a PNG file.
func screenshot(r *renderer.Renderer, capture *debug.ScreenshotCapture, app *viewer.App, log *zap.Logger) error {
	target := r.Target()
	w, h := target.Size()
	path, err := capture.CaptureFromPixels(target.ReadPixels(), int(w), int(h))
	if err != nil {
		return err
	}
	log.Info("screenshot saved", zap.String("path", path))
	app.Panel.SetStatus("Saved " + path)
	return nil
}
