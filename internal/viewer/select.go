package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/engine/picking"
)

// SelectAt picks the body under a viewport pixel and reports it on the
// status line. It returns the body's name and whether anything was hit.
func (a *App) SelectAt(x, y, width, height float32) (string, bool) {
	cur, err := a.Ctrl.Current()
	if err != nil {
		return "", false
	}

	ray := picking.CameraRay(a.Camera, x, y, width, height)
	hit, ok := picking.Pick(a.Ctrl.Stage(), ray)
	if !ok {
		a.Panel.SetStatus("")
		return "", false
	}

	name := cur.Model.BodyName(hit.Body)
	if name == "" {
		name = fmt.Sprintf("body %d", hit.Body)
	}
	a.log.Debug("body selected", zap.String("body", name), zap.Float32("distance", hit.Distance))
	a.Panel.SetStatus("Selected " + name)
	return name, true
}
