package viewer

import (
	"context"

	"github.com/Faultbox/physview/internal/lifecycle"
)

type loadResult struct {
	pending *lifecycle.Pending
	err     error
}

// LoadAsync prepares file on a new goroutine. The result becomes current
// on the first Poll after it is ready.
func (a *App) LoadAsync(ctx context.Context, file string) error {
	if a.busy || a.Ctrl.Loading() {
		return lifecycle.ErrReloadInFlight
	}
	a.busy = true
	go func() {
		p, err := a.Prepare(ctx, file)
		a.results <- loadResult{pending: p, err: err}
	}()
	return nil
}

// Poll commits a finished LoadAsync. It reports whether a new scene became
// current, and returns the load error of a failed one. It must be called
// from the goroutine that drives the simulation.
func (a *App) Poll() (bool, error) {
	select {
	case r := <-a.results:
		a.busy = false
		if r.err != nil {
			a.Panel.SetStatus(r.err.Error())
			return false, r.err
		}
		a.Ctrl.Commit(r.pending)
		return true, nil
	default:
		return false, nil
	}
}

// Loading reports whether a scene load is in progress.
func (a *App) Loading() bool {
	return a.busy || a.Ctrl.Loading()
}
