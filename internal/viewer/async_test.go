package viewer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/physview/internal/lifecycle"
)

// pollUntil polls a until a load finishes.
func pollUntil(t *testing.T, a *App) (bool, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !a.busy {
			return false, nil
		}
		ok, err := a.Poll()
		if ok || err != nil {
			return ok, err
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("load did not finish")
	return false, nil
}

func TestLoadAsync(t *testing.T) {
	a, e := newApp(t, nil)
	e.Block = make(chan struct{})

	require.NoError(t, a.LoadAsync(context.Background(), "arm.xml"))
	assert.True(t, a.Loading())
	assert.Equal(t, "Loading...", a.Status())
	assert.ErrorIs(t, a.LoadAsync(context.Background(), "two.xml"), lifecycle.ErrReloadInFlight)

	// Nothing is committed until the load finishes and Poll runs.
	_, err := a.Ctrl.Current()
	assert.ErrorIs(t, err, lifecycle.ErrNotLoaded)

	close(e.Block)
	ok, err := pollUntil(t, a)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, a.Loading())

	cur, err := a.Ctrl.Current()
	require.NoError(t, err)
	assert.Equal(t, "/working/arm.xml", cur.File)
}

func TestLoadAsyncFailureKeepsScene(t *testing.T) {
	a, _ := newApp(t, nil)
	require.NoError(t, a.Load(context.Background(), "arm.xml"))

	require.NoError(t, a.LoadAsync(context.Background(), "missing.xml"))
	ok, err := pollUntil(t, a)
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, a.Status(), "missing.xml")

	cur, err := a.Ctrl.Current()
	require.NoError(t, err)
	assert.Equal(t, "/working/arm.xml", cur.File)
}

func TestAsyncPanelReload(t *testing.T) {
	a, e := newApp(t, nil)
	a2, err := New(a.Config, Options{Engine: e, Async: true})
	require.NoError(t, err)
	t.Cleanup(a2.Close)

	require.NoError(t, a2.Panel.SelectScene("Two"))
	assert.True(t, a2.Loading())
	ok, err := pollUntil(t, a2)
	require.NoError(t, err)
	assert.True(t, ok)

	cur, err := a2.Ctrl.Current()
	require.NoError(t, err)
	assert.Equal(t, "/working/two.xml", cur.File)
}
