package viewer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/physview/internal/assets"
	"github.com/Faultbox/physview/internal/config"
)

const pendulumXML = `<mujoco model="pendulum">
  <worldbody>
    <light pos="0 0 3"/>
    <geom type="plane" size="2 2 0.1"/>
    <body name="pole" pos="0 0 1">
      <joint name="hinge" type="hinge" axis="0 1 0"/>
      <geom type="capsule" fromto="0 0 0 0 0 -0.5" size="0.02"/>
    </body>
  </worldbody>
  <actuator>
    <motor joint="hinge" ctrllimited="true" ctrlrange="-1 1"/>
  </actuator>
</mujoco>`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func newWorkspace(t *testing.T, source string, files ...string) *Workspace {
	t.Helper()
	cfg := config.Default().Assets
	cfg.Source = source
	w, err := NewWorkspace(cfg)
	require.NoError(t, err)
	w.Manifest = &assets.Manifest{Files: files}
	t.Cleanup(w.Close)
	return w
}

func TestPopulate(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"pendulum.xml":    pendulumXML,
		"assets/grid.obj": "v 0 0 0\n",
	})
	w := newWorkspace(t, src, "pendulum.xml", "assets/grid.obj")

	require.NoError(t, w.Populate(context.Background()))
	assert.True(t, w.FS.Exists("/working/pendulum.xml"))
	assert.True(t, w.FS.Exists("/working/assets/grid.obj"))

	// A second run has nothing left to fetch.
	_, misses := w.Assets.CacheStats()
	require.NoError(t, w.Populate(context.Background()))
	_, again := w.Assets.CacheStats()
	assert.Equal(t, misses, again)
}

func TestPopulateIsAllOrNothing(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"pendulum.xml": pendulumXML})
	w := newWorkspace(t, src, "pendulum.xml", "missing.xml")

	err := w.Populate(context.Background())
	assert.ErrorIs(t, err, assets.ErrFetch)
	assert.False(t, w.FS.Exists("/working/pendulum.xml"))
}

func TestFetchOnDemand(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"pendulum.xml": pendulumXML})
	w := newWorkspace(t, src)
	ctx := context.Background()

	require.NoError(t, w.Fetch(ctx, "/working/pendulum.xml"))
	assert.True(t, w.FS.Exists("/working/pendulum.xml"))

	// Imported and outside paths are never fetched.
	assert.NoError(t, w.Fetch(ctx, "/working/local/1/x.xml"))
	assert.NoError(t, w.Fetch(ctx, "/elsewhere/x.xml"))

	assert.ErrorIs(t, w.Fetch(ctx, "/working/nope.xml"), assets.ErrFetch)
}

func TestFetchWithoutSources(t *testing.T) {
	w := newWorkspace(t, "")
	assert.NoError(t, w.Fetch(context.Background(), "/working/pendulum.xml"))
}

func TestImport(t *testing.T) {
	host := t.TempDir()
	writeFiles(t, host, map[string]string{
		"robot.xml":         pendulumXML,
		"meshes/part.stl":   "solid part\nendsolid part\n",
		"notes.md":          "skipped",
		".git/objects/blob": "skipped",
		".cache/hidden.xml": "skipped",
	})
	w := newWorkspace(t, "")

	rel, err := w.Import(filepath.Join(host, "robot.xml"))
	require.NoError(t, err)
	assert.Equal(t, "local/1/robot.xml", rel)
	assert.True(t, w.FS.Exists("/working/local/1/robot.xml"))
	assert.True(t, w.FS.Exists("/working/local/1/meshes/part.stl"))
	assert.False(t, w.FS.Exists("/working/local/1/notes.md"))
	assert.False(t, w.FS.Exists("/working/local/1/.cache/hidden.xml"))

	rel, err = w.Import(filepath.Join(host, "robot.xml"))
	require.NoError(t, err)
	assert.Equal(t, "local/2/robot.xml", rel)
}

func TestImportMissingFile(t *testing.T) {
	w := newWorkspace(t, "")
	_, err := w.Import(filepath.Join(t.TempDir(), "absent.xml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAppOnWorkspace(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"pendulum.xml": pendulumXML})
	w := newWorkspace(t, src)

	cfg := config.Default()
	a, err := New(cfg, Options{Engine: w.Engine(), Fetch: w.Fetch})
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Load(context.Background(), "pendulum.xml"))
	cur, err := a.Ctrl.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, cur.Model.NBody)
	require.Len(t, a.Panel.Actuators, 1)

	require.NoError(t, a.Panel.SetActuator(0, 1))
	assert.Positive(t, a.Frame(0.05))
	assert.NotZero(t, cur.Sim.Qpos()[0])
}

func TestAppOpensImportedFile(t *testing.T) {
	host := t.TempDir()
	writeFiles(t, host, map[string]string{"mine.xml": pendulumXML})
	w := newWorkspace(t, "")

	a, err := New(config.Default(), Options{Engine: w.Engine(), Fetch: w.Fetch})
	require.NoError(t, err)
	defer a.Close()

	rel, err := w.Import(filepath.Join(host, "mine.xml"))
	require.NoError(t, err)
	require.NoError(t, a.Panel.OpenFile(rel))

	cur, err := a.Ctrl.Current()
	require.NoError(t, err)
	assert.Equal(t, "/working/local/1/mine.xml", cur.File)
}
