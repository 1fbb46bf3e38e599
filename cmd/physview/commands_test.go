package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/physview/internal/assets"
	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/physics/physicstest"
	"github.com/Faultbox/physview/internal/scenesync"
)

func TestDescribeModel(t *testing.T) {
	m := physicstest.Arm()
	s, err := scenesync.Build(m, scenesync.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	describeModel(&buf, "arm.xml", m, s)
	out := buf.String()

	assert.Contains(t, out, "arm.xml")
	assert.Contains(t, out, "upper_arm")
	assert.Contains(t, out, "hinge")
	assert.Contains(t, out, "shoulder_motor")
	assert.Contains(t, out, "[-1, 1]")
	assert.Contains(t, out, "unlimited")
	assert.Contains(t, out, "hierarchy flat")
}

func TestListScenes(t *testing.T) {
	cfg := config.Default()
	cfg.Scenes = []config.SceneEntry{{Name: "Humanoid", File: "humanoid.xml"}, {Name: "Mine", File: "mine.xml"}}
	manifest, err := assets.ParseManifest([]byte("files:\n  - humanoid.xml\n  - meshes/a.stl\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	listScenes(&buf, cfg, manifest)
	out := buf.String()

	assert.Contains(t, out, "Humanoid")
	assert.Contains(t, out, "yes (initial)")
	assert.Contains(t, out, "mine.xml")
	assert.Contains(t, out, "no")
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"gui", "tui", "inspect", "fetch", "scenes", "config"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("source"))
	assert.NotNil(t, root.PersistentFlags().Lookup("hierarchy"))
}

func TestScenesCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"scenes"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Humanoid")
}
