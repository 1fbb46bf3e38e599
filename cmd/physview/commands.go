package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Faultbox/physview/internal/assets"
	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/scenesync"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		Headers(headers...)
}

func newInspectCmd(c *cli) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "inspect <scene>",
		Short: "load a scene and print its contents",
		Long: "Loads a scene file, either a path on disk or a path relative to the\n" +
			"working directory, and prints its bodies, actuators and scene graph.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			file := args[0]
			if _, err := os.Stat(file); err == nil {
				if file, err = ws.Import(file); err != nil {
					return err
				}
			}
			full := path.Join(ws.Dir(), file)
			if err := ws.Fetch(cmd.Context(), full); err != nil {
				return err
			}

			m, err := ws.Engine().LoadModel(full)
			if err != nil {
				return err
			}
			hierarchy, err := scenesync.ParseHierarchy(c.cfg.Viewer.Hierarchy)
			if err != nil {
				return err
			}
			s, err := scenesync.Build(m, scenesync.Options{Hierarchy: hierarchy})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			describeModel(out, file, m, s)
			if tree {
				fmt.Fprintln(out)
				return s.Root.Dump(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "also print the scene graph")
	return cmd
}

// describeModel prints a summary of m and its built scene.
func describeModel(w io.Writer, name string, m *physics.Model, s *scenesync.Scene) {
	fmt.Fprintln(w, titleStyle.Render(name))
	fmt.Fprintf(w, "timestep %gs  gravity %v\n\n", m.Opt.Timestep, m.Opt.Gravity)

	counts := newTable("bodies", "joints", "geoms", "meshes", "textures", "lights", "actuators", "tendons", "keys").
		Row(itoa(m.NBody), itoa(m.NJnt), itoa(m.NGeom), itoa(m.NMesh), itoa(m.NTex),
			itoa(m.NLight), itoa(m.NU), itoa(m.NTendon), itoa(m.NKey))
	fmt.Fprintln(w, counts)

	bodies := newTable("#", "body", "parent", "joints")
	for b := 0; b < m.NBody; b++ {
		parent := "-"
		if p := m.BodyParentID[b]; p >= 0 && b > 0 {
			parent = m.BodyName(p)
		}
		joints := ""
		for j := m.BodyJntAdr[b]; j >= 0 && j < m.BodyJntAdr[b]+m.BodyJntNum[b]; j++ {
			if joints != "" {
				joints += " "
			}
			joints += m.JntType[j].String()
		}
		bodies.Row(itoa(b), m.BodyName(b), parent, joints)
	}
	fmt.Fprintln(w, bodies)

	if m.NU > 0 {
		acts := newTable("#", "actuator", "range")
		for i := 0; i < m.NU; i++ {
			rng := "unlimited"
			if m.ActuatorCtrlLimited[i] {
				rng = fmt.Sprintf("[%g, %g]", m.ActuatorCtrlRange[2*i], m.ActuatorCtrlRange[2*i+1])
			}
			acts.Row(itoa(i), m.ActuatorName(i), rng)
		}
		fmt.Fprintln(w, acts)
	}

	st := s.Cache.Stats()
	fmt.Fprintf(w, "scene: %d meshes, %d lights, %d materials, hierarchy %s\n",
		s.Root.Count(scene.KindMesh)+s.Root.Count(scene.KindReflector),
		s.Root.Count(scene.KindLight), st.Materials, s.Hierarchy)
}

func itoa(n int) string { return strconv.Itoa(n) }

func newFetchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <dir>",
		Short: "download the scene manifest into a local directory",
		Long: "Downloads every file of the asset manifest from the configured source\n" +
			"into dir. The directory can then be used as --source for offline use.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Assets.Source == "" {
				return errors.New("no asset source configured, set --source")
			}
			manifest := assets.DefaultManifest()
			if c.cfg.Assets.Manifest != "" {
				var err error
				if manifest, err = assets.LoadManifest(c.cfg.Assets.Manifest); err != nil {
					return err
				}
			}

			mgr := assets.NewManager()
			defer mgr.Close()
			mgr.AddSource(assets.NewSource(c.cfg.Assets.Source, c.cfg.Assets.Timeout))

			err := mgr.Fetch(cmd.Context(), assets.DirSink(args[0]), manifest.Files, assets.FetchOptions{
				Concurrency: c.cfg.Assets.Concurrency,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d files into %s\n", len(manifest.Files), args[0])
			return nil
		},
	}
}

func newScenesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "list the scene selector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest := assets.DefaultManifest()
			if c.cfg.Assets.Manifest != "" {
				var err error
				if manifest, err = assets.LoadManifest(c.cfg.Assets.Manifest); err != nil {
					return err
				}
			}
			listScenes(cmd.OutOrStdout(), c.cfg, manifest)
			return nil
		},
	}
}

// listScenes prints the selector entries and whether the manifest
// provides each file.
func listScenes(w io.Writer, cfg *config.Config, manifest *assets.Manifest) {
	known := make(map[string]bool)
	for _, f := range manifest.Scenes() {
		known[f] = true
	}
	t := newTable("name", "file", "in manifest")
	for _, s := range cfg.Scenes {
		mark := "no"
		if known[s.File] {
			mark = "yes"
		}
		if s.File == cfg.Viewer.InitialScene {
			mark += " (initial)"
		}
		t.Row(s.Name, s.File, mark)
	}
	fmt.Fprintln(w, t)
}

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "inspect or write the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save [path]",
			Short: "write the effective configuration as YAML",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					return c.cfg.Save()
				}
				if _, err := os.Stat(args[0]); err == nil {
					return fmt.Errorf("%s: %w", args[0], fs.ErrExist)
				}
				return c.cfg.SaveTo(args[0])
			},
		},
		&cobra.Command{
			Use:   "dir",
			Short: "print the configuration directory",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), config.ConfigDir())
			},
		},
	)
	return cmd
}
