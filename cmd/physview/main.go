// Package main is the physview command: a viewer for physics scenes with
// a windowed and a terminal front-end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/gui"
	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/internal/tui"
	"github.com/Faultbox/physview/internal/viewer"
)

// cli carries the state shared by the subcommands.
type cli struct {
	flags *config.Flags
	cfg   *config.Config
	// console is false for commands that own the terminal.
	console bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{console: true}

	root := &cobra.Command{
		Use:           "physview",
		Short:         "interactive viewer for physics scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		RunE: c.runGUI,
	}
	c.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "gui",
			Short: "open the windowed viewer (default)",
			Args:  cobra.NoArgs,
			RunE:  c.runGUI,
		},
		&cobra.Command{
			Use:   "tui",
			Short: "run the viewer in the terminal",
			Args:  cobra.NoArgs,
			PreRunE: func(cmd *cobra.Command, args []string) error {
				c.console = false
				return c.setup()
			},
			RunE: c.runTUI,
		},
		newInspectCmd(c),
		newFetchCmd(c),
		newScenesCmd(c),
		newConfigCmd(c),
	)
	return root
}

// setup loads the configuration and initializes logging. It runs again
// when a subcommand changes how logging is routed.
func (c *cli) setup() error {
	cfg, err := config.Load(c.flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.cfg = cfg

	opts := logger.Options{Level: cfg.Logging.Level, Console: c.console}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.Init(opts); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

// workspace creates the working filesystem and fills it from the
// manifest.
func (c *cli) workspace(ctx context.Context) (*viewer.Workspace, error) {
	ws, err := viewer.NewWorkspace(c.cfg.Assets)
	if err != nil {
		return nil, err
	}
	if len(ws.Assets.Sources()) > 0 {
		if err := ws.Populate(ctx); err != nil {
			logger.Warn("populating working directory failed, scenes are fetched on demand", zap.Error(err))
		}
	}
	return ws, nil
}

func (c *cli) runGUI(cmd *cobra.Command, args []string) error {
	logger.Info("=== physview ===")
	ws, err := c.workspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()
	return gui.Run(cmd.Context(), c.cfg, ws)
}

func (c *cli) runTUI(cmd *cobra.Command, args []string) error {
	ws, err := c.workspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()
	return tui.Run(cmd.Context(), c.cfg, ws)
}
