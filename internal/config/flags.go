package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Config     string
	Debug      bool
	Scene      string
	Source     string
	Hierarchy  string
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	LogFile    string
}

// BindFlags registers the override flags on fs and returns their targets.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVarP(&f.Config, "config", "c", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVarP(&f.Scene, "scene", "s", "", "Scene file to open, relative to the working dir")
	fs.StringVar(&f.Source, "source", "", "Asset source: base URL or local directory")
	fs.StringVar(&f.Hierarchy, "hierarchy", "", "Body hierarchy mode (flat or parent_chain)")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Scene != "" {
		cfg.Viewer.InitialScene = f.Scene
	}
	if f.Source != "" {
		cfg.Assets.Source = f.Source
	}
	if f.Hierarchy != "" {
		cfg.Viewer.Hierarchy = f.Hierarchy
	}
	if f.Windowed {
		cfg.Graphics.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Graphics.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Graphics.Height = f.Height
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
