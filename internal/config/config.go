// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Scenes     []SceneEntry     `yaml:"scenes"`
	Assets     AssetsConfig     `yaml:"assets"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
	MSAA       int  `yaml:"msaa"`
}

// Hierarchy modes for attaching body groups.
const (
	HierarchyFlat        = "flat"
	HierarchyParentChain = "parent_chain"
)

// ViewerConfig holds scene and camera settings.
type ViewerConfig struct {
	InitialScene     string       `yaml:"initial_scene"`
	Hierarchy        string       `yaml:"hierarchy"`
	MaxStepsPerFrame int          `yaml:"max_steps_per_frame"`
	Camera           CameraConfig `yaml:"camera"`
}

// CameraConfig is the free-camera pose restored by "Reset free camera".
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	FovY     float32    `yaml:"fov_y"`
}

// SceneEntry is one option of the scene selector.
type SceneEntry struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// AssetsConfig controls where scene files are fetched from.
type AssetsConfig struct {
	// Source is either an http(s) base URL or a local directory.
	Source string `yaml:"source"`
	// Manifest overrides the built-in list of files to fetch.
	Manifest    string        `yaml:"manifest"`
	WorkingDir  string        `yaml:"working_dir"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SimulationConfig holds defaults for the simulation parameters.
type SimulationConfig struct {
	CtrlNoiseRate float64 `yaml:"ctrl_noise_rate"`
	CtrlNoiseStd  float64 `yaml:"ctrl_noise_std"`
	Seed          int64   `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DefaultScenes is the scene selector shipped with the viewer.
func DefaultScenes() []SceneEntry {
	return []SceneEntry{
		{Name: "Humanoid", File: "humanoid.xml"},
		{Name: "Cassie", File: "agility_cassie/scene.xml"},
		{Name: "Hammock", File: "hammock.xml"},
		{Name: "Balloons", File: "balloons.xml"},
		{Name: "Hand", File: "shadow_hand/scene_right.xml"},
		{Name: "Flag", File: "flag.xml"},
		{Name: "Mug", File: "mug.xml"},
		{Name: "Tendon", File: "model_with_tendon.xml"},
		{Name: "Kitchen", File: "kitchen.xml"},
		{Name: "Kitchen - v0", File: "kitchen/kitchen_v0.xml"},
		{Name: "Bimanual - v0", File: "test.xml"},
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			MSAA:       4,
		},
		Viewer: ViewerConfig{
			InitialScene:     "humanoid.xml",
			Hierarchy:        HierarchyFlat,
			MaxStepsPerFrame: 50,
			Camera: CameraConfig{
				Position: [3]float32{2.0, 1.7, 1.7},
				Target:   [3]float32{0, 0.7, 0},
				FovY:     45,
			},
		},
		Scenes: DefaultScenes(),
		Assets: AssetsConfig{
			Source:      "examples/scenes",
			WorkingDir:  "/working",
			Concurrency: 8,
			Timeout:     30 * time.Second,
		},
		Simulation: SimulationConfig{
			CtrlNoiseRate: 0.0,
			CtrlNoiseStd:  0.0,
			Seed:          1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
