package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and config dirs.
const FileName = "physview.yaml"

// Load loads configuration with priority: defaults < file < flags.
// flags may be nil.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	var configPath string
	if flags != nil {
		configPath = flags.Config
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	switch c.Viewer.Hierarchy {
	case HierarchyFlat, HierarchyParentChain:
	default:
		return fmt.Errorf("viewer.hierarchy: unknown mode %q", c.Viewer.Hierarchy)
	}
	if c.Graphics.MSAA < 0 || c.Graphics.MSAA > 16 {
		return fmt.Errorf("graphics.msaa: %d out of range [0, 16]", c.Graphics.MSAA)
	}
	if len(c.Scenes) == 0 {
		return fmt.Errorf("scenes: at least one scene is required")
	}
	for i, s := range c.Scenes {
		if s.Name == "" || s.File == "" {
			return fmt.Errorf("scenes[%d]: name and file are required", i)
		}
	}
	if c.Assets.Concurrency < 1 {
		return fmt.Errorf("assets.concurrency must be positive, got %d", c.Assets.Concurrency)
	}
	return nil
}

// findConfigFile returns the first existing config file: the working
// directory wins over ConfigDir.
func findConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user physview config directory, or "" when
// the platform has none.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "physview")
}

// loadFromFile overlays the YAML file at path onto cfg. Keys missing from
// the file keep their current value; a scenes list replaces the old one.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
