package panel

import "github.com/Faultbox/physview/internal/config"

// SceneOption is one entry of the scene selector.
type SceneOption struct {
	Name string
	File string
}

// Scenes is the ordered scene selector.
type Scenes []SceneOption

// ScenesFromConfig converts the configured selector entries.
func ScenesFromConfig(entries []config.SceneEntry) Scenes {
	s := make(Scenes, len(entries))
	for i, e := range entries {
		s[i] = SceneOption{Name: e.Name, File: e.File}
	}
	return s
}

// DefaultScenes returns the built-in selector.
func DefaultScenes() Scenes {
	return ScenesFromConfig(config.DefaultScenes())
}

// File returns the scene file for a selector name.
func (s Scenes) File(name string) (string, bool) {
	for _, o := range s {
		if o.Name == name {
			return o.File, true
		}
	}
	return "", false
}

// Name returns the selector name showing file, or file itself when the
// selector has no entry for it.
func (s Scenes) Name(file string) string {
	for _, o := range s {
		if o.File == file {
			return o.Name
		}
	}
	return file
}

// Names returns the selector labels in order.
func (s Scenes) Names() []string {
	names := make([]string, len(s))
	for i, o := range s {
		names[i] = o.Name
	}
	return names
}
