package assets

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var defaultManifest []byte

// Manifest lists the files fetched before the first scene loads.
type Manifest struct {
	Files []string `yaml:"files"`
}

// DefaultManifest returns the built-in file list.
func DefaultManifest() *Manifest {
	m, err := ParseManifest(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("assets: embedded manifest: %v", err))
	}
	return m
}

// LoadManifest reads a manifest file from disk.
func LoadManifest(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest. Blank entries are dropped and
// duplicate entries collapsed.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	seen := make(map[string]bool, len(m.Files))
	files := m.Files[:0]
	for _, f := range m.Files {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		files = append(files, f)
	}
	m.Files = files
	return &m, nil
}

// Scenes returns the manifest entries that are scene descriptions.
func (m *Manifest) Scenes() []string {
	var out []string
	for _, f := range m.Files {
		if strings.EqualFold(path.Ext(f), ".xml") {
			out = append(out, f)
		}
	}
	return out
}
