// Package formats parses the asset files a scene refers to: OBJ and STL
// meshes and PNG or BMP textures.
package formats

import (
	"path"
	"strings"
)

// MeshParser returns the parser for a mesh file, chosen by extension.
func MeshParser(file string) (func([]byte) (*Mesh, error), bool) {
	switch strings.ToLower(path.Ext(file)) {
	case ".obj":
		return ParseOBJ, true
	case ".stl":
		return ParseSTL, true
	}
	return nil, false
}
