// Package vfs is the in-memory filesystem scene files are fetched into and
// the physics engine loads them from.
package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/hack-pad/hackpadfs/mount"

	"github.com/Faultbox/physview/pkg/encoding"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// binaryExt lists extensions stored byte for byte. Everything else is
// treated as text and normalized to UTF-8.
var binaryExt = map[string]bool{
	".png": true,
	".bmp": true,
	".stl": true,
	".skn": true,
}

// IsBinary reports whether name is stored without text decoding.
func IsBinary(name string) bool {
	return binaryExt[strings.ToLower(path.Ext(name))]
}

// FS is a rooted, slash-separated filesystem. Paths may be given with or
// without a leading slash.
type FS struct {
	fs *mount.FS
}

// New returns an empty in-memory filesystem.
func New() (*FS, error) {
	memfs, err := mem.NewFS()
	if err != nil {
		return nil, fmt.Errorf("creating memory fs: %w", err)
	}
	mfs, err := mount.NewFS(memfs)
	if err != nil {
		return nil, fmt.Errorf("creating mount fs: %w", err)
	}
	return &FS{fs: mfs}, nil
}

// Clean makes p relative to the filesystem root, as io/fs requires.
func Clean(p string) string {
	p = strings.TrimPrefix(encoding.NormalizePath("/", p), "/")
	if p == "" {
		return "."
	}
	return p
}

// Mount attaches another filesystem at dir. The directory is created if
// needed.
func (f *FS) Mount(dir string, sub hackpadfs.FS) error {
	if err := f.MkdirAll(dir); err != nil {
		return err
	}
	if err := f.fs.AddMount(Clean(dir), sub); err != nil {
		return fmt.Errorf("mounting %s: %w", dir, err)
	}
	return nil
}

// Attach mounts another vfs at dir.
func (f *FS) Attach(dir string, other *FS) error {
	return f.Mount(dir, other.fs)
}

// MkdirAll creates dir and any missing parents.
func (f *FS) MkdirAll(dir string) error {
	if err := hackpadfs.MkdirAll(f.fs, Clean(dir), dirPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// WriteFile stores data at name, creating parent directories. Text files
// are decoded to UTF-8 first.
func (f *FS) WriteFile(name string, data []byte) error {
	if !IsBinary(name) {
		decoded, err := encoding.DecodeText(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}
		data = decoded
	}
	p := Clean(name)
	if dir := path.Dir(p); dir != "." {
		if err := hackpadfs.MkdirAll(f.fs, dir, dirPerm); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := hackpadfs.WriteFullFile(f.fs, p, data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// ReadFile returns the contents of name.
func (f *FS) ReadFile(name string) ([]byte, error) {
	return hackpadfs.ReadFile(f.fs, Clean(name))
}

// Exists reports whether name exists.
func (f *FS) Exists(name string) bool {
	_, err := hackpadfs.Stat(f.fs, Clean(name))
	return err == nil
}

// Remove deletes name and everything below it. Missing paths are not an
// error.
func (f *FS) Remove(name string) error {
	err := hackpadfs.RemoveAll(f.fs, Clean(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	return nil
}

// List returns the regular files below dir, sorted, as absolute paths.
func (f *FS) List(dir string) ([]string, error) {
	var files []string
	err := fs.WalkDir(f.fs, Clean(dir), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, "/"+p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// FS exposes the filesystem through io/fs.
func (f *FS) FS() fs.FS {
	return f.fs
}

// Sub returns the subtree rooted at dir.
func (f *FS) Sub(dir string) (fs.FS, error) {
	return fs.Sub(f.fs, Clean(dir))
}
