package viewer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/assets"
	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/internal/physics/kinematic"
	"github.com/Faultbox/physview/internal/vfs"
)

// Limits on what Import copies from a host directory.
const (
	maxImportFiles = 4096
	maxImportBytes = 256 << 20
)

// ErrImportTooLarge is returned when a host directory exceeds the import
// limits.
var ErrImportTooLarge = errors.New("import too large")

// importExt lists the file kinds a scene can reference.
var importExt = map[string]bool{
	".xml": true,
	".obj": true,
	".stl": true,
	".png": true,
	".bmp": true,
	".skn": true,
}

// Workspace is the working filesystem the engine loads scenes from, plus
// the asset manager that fills it.
type Workspace struct {
	FS       *vfs.FS
	Assets   *assets.Manager
	Manifest *assets.Manifest

	dir         string
	concurrency int
	imports     int
	log         *zap.Logger
}

// NewWorkspace creates an empty working filesystem for cfg.
func NewWorkspace(cfg config.AssetsConfig) (*Workspace, error) {
	fsys, err := vfs.New()
	if err != nil {
		return nil, err
	}
	if err := fsys.MkdirAll(cfg.WorkingDir); err != nil {
		return nil, err
	}

	manifest := assets.DefaultManifest()
	if cfg.Manifest != "" {
		if manifest, err = assets.LoadManifest(cfg.Manifest); err != nil {
			return nil, err
		}
	}

	mgr := assets.NewManager()
	if cfg.Source != "" {
		mgr.AddSource(assets.NewSource(cfg.Source, cfg.Timeout))
	}

	return &Workspace{
		FS:          fsys,
		Assets:      mgr,
		Manifest:    manifest,
		dir:         path.Join("/", cfg.WorkingDir),
		concurrency: cfg.Concurrency,
		log:         logger.Named("workspace"),
	}, nil
}

// Dir returns the working directory.
func (w *Workspace) Dir() string { return w.dir }

// Engine returns a physics engine reading from the working filesystem.
func (w *Workspace) Engine() *kinematic.Engine {
	return kinematic.NewEngine(w.FS.FS())
}

// Populate fetches every manifest file not yet present. Either all of
// them are written or none.
func (w *Workspace) Populate(ctx context.Context) error {
	var missing []string
	for _, f := range w.Manifest.Files {
		if !w.FS.Exists(path.Join(w.dir, f)) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	w.log.Info("populating working directory",
		zap.String("dir", w.dir),
		zap.Int("files", len(missing)),
	)
	return w.Assets.Fetch(ctx, w.FS, missing, assets.FetchOptions{
		Dir:         w.dir,
		Concurrency: w.concurrency,
	})
}

// Fetch makes sure file, an absolute path in the working filesystem, is
// present, fetching it from the asset sources if needed. Imported files
// and files outside the working directory are left alone.
func (w *Workspace) Fetch(ctx context.Context, file string) error {
	if w.FS.Exists(file) {
		return nil
	}
	rel, ok := strings.CutPrefix(path.Clean(file), w.dir+"/")
	if !ok || strings.HasPrefix(rel, "local/") || len(w.Assets.Sources()) == 0 {
		return nil
	}
	return w.Assets.Fetch(ctx, w.FS, []string{rel}, assets.FetchOptions{Dir: w.dir})
}

// Import copies the directory holding hostFile into the working
// filesystem and returns hostFile's path relative to the working
// directory. Files of unknown kind and hidden directories are skipped.
func (w *Workspace) Import(hostFile string) (string, error) {
	dir, base := filepath.Split(hostFile)
	if dir == "" {
		dir = "."
	}
	staged, err := vfs.New()
	if err != nil {
		return "", err
	}

	src := os.DirFS(dir)
	if _, err := fs.Stat(src, base); err != nil {
		return "", fmt.Errorf("importing %s: %w", hostFile, err)
	}

	var files int
	var bytes int64
	err = fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !importExt[strings.ToLower(path.Ext(p))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		bytes += info.Size()
		if files > maxImportFiles || bytes > maxImportBytes {
			return ErrImportTooLarge
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		return staged.WriteFile(p, data)
	})
	if err != nil {
		return "", fmt.Errorf("importing %s: %w", hostFile, err)
	}

	w.imports++
	rel := path.Join("local", strconv.Itoa(w.imports))
	if err := w.FS.Attach(path.Join(w.dir, rel), staged); err != nil {
		return "", err
	}
	w.log.Info("imported scene directory",
		zap.String("dir", dir),
		zap.String("at", rel),
		zap.Int("files", files),
		zap.Int64("bytes", bytes),
	)
	return path.Join(rel, base), nil
}

// Close releases the asset manager.
func (w *Workspace) Close() {
	w.Assets.Close()
}
