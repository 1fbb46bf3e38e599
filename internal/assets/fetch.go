package assets

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sink receives fetched files. The viewer's vfs.FS is one.
type Sink interface {
	WriteFile(name string, data []byte) error
}

// DirSink writes fetched files below a local directory.
type DirSink string

func (d DirSink) WriteFile(name string, data []byte) error {
	p := filepath.Join(string(d), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// FetchOptions tunes Fetch.
type FetchOptions struct {
	// Dir is prefixed to every file name written to the sink.
	Dir string
	// Concurrency bounds parallel reads. Zero or less means unbounded.
	Concurrency int
}

// Fetch reads every file concurrently and, once all reads have succeeded,
// writes them to dst under opts.Dir. If any read fails nothing is written
// and the first error is returned.
func (m *Manager) Fetch(ctx context.Context, dst Sink, files []string, opts FetchOptions) error {
	start := time.Now()
	data := make([][]byte, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, f := range files {
		g.Go(func() error {
			b, err := m.Load(gctx, f)
			if err != nil {
				return err
			}
			data[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.log.Error("asset fetch failed", zap.Error(err))
		return err
	}

	var bytes int
	for i, f := range files {
		name := path.Join("/", opts.Dir, f)
		if err := dst.WriteFile(name, data[i]); err != nil {
			return fmt.Errorf("storing %s: %w", name, err)
		}
		bytes += len(data[i])
	}

	m.log.Info("assets fetched",
		zap.Int("files", len(files)),
		zap.Int("bytes", bytes),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
